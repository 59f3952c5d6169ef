// Package kvstore provides the durable key-value stores behind chat history.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store named by c.ChatStore.
func Open(ctx context.Context, c engine.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch c.ChatStore {
	case "", "sqlite":
		s, err = OpenSQLite(c.SQLitePath)
	case "redis":
		s, err = OpenRedis(ctx, c.RedisURL, c.ChatHistoryTTL)
	case "postgres":
		s, err = OpenPostgres(ctx, c.DatabaseURL)
	case "memory":
		s = NewMemory()
	default:
		return nil, fmt.Errorf("kvstore: unknown store %q", c.ChatStore)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("kvstore: opened", slog.String("store", c.ChatStore))
	return s, nil
}
