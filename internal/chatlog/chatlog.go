// Package chatlog keeps the per-session conversation and persists it to a
// kvstore after every change.
package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/kvstore"
)

// KeyPrefix precedes the session id in store keys.
const KeyPrefix = "chat_history_"

// Role is the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation.
type Turn struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"created_at"`
	Citations []engine.Citation `json:"citations,omitempty"`
	Failed    bool              `json:"failed,omitempty"` // assistant turn standing in for a failed answer
}

// NewTurn stamps a turn with a fresh id and the current time.
func NewTurn(role Role, text string, citations []engine.Citation) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Citations: citations,
	}
}

// Key returns the store key of session's history.
func Key(session string) string {
	return KeyPrefix + session
}

// Log is the conversation store. Loaded sequences stay in memory and every
// change is written through to the kvstore before the call returns.
type Log struct {
	store kvstore.Store

	mu    sync.Mutex
	turns map[string][]Turn
}

// New returns a log persisting to store.
func New(store kvstore.Store) *Log {
	return &Log{store: store, turns: make(map[string][]Turn)}
}

// Load returns session's turns in append order. Missing or unreadable
// history yields an empty sequence.
func (l *Log) Load(ctx context.Context, session string) []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.loadLocked(ctx, session))
}

func (l *Log) loadLocked(ctx context.Context, session string) []Turn {
	if t, ok := l.turns[session]; ok {
		return t
	}
	t, err := l.read(ctx, session)
	if err != nil {
		slog.Warn("chatlog: history discarded",
			slog.String("session", session),
			slog.Any("error", err),
		)
		t = nil
	}
	l.turns[session] = t
	return t
}

func (l *Log) read(ctx context.Context, session string) ([]Turn, error) {
	data, err := l.store.Get(ctx, Key(session))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		engine.IncrPersistErrors()
		return nil, fmt.Errorf("%w: %w", engine.ErrPersistenceCorrupt, err)
	}
	var t []Turn
	if err := json.Unmarshal(data, &t); err != nil {
		engine.IncrPersistCorrupted()
		return nil, fmt.Errorf("%w: %w", engine.ErrPersistenceCorrupt, err)
	}
	return t, nil
}

// Append adds turn to session's history and persists the whole sequence.
// The turn is kept in memory even when the write fails; the write error is
// returned for the caller to log.
func (l *Log) Append(ctx context.Context, session string, turn Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := append(l.loadLocked(ctx, session), turn)
	l.turns[session] = t
	engine.IncrChatTurns()
	return l.saveLocked(ctx, session, t)
}

// Clear drops session's history from memory and from the store.
func (l *Log) Clear(ctx context.Context, session string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.turns, session)
	return l.saveLocked(ctx, session, nil)
}

// saveLocked writes t, deleting the key when t is empty.
func (l *Log) saveLocked(ctx context.Context, session string, t []Turn) error {
	var err error
	if len(t) == 0 {
		err = l.store.Delete(ctx, Key(session))
	} else {
		var data []byte
		data, err = json.Marshal(t)
		if err == nil {
			err = l.store.Put(ctx, Key(session), data)
		}
	}
	if err != nil {
		engine.IncrPersistErrors()
		return fmt.Errorf("chatlog: persist %s: %w", session, err)
	}
	return nil
}
