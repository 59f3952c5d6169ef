// go_tubechat: MCP server for chatting with YouTube videos.
//
// Drives one video session at a time against a RAG backend: submit a link,
// pick a transcript language, process, then ask questions and browse the
// analytics, sentiment and summary views. Chat history is persisted per video.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubechat/internal/backend"
	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/kvstore"
	"github.com/anatolykoptev/go_tubechat/internal/session"
	"github.com/anatolykoptev/go_tubechat/internal/tubeserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
)

func main() {
	c := loadConfig()
	engine.Init(c)

	slog.Info("starting go_tubechat",
		slog.String("port", mcpPort),
		slog.String("backend", c.BackendURL),
		slog.String("chat_store", c.ChatStore),
	)

	ctx := context.Background()
	store, err := kvstore.Open(ctx, c)
	if err != nil {
		slog.Error("chat store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	bc := backend.New(c.BackendURL, backend.Options{
		HTTPClient: c.HTTPClient,
		RPS:        c.BackendRPS,
		Burst:      c.BackendBurst,
	})
	if c.BackendWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, c.BackendWait)
		if err := bc.WaitReady(waitCtx, engine.StartupRetryConfig); err != nil {
			slog.Warn("backend not reachable yet, continuing", slog.Any("error", err))
		}
		cancel()
	}

	ctl := session.New(bc, chatlog.New(store))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tubechat",
		Version: version,
	}, nil)

	tubeserver.RegisterTools(server, ctl)
	slog.Info("tools registered", slog.Int("count", tubeserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tubechat",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	timeout := env.Duration("BACKEND_TIMEOUT", 5*time.Minute)
	return engine.Config{
		BackendURL:     env.Str("BACKEND_URL", "http://127.0.0.1:8000"),
		BackendTimeout: timeout,
		BackendRPS:     env.Float("BACKEND_RPS", 0),
		BackendBurst:   env.Int("BACKEND_BURST", 4),
		BackendWait:    env.Duration("BACKEND_WAIT", 30*time.Second),
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		ChatStore:      env.Str("CHAT_STORE", "sqlite"),
		SQLitePath:     env.Str("SQLITE_PATH", ""),
		RedisURL:       env.Str("REDIS_URL", ""),
		DatabaseURL:    env.Str("DATABASE_URL", ""),
		ChatHistoryTTL: env.Duration("CHAT_HISTORY_TTL", 0),
		ExcerptRunes:   env.Int("EXCERPT_RUNES", 280),
	}
}
