package engine

import (
	"net/http"
	"time"
)

// Config holds all orchestrator configuration, injected from main.
type Config struct {
	BackendURL     string
	BackendTimeout time.Duration
	BackendRPS     float64
	BackendBurst   int
	BackendWait    time.Duration // 0 = skip startup readiness probe
	HTTPClient     *http.Client
	ChatStore      string // sqlite, redis, postgres or memory
	SQLitePath     string
	RedisURL       string
	DatabaseURL    string
	ChatHistoryTTL time.Duration // redis only; 0 = keep forever
	ExcerptRunes   int           // citation excerpt cap in tool output
}

var cfg = Config{ExcerptRunes: 280}

// Cfg exposes the configuration to sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init installs the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
