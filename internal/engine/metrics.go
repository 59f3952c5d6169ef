package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the orchestrator.
var metrics struct {
	BackendCalls     atomic.Int64
	BackendErrors    atomic.Int64
	SessionsStarted  atomic.Int64
	SessionsFailed   atomic.Int64
	ViewFetches      atomic.Int64
	ViewCacheHits    atomic.Int64
	ViewCacheMisses  atomic.Int64
	ViewCacheShared  atomic.Int64
	StaleDiscards    atomic.Int64
	ChatTurns        atomic.Int64
	PersistErrors    atomic.Int64
	PersistCorrupted atomic.Int64
}

var metricKeys = []string{
	"backend_calls", "backend_errors",
	"sessions_started", "sessions_failed",
	"view_fetches", "view_cache_hits", "view_cache_misses", "view_cache_shared",
	"stale_discards",
	"chat_turns", "persist_errors", "persist_corrupted",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"backend_calls":     metrics.BackendCalls.Load(),
		"backend_errors":    metrics.BackendErrors.Load(),
		"sessions_started":  metrics.SessionsStarted.Load(),
		"sessions_failed":   metrics.SessionsFailed.Load(),
		"view_fetches":      metrics.ViewFetches.Load(),
		"view_cache_hits":   metrics.ViewCacheHits.Load(),
		"view_cache_misses": metrics.ViewCacheMisses.Load(),
		"view_cache_shared": metrics.ViewCacheShared.Load(),
		"stale_discards":    metrics.StaleDiscards.Load(),
		"chat_turns":        metrics.ChatTurns.Load(),
		"persist_errors":    metrics.PersistErrors.Load(),
		"persist_corrupted": metrics.PersistCorrupted.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for backend/.
func IncrBackendCalls()  { metrics.BackendCalls.Add(1) }
func IncrBackendErrors() { metrics.BackendErrors.Add(1) }

// Incrementors for session/.
func IncrSessionsStarted() { metrics.SessionsStarted.Add(1) }
func IncrSessionsFailed()  { metrics.SessionsFailed.Add(1) }
func IncrStaleDiscards()   { metrics.StaleDiscards.Add(1) }

// Incrementors for viewcache/.
func IncrViewFetches()     { metrics.ViewFetches.Add(1) }
func IncrViewCacheHits()   { metrics.ViewCacheHits.Add(1) }
func IncrViewCacheMisses() { metrics.ViewCacheMisses.Add(1) }
func IncrViewCacheShared() { metrics.ViewCacheShared.Add(1) }

// Incrementors for chatlog/.
func IncrChatTurns()        { metrics.ChatTurns.Add(1) }
func IncrPersistErrors()    { metrics.PersistErrors.Add(1) }
func IncrPersistCorrupted() { metrics.PersistCorrupted.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
