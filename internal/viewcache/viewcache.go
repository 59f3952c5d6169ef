// Package viewcache memoizes per-session view data so that each view of a
// session is fetched at most once, however many callers ask for it.
package viewcache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// Kind names a view whose data is cached.
type Kind string

// State is the lifecycle of a cache entry.
type State int

const (
	Empty State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "empty"
	}
}

type key struct {
	session string
	kind    Kind
}

type entry struct {
	state State
	value any
	err   error
}

// Cache holds entries keyed by (session, kind). The zero value is not usable;
// call New.
type Cache struct {
	mu      sync.Mutex
	entries map[key]*entry
	gens    map[string]uint64 // bumped by Invalidate
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Shared int64 `json:"shared"`
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[key]*entry),
		gens:    make(map[string]uint64),
	}
}

// GetOrFetch returns the cached value for (session, kind). A Loaded entry is
// returned without calling fetch. Concurrent callers for a key with no Loaded
// value share a single fetch call. Empty and Errored entries are fetched again.
//
// fetch runs on a context detached from ctx's cancellation: a caller that
// gives up does not abort the fetch other callers may be waiting on.
// A fetch that completes after Invalidate(session) still answers its callers
// but its result is not stored.
func GetOrFetch[V any](ctx context.Context, c *Cache, session string, kind Kind, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	k := key{session, kind}

	c.mu.Lock()
	gen := c.gens[session]
	if e, ok := c.entries[k]; ok && e.state == Loaded {
		c.mu.Unlock()
		c.hits.Add(1)
		engine.IncrViewCacheHits()
		v, ok := e.value.(V)
		if !ok {
			return zero, fmt.Errorf("viewcache: %s/%s holds %T", session, kind, e.value)
		}
		return v, nil
	}
	if e, ok := c.entries[k]; !ok || e.state != Loading {
		c.entries[k] = &entry{state: Loading}
	}
	// The flight is joined under c.mu: store needs c.mu, so a Loading entry
	// seen here still has its flight registered in the group.
	flightKey := session + "\x00" + string(kind) + "\x00" + strconv.FormatUint(gen, 10)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		engine.IncrViewFetches()
		v, err := fetch(detached)
		c.store(k, gen, v, err)
		return v, err
	})
	c.mu.Unlock()

	c.misses.Add(1)
	engine.IncrViewCacheMisses()

	select {
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
			engine.IncrViewCacheShared()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(V)
		if !ok {
			return zero, fmt.Errorf("viewcache: %s/%s fetched %T", session, kind, res.Val)
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache) store(k key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[k.session] != gen {
		return
	}
	if err != nil {
		c.entries[k] = &entry{state: Errored, err: err}
		return
	}
	c.entries[k] = &entry{state: Loaded, value: v}
}

// Peek reports the state of (session, kind) without fetching. The value is
// non-nil only for Loaded entries, the error only for Errored ones.
func (c *Cache) Peek(session string, kind Kind) (State, any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key{session, kind}]
	if !ok {
		return Empty, nil, nil
	}
	return e.state, e.value, e.err
}

// Invalidate drops every entry of session. In-flight fetches for it finish
// without storing their results.
func (c *Cache) Invalidate(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[session]++
	for k := range c.entries {
		if k.session == session {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of entries across all sessions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit, miss and shared-flight counts.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Shared: c.shared.Load(),
	}
}
