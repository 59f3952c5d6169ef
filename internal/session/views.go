package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/format"
	"github.com/anatolykoptev/go_tubechat/internal/videoid"
	"github.com/anatolykoptev/go_tubechat/internal/viewcache"
)

// View is one of the panels available once a video is Ready.
type View string

const (
	ViewChat      View = "chat"
	ViewAnalytics View = "analytics"
	ViewSentiment View = "sentiment"
	ViewSummary   View = "summary"
	ViewSearch    View = "search"
)

// Views lists every selectable view.
var Views = []View{ViewChat, ViewAnalytics, ViewSentiment, ViewSummary, ViewSearch}

// Cached data kinds. Several views may read the same kind.
const (
	kindDashboard      viewcache.Kind = "dashboard"
	kindVideoAnalytics viewcache.Kind = "video_analytics"
	kindSentiment      viewcache.Kind = "sentiment"
	kindSummary        viewcache.Kind = "summary"
	kindVideos         viewcache.Kind = "videos"
	kindExport         viewcache.Kind = "export"
)

// SummaryView pairs the formatted summary with the sentiment shown beside it.
type SummaryView struct {
	Summary   format.Summary   `json:"summary"`
	Sentiment engine.Sentiment `json:"sentiment"`
}

// SelectView switches the active panel. Only valid in Ready; nothing is
// fetched until the view's data is requested.
func (c *Controller) SelectView(v View) (Snapshot, error) {
	if !slices.Contains(Views, v) {
		return c.Snapshot(), fmt.Errorf("unknown view %q", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Ready {
		return c.snapshotLocked(), fmt.Errorf("%w: select view while %s", engine.ErrNotReady, c.status)
	}
	c.view = v
	return c.snapshotLocked(), nil
}

// readySession returns the live video id and epoch, or ErrNotReady.
func (c *Controller) readySession() (string, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Ready {
		return "", 0, fmt.Errorf("%w: session is %s", engine.ErrNotReady, c.status)
	}
	return c.videoID, c.epoch, nil
}

// cachedView fetches kind for the live session through the view cache.
func cachedView[V any](ctx context.Context, c *Controller, kind viewcache.Kind, fetch func(ctx context.Context, videoID string) (V, error)) (V, error) {
	var zero V
	id, epoch, err := c.readySession()
	if err != nil {
		return zero, err
	}
	v, err := viewcache.GetOrFetch(ctx, c.cache, id, kind, func(ctx context.Context) (V, error) {
		return fetch(ctx, id)
	})
	if !c.current(epoch) {
		engine.IncrStaleDiscards()
		return zero, fmt.Errorf("%w: %s for %s", engine.ErrStaleSession, kind, id)
	}
	return v, err
}

// Analytics returns the cross-video dashboard.
func (c *Controller) Analytics(ctx context.Context) (engine.Dashboard, error) {
	return cachedView(ctx, c, kindDashboard, func(ctx context.Context, _ string) (engine.Dashboard, error) {
		return c.backend.Dashboard(ctx)
	})
}

// VideoAnalytics returns processing and interaction stats of the live video.
func (c *Controller) VideoAnalytics(ctx context.Context) (engine.VideoAnalytics, error) {
	return cachedView(ctx, c, kindVideoAnalytics, c.backend.VideoAnalytics)
}

// Sentiment returns the tone analysis of the live video.
func (c *Controller) Sentiment(ctx context.Context) (engine.Sentiment, error) {
	return cachedView(ctx, c, kindSentiment, c.backend.Sentiment)
}

// Summary returns the formatted summary of the live video together with its
// sentiment. Both are fetched in parallel; the sentiment is shared with the
// sentiment view's cache entry.
func (c *Controller) Summary(ctx context.Context) (SummaryView, error) {
	return cachedView(ctx, c, kindSummary, func(ctx context.Context, id string) (SummaryView, error) {
		var (
			raw  engine.Summary
			sent engine.Sentiment
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			raw, err = c.backend.Summary(gctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			sent, err = viewcache.GetOrFetch(gctx, c.cache, id, kindSentiment, func(ctx context.Context) (engine.Sentiment, error) {
				return c.backend.Sentiment(ctx, id)
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return SummaryView{}, err
		}
		return SummaryView{Summary: format.FormatSummary(raw), Sentiment: sent}, nil
	})
}

// ProcessedVideos lists the videos the search view can target.
func (c *Controller) ProcessedVideos(ctx context.Context) (engine.VideoList, error) {
	return cachedView(ctx, c, kindVideos, func(ctx context.Context, _ string) (engine.VideoList, error) {
		return c.backend.Videos(ctx)
	})
}

// Export returns the backend's export document for the live video.
func (c *Controller) Export(ctx context.Context) (engine.Export, error) {
	return cachedView(ctx, c, kindExport, c.backend.Export)
}

// Search runs query across videoIDs, or every processed video when empty.
// Malformed ids fail with engine.ErrInvalidReference before any backend call.
// Each call reaches the backend; results are not cached.
func (c *Controller) Search(ctx context.Context, query string, videoIDs []string) (engine.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return engine.SearchResult{}, errors.New("query is required")
	}
	for _, id := range videoIDs {
		if !videoid.Valid(id) {
			return engine.SearchResult{}, fmt.Errorf("%w: search video id %q", engine.ErrInvalidReference, id)
		}
	}
	_, epoch, err := c.readySession()
	if err != nil {
		return engine.SearchResult{}, err
	}
	res, err := c.backend.Search(ctx, query, videoIDs)
	if !c.current(epoch) {
		engine.IncrStaleDiscards()
		return engine.SearchResult{}, fmt.Errorf("%w: search", engine.ErrStaleSession)
	}
	return res, err
}

// BackendStatus asks the backend whether the session's video is indexed.
// Valid whenever a video id is known.
func (c *Controller) BackendStatus(ctx context.Context) (engine.VideoStatus, error) {
	c.mu.Lock()
	id := c.videoID
	c.mu.Unlock()
	if id == "" {
		return engine.VideoStatus{}, fmt.Errorf("%w: no video selected", engine.ErrNotReady)
	}
	return c.backend.Status(ctx, id)
}
