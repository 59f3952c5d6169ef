// Package session drives the lifecycle of the single live video session:
// language discovery, backend processing, the analytic views and the chat.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_tubechat/internal/catalog"
	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/videoid"
	"github.com/anatolykoptev/go_tubechat/internal/viewcache"
)

// Status is the lifecycle state of the session.
type Status string

const (
	Unselected           Status = "unselected"
	DiscoveringLanguages Status = "discovering_languages"
	LanguageReady        Status = "language_ready"
	Processing           Status = "processing"
	Ready                Status = "ready"
	Failed               Status = "failed"
)

// Backend is everything the controller needs from the RAG backend.
type Backend interface {
	catalog.Discoverer
	ProcessVideo(ctx context.Context, videoRef, languageCode string, translateToEnglish bool) (engine.ProcessResult, error)
	Ask(ctx context.Context, videoID, question string) (engine.ChatAnswer, error)
	Dashboard(ctx context.Context) (engine.Dashboard, error)
	VideoAnalytics(ctx context.Context, videoID string) (engine.VideoAnalytics, error)
	Sentiment(ctx context.Context, videoID string) (engine.Sentiment, error)
	Summary(ctx context.Context, videoID string) (engine.Summary, error)
	Search(ctx context.Context, query string, videoIDs []string) (engine.SearchResult, error)
	Videos(ctx context.Context) (engine.VideoList, error)
	Export(ctx context.Context, videoID string) (engine.Export, error)
	Status(ctx context.Context, videoID string) (engine.VideoStatus, error)
	Clear(ctx context.Context, videoID string) error
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	VideoID          string                    `json:"video_id,omitempty"`
	VideoURL         string                    `json:"video_url,omitempty"`
	Status           Status                    `json:"status"`
	Transcripts      []engine.TranscriptOption `json:"transcripts,omitempty"`
	SelectedLanguage string                    `json:"selected_language,omitempty"`
	TranslateToEN    bool                      `json:"translate_to_english,omitempty"`
	ActiveView       View                      `json:"active_view,omitempty"`
	LastError        string                    `json:"last_error,omitempty"`
	Epoch            uint64                    `json:"epoch"`
}

// Controller owns the live session. All methods are safe for concurrent use;
// backend calls are made without holding the lock and their results are
// dropped with engine.ErrStaleSession when the session changed meanwhile.
type Controller struct {
	backend Backend
	cache   *viewcache.Cache
	log     *chatlog.Log

	mu       sync.Mutex
	status   Status
	videoID  string
	videoURL string
	catalog  *catalog.Catalog
	view     View
	lastErr  error
	epoch    uint64 // bumped whenever the session is torn down
	asking   bool
}

// New returns a controller in the Unselected state.
func New(backend Backend, log *chatlog.Log) *Controller {
	return &Controller{
		backend: backend,
		cache:   viewcache.New(),
		log:     log,
		status:  Unselected,
		catalog: catalog.New(backend),
	}
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		VideoID:          c.videoID,
		VideoURL:         c.videoURL,
		Status:           c.status,
		Transcripts:      c.catalog.Options(),
		SelectedLanguage: c.catalog.Selected(),
		TranslateToEN:    c.catalog.TranslateToEnglish(),
		ActiveView:       c.view,
		Epoch:            c.epoch,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// CacheStats exposes view cache counters.
func (c *Controller) CacheStats() viewcache.Stats {
	return c.cache.Stats()
}

// SubmitURL starts a new session for raw, tearing down whatever session was
// live. It resolves the video id and discovers transcript languages; success
// leaves the session in LanguageReady, failure in Failed.
//
// An unresolvable raw leaves a live session, its views and its chat log
// untouched. Without a live session it moves to Failed.
func (c *Controller) SubmitURL(ctx context.Context, raw string) (Snapshot, error) {
	id, err := videoid.Resolve(raw)

	c.mu.Lock()
	if err != nil {
		if c.videoID == "" {
			c.failLocked(err)
		} else {
			slog.Info("session: rejected reference, keeping live session",
				slog.String("video_id", c.videoID), slog.Any("error", err))
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.teardownLocked(ctx)
	epoch := c.epoch

	ref := videoid.WatchURL(id)
	cat := catalog.New(c.backend)
	c.status = DiscoveringLanguages
	c.videoID = id
	c.videoURL = ref
	c.catalog = cat
	c.mu.Unlock()

	engine.IncrSessionsStarted()
	slog.Info("session: discovering languages", slog.String("video_id", id))

	_, err = cat.Discover(ctx, ref)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return c.staleLocked("discovery", id)
	}
	if err != nil {
		c.failLocked(err)
		return c.snapshotLocked(), err
	}
	c.status = LanguageReady
	slog.Info("session: languages ready",
		slog.String("video_id", id),
		slog.Int("options", len(cat.Options())),
		slog.String("selected", cat.Selected()),
	)
	return c.snapshotLocked(), nil
}

// SelectLanguage changes the transcript language. Only valid in LanguageReady.
func (c *Controller) SelectLanguage(code string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != LanguageReady {
		return c.snapshotLocked(), fmt.Errorf("%w: select language while %s", engine.ErrInvalidTransition, c.status)
	}
	if err := c.catalog.Select(code); err != nil {
		return c.snapshotLocked(), err
	}
	return c.snapshotLocked(), nil
}

// ConfirmProcessing asks the backend to process the video in the selected
// language and blocks until it finishes. Only valid in LanguageReady.
func (c *Controller) ConfirmProcessing(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.status != LanguageReady {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: confirm while %s", engine.ErrInvalidTransition, snap.Status)
	}
	c.status = Processing
	epoch := c.epoch
	id, ref := c.videoID, c.videoURL
	lang, translate := c.catalog.Selected(), c.catalog.TranslateToEnglish()
	c.mu.Unlock()

	slog.Info("session: processing",
		slog.String("video_id", id),
		slog.String("language", lang),
		slog.Bool("translate", translate),
	)
	_, err := c.backend.ProcessVideo(ctx, ref, lang, translate)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return c.staleLocked("processing", id)
	}
	if err != nil {
		if !errors.Is(err, engine.ErrProcessingFailed) {
			err = fmt.Errorf("%w: %w", engine.ErrProcessingFailed, err)
		}
		c.failLocked(err)
		return c.snapshotLocked(), err
	}
	c.status = Ready
	c.view = ViewChat
	slog.Info("session: ready", slog.String("video_id", id))
	return c.snapshotLocked(), nil
}

// Reset tears down the live session and returns to Unselected.
func (c *Controller) Reset(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.videoID
	c.teardownLocked(ctx)
	slog.Info("session: reset", slog.String("previous", prev))
	return c.snapshotLocked()
}

// Forget drops the live video from the backend's index, then resets the
// session. The session is left alone when the backend call fails.
func (c *Controller) Forget(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	id, epoch := c.videoID, c.epoch
	c.mu.Unlock()
	if id == "" {
		return c.Snapshot(), fmt.Errorf("%w: no video selected", engine.ErrNotReady)
	}

	if err := c.backend.Clear(ctx, id); err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return c.staleLocked("clear", id)
	}
	c.teardownLocked(ctx)
	slog.Info("session: video forgotten", slog.String("video_id", id))
	return c.snapshotLocked(), nil
}

// teardownLocked forgets the live session: its cached views and chat log
// are dropped and in-flight work becomes stale.
func (c *Controller) teardownLocked(ctx context.Context) {
	if prev := c.videoID; prev != "" {
		c.cache.Invalidate(prev)
		if err := c.log.Clear(ctx, prev); err != nil {
			slog.Warn("session: chat log clear failed", slog.String("video_id", prev), slog.Any("error", err))
		}
	}
	c.epoch++
	c.status = Unselected
	c.videoID = ""
	c.videoURL = ""
	c.catalog = catalog.New(c.backend)
	c.view = ""
	c.lastErr = nil
	c.asking = false
}

// failLocked moves to Failed and discards the session id.
func (c *Controller) failLocked(err error) {
	slog.Warn("session: failed", slog.String("video_id", c.videoID), slog.Any("error", err))
	engine.IncrSessionsFailed()
	c.status = Failed
	c.videoID = ""
	c.videoURL = ""
	c.catalog = catalog.New(c.backend)
	c.view = ""
	c.lastErr = err
}

func (c *Controller) staleLocked(op, id string) (Snapshot, error) {
	engine.IncrStaleDiscards()
	slog.Debug("session: stale result discarded", slog.String("op", op), slog.String("video_id", id))
	return c.snapshotLocked(), fmt.Errorf("%w: %s for %s", engine.ErrStaleSession, op, id)
}

// current reports whether epoch still names the live session.
func (c *Controller) current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch
}
