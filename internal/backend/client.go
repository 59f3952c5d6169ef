// Package backend is the HTTP client for the RAG backend that discovers
// transcripts, processes videos and answers questions about them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// Client talks to the backend JSON API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures a Client. Zero values pick defaults.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration // ignored when HTTPClient is set
	RPS        float64       // 0 = unlimited
	Burst      int
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// do sends a request and decodes a 2xx JSON body into out (if non-nil).
// Non-2xx responses become *engine.StatusError carrying the backend's detail.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", engine.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	engine.IncrBackendCalls()
	resp, err := c.http.Do(req)
	if err != nil {
		engine.IncrBackendErrors()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		engine.IncrBackendErrors()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &engine.StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		engine.IncrBackendErrors()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// errorDetail extracts the "detail" field of an error body, falling back to
// the raw text.
func errorDetail(b []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &e); err == nil && len(e.Detail) > 0 {
		var s string
		if json.Unmarshal(e.Detail, &s) == nil {
			return s
		}
		return string(e.Detail)
	}
	return engine.TruncateRunes(strings.TrimSpace(string(b)), 300, "…")
}

// fail wraps err with the operation's taxonomy error.
func fail(kind error, op string, err error) error {
	slog.Debug("backend: call failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// DiscoverTranscripts lists the transcripts available for videoRef.
func (c *Client) DiscoverTranscripts(ctx context.Context, videoRef string) ([]engine.TranscriptOption, error) {
	var out struct {
		Success     bool                      `json:"success"`
		VideoID     string                    `json:"video_id"`
		Transcripts []engine.TranscriptOption `json:"available_transcripts"`
	}
	err := c.do(ctx, http.MethodPost, "/api/transcripts", map[string]string{"video_url": videoRef}, &out)
	if err != nil {
		return nil, fail(engine.ErrDiscoveryFailed, "transcripts", err)
	}
	if !out.Success {
		return nil, fail(engine.ErrDiscoveryFailed, "transcripts", errors.New("backend reported failure"))
	}
	return out.Transcripts, nil
}

// ProcessVideo asks the backend to index videoRef in languageCode, optionally
// translating the transcript to English. It blocks until processing ends.
func (c *Client) ProcessVideo(ctx context.Context, videoRef, languageCode string, translateToEnglish bool) (engine.ProcessResult, error) {
	body := map[string]any{
		"video_url":            videoRef,
		"language_code":        languageCode,
		"translate_to_english": translateToEnglish,
	}
	var out engine.ProcessResult
	err := engine.TrackOperation(ctx, "backend.process", time.Minute, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/api/process", body, &out)
	})
	if err != nil {
		return engine.ProcessResult{}, fail(engine.ErrProcessingFailed, "process", err)
	}
	if !out.Success {
		return out, fail(engine.ErrProcessingFailed, "process", errors.New(out.Message))
	}
	return out, nil
}

// Ask sends question about videoID to the chat endpoint.
func (c *Client) Ask(ctx context.Context, videoID, question string) (engine.ChatAnswer, error) {
	body := map[string]string{"video_id": videoID, "question": question}
	var out engine.ChatAnswer
	if err := c.do(ctx, http.MethodPost, "/api/chat/timestamps", body, &out); err != nil {
		return engine.ChatAnswer{}, fail(engine.ErrFetchFailed, "chat", err)
	}
	return out, nil
}

// Dashboard returns aggregate analytics over every processed video.
func (c *Client) Dashboard(ctx context.Context) (engine.Dashboard, error) {
	var out engine.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out); err != nil {
		return engine.Dashboard{}, fail(engine.ErrFetchFailed, "dashboard", err)
	}
	return out, nil
}

// VideoAnalytics returns processing and interaction stats for videoID.
func (c *Client) VideoAnalytics(ctx context.Context, videoID string) (engine.VideoAnalytics, error) {
	var out engine.VideoAnalytics
	if err := c.do(ctx, http.MethodGet, "/api/analytics/"+url.PathEscape(videoID), nil, &out); err != nil {
		return engine.VideoAnalytics{}, fail(engine.ErrFetchFailed, "analytics", err)
	}
	return out, nil
}

// Sentiment returns the tone analysis of videoID.
func (c *Client) Sentiment(ctx context.Context, videoID string) (engine.Sentiment, error) {
	var out engine.Sentiment
	if err := c.do(ctx, http.MethodGet, "/api/sentiment/"+url.PathEscape(videoID), nil, &out); err != nil {
		return engine.Sentiment{}, fail(engine.ErrFetchFailed, "sentiment", err)
	}
	return out, nil
}

// Summary returns the AI summary of videoID.
func (c *Client) Summary(ctx context.Context, videoID string) (engine.Summary, error) {
	var out engine.Summary
	if err := c.do(ctx, http.MethodGet, "/api/summary/"+url.PathEscape(videoID), nil, &out); err != nil {
		return engine.Summary{}, fail(engine.ErrFetchFailed, "summary", err)
	}
	return out, nil
}

// Search asks query across videoIDs, or across every processed video when
// videoIDs is empty.
func (c *Client) Search(ctx context.Context, query string, videoIDs []string) (engine.SearchResult, error) {
	body := map[string]any{"query": query}
	if len(videoIDs) > 0 {
		body["video_ids"] = videoIDs
	}
	var out engine.SearchResult
	if err := c.do(ctx, http.MethodPost, "/api/search", body, &out); err != nil {
		return engine.SearchResult{}, fail(engine.ErrFetchFailed, "search", err)
	}
	return out, nil
}

// Videos lists the ids of every processed video.
func (c *Client) Videos(ctx context.Context) (engine.VideoList, error) {
	var out engine.VideoList
	if err := c.do(ctx, http.MethodGet, "/api/videos", nil, &out); err != nil {
		return engine.VideoList{}, fail(engine.ErrFetchFailed, "videos", err)
	}
	return out, nil
}

// Export returns the backend's export document for videoID.
func (c *Client) Export(ctx context.Context, videoID string) (engine.Export, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/export/"+url.PathEscape(videoID), nil, &out); err != nil {
		return nil, fail(engine.ErrFetchFailed, "export", err)
	}
	return out, nil
}

// Status reports whether videoID is processed and ready for questions.
func (c *Client) Status(ctx context.Context, videoID string) (engine.VideoStatus, error) {
	var out engine.VideoStatus
	if err := c.do(ctx, http.MethodGet, "/api/status/"+url.PathEscape(videoID), nil, &out); err != nil {
		return engine.VideoStatus{}, fail(engine.ErrFetchFailed, "status", err)
	}
	return out, nil
}

// Clear drops videoID from the backend's index. A video the backend does
// not know is already cleared.
func (c *Client) Clear(ctx context.Context, videoID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/clear/"+url.PathEscape(videoID), nil, nil)
	var se *engine.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fail(engine.ErrFetchFailed, "clear", err)
	}
	return nil
}

// Health pings the backend root.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// WaitReady polls Health with backoff until the backend answers or rc is
// exhausted.
func (c *Client) WaitReady(ctx context.Context, rc engine.RetryConfig) error {
	_, err := engine.RetryDo(ctx, rc, func() (struct{}, error) {
		return struct{}{}, c.Health(ctx)
	})
	if err != nil {
		return fmt.Errorf("backend %s not ready: %w", c.baseURL, err)
	}
	return nil
}
