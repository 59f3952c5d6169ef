package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/kvstore"
)

type processArgs struct {
	ref       string
	lang      string
	translate bool
}

// fakeBackend records calls and can fail or block any operation.
type fakeBackend struct {
	mu          sync.Mutex
	calls       map[string]int
	errs        map[string]error
	gates       map[string]chan struct{}
	started     chan string
	options     []engine.TranscriptOption
	lastProcess processArgs
	answer      engine.ChatAnswer
}

func newFakeBackend(opts ...engine.TranscriptOption) *fakeBackend {
	return &fakeBackend{
		calls:   make(map[string]int),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 64),
		options: opts,
		answer: engine.ChatAnswer{
			Answer:    "Goroutines are multiplexed onto threads.",
			Citations: []engine.Citation{{StartTimeSeconds: 42, EndTimeSeconds: 55, Label: "0:42", Excerpt: "the scheduler"}},
		},
	}
}

func (f *fakeBackend) fail(op string, err error) {
	f.mu.Lock()
	f.errs[op] = err
	f.mu.Unlock()
}

// block makes op wait until the returned func is called.
func (f *fakeBackend) block(op string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[op] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, op)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// drain forgets start events recorded so far.
func (f *fakeBackend) drain() {
	for {
		select {
		case <-f.started:
		default:
			return
		}
	}
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate := f.gates[op]
	err := f.errs[op]
	f.mu.Unlock()

	select {
	case f.started <- op:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeBackend) DiscoverTranscripts(ctx context.Context, _ string) ([]engine.TranscriptOption, error) {
	if err := f.enter(ctx, "discover"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options, nil
}

func (f *fakeBackend) ProcessVideo(ctx context.Context, ref, lang string, translate bool) (engine.ProcessResult, error) {
	f.mu.Lock()
	f.lastProcess = processArgs{ref, lang, translate}
	f.mu.Unlock()
	if err := f.enter(ctx, "process"); err != nil {
		return engine.ProcessResult{}, err
	}
	return engine.ProcessResult{Success: true, Message: "ready"}, nil
}

func (f *fakeBackend) Ask(ctx context.Context, videoID, question string) (engine.ChatAnswer, error) {
	if err := f.enter(ctx, "ask"); err != nil {
		return engine.ChatAnswer{}, err
	}
	a := f.answer
	a.VideoID, a.Question = videoID, question
	return a, nil
}

func (f *fakeBackend) Dashboard(ctx context.Context) (engine.Dashboard, error) {
	if err := f.enter(ctx, "dashboard"); err != nil {
		return engine.Dashboard{}, err
	}
	return engine.Dashboard{TotalVideos: 1}, nil
}

func (f *fakeBackend) VideoAnalytics(ctx context.Context, id string) (engine.VideoAnalytics, error) {
	if err := f.enter(ctx, "analytics"); err != nil {
		return engine.VideoAnalytics{}, err
	}
	return engine.VideoAnalytics{VideoStats: engine.VideoStats{VideoID: id, ChunkCount: 9}}, nil
}

func (f *fakeBackend) Sentiment(ctx context.Context, _ string) (engine.Sentiment, error) {
	if err := f.enter(ctx, "sentiment"); err != nil {
		return engine.Sentiment{}, err
	}
	return engine.Sentiment{OverallSentiment: "positive", ConfidenceScore: 0.8}, nil
}

func (f *fakeBackend) Summary(ctx context.Context, _ string) (engine.Summary, error) {
	if err := f.enter(ctx, "summary"); err != nil {
		return engine.Summary{}, err
	}
	return engine.Summary{
		BriefSummary: "A **quick** tour.",
		KeyTakeaways: []string{"* one", "* two"},
	}, nil
}

func (f *fakeBackend) Search(ctx context.Context, query string, _ []string) (engine.SearchResult, error) {
	if err := f.enter(ctx, "search"); err != nil {
		return engine.SearchResult{}, err
	}
	return engine.SearchResult{Results: []engine.SearchHit{{VideoID: "abc12345678", Answer: query, Confidence: 0.8}}, TotalVideosSearched: 1}, nil
}

func (f *fakeBackend) Videos(ctx context.Context) (engine.VideoList, error) {
	if err := f.enter(ctx, "videos"); err != nil {
		return engine.VideoList{}, err
	}
	return engine.VideoList{ProcessedVideos: []string{"abc12345678"}, TotalCount: 1}, nil
}

func (f *fakeBackend) Export(ctx context.Context, id string) (engine.Export, error) {
	if err := f.enter(ctx, "export"); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"video_id":"` + id + `"}`), nil
}

func (f *fakeBackend) Status(ctx context.Context, id string) (engine.VideoStatus, error) {
	if err := f.enter(ctx, "status"); err != nil {
		return engine.VideoStatus{}, err
	}
	return engine.VideoStatus{VideoID: id, IsReady: true}, nil
}

func (f *fakeBackend) Clear(ctx context.Context, _ string) error {
	return f.enter(ctx, "clear")
}

var (
	optEN = engine.TranscriptOption{LanguageCode: "en", LanguageName: "English", IsGenerated: false}
	optFR = engine.TranscriptOption{LanguageCode: "fr", LanguageName: "French", IsGenerated: true}
)

const (
	videoA = "abc12345678"
	videoB = "dQw4w9WgXcQ"
	urlA   = "https://www.youtube.com/watch?v=abc12345678"
	urlB   = "https://youtu.be/dQw4w9WgXcQ"
)

func newTestController(b *fakeBackend) (*Controller, kvstore.Store) {
	store := kvstore.NewMemory()
	return New(b, chatlog.New(store)), store
}
