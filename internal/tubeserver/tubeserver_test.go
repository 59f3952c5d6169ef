package tubeserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tubechat/internal/backend"
	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/kvstore"
	"github.com/anatolykoptev/go_tubechat/internal/session"
)

const videoID = "dQw4w9WgXcQ"

type fakeAPI struct {
	summaryCalls atomic.Int32
	clearCalls   atomic.Int32
	failChat     atomic.Bool
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcripts", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"success": true, "available_transcripts": []map[string]any{
			{"language_code": "de", "language": "German", "is_generated": true, "is_translatable": true},
			{"language_code": "en", "language": "English", "is_generated": false, "is_translatable": true},
		}})
	})
	mux.HandleFunc("POST /api/process", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"success": true, "video_id": videoID, "message": "ok"})
	})
	mux.HandleFunc("POST /api/chat/timestamps", func(w http.ResponseWriter, _ *http.Request) {
		if f.failChat.Load() {
			http.Error(w, `{"detail":"model offline"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"answer":     "It is about **never** giving up.",
			"video_id":   videoID,
			"timestamps": []map[string]any{{"start_time": 43.2, "end_time": 50, "text_segment": "never gonna give you up"}},
		})
	})
	mux.HandleFunc("GET /api/summary/{id}", func(w http.ResponseWriter, _ *http.Request) {
		f.summaryCalls.Add(1)
		writeJSON(w, map[string]any{
			"brief_summary":      "A **song**.",
			"detailed_summary":   "Long form.",
			"key_takeaways":      []string{"- loyalty\n- honesty"},
			"technical_concepts": []string{},
			"generated_at":       1700000000,
		})
	})
	mux.HandleFunc("GET /api/sentiment/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"overall_sentiment": "positive", "emotional_tone": []string{"upbeat"}, "confidence_score": 0.9})
	})
	mux.HandleFunc("GET /api/export/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"video_id": r.PathValue("id"), "chunks": 3})
	})
	mux.HandleFunc("GET /api/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"video_id": r.PathValue("id"), "is_ready": true, "message": "ready"})
	})
	mux.HandleFunc("DELETE /api/clear/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.clearCalls.Add(1)
		writeJSON(w, map[string]any{"message": "Video " + r.PathValue("id") + " cleared from memory"})
	})
	return mux
}

func connect(t *testing.T) (*mcp.ClientSession, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	ctl := session.New(backend.New(srv.URL, backend.Options{}), chatlog.New(kvstore.NewMemory()))
	server := mcp.NewServer(&mcp.Implementation{Name: "go_tubechat", Version: "test"}, nil)
	RegisterTools(server, ctl)

	ctx := context.Background()
	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, api
}

// call invokes a tool and decodes its structured output into out.
func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		b, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, out))
	}
	return res
}

func errorText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRegisterToolsCount(t *testing.T) {
	cs, _ := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Tools, ToolCount)
}

func TestSessionLifecycleOverMCP(t *testing.T) {
	cs, api := connect(t)

	var snap session.Snapshot
	res := call(t, cs, "video_submit", map[string]any{"url": "https://youtu.be/" + videoID}, &snap)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, videoID, snap.VideoID)
	assert.Equal(t, session.LanguageReady, snap.Status)
	assert.Equal(t, "en", snap.SelectedLanguage)
	assert.Len(t, snap.Transcripts, 2)

	res = call(t, cs, "video_select_language", map[string]any{"language_code": "de"}, &snap)
	require.False(t, res.IsError, errorText(res))
	assert.True(t, snap.TranslateToEN)

	res = call(t, cs, "video_confirm", nil, &snap)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, session.Ready, snap.Status)

	var sum SummaryOutput
	res = call(t, cs, "view_summary", nil, &sum)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, "A song.", sum.Brief)
	assert.Equal(t, []string{"loyalty", "honesty"}, sum.KeyTakeaways)
	assert.Equal(t, "2023-11-14T22:13:20Z", sum.GeneratedAt)
	assert.Equal(t, "positive", sum.Sentiment.OverallSentiment)

	call(t, cs, "view_summary", nil, &sum)
	assert.EqualValues(t, 1, api.summaryCalls.Load())

	var exp ExportOutput
	res = call(t, cs, "video_export", nil, &exp)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, videoID, exp.VideoID)
	assert.EqualValues(t, 3, exp.Data["chunks"])

	var status StatusOutput
	res = call(t, cs, "video_status", map[string]any{"check_backend": true}, &status)
	require.False(t, res.IsError, errorText(res))
	require.NotNil(t, status.Backend)
	assert.True(t, status.Backend.IsReady)

	res = call(t, cs, "video_reset", nil, &snap)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, session.Unselected, snap.Status)
	assert.Empty(t, snap.VideoID)
}

func TestChatOverMCP(t *testing.T) {
	cs, api := connect(t)
	call(t, cs, "video_submit", map[string]any{"url": videoID}, nil)
	call(t, cs, "video_confirm", nil, nil)

	var ask AskOutput
	res := call(t, cs, "chat_ask", map[string]any{"question": "What is it about?"}, &ask)
	require.False(t, res.IsError, errorText(res))
	assert.Equal(t, "user", ask.Question.Role)
	assert.Equal(t, "assistant", ask.Answer.Role)
	require.Len(t, ask.Answer.Citations, 1)
	assert.Equal(t, "0:43", ask.Answer.Citations[0].Timestamp)
	assert.Equal(t, "https://www.youtube.com/watch?v="+videoID+"&t=43s", ask.Answer.Citations[0].URL)

	api.failChat.Store(true)
	res = call(t, cs, "chat_ask", map[string]any{"question": "And then?"}, nil)
	assert.True(t, res.IsError)

	var hist HistoryOutput
	res = call(t, cs, "chat_history", nil, &hist)
	require.False(t, res.IsError, errorText(res))
	require.Equal(t, 4, hist.Total)
	assert.True(t, hist.Turns[3].Failed)
	assert.Equal(t, session.FailedAnswerText, hist.Turns[3].Text)
}

func TestToolErrors(t *testing.T) {
	cs, _ := connect(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"blank url", "video_submit", map[string]any{"url": "  "}, "url is required"},
		{"bad url", "video_submit", map[string]any{"url": "https://example.com/x"}, "invalid"},
		{"views before ready", "view_sentiment", nil, "no processed video"},
		{"chat before ready", "chat_ask", map[string]any{"question": "hi"}, "no processed video"},
		{"blank search", "view_search", map[string]any{"query": ""}, "query is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, cs, tt.tool, tt.args, nil)
			require.True(t, res.IsError)
			assert.Contains(t, errorText(res), tt.want)
		})
	}
}

func TestForgetOverMCP(t *testing.T) {
	cs, api := connect(t)
	call(t, cs, "video_submit", map[string]any{"url": videoID}, nil)
	call(t, cs, "video_confirm", nil, nil)

	var snap session.Snapshot
	res := call(t, cs, "video_forget", nil, &snap)
	if res.IsError {
		t.Fatalf("video_forget: %s", errorText(res))
	}
	if snap.Status != session.Unselected {
		t.Errorf("status = %s, want %s", snap.Status, session.Unselected)
	}
	if got := api.clearCalls.Load(); got != 1 {
		t.Errorf("clear calls = %d, want 1", got)
	}

	res = call(t, cs, "video_forget", nil, nil)
	if !res.IsError {
		t.Error("video_forget without a video should fail")
	}
}
