package tubeserver

import (
	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/session"
	"github.com/anatolykoptev/go_tubechat/internal/toolutil"
)

// VideoSubmitInput is the input for video_submit.
type VideoSubmitInput struct {
	URL string `json:"url" jsonschema:"YouTube watch, short or embed link, or a bare 11-character video id"`
}

// SelectLanguageInput is the input for video_select_language.
type SelectLanguageInput struct {
	LanguageCode string `json:"language_code" jsonschema:"language code from the transcripts list, e.g. en"`
}

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// StatusInput is the input for video_status.
type StatusInput struct {
	CheckBackend bool `json:"check_backend,omitempty" jsonschema:"also ask the backend whether the video is indexed"`
}

// StatusOutput is the output of video_status.
type StatusOutput struct {
	Session session.Snapshot    `json:"session"`
	Backend *engine.VideoStatus `json:"backend,omitempty"`
}

// SelectViewInput is the input for view_select.
type SelectViewInput struct {
	View string `json:"view" jsonschema:"one of chat, analytics, sentiment, summary, search"`
}

// AnalyticsOutput is the output of view_analytics.
type AnalyticsOutput struct {
	Video     engine.VideoAnalytics `json:"video"`
	Dashboard engine.Dashboard      `json:"dashboard"`
}

// SummaryOutput is the output of view_summary.
type SummaryOutput struct {
	Brief             string           `json:"brief"`
	Detailed          string           `json:"detailed"`
	KeyTakeaways      []string         `json:"key_takeaways,omitempty"`
	TechnicalConcepts []string         `json:"technical_concepts,omitempty"`
	GeneratedAt       string           `json:"generated_at,omitempty"`
	Sentiment         engine.Sentiment `json:"sentiment"`
}

// SearchInput is the input for view_search.
type SearchInput struct {
	Query    string   `json:"query" jsonschema:"question to ask across processed videos"`
	VideoIDs []string `json:"video_ids,omitempty" jsonschema:"restrict the search to these video ids; empty searches all"`
}

// ExportOutput is the output of video_export.
type ExportOutput struct {
	VideoID string         `json:"video_id"`
	Data    map[string]any `json:"data"`
}

// AskInput is the input for chat_ask.
type AskInput struct {
	Question string `json:"question" jsonschema:"question about the processed video"`
}

// AskOutput is the output of chat_ask.
type AskOutput struct {
	Question toolutil.Turn `json:"question"`
	Answer   toolutil.Turn `json:"answer"`
}

// HistoryOutput is the output of chat_history.
type HistoryOutput struct {
	VideoID string          `json:"video_id"`
	Turns   []toolutil.Turn `json:"turns"`
	Total   int             `json:"total"`
}
