// Package toolutil provides shared helper functions for go_tubechat MCP tools:
// argument checks and conversions from domain types to tool output shapes.
package toolutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/format"
)

// Required returns an error naming field when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Citation is a citation with a display label and a deep link.
type Citation struct {
	Timestamp        string  `json:"timestamp"`
	StartTimeSeconds float64 `json:"start_time_seconds"`
	EndTimeSeconds   float64 `json:"end_time_seconds,omitempty"`
	URL              string  `json:"url"`
	Excerpt          string  `json:"excerpt"`
}

// Turn is a chat turn as returned by tools.
type Turn struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"created_at"`
	Failed    bool       `json:"failed,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// Citations labels and links cites for videoID. Excerpts are capped at
// engine.Cfg.ExcerptRunes.
func Citations(videoID string, cites []engine.Citation) []Citation {
	if len(cites) == 0 {
		return nil
	}
	out := make([]Citation, 0, len(cites))
	for _, c := range cites {
		out = append(out, Citation{
			Timestamp:        format.Timestamp(c.StartTimeSeconds),
			StartTimeSeconds: c.StartTimeSeconds,
			EndTimeSeconds:   c.EndTimeSeconds,
			URL:              format.CitationURL(videoID, c.StartTimeSeconds),
			Excerpt:          engine.TruncateRunes(engine.CollapseSpace(c.Excerpt), engine.Cfg.ExcerptRunes, "…"),
		})
	}
	return out
}

// TurnOf converts a chat log turn.
func TurnOf(videoID string, t chatlog.Turn) Turn {
	return Turn{
		ID:        t.ID,
		Role:      string(t.Role),
		Text:      t.Text,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		Failed:    t.Failed,
		Citations: Citations(videoID, t.Citations),
	}
}

// Turns converts a chat log sequence.
func Turns(videoID string, ts []chatlog.Turn) []Turn {
	out := make([]Turn, 0, len(ts))
	for _, t := range ts {
		out = append(out, TurnOf(videoID, t))
	}
	return out
}

// Object decodes a raw JSON document into a generic object. Non-object
// documents are wrapped under "value".
func Object(raw json.RawMessage) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"value": v}, nil
}
