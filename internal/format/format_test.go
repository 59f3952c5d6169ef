package format

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bullets", "* one\n* two", "• one\n• two"},
		{"indented bullet", "  - nested", "• nested"},
		{"bold is not a bullet", "**Key** point", "**Key** point"},
		{"number lines dropped", "1\nIntro\n2.\nBody", "Intro\n\nBody"},
		{"blank runs collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"crlf", "a\r\n* b", "a\n• b"},
		{"trim", "\n\n  text  \n\n", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bold", "**Bold** move", "Bold move"},
		{"italic", "an *important* idea", "an important idea"},
		{"heading and paragraph", "# Title\n\nBody text", "Title\n\nBody text"},
		{"soft break kept", "line one\nline two", "line one\nline two"},
		{"bullet list", "- one\n- two", "• one\n• two"},
		{"ordered list", "1. first\n2. second", "1. first\n2. second"},
		{"ordered list start", "3. third\n4. fourth", "3. third\n4. fourth"},
		{"inline code", "use `go test`", "use go test"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	in := "**Overview**\n\n\n\n1\n* Goroutines are **cheap** to start\n* Channels sync"
	want := "Overview\n\n• Goroutines are cheap to start\n• Channels sync"
	if got := Text(in); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSplitItems(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "one bullet per line",
			in:   []string{"* First", "* Second", "", "3"},
			want: []string{"First", "Second"},
		},
		{
			name: "continuation lines join the open item",
			in:   []string{"* Goroutines are", "cheap to start", "• Channels **connect** them"},
			want: []string{"Goroutines are cheap to start", "Channels connect them"},
		},
		{
			name: "text before first bullet is its own item",
			in:   []string{"Here are the takeaways:", "- one", "- two"},
			want: []string{"Here are the takeaways:", "one", "two"},
		},
		{
			name: "embedded newlines",
			in:   []string{"* a\n* b\n\n12\n"},
			want: []string{"a", "b"},
		},
		{
			name: "bold line does not open an item",
			in:   []string{"* Topic", "**Note** continues"},
			want: []string{"Topic Note continues"},
		},
		{
			name: "nothing",
			in:   []string{"", "  ", "7"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitItems(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("SplitItems(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(engine.Summary{
		BriefSummary:      "A **short** intro.",
		DetailedSummary:   "Para one.\n\n\n\nPara two.",
		KeyTakeaways:      []string{"* Use contexts", "* Close channels", ""},
		TechnicalConcepts: []string{"1", "* goroutine", "* select"},
		GeneratedAt:       1700000000.5,
	})
	if got.Brief != "A short intro." {
		t.Errorf("Brief = %q", got.Brief)
	}
	if got.Detailed != "Para one.\n\nPara two." {
		t.Errorf("Detailed = %q", got.Detailed)
	}
	if want := []string{"Use contexts", "Close channels"}; !slices.Equal(got.KeyTakeaways, want) {
		t.Errorf("KeyTakeaways = %q, want %q", got.KeyTakeaways, want)
	}
	if want := []string{"goroutine", "select"}; !slices.Equal(got.TechnicalConcepts, want) {
		t.Errorf("TechnicalConcepts = %q, want %q", got.TechnicalConcepts, want)
	}
	if want := time.Unix(1700000000, 500000000).UTC(); !got.GeneratedAt.Equal(want) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, want)
	}
}

func TestFormatSummaryZeroTime(t *testing.T) {
	if got := FormatSummary(engine.Summary{}).GeneratedAt; !got.IsZero() {
		t.Errorf("GeneratedAt = %v, want zero", got)
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{65.9, "1:05"},
		{599, "9:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-12, "0:00"},
		{math.NaN(), "0:00"},
		{1e20, "596523:14:07"},
		{math.Inf(1), "596523:14:07"},
		{math.Inf(-1), "0:00"},
	}
	for _, tt := range tests {
		if got := Timestamp(tt.in); got != tt.want {
			t.Errorf("Timestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCitationURL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{125.7, "https://www.youtube.com/watch?v=abc12345678&t=125s"},
		{-3, "https://www.youtube.com/watch?v=abc12345678&t=0s"},
		{1e20, "https://www.youtube.com/watch?v=abc12345678&t=2147483647s"},
		{math.Inf(1), "https://www.youtube.com/watch?v=abc12345678&t=2147483647s"},
	}
	for _, tt := range tests {
		if got := CitationURL("abc12345678", tt.in); got != tt.want {
			t.Errorf("CitationURL(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
