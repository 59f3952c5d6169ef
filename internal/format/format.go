// Package format turns raw AI output from the backend into display-ready text.
// All functions are pure.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

var (
	numberLineRE = regexp.MustCompile(`(?m)^[ \t]*\d+\.?[ \t]*$`)
	bulletRE     = regexp.MustCompile(`(?m)^[ \t]*[*-][ \t]+`)
	blankRunRE   = regexp.MustCompile(`\n{3,}`)
	numericRE    = regexp.MustCompile(`^\d+\.?$`)
)

var md = goldmark.New()

// CleanMarkdown drops lines holding only a number, turns "* " bullets into
// "• " and collapses runs of blank lines.
func CleanMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = numberLineRE.ReplaceAllString(s, "")
	s = bulletRE.ReplaceAllString(s, "• ")
	s = blankRunRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// PlainText renders markdown as plain text: emphasis markers and heading
// marks go, list items become "• item" or "N. item", blocks are separated
// by a blank line.
func PlainText(src string) string {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				sb.Write(node.URL(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := range lines.Len() {
					seg := lines.At(i)
					sb.Write(seg.Value(source))
				}
			}
		case *ast.ListItem:
			if entering {
				sb.WriteString(itemMarker(node))
			}
		}
		if !entering && n.Type() == ast.TypeBlock && n.NextSibling() != nil {
			if _, ok := n.(*ast.ListItem); ok {
				sb.WriteByte('\n')
			} else {
				sb.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func itemMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	idx := 0
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		idx++
	}
	return strconv.Itoa(list.Start+idx) + ". "
}

// Text cleans and renders one free-form summary field.
func Text(s string) string {
	return PlainText(CleanMarkdown(s))
}

// SplitItems regroups bullet output into one entry per item. A line starting
// with "*", "•" or "-" opens an item; other lines continue the open item.
// Empty and number-only lines are dropped.
func SplitItems(lines []string) []string {
	var (
		items []string
		cur   string
	)
	flush := func() {
		if cur = strings.TrimSpace(cur); cur != "" {
			items = append(items, PlainText(cur))
		}
		cur = ""
	}
	for _, chunk := range lines {
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || numericRE.MatchString(line) {
				continue
			}
			if body, ok := cutBullet(line); ok {
				flush()
				cur = body
				continue
			}
			if cur == "" {
				cur = line
			} else {
				cur += " " + line
			}
		}
	}
	flush()
	return items
}

func cutBullet(line string) (string, bool) {
	for _, m := range []string{"•", "-"} {
		if rest, ok := strings.CutPrefix(line, m); ok {
			return strings.TrimSpace(rest), true
		}
	}
	// "*" opens an item but "**bold**" does not.
	if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "**") {
		return strings.TrimSpace(line[1:]), true
	}
	return "", false
}

// Summary is a summary ready for display.
type Summary struct {
	Brief             string    `json:"brief"`
	Detailed          string    `json:"detailed"`
	KeyTakeaways      []string  `json:"key_takeaways"`
	TechnicalConcepts []string  `json:"technical_concepts"`
	GeneratedAt       time.Time `json:"generated_at,omitzero"`
}

// FormatSummary cleans every field of s.
func FormatSummary(s engine.Summary) Summary {
	out := Summary{
		Brief:             Text(s.BriefSummary),
		Detailed:          Text(s.DetailedSummary),
		KeyTakeaways:      SplitItems(s.KeyTakeaways),
		TechnicalConcepts: SplitItems(s.TechnicalConcepts),
	}
	if s.GeneratedAt > 0 {
		sec, frac := math.Modf(s.GeneratedAt)
		out.GeneratedAt = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return out
}

// Timestamp renders seconds as "m:ss", or "h:mm:ss" from one hour up.
// Negative values render as "0:00"; values past maxSeconds are capped.
func Timestamp(seconds float64) string {
	total := wholeSeconds(seconds)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// CitationURL deep-links into videoID at seconds.
func CitationURL(videoID string, seconds float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, wholeSeconds(seconds))
}

// maxSeconds caps citation times so the int conversion cannot overflow.
const maxSeconds = math.MaxInt32

func wholeSeconds(seconds float64) int {
	switch {
	case seconds <= 0 || math.IsNaN(seconds):
		return 0
	case seconds >= maxSeconds:
		return maxSeconds
	}
	return int(seconds)
}
