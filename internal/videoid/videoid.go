// Package videoid extracts canonical YouTube video ids from user input.
package videoid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// Link shapes, tried in order. The host must start the input or follow a
// scheme slash or subdomain dot, so lookalike hosts are rejected.
var linkREs = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[/.])youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})(?:[^a-zA-Z0-9_-]|$)`),
	regexp.MustCompile(`(?:^|[/.])youtu\.be/([a-zA-Z0-9_-]{11})(?:[^a-zA-Z0-9_-]|$)`),
	regexp.MustCompile(`(?:^|[/.])youtube\.com/(?:embed|v|shorts|live)/([a-zA-Z0-9_-]{11})(?:[^a-zA-Z0-9_-]|$)`),
}

var bareIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// Resolve returns the 11-character video id referenced by input, which may be
// a watch, short or embed link, or a bare id. Link shapes win over the bare
// id. Inputs matching neither fail with engine.ErrInvalidReference.
func Resolve(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", engine.ErrInvalidReference)
	}
	for _, re := range linkREs {
		if m := re.FindStringSubmatch(s); len(m) >= 2 {
			return m[1], nil
		}
	}
	if bareIDRE.MatchString(s) {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", engine.ErrInvalidReference, engine.TruncateRunes(s, 80, "…"))
}

// Valid reports whether id has the shape of a video id.
func Valid(id string) bool {
	return bareIDRE.MatchString(id)
}

// WatchURL returns the canonical watch link for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
