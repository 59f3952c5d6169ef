package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgent identifies the orchestrator to the backend.
const UserAgent = "go_tubechat/1.0"

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	if limit <= 0 {
		return s
	}
	return strutil.TruncateWith(s, limit, suffix)
}

// CollapseSpace folds runs of whitespace into single spaces and trims the result.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
