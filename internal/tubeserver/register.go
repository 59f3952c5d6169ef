// Package tubeserver exposes the session controller as MCP tools.
package tubeserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubechat/internal/session"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 16

// RegisterTools registers the session, view and chat tools on server, all
// backed by ctl.
func RegisterTools(server *mcp.Server, ctl *session.Controller) {
	registerVideoSubmit(server, ctl)
	registerSelectLanguage(server, ctl)
	registerConfirm(server, ctl)
	registerReset(server, ctl)
	registerStatus(server, ctl)
	registerForget(server, ctl)

	registerSelectView(server, ctl)
	registerAnalytics(server, ctl)
	registerSentiment(server, ctl)
	registerSummary(server, ctl)
	registerVideos(server, ctl)
	registerSearch(server, ctl)
	registerExport(server, ctl)

	registerAsk(server, ctl)
	registerHistory(server, ctl)
	registerCacheStats(server, ctl)
}
