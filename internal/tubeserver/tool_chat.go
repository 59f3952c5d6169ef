package tubeserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubechat/internal/session"
	"github.com/anatolykoptev/go_tubechat/internal/toolutil"
	"github.com/anatolykoptev/go_tubechat/internal/viewcache"
)

func registerAsk(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat_ask",
		Description: "Ask a question about the processed video. The answer cites the spans it drew from, each with a timestamp and a link that opens the video at that moment. One question at a time; the exchange is kept in the chat history.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, *AskOutput, error) {
		if err := toolutil.Required("question", input.Question); err != nil {
			return nil, nil, err
		}
		ex, err := ctl.Ask(ctx, input.Question)
		if err != nil {
			return nil, nil, err
		}
		id := ctl.Snapshot().VideoID
		return nil, &AskOutput{
			Question: toolutil.TurnOf(id, ex.Question),
			Answer:   toolutil.TurnOf(id, ex.Answer),
		}, nil
	})
}

func registerHistory(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat_history",
		Description: "The chat history of the processed video in order, including failed answers.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *HistoryOutput, error) {
		turns, err := ctl.History(ctx)
		if err != nil {
			return nil, nil, err
		}
		id := ctl.Snapshot().VideoID
		return nil, &HistoryOutput{VideoID: id, Turns: toolutil.Turns(id, turns), Total: len(turns)}, nil
	})
}

func registerCacheStats(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "View cache counters: hits, misses and callers that joined an in-flight fetch.",
		Annotations: readOnly,
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *viewcache.Stats, error) {
		st := ctl.CacheStats()
		return nil, &st, nil
	})
}
