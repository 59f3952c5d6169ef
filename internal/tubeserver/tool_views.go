package tubeserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
	"github.com/anatolykoptev/go_tubechat/internal/session"
	"github.com/anatolykoptev/go_tubechat/internal/toolutil"
)

var readOnly = &mcp.ToolAnnotations{ReadOnlyHint: true}

func registerSelectView(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_select",
		Description: "Switch the active panel of a ready session: chat, analytics, sentiment, summary or search. Data is fetched lazily by the matching view_* tool.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SelectViewInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		if err := toolutil.Required("view", input.View); err != nil {
			return nil, nil, err
		}
		snap, err := ctl.SelectView(session.View(input.View))
		if err != nil {
			return nil, nil, err
		}
		return nil, &snap, nil
	})
}

func registerAnalytics(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_analytics",
		Description: "Analytics for the processed video (word count, chunks, processing time, questions asked) together with the cross-video dashboard. Cached per session.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *AnalyticsOutput, error) {
		video, err := ctl.VideoAnalytics(ctx)
		if err != nil {
			return nil, nil, err
		}
		dash, err := ctl.Analytics(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, &AnalyticsOutput{Video: video, Dashboard: dash}, nil
	})
}

func registerSentiment(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_sentiment",
		Description: "Overall sentiment, emotional tone and word analysis of the processed video. Cached per session.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *engine.Sentiment, error) {
		s, err := ctl.Sentiment(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, &s, nil
	})
}

func registerSummary(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_summary",
		Description: "AI summary of the processed video as plain text: brief and detailed summary, key takeaways and technical concepts, plus the sentiment verdict. Cached per session.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *SummaryOutput, error) {
		v, err := ctl.Summary(ctx)
		if err != nil {
			return nil, nil, err
		}
		out := &SummaryOutput{
			Brief:             v.Summary.Brief,
			Detailed:          v.Summary.Detailed,
			KeyTakeaways:      v.Summary.KeyTakeaways,
			TechnicalConcepts: v.Summary.TechnicalConcepts,
			Sentiment:         v.Sentiment,
		}
		if !v.Summary.GeneratedAt.IsZero() {
			out.GeneratedAt = v.Summary.GeneratedAt.UTC().Format(time.RFC3339)
		}
		return nil, out, nil
	})
}

func registerVideos(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_videos",
		Description: "List every video id the backend has processed. Useful for restricting view_search.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *engine.VideoList, error) {
		list, err := ctl.ProcessedVideos(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, &list, nil
	})
}

func registerSearch(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_search",
		Description: "Ask one question across processed videos. Returns each video's answer ranked by confidence. Not cached.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, *engine.SearchResult, error) {
		if err := toolutil.Required("query", input.Query); err != nil {
			return nil, nil, err
		}
		res, err := ctl.Search(ctx, input.Query, input.VideoIDs)
		if err != nil {
			return nil, nil, err
		}
		return nil, &res, nil
	})
}

func registerExport(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_export",
		Description: "Export everything the backend knows about the processed video as a JSON document. Cached per session.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *ExportOutput, error) {
		raw, err := ctl.Export(ctx)
		if err != nil {
			return nil, nil, err
		}
		data, err := toolutil.Object(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("export: %w", err)
		}
		return nil, &ExportOutput{VideoID: ctl.Snapshot().VideoID, Data: data}, nil
	})
}
