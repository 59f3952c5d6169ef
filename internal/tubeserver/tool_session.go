package tubeserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubechat/internal/session"
	"github.com/anatolykoptev/go_tubechat/internal/toolutil"
)

func registerVideoSubmit(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_submit",
		Description: "Start a session for a YouTube video. Accepts watch, youtu.be, shorts and embed links or a bare video id. Replaces any current session (its cached views and chat history are dropped) and lists the available transcript languages, auto-selecting English when offered.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoSubmitInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		snap, err := ctl.SubmitURL(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, &snap, nil
	})
}

func registerSelectLanguage(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_select_language",
		Description: "Choose the transcript language before processing. Only valid after video_submit succeeded and before video_confirm. Non-English transcripts are translated to English by the backend.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SelectLanguageInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		if err := toolutil.Required("language_code", input.LanguageCode); err != nil {
			return nil, nil, err
		}
		snap, err := ctl.SelectLanguage(input.LanguageCode)
		if err != nil {
			return nil, nil, err
		}
		return nil, &snap, nil
	})
}

func registerConfirm(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_confirm",
		Description: "Process the video with the selected transcript language. Blocks until the backend has indexed it; the session is then ready for views and chat. On failure the session is discarded and video_submit must be called again.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		snap, err := ctl.ConfirmProcessing(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, &snap, nil
	})
}

func registerReset(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_reset",
		Description: "End the current session. Cached views and chat history of the video are cleared.",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		snap := ctl.Reset(ctx)
		return nil, &snap, nil
	})
}

func registerStatus(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_status",
		Description: "Show the current session: video id, lifecycle status, transcript languages, selected language, active view and last error. Set check_backend to also ask the backend whether the video is indexed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, *StatusOutput, error) {
		out := &StatusOutput{Session: ctl.Snapshot()}
		if input.CheckBackend {
			st, err := ctl.BackendStatus(ctx)
			if err != nil {
				return nil, nil, err
			}
			out.Backend = &st
		}
		return nil, out, nil
	})
}

func registerForget(server *mcp.Server, ctl *session.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_forget",
		Description: "Remove the current video from the backend index, then end the session like video_reset. The video must be processed again before it can be searched or chatted with.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *session.Snapshot, error) {
		snap, err := ctl.Forget(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, &snap, nil
	})
}

func ptr[T any](v T) *T { return &v }
