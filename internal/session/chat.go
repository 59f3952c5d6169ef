package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_tubechat/internal/chatlog"
	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// FailedAnswerText stands in for the answer when the backend call fails.
const FailedAnswerText = "Sorry, I encountered an error while processing your question. Please try again."

// Exchange is one question and the turn that resolved it.
type Exchange struct {
	Question chatlog.Turn `json:"question"`
	Answer   chatlog.Turn `json:"answer"`
}

// Ask appends question to the chat log, asks the backend and appends the
// answer. Only one question may be outstanding; a second fails with
// engine.ErrChatBusy. A failed backend call still resolves the question with
// a failure turn and returns the error.
func (c *Controller) Ask(ctx context.Context, question string) (Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Exchange{}, errors.New("question is required")
	}

	c.mu.Lock()
	if c.status != Ready {
		st := c.status
		c.mu.Unlock()
		return Exchange{}, fmt.Errorf("%w: session is %s", engine.ErrNotReady, st)
	}
	if c.asking {
		c.mu.Unlock()
		return Exchange{}, engine.ErrChatBusy
	}
	c.asking = true
	id, epoch := c.videoID, c.epoch
	q := chatlog.NewTurn(chatlog.RoleUser, question, nil)
	c.appendLocked(ctx, id, q)
	c.mu.Unlock()

	ans, err := c.backend.Ask(ctx, id, question)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		engine.IncrStaleDiscards()
		return Exchange{}, fmt.Errorf("%w: answer for %s", engine.ErrStaleSession, id)
	}
	c.asking = false

	var a chatlog.Turn
	if err != nil {
		a = chatlog.NewTurn(chatlog.RoleAssistant, FailedAnswerText, nil)
		a.Failed = true
	} else {
		a = chatlog.NewTurn(chatlog.RoleAssistant, ans.Answer, ans.Citations)
	}
	c.appendLocked(ctx, id, a)
	return Exchange{Question: q, Answer: a}, err
}

func (c *Controller) appendLocked(ctx context.Context, id string, t chatlog.Turn) {
	if err := c.log.Append(ctx, id, t); err != nil {
		slog.Warn("session: chat log write failed", slog.String("video_id", id), slog.Any("error", err))
	}
}

// History returns the chat log of the live video.
func (c *Controller) History(ctx context.Context) ([]chatlog.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Ready {
		return nil, fmt.Errorf("%w: session is %s", engine.ErrNotReady, c.status)
	}
	return c.log.Load(ctx, c.videoID), nil
}
