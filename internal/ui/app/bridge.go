package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"riptide/internal/engine"
)

// ReviewRequestMsg delivers an engine review request into the update loop.
// The reply channel must receive exactly one response.
type ReviewRequestMsg struct {
	Request engine.ReviewRequest
	reply   chan engine.ReviewResponse
}

// Bridge implements engine.Reviewer on top of the Bubble Tea update loop.
// The engine runs on its own goroutine; Review blocks it until the user
// confirms a batch in the UI.
type Bridge struct {
	requests chan ReviewRequestMsg
}

// NewBridge creates a reviewer bridge.
func NewBridge() *Bridge {
	return &Bridge{requests: make(chan ReviewRequestMsg)}
}

// Review hands the batch to the UI and waits for the verdict. Cancellation
// unblocks both directions so the engine can interrupt cleanly.
func (b *Bridge) Review(ctx context.Context, req engine.ReviewRequest) (engine.ReviewResponse, error) {
	msg := ReviewRequestMsg{Request: req, reply: make(chan engine.ReviewResponse, 1)}

	select {
	case b.requests <- msg:
	case <-ctx.Done():
		return engine.ReviewResponse{}, ctx.Err()
	}

	select {
	case resp := <-msg.reply:
		return resp, nil
	case <-ctx.Done():
		return engine.ReviewResponse{}, ctx.Err()
	}
}

// AwaitReview returns a command that blocks until the engine submits the next
// batch for review, or the context ends.
func (b *Bridge) AwaitReview(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.requests:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
