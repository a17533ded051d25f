package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"riptide/internal/domain"
	"riptide/internal/engine"
	"riptide/internal/state"
	"riptide/internal/testutil"
	"riptide/internal/ui/review"
	"riptide/internal/ui/sessionpicker"
)

type stubSource struct{}

func (stubSource) FetchPage(context.Context, int64, int) ([]domain.Bookmark, int, error) {
	return nil, 0, nil
}

type stubAdvisor struct{}

func (stubAdvisor) Suggest(context.Context, []domain.Bookmark, []domain.Collection, domain.CollectionRef) (map[int64]domain.Suggestion, error) {
	return nil, nil
}

type stubExecutor struct{}

func (stubExecutor) Apply(context.Context, domain.Decision) error { return nil }

var appCollections = []domain.Collection{
	{ID: 1, Title: "dev", Count: 10},
	{ID: 2, Title: "reading", Count: 4},
}

// newAppHarness builds the root model with a start function that hands back a
// real engine wired to inert stubs, without actually running it.
func newAppHarness(t *testing.T) Model {
	t.Helper()
	store := state.NewStore(t.TempDir())
	errCh := make(chan error, 1)

	start := func(_ context.Context, item sessionpicker.Item, _ bool, reviewer engine.Reviewer) (*engine.Engine, <-chan error, error) {
		session := state.NewSession(item.Collection.ID, item.Collection.Title)
		eng, err := engine.New(stubSource{}, stubAdvisor{}, stubExecutor{}, reviewer, store, session, appCollections, engine.Options{BatchSize: 5})
		require.NoError(t, err)
		return eng, errCh, nil
	}

	return New(context.Background(), Options{
		Collections: appCollections,
		Store:       store,
		Start:       start,
	})
}

func choose(m Model, id int64) (Model, tea.Cmd) {
	item := sessionpicker.Item{Collection: appCollections[id-1]}
	next, cmd := m.Update(sessionpicker.ChosenMsg{Item: item})
	return next.(Model), cmd
}

func TestUpdate_CancelFromPickerQuits(t *testing.T) {
	m := newAppHarness(t)

	next, cmd := m.Update(sessionpicker.CancelMsg{})
	m = next.(Model)

	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_ChoosingStartsRun(t *testing.T) {
	m := newAppHarness(t)

	m, cmd := choose(m, 1)

	require.Equal(t, screenRunning, m.screen)
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "starting session")
}

func TestUpdate_StartFailureQuitsWithError(t *testing.T) {
	m := newAppHarness(t)
	m.start = func(context.Context, sessionpicker.Item, bool, engine.Reviewer) (*engine.Engine, <-chan error, error) {
		return nil, nil, context.DeadlineExceeded
	}

	next, cmd := m.Update(sessionpicker.ChosenMsg{Item: sessionpicker.Item{Collection: appCollections[0]}})
	m = next.(Model)

	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.ErrorIs(t, m.Err(), context.DeadlineExceeded)
	require.Contains(t, m.View(), "Session failed")
}

func TestUpdate_ReviewRequestTakesOverScreen(t *testing.T) {
	m := newAppHarness(t)
	m, _ = choose(m, 1)

	reply := make(chan engine.ReviewResponse, 1)
	req := engine.ReviewRequest{
		BatchNum:   1,
		Batch:      testutil.Batch(1, 2),
		Collection: domain.CollectionRef{ID: 1, Name: "dev"},
	}
	next, _ := m.Update(ReviewRequestMsg{Request: req, reply: reply})
	m = next.(Model)

	require.Equal(t, screenReviewing, m.screen)
	require.Contains(t, m.View(), "Batch 1")
}

func TestUpdate_ReviewDoneRepliesAndResumes(t *testing.T) {
	m := newAppHarness(t)
	m, _ = choose(m, 1)

	reply := make(chan engine.ReviewResponse, 1)
	next, _ := m.Update(ReviewRequestMsg{
		Request: engine.ReviewRequest{BatchNum: 1, Batch: testutil.Batch(1, 1)},
		reply:   reply,
	})
	m = next.(Model)

	resp := engine.ReviewResponse{Overrides: map[int64]domain.Override{
		1: {Action: domain.ActionDelete, Reasoning: "manual selection"},
	}}
	next, cmd := m.Update(review.DoneMsg{Response: resp})
	m = next.(Model)

	require.Equal(t, screenRunning, m.screen)
	require.NotNil(t, cmd, "resumes waiting for the next batch")
	select {
	case got := <-reply:
		require.Equal(t, resp, got)
	default:
		t.Fatal("review response never reached the engine")
	}
}

func TestUpdate_RunFinishedShowsSummary(t *testing.T) {
	m := newAppHarness(t)
	m, _ = choose(m, 1)

	next, cmd := m.Update(RunFinishedMsg{Err: nil})
	m = next.(Model)

	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Contains(t, m.View(), "Collection complete")
	require.Contains(t, m.View(), "processed 0")
}

func TestUpdate_InterruptedRunShowsSavedNotice(t *testing.T) {
	m := newAppHarness(t)
	m, _ = choose(m, 1)

	next, _ := m.Update(RunFinishedMsg{Err: engine.ErrInterrupted})
	m = next.(Model)

	require.Contains(t, m.View(), "interrupted")
	require.Contains(t, m.View(), "progress saved")
	require.ErrorIs(t, m.Err(), engine.ErrInterrupted)
}

func TestUpdate_WatcherRefreshesPickerEntries(t *testing.T) {
	m := newAppHarness(t)
	testutil.SessionFile(t, m.store, 2, "reading", testutil.Processed(8, 9))

	next, cmd := m.Update(WatcherMsg{})
	m = next.(Model)

	require.NotNil(t, cmd, "keeps listening for further changes")
	require.Contains(t, m.View(), "resumable: 2 processed")
}

func TestBridge_ReviewRoundTrip(t *testing.T) {
	b := NewBridge()
	ctx := context.Background()

	type result struct {
		resp engine.ReviewResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := b.Review(ctx, engine.ReviewRequest{BatchNum: 7})
		done <- result{resp, err}
	}()

	msg, ok := b.AwaitReview(ctx)().(ReviewRequestMsg)
	require.True(t, ok)
	require.Equal(t, 7, msg.Request.BatchNum)

	msg.reply <- engine.ReviewResponse{SkipBatch: true}

	select {
	case got := <-done:
		require.NoError(t, got.err)
		require.True(t, got.resp.SkipBatch)
	case <-time.After(time.Second):
		t.Fatal("review never returned")
	}
}

func TestBridge_ReviewCancelled(t *testing.T) {
	b := NewBridge()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Review(ctx, engine.ReviewRequest{})
	require.ErrorIs(t, err, context.Canceled)
}
