// Package app is the top-level Bubble Tea model: the session picker, then the
// running engine with its progress line, with batch review taking over the
// screen whenever the engine waits on decisions.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"riptide/internal/domain"
	"riptide/internal/engine"
	"riptide/internal/log"
	"riptide/internal/pubsub"
	"riptide/internal/state"
	"riptide/internal/ui/progress"
	"riptide/internal/ui/review"
	"riptide/internal/ui/sessionpicker"
	"riptide/internal/ui/styles"
)

// screen is which major view owns the terminal.
type screen int

const (
	screenPicking screen = iota
	screenRunning
	screenReviewing
	screenDone
)

// StartSession builds and starts an engine run for the chosen collection.
// Implemented by the cmd layer, which owns the API clients. The returned
// engine must already be running on its own goroutine, with its result
// delivered on the error channel.
type StartSession func(ctx context.Context, item sessionpicker.Item, fresh bool, reviewer engine.Reviewer) (*engine.Engine, <-chan error, error)

// RunFinishedMsg reports the engine goroutine's result.
type RunFinishedMsg struct {
	Err error
}

// WatcherMsg signals that the state directory changed on disk.
type WatcherMsg struct{}

// Model is the application root model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	screen   screen
	picker   sessionpicker.Model
	progress progress.Model
	review   review.Model

	bridge  *Bridge
	start   StartSession
	store   *state.Store
	eng     *engine.Engine
	watchCh <-chan struct{}

	// pendingReply is the reply channel for the batch currently on screen.
	pendingReply chan engine.ReviewResponse

	showReasonings bool
	dryRun         bool
	finalErr       error
	session        *state.Session

	width  int
	height int
}

// Options configures the app model.
type Options struct {
	Collections    []domain.Collection
	Entries        []state.Entry
	Store          *state.Store
	Start          StartSession
	WatchCh        <-chan struct{}
	ShowReasonings bool
	DryRun         bool
}

// New creates the root model.
func New(ctx context.Context, opts Options) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:            ctx,
		cancel:         cancel,
		screen:         screenPicking,
		picker:         sessionpicker.New(opts.Collections, opts.Entries),
		bridge:         NewBridge(),
		start:          opts.Start,
		store:          opts.Store,
		watchCh:        opts.WatchCh,
		showReasonings: opts.ShowReasonings,
		dryRun:         opts.DryRun,
	}
}

// Init starts the watcher listener.
func (m Model) Init() tea.Cmd {
	return m.awaitWatcher()
}

// awaitWatcher waits for the next state-directory change signal.
func (m Model) awaitWatcher() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return WatcherMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker = m.picker.SetSize(msg.Width, msg.Height)
		m.review = m.review.SetSize(msg.Width, msg.Height)
		return m, nil

	case WatcherMsg:
		var cmds []tea.Cmd
		if m.screen == screenPicking && m.store != nil {
			if entries, err := m.store.List(); err == nil {
				var cmd tea.Cmd
				m.picker, cmd = m.picker.Update(sessionpicker.RefreshMsg{Entries: entries})
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, m.awaitWatcher())
		return m, tea.Batch(cmds...)

	case sessionpicker.ChosenMsg:
		return m.startRun(msg)

	case sessionpicker.CancelMsg:
		m.cancel()
		return m, tea.Quit

	case ReviewRequestMsg:
		m.screen = screenReviewing
		m.review = review.New(msg.Request, m.showReasonings).SetSize(m.width, m.height)
		m.pendingReply = msg.reply
		return m, nil

	case review.DoneMsg:
		if m.pendingReply != nil {
			m.pendingReply <- msg.Response
			m.pendingReply = nil
		}
		m.screen = screenRunning
		return m, m.bridge.AwaitReview(m.ctx)

	case RunFinishedMsg:
		m.finalErr = msg.Err
		if m.eng != nil {
			m.session = m.eng.Session()
		}
		m.screen = screenDone
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m.updateChildren(msg)
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenPicking:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case screenReviewing:
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	case screenRunning:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			// Interrupt: the engine checkpoints and returns ErrInterrupted,
			// which arrives as RunFinishedMsg.
			m.cancel()
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.progress, cmd = m.progress.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// startRun kicks off the engine for the chosen collection.
func (m Model) startRun(msg sessionpicker.ChosenMsg) (tea.Model, tea.Cmd) {
	eng, errCh, err := m.start(m.ctx, msg.Item, msg.Fresh, m.bridge)
	if err != nil {
		m.finalErr = err
		m.screen = screenDone
		m.cancel()
		return m, tea.Quit
	}
	m.eng = eng
	m.screen = screenRunning

	listener := pubsub.NewContinuousListener(m.ctx, eng.Events())
	m.progress = progress.New(listener, m.dryRun)

	log.Debug(log.CatUI, "session run started", "collection", msg.Item.Collection.Title, "fresh", msg.Fresh)
	return m, tea.Batch(
		m.progress.Init(),
		m.bridge.AwaitReview(m.ctx),
		waitForRun(errCh),
	)
}

// waitForRun converts the engine goroutine's result into a message.
func waitForRun(errCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		return RunFinishedMsg{Err: <-errCh}
	}
}

// View renders the active screen.
func (m Model) View() string {
	switch m.screen {
	case screenPicking:
		return m.picker.View()
	case screenReviewing:
		return m.review.View()
	case screenRunning:
		return m.progress.View()
	case screenDone:
		return m.finalView()
	}
	return ""
}

// finalView is the summary printed as the program exits.
func (m Model) finalView() string {
	var head string
	switch {
	case m.finalErr == nil:
		head = styles.SuccessStyle.Render("Collection complete.")
	case errors.Is(m.finalErr, engine.ErrInterrupted):
		head = styles.WarningStyle.Render("Session interrupted - progress saved.")
	default:
		head = styles.ErrorStyle.Render("Session failed: " + m.finalErr.Error())
	}

	if m.session == nil {
		return head + "\n"
	}
	s := m.session.Stats
	summary := fmt.Sprintf(
		"processed %d · kept %d · deleted %d · archived %d · moved %d · skipped %d · errors %d\nactive time: %ds",
		s.Processed, s.Kept, s.Deleted, s.Archived, s.Moved, s.Skipped, s.Errors, m.session.ActiveSeconds)
	return head + "\n" + styles.MutedStyle.Render(summary) + "\n"
}

// Err returns the engine result after the program exits.
func (m Model) Err() error {
	return m.finalErr
}
