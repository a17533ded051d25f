// Package progress renders the engine's live status line: phase, batch, and
// running counters, fed by engine events over the pub/sub broker.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"riptide/internal/engine"
	"riptide/internal/pubsub"
	"riptide/internal/ui/styles"
)

// Model holds the progress line state.
type Model struct {
	spinner   spinner.Model
	listener  *pubsub.ContinuousListener[engine.Progress]
	current   engine.Progress
	milestone string
	seen      bool
	dryRun    bool
}

// New creates a progress model fed by the given listener. The listener may be
// nil in tests; events can then be injected directly via Update.
func New(listener *pubsub.ContinuousListener[engine.Progress], dryRun bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)

	return Model{spinner: sp, listener: listener, dryRun: dryRun}
}

// Init starts the spinner and the event listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pubsub.Event[engine.Progress]:
		m.current = msg.Payload
		m.seen = true
		if msg.Type == pubsub.MilestoneEvent {
			m.milestone = msg.Payload.Message
		}
		if m.listener != nil {
			return m, m.listener.Listen()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status line.
func (m Model) View() string {
	if !m.seen {
		return m.spinner.View() + " starting session..."
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(styles.TitleStyle.Render(m.current.Collection.Name))
	sb.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  page %d · batch %d · %s", m.current.Page+1, m.current.BatchNum, m.current.Phase)))
	if m.dryRun {
		sb.WriteString("  " + styles.WarningStyle.Render("[dry-run]"))
	}
	sb.WriteString("\n")

	s := m.current.Stats
	sb.WriteString(styles.MutedStyle.Render(fmt.Sprintf(
		"processed %d · kept %d · deleted %d · archived %d · moved %d · skipped %d · errors %d",
		s.Processed, s.Kept, s.Deleted, s.Archived, s.Moved, s.Skipped, s.Errors)))

	if m.milestone != "" {
		sb.WriteString("\n" + styles.SuccessStyle.Render("✓ "+m.milestone))
	}

	return sb.String()
}
