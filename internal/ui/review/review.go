// Package review renders one batch of bookmarks with their advisory
// suggestions and collects the human's verdict: accept, override per row,
// skip the batch, or quit the session.
package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"riptide/internal/domain"
	"riptide/internal/engine"
	"riptide/internal/keys"
	"riptide/internal/ui/styles"
)

// DoneMsg is emitted when the reviewer has a verdict for the batch.
type DoneMsg struct {
	Response engine.ReviewResponse
}

// actionCycle is the order h/l step through.
var actionCycle = []domain.Action{
	domain.ActionKeep,
	domain.ActionDelete,
	domain.ActionArchive,
	domain.ActionMove,
}

// row is the working copy of one bookmark's pending decision.
type row struct {
	bookmark   domain.Bookmark
	action     domain.Action
	target     string
	reasoning  string
	overridden bool
	suggestion *domain.Suggestion
}

// Model holds the review screen state.
type Model struct {
	batchNum   int
	collection domain.CollectionRef
	stats      domain.Stats
	rows       []row
	cursor     int
	keys       keys.ReviewKeyMap

	editingTarget bool
	targetInput   textinput.Model

	showReasonings bool
	width          int
	height         int
}

// New builds a review model from an engine review request.
func New(req engine.ReviewRequest, showReasonings bool) Model {
	rows := make([]row, 0, len(req.Batch))
	for _, b := range req.Batch {
		r := row{bookmark: b, action: domain.ActionKeep, reasoning: "advisory unavailable"}
		if s, ok := req.Suggestions[b.ID]; ok && s.WellFormed() {
			sug := s
			r.suggestion = &sug
			r.action = s.Action
			r.target = s.TargetCollection
			r.reasoning = s.Reasoning
		}
		rows = append(rows, r)
	}

	input := textinput.New()
	input.Placeholder = "target collection"
	input.CharLimit = 64

	return Model{
		batchNum:       req.BatchNum,
		collection:     req.Collection,
		stats:          req.Stats,
		rows:           rows,
		keys:           keys.DefaultReviewKeyMap(),
		targetInput:    input,
		showReasonings: showReasonings,
	}
}

// SetSize sets the viewport dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Response assembles the verdict from the current row state.
func (m Model) Response() engine.ReviewResponse {
	overrides := make(map[int64]domain.Override)
	for _, r := range m.rows {
		if !r.overridden {
			continue
		}
		overrides[r.bookmark.ID] = domain.Override{
			Action:           r.action,
			TargetCollection: r.target,
			Reasoning:        "manual selection",
		}
	}
	return engine.ReviewResponse{Overrides: overrides}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editingTarget {
		return m.updateTargetInput(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.NextAction):
		m.cycleAction(1)
	case key.Matches(keyMsg, m.keys.PrevAction):
		m.cycleAction(-1)
	case key.Matches(keyMsg, m.keys.EditTarget):
		if len(m.rows) > 0 {
			m.editingTarget = true
			m.targetInput.SetValue(m.rows[m.cursor].target)
			m.targetInput.Focus()
		}
	case key.Matches(keyMsg, m.keys.Reset):
		m.resetRow()
	case key.Matches(keyMsg, m.keys.Skip):
		return m, done(engine.ReviewResponse{SkipBatch: true})
	case key.Matches(keyMsg, m.keys.Confirm):
		return m, done(m.Response())
	case key.Matches(keyMsg, m.keys.Quit):
		return m, done(engine.ReviewResponse{Quit: true})
	}
	return m, nil
}

func (m Model) updateTargetInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		target := strings.TrimSpace(m.targetInput.Value())
		r := &m.rows[m.cursor]
		if target != "" {
			r.action = domain.ActionMove
			r.target = target
			r.overridden = true
		}
		m.editingTarget = false
		m.targetInput.Blur()
		return m, nil
	case "esc":
		m.editingTarget = false
		m.targetInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.targetInput, cmd = m.targetInput.Update(msg)
	return m, cmd
}

// cycleAction steps the current row through the action cycle. A MOVE without
// a target opens the target input instead of leaving a malformed override.
func (m *Model) cycleAction(dir int) {
	if len(m.rows) == 0 {
		return
	}
	r := &m.rows[m.cursor]

	idx := 0
	for i, a := range actionCycle {
		if a == r.action {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(actionCycle)) % len(actionCycle)
	r.action = actionCycle[idx]
	r.overridden = true

	if r.action == domain.ActionMove && r.target == "" {
		m.editingTarget = true
		m.targetInput.SetValue("")
		m.targetInput.Focus()
	}
}

// resetRow restores the advisory suggestion (or the fallback) for the
// current row.
func (m *Model) resetRow() {
	if len(m.rows) == 0 {
		return
	}
	r := &m.rows[m.cursor]
	r.overridden = false
	if r.suggestion != nil {
		r.action = r.suggestion.Action
		r.target = r.suggestion.TargetCollection
		r.reasoning = r.suggestion.Reasoning
	} else {
		r.action = domain.ActionKeep
		r.target = ""
		r.reasoning = "advisory unavailable"
	}
}

func done(resp engine.ReviewResponse) tea.Cmd {
	return func() tea.Msg { return DoneMsg{Response: resp} }
}

const actionColWidth = 8

// View renders the batch.
func (m Model) View() string {
	var sb strings.Builder

	header := fmt.Sprintf("Batch %d - %s", m.batchNum, m.collection.Name)
	sb.WriteString(styles.TitleStyle.Render(header))
	sb.WriteString("\n\n")

	width := m.width
	if width == 0 {
		width = 80
	}

	for i, r := range m.rows {
		indicator := "  "
		if i == m.cursor {
			indicator = styles.SelectionIndicatorStyle.Render("> ")
		}

		verb := string(r.action)
		if r.action == domain.ActionMove && r.target != "" {
			verb = "MOVE:" + r.target
		}
		verb = runewidth.FillRight(verb, actionColWidth)
		verb = styles.ActionStyle(r.action).Render(verb)

		marker := " "
		if r.overridden {
			marker = styles.WarningStyle.Render("*")
		}

		title := r.bookmark.Title
		if title == "" {
			title = "Untitled"
		}
		maxTitle := width - actionColWidth - 8
		if maxTitle > 0 {
			title = truncate.StringWithTail(title, uint(maxTitle), "…")
		}

		sb.WriteString(fmt.Sprintf("%s%s %s %s\n", indicator, verb, marker, title))
		sb.WriteString("    " + styles.URLStyle.Render(truncate.String(r.bookmark.URL, uint(max(width-6, 10)))) + "\n")
		if m.showReasonings && r.reasoning != "" {
			sb.WriteString("    " + styles.MutedStyle.Render(truncate.String(r.reasoning, uint(max(width-6, 10)))) + "\n")
		}
	}

	if m.editingTarget {
		sb.WriteString("\n" + styles.TitleStyle.Render("Move to: ") + m.targetInput.View() + "\n")
	}

	sb.WriteString("\n" + styles.MutedStyle.Render(keys.HelpLine(m.keys.ShortHelp()...)))

	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}
