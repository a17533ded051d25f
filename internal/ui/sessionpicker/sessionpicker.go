// Package sessionpicker lists collections with any resumable session state
// and lets the user choose where to start or resume a cleanup.
package sessionpicker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"riptide/internal/domain"
	"riptide/internal/keys"
	"riptide/internal/state"
	"riptide/internal/ui/styles"
)

// Item is one pickable collection, annotated with session state if present.
type Item struct {
	Collection domain.Collection
	Resume     *state.Session // non-nil when a resumable checkpoint exists
	Corrupt    bool           // session file exists but cannot be loaded
	Path       string         // session file path, when one exists
}

// ChosenMsg is sent when the user picks a collection.
type ChosenMsg struct {
	Item Item
	// Fresh discards any existing session state and starts over. Always true
	// when the state was corrupt and the user chose to continue.
	Fresh bool
}

// CancelMsg is sent when the picker is dismissed.
type CancelMsg struct{}

// RefreshMsg carries a re-read of the state directory, typically triggered
// by the file watcher.
type RefreshMsg struct {
	Entries []state.Entry
}

// Model holds the picker state.
type Model struct {
	items    []Item
	selected int
	keys     keys.PickerKeyMap

	// confirmCorrupt is set while asking what to do about a corrupt session.
	confirmCorrupt bool
	// confirmResume is set while asking resume-or-fresh for a resumable one.
	confirmResume bool

	width  int
	height int
}

// New builds the picker from the API's collections and the state directory
// listing.
func New(collections []domain.Collection, entries []state.Entry) Model {
	return Model{items: buildItems(collections, entries), keys: keys.DefaultPickerKeyMap()}
}

// buildItems annotates collections with their session entries.
func buildItems(collections []domain.Collection, entries []state.Entry) []Item {
	byID := make(map[int64]state.Entry)
	for _, e := range entries {
		if e.Session != nil {
			byID[e.Session.CollectionID] = e
		}
	}

	items := make([]Item, 0, len(collections))
	for _, col := range collections {
		item := Item{Collection: col}
		if e, ok := byID[col.ID]; ok {
			item.Resume = e.Session
			item.Path = e.Path
		}
		items = append(items, item)
	}

	// Corrupt entries cannot be matched to a collection by id reliably, so
	// they are surfaced against the collection whose session file they are,
	// via path prefix matching on the id.
	for _, e := range entries {
		if e.Err == nil {
			continue
		}
		for i := range items {
			prefix := fmt.Sprintf("collection_%d_", items[i].Collection.ID)
			if strings.Contains(e.Path, prefix) {
				items[i].Corrupt = true
				items[i].Path = e.Path
			}
		}
	}
	return items
}

// SetSize sets the viewport dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Selected returns the currently highlighted item.
func (m Model) Selected() Item {
	if m.selected >= 0 && m.selected < len(m.items) {
		return m.items[m.selected]
	}
	return Item{}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		// Keep the highlight on the same collection across refreshes.
		var keep int64
		if m.selected < len(m.items) {
			keep = m.items[m.selected].Collection.ID
		}
		collections := make([]domain.Collection, 0, len(m.items))
		for _, item := range m.items {
			collections = append(collections, item.Collection)
		}
		m.items = buildItems(collections, msg.Entries)
		for i, item := range m.items {
			if item.Collection.ID == keep {
				m.selected = i
				break
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirmCorrupt {
			return m.updateCorruptPrompt(msg)
		}
		if m.confirmResume {
			return m.updateResumePrompt(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Select):
		if len(m.items) == 0 {
			return m, nil
		}
		item := m.Selected()
		switch {
		case item.Corrupt:
			m.confirmCorrupt = true
		case item.Resume != nil:
			m.confirmResume = true
		default:
			return m, choose(item, false)
		}
	case key.Matches(msg, m.keys.Quit):
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, nil
}

// updateCorruptPrompt handles the corrupt-state prompt: start fresh or back
// out. Resuming is not offered, there is nothing trustworthy to resume from.
func (m Model) updateCorruptPrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Fresh):
		m.confirmCorrupt = false
		return m, choose(m.Selected(), true)
	case key.Matches(msg, m.keys.Back):
		m.confirmCorrupt = false
	}
	return m, nil
}

func (m Model) updateResumePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Resume):
		m.confirmResume = false
		return m, choose(m.Selected(), false)
	case key.Matches(msg, m.keys.Fresh):
		m.confirmResume = false
		return m, choose(m.Selected(), true)
	case key.Matches(msg, m.keys.Back):
		m.confirmResume = false
	}
	return m, nil
}

func choose(item Item, fresh bool) tea.Cmd {
	return func() tea.Msg { return ChosenMsg{Item: item, Fresh: fresh} }
}

// View renders the collection list.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render("Choose a collection"))
	sb.WriteString("\n\n")

	if len(m.items) == 0 {
		sb.WriteString(styles.MutedStyle.Render("no collections found"))
		return sb.String()
	}

	for i, item := range m.items {
		line := fmt.Sprintf("%s (%d)", item.Collection.Title, item.Collection.Count)
		switch {
		case item.Corrupt:
			line += "  " + styles.ErrorStyle.Render("[state corrupt]")
		case item.Resume != nil:
			line += "  " + styles.SuccessStyle.Render(fmt.Sprintf("[resumable: %d processed]", item.Resume.Stats.Processed))
		}

		if i == m.selected {
			sb.WriteString(styles.SelectionIndicatorStyle.Render("> ") + lipgloss.NewStyle().Bold(true).Render(line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	if m.confirmCorrupt {
		sb.WriteString("\n" + styles.WarningStyle.Render("Session state is corrupt. Press f to start fresh, esc to cancel."))
	} else if m.confirmResume {
		item := m.Selected()
		sb.WriteString("\n" + styles.WarningStyle.Render(fmt.Sprintf(
			"Resume from page %d (%d processed)? r resume · f fresh · esc cancel",
			item.Resume.Cursor+1, item.Resume.Stats.Processed)))
	} else {
		sb.WriteString("\n" + styles.MutedStyle.Render(keys.HelpLine(m.keys.ShortHelp()...)))
	}

	return sb.String()
}
