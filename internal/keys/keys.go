// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// ReviewKeyMap defines the keybindings for the batch review screen.
type ReviewKeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Row actions
	NextAction key.Binding
	PrevAction key.Binding
	EditTarget key.Binding
	Reset      key.Binding

	// Batch actions
	Confirm key.Binding
	Skip    key.Binding
	Quit    key.Binding
}

// DefaultReviewKeyMap returns the default review keybindings.
func DefaultReviewKeyMap() ReviewKeyMap {
	return ReviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		NextAction: key.NewBinding(
			key.WithKeys("l", "right", " "),
			key.WithHelp("l/→", "next action"),
		),
		PrevAction: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous action"),
		),
		EditTarget: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit move target"),
		),
		Reset: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "restore suggestion"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm batch"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip batch"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the review help footer.
func (k ReviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextAction, k.EditTarget, k.Reset, k.Skip, k.Confirm, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k ReviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},                                // Navigation
		{k.NextAction, k.PrevAction, k.EditTarget, k.Reset}, // Row actions
		{k.Confirm, k.Skip, k.Quit},                   // Batch actions
	}
}

// PickerKeyMap defines the keybindings for the collection picker.
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Resume key.Binding
	Fresh  key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultPickerKeyMap returns the default picker keybindings.
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "resume"),
		),
		Fresh: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "start fresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q", "n"),
			key.WithHelp("esc", "go back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the picker help footer.
func (k PickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k PickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Resume, k.Fresh},
		{k.Back, k.Quit},
	}
}

// HelpLine renders bindings as a one-line footer.
func HelpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " · "
		}
		out += b.Help().Key + " " + b.Help().Desc
	}
	return out
}
