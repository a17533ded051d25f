package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultReviewKeyMap(t *testing.T) {
	k := DefaultReviewKeyMap()

	require.Equal(t, []string{"k", "up"}, k.Up.Keys())
	require.Equal(t, []string{"j", "down"}, k.Down.Keys())
	require.Equal(t, []string{"l", "right", " "}, k.NextAction.Keys())
	require.Equal(t, []string{"q", "esc", "ctrl+c"}, k.Quit.Keys())
}

func TestDefaultPickerKeyMap(t *testing.T) {
	k := DefaultPickerKeyMap()

	require.Equal(t, []string{"enter"}, k.Select.Keys())
	require.Equal(t, []string{"r", "enter"}, k.Resume.Keys())
	require.Equal(t, []string{"f"}, k.Fresh.Keys())
}

func TestReviewKeyMap_Matches(t *testing.T) {
	k := DefaultReviewKeyMap()

	space := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")}
	require.True(t, key.Matches(space, k.NextAction))

	esc := tea.KeyMsg{Type: tea.KeyEsc}
	require.True(t, key.Matches(esc, k.Quit))
	require.False(t, key.Matches(esc, k.Confirm))
}

func TestHelpLine(t *testing.T) {
	k := DefaultPickerKeyMap()

	line := HelpLine(k.Up, k.Quit)

	require.Equal(t, "k/↑ move up · q quit", line)
}

func TestFullHelp_CoversAllBindings(t *testing.T) {
	groups := DefaultReviewKeyMap().FullHelp()

	total := 0
	for _, g := range groups {
		total += len(g)
	}
	require.Equal(t, 9, total)
}
