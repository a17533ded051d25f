// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"riptide/internal/domain"
)

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // URLs, secondary info
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Per-action colors used wherever an action verb is rendered
	ActionKeepColor    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ActionDeleteColor  = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ActionArchiveColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	ActionMoveColor    = lipgloss.AdaptiveColor{Light: "#2E86DE", Dark: "#54A0FF"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Selection indicator style (used for ">" prefix in lists)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(TextMutedColor)
	URLStyle      = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(StatusErrorColor)
	WarningStyle  = lipgloss.NewStyle().Foreground(StatusWarningColor)
	SuccessStyle  = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	StatusBarStyle = lipgloss.NewStyle().Foreground(TextMutedColor).BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(BorderDefaultColor)
)

// ActionStyle returns the style for rendering an action verb.
func ActionStyle(a domain.Action) lipgloss.Style {
	switch a {
	case domain.ActionDelete:
		return lipgloss.NewStyle().Bold(true).Foreground(ActionDeleteColor)
	case domain.ActionArchive:
		return lipgloss.NewStyle().Bold(true).Foreground(ActionArchiveColor)
	case domain.ActionMove:
		return lipgloss.NewStyle().Bold(true).Foreground(ActionMoveColor)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(ActionKeepColor)
	}
}
