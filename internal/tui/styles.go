package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the TUI styling definitions
type Styles struct {
	App            lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantText  lipgloss.Style
	Disclaimer     lipgloss.Style
	Refusal        lipgloss.Style
	Evidence       lipgloss.Style
	ConfHigh       lipgloss.Style
	ConfMedium     lipgloss.Style
	ConfLow        lipgloss.Style
	StatusBar      lipgloss.Style
	InputBorder    lipgloss.Style
	Muted          lipgloss.Style
}

// DefaultStyles creates the default style set using the default renderer.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// NewStyles creates the style set using the given renderer.
// Over SSH, pass the renderer from wishbubbletea.MakeRenderer(sess)
// so that styles emit ANSI colors appropriate for the SSH client's terminal.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		App: r.NewStyle(),

		UserLabel: r.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true),
		AssistantLabel: r.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true),
		UserBubble: r.NewStyle().
			Foreground(lipgloss.Color("75")).
			Padding(0, 1).
			MarginLeft(4),
		AssistantText: r.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),

		Disclaimer: r.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		Refusal: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Evidence: r.NewStyle().
			Foreground(lipgloss.Color("245")),

		ConfHigh: r.NewStyle().
			Foreground(lipgloss.Color("76")).
			Bold(true),
		ConfMedium: r.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ConfLow: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		StatusBar: r.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		InputBorder: r.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}
