package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/erii/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Background    lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color

	// Priority colors, most urgent first (SS, S, A, B, C, D)
	Priorities [6]lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Background:    lipgloss.Color("#1a1b26"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),

	Priorities: [6]lipgloss.Color{"#f7768e", "#ff9e64", "#e0af68", "#9ece6a", "#7dcfff", "#565f89"},
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView centers content horizontally if the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the console and the TUI
type Styles struct {
	// Title bar
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Task list
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	TaskDone     lipgloss.Style
	Priorities   [6]lipgloss.Style

	// Dialogs (help, delete confirmation, new task)
	Dialog        lipgloss.Style
	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Status line and console narration
	StatusBar lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Rule      lipgloss.Style
	Banner    lipgloss.Style
}

// NewStyles creates styles for the current theme. A nil renderer uses the
// default one bound to stdout.
func NewStyles(r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Current

	s := &Styles{
		Title: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: r.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: r.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		ListSelected: r.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		TaskDone: r.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),

		Dialog: r.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonPrimary: r.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help: r.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 1),

		HelpKey: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: r.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: r.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		Success: r.NewStyle().
			Foreground(t.Success),

		Warning: r.NewStyle().
			Foreground(t.Warning),

		Error: r.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Rule: r.NewStyle().
			Foreground(t.Border),

		Banner: r.NewStyle().
			Foreground(t.Secondary),
	}
	for i, c := range t.Priorities {
		s.Priorities[i] = r.NewStyle().Foreground(c).Bold(i < 2)
	}
	return s
}

// Priority returns the style for a priority badge.
func (s *Styles) Priority(p models.Priority) lipgloss.Style {
	if !p.IsValid() {
		return s.TitleMuted
	}
	return s.Priorities[p.Rank()]
}
