package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the research chat.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#F7931A"), // bitcoin orange
		Secondary: lipgloss.Color("#06B6D4"), // cyan
		Accent:    lipgloss.Color("#F59E0B"), // amber

		Success: lipgloss.Color("#10B981"),
		Error:   lipgloss.Color("#EF4444"),
		Muted:   lipgloss.Color("#6B7280"),

		Text:    lipgloss.Color("#F9FAFB"),
		TextDim: lipgloss.Color("#9CA3AF"),
	}
}

// Styles contains all the styled components for the UI.
type Styles struct {
	App         lipgloss.Style
	BannerTitle lipgloss.Style

	Prompt lipgloss.Style

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style
	ErrorMessage     lipgloss.Style

	StatusText lipgloss.Style

	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	HelpBar   lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		BannerTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			PaddingLeft(2),

		AssistantMessage: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(2),

		SystemMessage: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			PaddingLeft(2),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(t.Error).
			PaddingLeft(2),

		StatusText: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpValue: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// Banner returns the ASCII art banner.
func Banner() string {
	banner := `
 ╔══════════════════════════════════════════════════════════════════╗
 ║                                                                  ║
 ║   ██████╗ ██████╗ ██╗███╗   ██╗███████╗ █████╗  ██████╗ ███████╗ ║
 ║  ██╔════╝██╔═══██╗██║████╗  ██║██╔════╝██╔══██╗██╔════╝ ██╔════╝ ║
 ║  ██║     ██║   ██║██║██╔██╗ ██║███████╗███████║██║  ███╗█████╗   ║
 ║  ██║     ██║   ██║██║██║╚██╗██║╚════██║██╔══██║██║   ██║██╔══╝   ║
 ║  ╚██████╗╚██████╔╝██║██║ ╚████║███████║██║  ██║╚██████╔╝███████╗ ║
 ║   ╚═════╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝ ║
 ║                                                                  ║
 ║                  Crypto Research Assistant                       ║
 ╚══════════════════════════════════════════════════════════════════╝`
	return banner
}
