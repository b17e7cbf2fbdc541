// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines light and dark palettes and the styles derived from them

package styles

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Mode selects the light or dark palette
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode returns the mode for s, defaulting to Light
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

// Toggle returns the other mode
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Label is the name shown on the toggle key
func (m Mode) Label() string {
	if m == Dark {
		return "Dark Mode"
	}
	return "Light Mode"
}

// Palette is the set of colors a theme is built from
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Surface   lipgloss.Color
	Info      lipgloss.Color
}

var (
	// DarkPalette is tuned for dark terminal backgrounds
	DarkPalette = Palette{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Danger:    lipgloss.Color("#EF4444"), // Red
		Muted:     lipgloss.Color("#6B7280"), // Gray
		Text:      lipgloss.Color("#F9FAFB"), // Light
		Accent:    lipgloss.Color("#8B5CF6"), // Lighter purple for highlights
		Surface:   lipgloss.Color("#374151"), // Elevated surface background
		Info:      lipgloss.Color("#3B82F6"), // Blue
	}

	// LightPalette is tuned for light terminal backgrounds
	LightPalette = Palette{
		Primary:   lipgloss.Color("#1976D2"), // Blue
		Secondary: lipgloss.Color("#047857"), // Dark green
		Warning:   lipgloss.Color("#B45309"), // Dark amber
		Danger:    lipgloss.Color("#B91C1C"), // Dark red
		Muted:     lipgloss.Color("#6B7280"), // Gray
		Text:      lipgloss.Color("#111827"), // Near black
		Accent:    lipgloss.Color("#9C27B0"), // Purple
		Surface:   lipgloss.Color("#E5E7EB"), // Light gray
		Info:      lipgloss.Color("#0369A1"), // Sky
	}
)

// Theme holds the styles for one mode
type Theme struct {
	Mode    Mode
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Status indicators
	StatusOK       lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusCritical lipgloss.Style

	// Panels
	Panel       lipgloss.Style
	ActivePanel lipgloss.Style

	Help lipgloss.Style

	// Frame
	Border      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	// Key style for keyboard shortcuts
	KeyStyle lipgloss.Style
	// Value style for emphasized data
	ValueStyle lipgloss.Style
	LabelStyle lipgloss.Style
}

// New builds the theme for mode
func New(mode Mode) Theme {
	p := LightPalette
	if mode == Dark {
		p = DarkPalette
	} else {
		mode = Light
	}

	return Theme{
		Mode:    mode,
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginBottom(1),

		StatusOK: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(p.Warning).
			Bold(true),
		StatusCritical: lipgloss.NewStyle().
			Foreground(p.Danger).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Muted).
			Padding(1, 2),
		ActivePanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),

		Help: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),

		Border:      lipgloss.NewStyle().Foreground(p.Muted),
		HeaderTitle: lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		HeaderUser:  lipgloss.NewStyle().Foreground(p.Secondary),

		KeyStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		ValueStyle: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true),
		LabelStyle: lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// Toggle returns the theme for the other mode
func (t Theme) Toggle() Theme {
	return New(t.Mode.Toggle())
}

// Form returns a huh theme using the theme's palette
func (t Theme) Form() *huh.Theme {
	p := t.Palette
	ft := huh.ThemeBase()

	// Group styles (section headers)
	ft.Group.Title = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		MarginBottom(1)
	ft.Group.Description = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginBottom(1)

	// Focused field styles
	ft.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(p.Primary)
	ft.Focused.Title = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)
	ft.Focused.Description = lipgloss.NewStyle().
		Foreground(p.Muted)
	ft.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(p.Danger).
		SetString(" *")
	ft.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(p.Danger)

	// Select field styles
	ft.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(p.Primary).
		SetString("> ")
	ft.Focused.Option = lipgloss.NewStyle().
		Foreground(p.Text)
	ft.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)

	// Text input styles
	ft.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(p.Primary)
	ft.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(p.Muted)
	ft.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(p.Primary)
	ft.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(p.Text)

	// Button styles
	ft.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Primary).
		Padding(0, 2).
		MarginRight(1)
	ft.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(p.Muted).
		Background(p.Surface).
		Padding(0, 2).
		MarginRight(1)

	// Blurred fields inherit from focused with muted colors
	ft.Blurred = ft.Focused
	ft.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	ft.Blurred.Title = lipgloss.NewStyle().
		Foreground(p.Muted)
	ft.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(p.Muted).
		SetString("  ")
	ft.Blurred.Option = lipgloss.NewStyle().
		Foreground(p.Muted)

	return ft
}
