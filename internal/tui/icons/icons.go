// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

// EnvNerdFonts forces Nerd Font icons on ("1"/"true") or off
const EnvNerdFonts = "SHELTER_ADMIN_NERD_FONTS"

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv(EnvNerdFonts); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	// Check for terminals known to commonly have Nerd Fonts
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// iTerm2, Alacritty, WezTerm, Kitty typically have Nerd Fonts
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	// Check for common Nerd Font environment indicators
	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	// Default to Unicode fallback for maximum compatibility
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Resources
	Users    = Icon{"󰀎", "☺"} // nf-md-account_multiple
	Shelter  = Icon{"󰋜", "⌂"} // nf-md-home
	Resource = Icon{"󰏗", "■"} // nf-md-package_variant
	Blocked  = Icon{"󰒃", "⛔"} // nf-md-shield_check
	Record   = Icon{"󰈙", "□"} // nf-md-file_document

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Edit   = Icon{"󰏫", "✎"} // nf-md-pencil
	Delete = Icon{"󰆴", "✗"} // nf-md-delete
	Logout = Icon{"󰍃", "⏻"} // nf-md-logout
	Theme  = Icon{"󰔎", "◐"} // nf-md-theme_light_dark

	// Application
	App  = Icon{"󰕮", "◈"} // nf-md-view_dashboard
	User = Icon{"󰀄", "●"} // nf-md-account
	Lock = Icon{"󰌾", "⚿"} // nf-md-lock
)

// ForResource returns the icon shown next to a resource name
func ForResource(name string) Icon {
	switch name {
	case "users":
		return Users
	case "shelters":
		return Shelter
	case "resources":
		return Resource
	case "blocked-paths":
		return Blocked
	default:
		return Record
	}
}
