// ABOUTME: Global key bindings for the admin shell
// ABOUTME: Quit, theme toggle and logout apply on every screen that is not typing

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap are the shell-wide bindings
type KeyMap struct {
	ForceQuit   key.Binding
	Quit        key.Binding
	Theme       key.Binding
	ThemeAlways key.Binding
	Logout      key.Binding
}

// DefaultKeyMap returns the shell bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
		Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Theme")),
		ThemeAlways: key.NewBinding(key.WithKeys("ctrl+t")),
		Logout:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "Logout")),
	}
}
