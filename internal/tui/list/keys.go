// ABOUTME: Key bindings for the resource list screen
// ABOUTME: Shared by the model's key handling and the footer help

package list

import "github.com/charmbracelet/bubbles/key"

// KeyMap are the list screen bindings
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Edit    key.Binding
	New     key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Refresh key.Binding
	Next    key.Binding
	Prev    key.Binding
	Sort    key.Binding
	Order   key.Binding
	Filter  key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the list bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Move")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Edit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Edit")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "New")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Delete")),
		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "Confirm")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh")),
		Next:    key.NewBinding(key.WithKeys("]"), key.WithHelp("[]", "Page")),
		Prev:    key.NewBinding(key.WithKeys("[")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Sort")),
		Order:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "Order")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Filter")),
		Back:    key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "Back")),
	}
}
