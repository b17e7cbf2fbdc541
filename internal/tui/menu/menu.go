// ABOUTME: Resource selection menu shown after sign-in
// ABOUTME: Lets the user pick which backend collection to administer

package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/shelter-admin/internal/resources"
	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/styles"
)

// SelectedMsg is sent when a resource is chosen
type SelectedMsg struct {
	Resource resources.Resource
}

// KeyMap are the menu bindings
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

var keys = KeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Navigate")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Open")),
}

// Menu is the resource selector
type Menu struct {
	options []resources.Resource
	cursor  int
	theme   styles.Theme
}

// New creates a menu over the given resources
func New(options []resources.Resource, theme styles.Theme) *Menu {
	return &Menu{options: options, theme: theme}
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(m.options) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Select):
		return m, m.choose(m.cursor)
	default:
		// 1-9 jump straight to a resource
		if s := km.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.options) {
				m.cursor = i
				return m, m.choose(i)
			}
		}
	}
	return m, nil
}

func (m *Menu) choose(i int) tea.Cmd {
	r := m.options[i]
	return func() tea.Msg { return SelectedMsg{Resource: r} }
}

// Selected returns the resource under the cursor
func (m *Menu) Selected() (resources.Resource, bool) {
	if len(m.options) == 0 {
		return resources.Resource{}, false
	}
	return m.options[m.cursor], true
}

// SetTheme switches the rendering theme
func (m *Menu) SetTheme(theme styles.Theme) {
	m.theme = theme
}

// ShortHelp returns the key bindings shown in the footer
func (m *Menu) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Select}
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder

	sb.WriteString(m.theme.Title.Render("Select a resource"))
	sb.WriteString("\n")

	for i, r := range m.options {
		line := fmt.Sprintf("%d. %s %s", i+1, icons.ForResource(r.Name).String(), r.Label)
		if i == m.cursor {
			sb.WriteString(m.theme.KeyStyle.Render("> " + line))
		} else {
			sb.WriteString(m.theme.LabelStyle.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	return m.theme.Panel.Render(strings.TrimRight(sb.String(), "\n"))
}
