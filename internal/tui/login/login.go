// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Collects email and password with a huh form and reports submissions

package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/styles"
)

// SubmitMsg is sent when the user submits the form with both fields filled
type SubmitMsg struct {
	Email    string
	Password string
}

const formWidth = 50

var keys = []key.Binding{
	key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Sign in")),
	key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "Theme")),
	key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^C", "Quit")),
}

// Model is the login screen
type Model struct {
	theme    styles.Theme
	form     *huh.Form
	spinner  spinner.Model
	email    string
	password string
	err      string
	busy     bool
	width    int
}

// New creates the login screen
func New(theme styles.Theme) *Model {
	m := &Model{
		theme:   theme,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.form = m.createForm()
	return m
}

func (m *Model) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("admin@example.com").
				Value(&m.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(required("password")),
		),
	).WithTheme(m.theme.Form()).
		WithShowHelp(false).
		WithWidth(formWidth)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.busy {
		if _, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.submit()
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	m.busy = true
	m.err = ""
	email, password := strings.TrimSpace(m.email), m.password
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return SubmitMsg{Email: email, Password: password} },
	)
}

// SetError shows a failed attempt and re-opens the form.
// The email is kept, the password is cleared.
func (m *Model) SetError(msg string) tea.Cmd {
	m.busy = false
	m.err = msg
	m.password = ""
	m.form = m.createForm()
	return m.form.Init()
}

// Reset clears the form and any error
func (m *Model) Reset() tea.Cmd {
	m.busy = false
	m.err = ""
	m.email = ""
	m.password = ""
	m.form = m.createForm()
	return m.form.Init()
}

// SetTheme rebuilds the form with the given theme, keeping typed values
func (m *Model) SetTheme(theme styles.Theme) tea.Cmd {
	m.theme = theme
	if m.form.State != huh.StateNormal {
		return nil
	}
	m.form = m.createForm()
	return m.form.Init()
}

// Error returns the message shown under the form
func (m *Model) Error() string {
	return m.err
}

// Busy reports whether a submission is in flight
func (m *Model) Busy() bool {
	return m.busy
}

// ShortHelp returns the key bindings shown in the footer
func (m *Model) ShortHelp() []key.Binding {
	return keys
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.theme.Title.Render(icons.Lock.String() + " Sign In"))
	sb.WriteString("\n")

	if m.busy {
		sb.WriteString(m.spinner.View() + " Signing in...")
	} else {
		sb.WriteString(m.form.View())
	}

	if m.err != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.StatusCritical.Render(icons.Critical.String() + " " + m.err))
	}

	panel := m.theme.ActivePanel.Width(formWidth + 6).Render(sb.String())
	if m.width == 0 {
		return panel
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
}
