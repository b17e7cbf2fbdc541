// ABOUTME: Root bubbletea model for the admin shell
// ABOUTME: Switches between login and admin screens as the session changes

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/shelter-admin/internal/auth"
	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/resources"
	"github.com/markalston/shelter-admin/internal/session"
	"github.com/markalston/shelter-admin/internal/tui/editor"
	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/list"
	"github.com/markalston/shelter-admin/internal/tui/login"
	"github.com/markalston/shelter-admin/internal/tui/menu"
	"github.com/markalston/shelter-admin/internal/tui/styles"
	"github.com/markalston/shelter-admin/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenList
	ScreenEditor
)

// DefaultTitle is shown in the header when Options.Title is empty
const DefaultTitle = "Admin Dashboard"

// Layout constants
const (
	minTerminalWidth = 80 // Minimum frame width
	frameHeight      = 2  // Header and footer lines
)

// ExpiredMessage is shown on the login screen when the backend rejects the session
const ExpiredMessage = "Your session has expired, please sign in again"

// Options parameterize the shell
type Options struct {
	Theme styles.Mode
	Title string
}

// API is the data adapter used by the admin screens
type API interface {
	list.API
	GetOne(ctx context.Context, resource, id string) (*client.Result, error)
	Create(ctx context.Context, resource string, data client.Record) (*client.Result, error)
	Update(ctx context.Context, resource, id string, data client.Record) (*client.Result, error)
}

// Authenticator signs users in and out
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Logout() error
}

// Sessions exposes the current session and its changes
type Sessions interface {
	Current() session.Session
	Subscribe() (<-chan session.State, func())
}

// stateChangedMsg is sent when the session manager reports a new state
type stateChangedMsg struct {
	state session.State
}

// loginResultMsg is sent when a login attempt completes
type loginResultMsg struct {
	session session.Session
	err     error
}

// recordLoadedMsg is sent when a record for the editor is fetched
type recordLoadedMsg struct {
	resource resources.Resource
	record   client.Record
	err      error
}

// savedMsg is sent when the editor's record is stored
type savedMsg struct {
	resource resources.Resource
	record   client.Record
	created  bool
	err      error
}

// logoutMsg is sent when clearing the session completes
type logoutMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	api      API
	auth     Authenticator
	sessions Sessions
	keys     KeyMap

	title  string
	theme  styles.Theme
	screen Screen
	width  int
	height int
	user   session.Session
	status string

	states      <-chan session.State
	unsubscribe func()

	// Child models
	login  *login.Model
	menu   *menu.Menu
	list   *list.Model
	editor *editor.Editor
}

// New creates the shell. Call Close when done to stop watching the session.
func New(api API, authn Authenticator, sessions Sessions, opts Options) *App {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	theme := styles.New(opts.Theme)
	states, unsubscribe := sessions.Subscribe()

	a := &App{
		api:         api,
		auth:        authn,
		sessions:    sessions,
		keys:        DefaultKeyMap(),
		title:       title,
		theme:       theme,
		user:        sessions.Current(),
		states:      states,
		unsubscribe: unsubscribe,
		login:       login.New(theme),
		menu:        menu.New(resources.All, theme),
	}
	if a.user.Authenticated() {
		a.screen = ScreenMenu
	}
	return a
}

// Close stops the session subscription
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForState()}
	if a.screen == ScreenLogin {
		cmds = append(cmds, a.login.Init())
	}
	return tea.Batch(cmds...)
}

// waitForState blocks until the session manager reports a change
func (a *App) waitForState() tea.Cmd {
	states := a.states
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return stateChangedMsg{state: s}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.list != nil {
			a.list.SetSize(a.contentWidth(), a.contentHeight())
		}
		// Forward to form screens
		inner := tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.contentHeight()}
		var cmds []tea.Cmd
		_, cmd := a.login.Update(inner)
		cmds = append(cmds, cmd)
		if a.editor != nil {
			_, cmd = a.editor.Update(inner)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case stateChangedMsg:
		cmd := a.handleState(msg.state)
		return a, tea.Batch(a.waitForState(), cmd)

	case login.SubmitMsg:
		return a, a.doLogin(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			return a, a.login.SetError(auth.Message(msg.err))
		}
		a.user = msg.session
		if a.screen == ScreenLogin {
			a.showMenu()
		}
		return a, nil

	case logoutMsg:
		if msg.err != nil {
			a.status = icons.Logout.String() + " Logout failed: " + msg.err.Error()
		}
		return a, nil

	case menu.SelectedMsg:
		return a, a.openList(msg.Resource)

	case list.BackMsg:
		a.showMenu()
		return a, nil

	case list.EditMsg:
		return a, a.loadRecord(msg.Resource, msg.ID)

	case list.CreateMsg:
		return a, a.openEditor(msg.Resource, nil)

	case list.UnauthorizedMsg:
		return a, a.expireSession()

	case recordLoadedMsg:
		if !a.awaiting(ScreenList) {
			return a, nil
		}
		if msg.err != nil {
			return a, a.failOnList(msg.err)
		}
		return a, a.openEditor(msg.resource, msg.record)

	case editor.SubmitMsg:
		return a, a.save(msg)

	case editor.CancelledMsg:
		a.editor = nil
		a.screen = ScreenList
		return a, nil

	case savedMsg:
		if !a.awaiting(ScreenEditor) {
			return a, nil
		}
		return a, a.handleSaved(msg)
	}

	return a, a.forward(msg)
}

// forward passes messages the shell does not handle to the child models
// that have work in flight
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	if a.list != nil {
		_, cmd := a.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	switch a.screen {
	case ScreenLogin:
		_, cmd := a.login.Update(msg)
		cmds = append(cmds, cmd)
	case ScreenEditor:
		if a.editor != nil {
			_, cmd := a.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// capturing reports whether the current screen consumes plain keystrokes
func (a *App) capturing() bool {
	switch a.screen {
	case ScreenLogin, ScreenEditor:
		return true
	case ScreenList:
		return a.list != nil && a.list.Capturing()
	}
	return false
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ForceQuit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.ThemeAlways):
		return a, a.toggleTheme()
	}

	if !a.capturing() {
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Theme):
			return a, a.toggleTheme()
		case key.Matches(msg, a.keys.Logout):
			return a, a.logout()
		}
	}

	// Route to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		_, cmd = a.login.Update(msg)
	case ScreenMenu:
		_, cmd = a.menu.Update(msg)
	case ScreenList:
		if a.list != nil {
			_, cmd = a.list.Update(msg)
		}
	case ScreenEditor:
		if a.editor != nil {
			_, cmd = a.editor.Update(msg)
		}
	}
	return a, cmd
}

// handleState moves between the login screen and the admin screens
func (a *App) handleState(state session.State) tea.Cmd {
	a.user = a.sessions.Current()

	switch state {
	case session.StateAuthenticated:
		if a.screen == ScreenLogin {
			a.showMenu()
		}
		return nil
	default:
		if a.screen == ScreenLogin {
			return nil
		}
		return a.showLogin("")
	}
}

func (a *App) showMenu() {
	a.status = ""
	a.list = nil
	a.editor = nil
	a.screen = ScreenMenu
}

func (a *App) showLogin(message string) tea.Cmd {
	a.user = session.Session{}
	a.list = nil
	a.editor = nil
	a.screen = ScreenLogin
	if message != "" {
		return a.login.SetError(message)
	}
	return a.login.Reset()
}

func (a *App) openList(res resources.Resource) tea.Cmd {
	a.list = list.New(a.api, res, a.theme, a.contentWidth(), a.contentHeight())
	a.editor = nil
	a.screen = ScreenList
	return a.list.Init()
}

func (a *App) openEditor(res resources.Resource, rec client.Record) tea.Cmd {
	a.editor = editor.New(res, rec, a.theme)
	a.screen = ScreenEditor
	a.editor.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.contentHeight()})
	return a.editor.Init()
}

// awaiting reports whether a result requested from screen is still wanted.
// Results that land after a logout or navigation are dropped.
func (a *App) awaiting(screen Screen) bool {
	return a.screen == screen && a.sessions.Current().Authenticated()
}

// failOnList reports an adapter error on the list screen, or returns to the
// login screen when the session was rejected
func (a *App) failOnList(err error) tea.Cmd {
	if client.IsUnauthorized(err) {
		return a.expireSession()
	}
	a.editor = nil
	a.screen = ScreenList
	if a.list != nil {
		a.list.SetError(err)
	}
	return nil
}

// expireSession returns to the login screen and discards the rejected token
func (a *App) expireSession() tea.Cmd {
	return tea.Batch(a.showLogin(ExpiredMessage), a.clearSession())
}

func (a *App) logout() tea.Cmd {
	return tea.Batch(a.showLogin(""), a.clearSession())
}

func (a *App) clearSession() tea.Cmd {
	authn := a.auth
	return func() tea.Msg {
		return logoutMsg{err: authn.Logout()}
	}
}

func (a *App) toggleTheme() tea.Cmd {
	a.theme = a.theme.Toggle()

	var cmds []tea.Cmd
	cmds = append(cmds, a.login.SetTheme(a.theme))
	a.menu.SetTheme(a.theme)
	if a.list != nil {
		a.list.SetTheme(a.theme)
	}
	if a.editor != nil {
		cmds = append(cmds, a.editor.SetTheme(a.theme))
	}
	return tea.Batch(cmds...)
}

// doLogin creates a command that runs the login flow
func (a *App) doLogin(email, password string) tea.Cmd {
	authn := a.auth
	return func() tea.Msg {
		s, err := authn.Login(context.Background(), email, password)
		return loginResultMsg{session: s, err: err}
	}
}

// loadRecord creates a command to fetch a record for the editor
func (a *App) loadRecord(res resources.Resource, id string) tea.Cmd {
	if a.list != nil {
		a.list.SetStatus(fmt.Sprintf("Loading #%s...", id))
	}
	api := a.api
	return func() tea.Msg {
		result, err := api.GetOne(context.Background(), res.Path, id)
		if err != nil {
			return recordLoadedMsg{resource: res, err: err}
		}
		return recordLoadedMsg{resource: res, record: result.Data}
	}
}

// save creates a command that stores the editor's record
func (a *App) save(msg editor.SubmitMsg) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		var (
			result *client.Result
			err    error
		)
		if msg.ID == "" {
			result, err = api.Create(context.Background(), msg.Resource.Path, msg.Data)
		} else {
			result, err = api.Update(context.Background(), msg.Resource.Path, msg.ID, msg.Data)
		}
		if err != nil {
			return savedMsg{resource: msg.Resource, created: msg.ID == "", err: err}
		}
		return savedMsg{resource: msg.Resource, record: result.Data, created: msg.ID == ""}
	}
}

func (a *App) handleSaved(msg savedMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.expireSession()
		}
		if a.editor != nil {
			return a.editor.SetError(msg.err)
		}
		return nil
	}

	a.editor = nil
	if a.list == nil {
		a.showMenu()
		return nil
	}
	a.screen = ScreenList

	verb := "Saved"
	if msg.created {
		verb = "Created"
	}
	a.list.SetStatus(fmt.Sprintf("%s %s #%s", verb, strings.ToLower(msg.resource.Label), msg.record.ID()))
	return a.list.Reload()
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.login.View()
	case ScreenMenu:
		content = a.menu.View()
	case ScreenList:
		if a.list != nil {
			content = a.list.View()
		}
	case ScreenEditor:
		if a.editor != nil {
			content = a.editor.View()
		}
	}

	return a.wrapWithFrame(content)
}

// frameWidth is the width of header and footer. One column is left free
// to prevent wrapping on some terminals.
func (a *App) frameWidth() int {
	return max(minTerminalWidth, a.width-1)
}

func (a *App) contentWidth() int {
	return a.frameWidth()
}

func (a *App) contentHeight() int {
	return max(10, a.height-frameHeight)
}

// shortHelp returns the bindings of the current screen followed by the global ones
func (a *App) shortHelp() []key.Binding {
	var bindings []key.Binding
	switch a.screen {
	case ScreenLogin:
		return a.login.ShortHelp()
	case ScreenMenu:
		bindings = a.menu.ShortHelp()
	case ScreenList:
		if a.list != nil {
			bindings = a.list.ShortHelp()
			if a.list.Capturing() {
				return bindings
			}
		}
	case ScreenEditor:
		if a.editor != nil {
			return a.editor.ShortHelp()
		}
	}
	return append(bindings, a.keys.Theme, a.keys.Logout, a.keys.Quit)
}

// renderHeader creates the header bar with the title and signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()
	border := a.theme.Border

	left := fmt.Sprintf(" %s %s ", icons.App.String(), a.theme.HeaderTitle.Render(a.title))

	right := ""
	if a.user.Authenticated() {
		right = " " + a.theme.HeaderUser.Render(icons.User.String()+" "+a.user.UserName) +
			" " + widgets.RoleBadge(a.user.Role) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right)) // -4 for ╭─ and ─╮
	fill := border.Render(strings.Repeat("─", fillWidth))

	return border.Render("╭─") + left + fill + right + border.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()
	border := a.theme.Border

	right := " " + a.theme.LabelStyle.Render(icons.Theme.String()+" "+a.theme.Mode.Label()) + " "
	if a.status != "" {
		right = " " + a.theme.StatusWarning.Render(a.status) + " "
	}

	// Keep as many shortcuts as fit
	available := width - 4 - lipgloss.Width(right) - 1
	left := ""
	for _, b := range a.shortHelp() {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		item := " " + a.theme.KeyStyle.Render(h.Key) + " " + a.theme.LabelStyle.Render(h.Desc)
		if lipgloss.Width(left)+lipgloss.Width(item) > available {
			break
		}
		left += item
	}
	left += " "

	fillWidth := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right)) // -4 for ╰─ and ─╯
	fill := border.Render(strings.Repeat("─", fillWidth))

	return border.Render("╰─") + left + fill + right + border.Render("─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Screen returns the current screen
func (a *App) Screen() Screen {
	return a.screen
}

// Run starts the TUI and blocks until the user quits
func Run(app *App) error {
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
