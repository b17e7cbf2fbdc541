// ABOUTME: Resource list screen as a bubbletea model
// ABOUTME: Pages, sorts, filters and deletes records through the data adapter

package list

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/resources"
	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/styles"
	"github.com/markalston/shelter-admin/internal/tui/widgets"
)

// DefaultPerPage is the page size used by the list screen
const DefaultPerPage = 25

// Lines used by title, status and page info around the table
const chromeHeight = 6

// API is the part of the data adapter the list screen uses
type API interface {
	GetList(ctx context.Context, resource string, params client.ListParams) (*client.ListResult, error)
	Delete(ctx context.Context, resource, id string) (*client.Result, error)
}

// EditMsg asks for the editor on an existing record
type EditMsg struct {
	Resource resources.Resource
	ID       string
}

// CreateMsg asks for the editor on a new record
type CreateMsg struct {
	Resource resources.Resource
}

// BackMsg is sent when the user leaves the list
type BackMsg struct{}

// UnauthorizedMsg is sent when the backend rejects the session
type UnauthorizedMsg struct {
	Err error
}

type loadedMsg struct {
	seq    int
	result *client.ListResult
	err    error
}

type deletedMsg struct {
	id  string
	err error
}

// Model is the list screen for one resource
type Model struct {
	api      API
	resource resources.Resource
	theme    styles.Theme
	keys     KeyMap

	table   table.Model
	spinner spinner.Model
	filter  textinput.Model

	records []client.Record
	total   int
	loading bool
	seq     int

	page      int
	perPage   int
	sortIndex int
	order     string
	query     string

	filtering     bool
	confirmDelete string
	status        string
	err           error

	width  int
	height int
}

// New creates the list screen. Call Init to load the first page.
func New(api API, res resources.Resource, theme styles.Theme, width, height int) *Model {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	m := &Model{
		api:      api,
		resource: res,
		theme:    theme,
		keys:     DefaultKeyMap(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		filter:   ti,
		page:     1,
		perPage:  DefaultPerPage,
		order:    "ASC",
	}
	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
	)
	m.applyTheme()
	m.SetSize(width, height)
	return m
}

func (m *Model) columns() []table.Column {
	cols := make([]table.Column, len(m.resource.Columns))
	for i, c := range m.resource.Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return cols
}

func (m *Model) applyTheme() {
	p := m.theme.Palette
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Muted).
		BorderBottom(true).
		Foreground(p.Primary).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Primary).
		Bold(false)
	m.table.SetStyles(s)
	m.spinner.Style = lipgloss.NewStyle().Foreground(p.Primary)
}

// SetTheme switches the rendering theme
func (m *Model) SetTheme(theme styles.Theme) {
	m.theme = theme
	m.applyTheme()
}

// SetSize sets the space available to the screen
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(max(3, height-chromeHeight))
}

// Resource returns the resource being listed
func (m *Model) Resource() resources.Resource {
	return m.resource
}

// Params returns the list parameters for the current page
func (m *Model) Params() client.ListParams {
	params := client.ListParams{
		Pagination: client.Pagination{Page: m.page, PerPage: m.perPage},
		Sort:       client.Sort{Field: m.sortField(), Order: m.order},
	}
	if m.query != "" {
		params.Filter = map[string]any{"q": m.query}
	}
	return params
}

func (m *Model) sortField() string {
	if len(m.resource.Columns) == 0 {
		return "id"
	}
	return m.resource.Columns[m.sortIndex].Source
}

// Capturing reports whether keystrokes go to the filter input or the
// delete confirmation
func (m *Model) Capturing() bool {
	return m.filtering || m.confirmDelete != ""
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the current page
func (m *Model) Reload() tea.Cmd {
	m.seq++
	m.loading = true
	seq := m.seq
	api, path, params := m.api, m.resource.Path, m.Params()

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := api.GetList(context.Background(), path, params)
		return loadedMsg{seq: seq, result: result, err: err}
	})
}

func (m *Model) deleteRecord(id string) tea.Cmd {
	api, path := m.api, m.resource.Path
	return func() tea.Msg {
		_, err := api.Delete(context.Background(), path, id)
		return deletedMsg{id: id, err: err}
	}
}

// SetStatus shows an informational message under the table
func (m *Model) SetStatus(status string) {
	m.status = status
	m.err = nil
}

// SetError shows an error under the table
func (m *Model) SetError(err error) {
	m.err = err
	m.status = ""
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.err = nil
		m.records = msg.result.Data
		m.total = msg.result.Total
		m.table.SetRows(m.rows())
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.SetStatus(fmt.Sprintf("%s Deleted %s #%s", icons.Delete, strings.ToLower(m.resource.Label), msg.id))
		if len(m.records) == 1 && m.page > 1 {
			m.page--
		}
		return m, m.Reload()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) fail(err error) tea.Cmd {
	if client.IsUnauthorized(err) {
		return func() tea.Msg { return UnauthorizedMsg{Err: err} }
	}
	m.SetError(err)
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if key.Matches(msg, m.keys.Confirm) {
			m.status = ""
			return m, m.deleteRecord(id)
		}
		m.SetStatus("Delete cancelled")
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Reload()

	case key.Matches(msg, m.keys.Next):
		if m.page < m.pages() {
			m.page++
			return m, m.Reload()
		}

	case key.Matches(msg, m.keys.Prev):
		if m.page > 1 {
			m.page--
			return m, m.Reload()
		}

	case key.Matches(msg, m.keys.Sort):
		if n := len(m.resource.Columns); n > 0 {
			m.sortIndex = (m.sortIndex + 1) % n
			m.page = 1
			return m, m.Reload()
		}

	case key.Matches(msg, m.keys.Order):
		if m.order == "ASC" {
			m.order = "DESC"
		} else {
			m.order = "ASC"
		}
		return m, m.Reload()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.query)
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.New):
		res := m.resource
		return m, func() tea.Msg { return CreateMsg{Resource: res} }

	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.Selected(); ok {
			res, id := m.resource, rec.ID()
			return m, func() tea.Msg { return EditMsg{Resource: res, ID: id} }
		}

	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.Selected(); ok {
			m.confirmDelete = rec.ID()
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.query = strings.TrimSpace(m.filter.Value())
		m.page = 1
		return m, m.Reload()
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// Selected returns the record under the cursor
func (m *Model) Selected() (client.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return nil, false
	}
	return m.records[i], true
}

func (m *Model) rows() []table.Row {
	rows := make([]table.Row, len(m.records))
	for i, rec := range m.records {
		row := m.resource.Row(rec)
		for j, c := range m.resource.Columns {
			if c.Kind == resources.KindBoolean {
				row[j] = widgets.BoolCell(row[j])
			}
		}
		rows[i] = row
	}
	return rows
}

func (m *Model) pages() int {
	if m.perPage <= 0 || m.total <= 0 {
		return 1
	}
	return (m.total + m.perPage - 1) / m.perPage
}

// ShortHelp returns the key bindings shown in the footer
func (m *Model) ShortHelp() []key.Binding {
	if m.filtering {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
		}
	}
	if m.confirmDelete != "" {
		return []key.Binding{
			m.keys.Confirm,
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Cancel")),
		}
	}
	return []key.Binding{
		m.keys.Edit, m.keys.New, m.keys.Delete, m.keys.Refresh,
		m.keys.Next, m.keys.Sort, m.keys.Filter, m.keys.Back,
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	title := icons.ForResource(m.resource.Name).String() + " " + m.resource.Label
	sb.WriteString(m.theme.Title.Render(title))
	sb.WriteString("\n")

	if m.loading && len(m.records) == 0 {
		sb.WriteString(m.spinner.View() + " Loading...")
	} else if len(m.records) == 0 && m.err == nil {
		sb.WriteString(m.theme.LabelStyle.Render("No records"))
	} else {
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.pageInfo())

	return sb.String()
}

func (m *Model) statusLine() string {
	switch {
	case m.filtering:
		return m.filter.View()
	case m.confirmDelete != "":
		return m.theme.StatusWarning.Render(fmt.Sprintf("%s Delete #%s? (y/N)", icons.Delete, m.confirmDelete))
	case m.err != nil:
		return widgets.StatusText("Error: "+m.err.Error(), widgets.StatusCritical)
	case m.status != "":
		return widgets.StatusText(m.status, widgets.StatusOK)
	case m.loading:
		return m.spinner.View() + " Loading..."
	}
	return ""
}

func (m *Model) pageInfo() string {
	arrow := "↑"
	if m.order == "DESC" {
		arrow = "↓"
	}
	parts := []string{
		fmt.Sprintf("Page %d of %d", m.page, m.pages()),
		fmt.Sprintf("%d total", m.total),
		fmt.Sprintf("sorted by %s %s", m.sortField(), arrow),
	}
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("filter %q", m.query))
	}
	return m.theme.LabelStyle.Render(strings.Join(parts, " · "))
}
