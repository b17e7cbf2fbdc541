// ABOUTME: Record editor as a bubbletea model
// ABOUTME: Generates a huh form from a record's fields and converts values back on save

package editor

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/resources"
	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/styles"
	"github.com/markalston/shelter-admin/internal/tui/widgets"
)

// SubmitMsg is sent when the form is completed. ID is empty for new records.
type SubmitMsg struct {
	Resource resources.Resource
	ID       string
	Data     client.Record
}

// CancelledMsg is sent when the user leaves without saving
type CancelledMsg struct{}

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindBool
	kindJSON
)

type field struct {
	name string
	kind fieldKind
	text string
	flag bool
}

var keys = []key.Binding{
	key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Save")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
	key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "Theme")),
}

// Editor edits one record of a resource
type Editor struct {
	resource resources.Resource
	id       string
	rawID    any // id as the backend sent it
	fields   []*field
	form     *huh.Form
	spinner  spinner.Model
	theme    styles.Theme
	busy     bool
	err      string
	width    int
}

// New creates an editor for rec, or for a new record when rec is nil
func New(res resources.Resource, rec client.Record, theme styles.Theme) *Editor {
	e := &Editor{
		resource: res,
		theme:    theme,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if rec != nil {
		e.id = rec.ID()
		e.rawID = rec["id"]
	}
	e.fields = buildFields(res, rec)
	e.form = e.createForm()
	return e
}

// buildFields lists the resource's columns first, then any other record keys
func buildFields(res resources.Resource, rec client.Record) []*field {
	var fields []*field
	seen := map[string]bool{"id": true}

	for _, c := range res.Columns {
		if seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		v, ok := rec[c.Source]
		fields = append(fields, newField(c.Source, v, ok, c.Kind))
	}

	var extra []string
	for k := range rec {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fields = append(fields, newField(k, rec[k], true, resources.KindText))
	}
	return fields
}

func newField(name string, v any, present bool, kind resources.Kind) *field {
	f := &field{name: name}

	switch val := v.(type) {
	case bool:
		f.kind = kindBool
		f.flag = val
	case float64:
		f.kind = kindNumber
		f.text = strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		f.kind = kindNumber
		f.text = val.String()
	case map[string]any, []any:
		f.kind = kindJSON
		data, _ := json.Marshal(val)
		f.text = string(data)
	case string:
		f.text = val
		if !present || kind != resources.KindBoolean {
			break
		}
		f.kind = kindBool
		f.flag, _ = strconv.ParseBool(val)
	case nil:
		// Unknown type: fall back to the column's kind
		switch kind {
		case resources.KindBoolean:
			f.kind = kindBool
		case resources.KindNumber:
			f.kind = kindNumber
		}
	}
	return f
}

func (e *Editor) createForm() *huh.Form {
	var items []huh.Field
	if e.id != "" {
		items = append(items, huh.NewNote().Title("ID").Description(e.id))
	}

	for _, f := range e.fields {
		switch f.kind {
		case kindBool:
			items = append(items, huh.NewConfirm().
				Title(f.name).
				Affirmative("Yes").
				Negative("No").
				Value(&f.flag))
		default:
			items = append(items, huh.NewInput().
				Title(f.name).
				Value(&f.text).
				Validate(validator(f.kind)))
		}
	}

	return huh.NewForm(huh.NewGroup(items...)).
		WithTheme(e.theme.Form()).
		WithShowHelp(false)
}

func validator(kind fieldKind) func(string) error {
	switch kind {
	case kindNumber:
		return validateNumber
	case kindJSON:
		return validateJSON
	default:
		return func(string) error { return nil }
	}
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return errors.New("must be a number")
	}
	return nil
}

func validateJSON(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || json.Valid([]byte(s)) {
		return nil
	}
	return errors.New("must be valid JSON")
}

// Record converts the form values back to a record.
// New records omit empty fields; existing records keep every field and the id.
func (e *Editor) Record() client.Record {
	rec := client.Record{}
	creating := e.id == ""

	for _, f := range e.fields {
		text := strings.TrimSpace(f.text)

		switch f.kind {
		case kindBool:
			rec[f.name] = f.flag
			continue
		case kindNumber:
			if n, err := strconv.ParseFloat(text, 64); err == nil {
				rec[f.name] = n
				continue
			}
		case kindJSON:
			var v any
			if err := json.Unmarshal([]byte(text), &v); err == nil {
				rec[f.name] = v
				continue
			}
		}

		if text == "" {
			if creating {
				continue
			}
			if f.kind != kindText {
				rec[f.name] = nil
				continue
			}
		}
		rec[f.name] = f.text
	}

	if !creating {
		rec["id"] = e.rawID
	}
	return rec
}

// Init implements tea.Model
func (e *Editor) Init() tea.Cmd {
	return e.form.Init()
}

// Update implements tea.Model
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
	case spinner.TickMsg:
		if !e.busy {
			return e, nil
		}
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd
	case tea.KeyMsg:
		if e.busy {
			return e, nil
		}
		if msg.String() == "esc" {
			return e, func() tea.Msg { return CancelledMsg{} }
		}
	}

	if e.busy {
		return e, nil
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		return e, e.submit()
	}
	return e, cmd
}

func (e *Editor) submit() tea.Cmd {
	e.busy = true
	e.err = ""
	msg := SubmitMsg{Resource: e.resource, ID: e.id, Data: e.Record()}
	return tea.Batch(e.spinner.Tick, func() tea.Msg { return msg })
}

// SetError shows a failed save and re-opens the form with the typed values
func (e *Editor) SetError(err error) tea.Cmd {
	e.busy = false
	e.err = err.Error()
	e.form = e.createForm()
	return e.form.Init()
}

// SetTheme rebuilds the form with the given theme, keeping typed values
func (e *Editor) SetTheme(theme styles.Theme) tea.Cmd {
	e.theme = theme
	if e.busy {
		return nil
	}
	e.form = e.createForm()
	return e.form.Init()
}

// Creating reports whether the editor is for a new record
func (e *Editor) Creating() bool {
	return e.id == ""
}

// ShortHelp returns the key bindings shown in the footer
func (e *Editor) ShortHelp() []key.Binding {
	return keys
}

// View implements tea.Model
func (e *Editor) View() string {
	var sb strings.Builder

	title := icons.Edit.String() + " Edit " + e.resource.Label + " #" + e.id
	if e.Creating() {
		title = icons.Edit.String() + " New " + e.resource.Label
	}
	sb.WriteString(e.theme.Title.Render(title))
	sb.WriteString("\n")

	if e.busy {
		sb.WriteString(e.spinner.View() + " Saving...")
	} else {
		sb.WriteString(e.form.View())
	}

	if e.err != "" {
		sb.WriteString("\n\n")
		sb.WriteString(widgets.StatusText("Error: "+e.err, widgets.StatusCritical))
	}
	return sb.String()
}
