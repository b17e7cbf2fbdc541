// ABOUTME: Tests for the resource list screen
// ABOUTME: Drives the model with key messages against a fake data adapter

package list

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/resources"
	"github.com/markalston/shelter-admin/internal/tui/icons"
	"github.com/markalston/shelter-admin/internal/tui/styles"
)

type fakeAPI struct {
	mu      sync.Mutex
	records []client.Record
	total   int
	listErr error
	delErr  error
	params  []client.ListParams
	deleted []string
}

func (f *fakeAPI) GetList(_ context.Context, _ string, params client.ListParams) (*client.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &client.ListResult{Data: f.records, Total: f.total}, nil
}

func (f *fakeAPI) Delete(_ context.Context, _ string, id string) (*client.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deleted = append(f.deleted, id)
	return &client.Result{Data: client.Record{"id": id}}, nil
}

func (f *fakeAPI) lastParams() client.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[len(f.params)-1]
}

func shelters(n int) []client.Record {
	recs := make([]client.Record, n)
	for i := range recs {
		recs[i] = client.Record{
			"id":       fmt.Sprint(i + 1),
			"name":     fmt.Sprintf("Shelter %d", i+1),
			"location": "Downtown",
			"capacity": float64(40),
			"isActive": i%2 == 0,
		}
	}
	return recs
}

// collect runs cmd and any batched commands, returning the produced messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// run feeds cmd's messages back into the model until no commands remain,
// returning messages the model does not handle itself
func run(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case loadedMsg, deletedMsg:
			_, next := m.Update(msg)
			queue = append(queue, collect(next)...)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func press(t *testing.T, m *Model, keys string) []tea.Msg {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return run(t, m, cmd)
}

func newList(t *testing.T, api *fakeAPI) *Model {
	t.Helper()
	res, _ := resources.Lookup("shelters")
	m := New(api, res, styles.New(styles.Light), 100, 30)
	run(t, m, m.Init())
	return m
}

func TestListInitialLoad(t *testing.T) {
	api := &fakeAPI{records: shelters(3), total: 30}
	m := newList(t, api)

	p := api.lastParams()
	if p.Pagination.Page != 1 || p.Pagination.PerPage != DefaultPerPage {
		t.Errorf("unexpected pagination %+v", p.Pagination)
	}
	if p.Sort.Field != "id" || p.Sort.Order != "ASC" {
		t.Errorf("unexpected sort %+v", p.Sort)
	}
	if p.Filter != nil {
		t.Errorf("expected no filter, got %v", p.Filter)
	}

	view := m.View()
	for _, want := range []string{"Shelters", "Shelter 1", "Downtown", "Page 1 of 2", "30 total", "yes"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestListPaging(t *testing.T) {
	api := &fakeAPI{records: shelters(2), total: 30}
	m := newList(t, api)

	press(t, m, "]")
	if got := api.lastParams().Pagination.Page; got != 2 {
		t.Errorf("expected page 2, got %d", got)
	}

	calls := len(api.params)
	press(t, m, "]")
	if len(api.params) != calls {
		t.Error("expected no request past the last page")
	}

	press(t, m, "[")
	if got := api.lastParams().Pagination.Page; got != 1 {
		t.Errorf("expected page 1, got %d", got)
	}
	press(t, m, "[")
	if len(api.params) != calls+1 {
		t.Error("expected no request before the first page")
	}
}

func TestListSortAndOrder(t *testing.T) {
	api := &fakeAPI{records: shelters(2), total: 60}
	m := newList(t, api)
	press(t, m, "]")

	press(t, m, "s")
	p := api.lastParams()
	if p.Sort.Field != "name" {
		t.Errorf("expected sort by name, got %s", p.Sort.Field)
	}
	if p.Pagination.Page != 1 {
		t.Errorf("expected sort to reset page, got %d", p.Pagination.Page)
	}

	press(t, m, "o")
	if got := api.lastParams().Sort.Order; got != "DESC" {
		t.Errorf("expected DESC, got %s", got)
	}
	if !strings.Contains(m.View(), "sorted by name ↓") {
		t.Error("expected sort info in view")
	}

	for i := 0; i < len(m.resource.Columns)-1; i++ {
		press(t, m, "s")
	}
	if got := api.lastParams().Sort.Field; got != "id" {
		t.Errorf("expected sort to wrap to id, got %s", got)
	}
}

func TestListFilter(t *testing.T) {
	api := &fakeAPI{records: shelters(1), total: 1}
	m := newList(t, api)

	press(t, m, "/")
	if !m.Capturing() {
		t.Fatal("expected filter input to capture keys")
	}
	press(t, m, "n")
	press(t, m, "o")
	press(t, m, "r")
	press(t, m, "enter")

	if m.Capturing() {
		t.Error("expected filter input closed")
	}
	p := api.lastParams()
	if p.Filter["q"] != "nor" {
		t.Errorf("expected q filter 'nor', got %v", p.Filter)
	}
	if !strings.Contains(m.View(), `filter "nor"`) {
		t.Error("expected filter info in view")
	}
}

func TestListFilterCancel(t *testing.T) {
	api := &fakeAPI{records: shelters(1), total: 1}
	m := newList(t, api)
	calls := len(api.params)

	press(t, m, "/")
	press(t, m, "x")
	press(t, m, "esc")

	if m.Capturing() {
		t.Error("expected filter input closed")
	}
	if len(api.params) != calls {
		t.Error("expected no request after cancelling filter")
	}
}

func TestListDeleteConfirmed(t *testing.T) {
	api := &fakeAPI{records: shelters(3), total: 3}
	m := newList(t, api)

	press(t, m, "d")
	if !strings.Contains(m.View(), icons.Delete.String()+" Delete #1?") {
		t.Error("expected confirmation prompt")
	}

	calls := len(api.params)
	press(t, m, "y")

	if len(api.deleted) != 1 || api.deleted[0] != "1" {
		t.Fatalf("expected record 1 deleted, got %v", api.deleted)
	}
	if len(api.params) != calls+1 {
		t.Error("expected reload after delete")
	}
	if !strings.Contains(m.View(), icons.Delete.String()+" Deleted shelters #1") {
		t.Error("expected delete status in view")
	}
}

func TestListDeleteCancelled(t *testing.T) {
	api := &fakeAPI{records: shelters(3), total: 3}
	m := newList(t, api)

	press(t, m, "d")
	press(t, m, "n")

	if len(api.deleted) != 0 {
		t.Error("expected nothing deleted")
	}
	if !strings.Contains(m.View(), "Delete cancelled") {
		t.Error("expected cancel status")
	}
}

func TestListDeleteError(t *testing.T) {
	api := &fakeAPI{records: shelters(1), total: 1}
	m := newList(t, api)
	api.delErr = &client.HTTPError{StatusCode: http.StatusConflict, Message: "in use"}

	press(t, m, "d")
	press(t, m, "y")

	if !strings.Contains(m.View(), "in use") {
		t.Error("expected backend error in view")
	}
}

func TestListLoadError(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("cannot connect to backend")}
	m := newList(t, api)

	if !strings.Contains(m.View(), "Error: cannot connect to backend") {
		t.Errorf("expected error in view, got %q", m.View())
	}
}

func TestListUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing token", client.ErrUnauthenticated},
		{"rejected token", &client.HTTPError{StatusCode: http.StatusUnauthorized}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{listErr: tc.err}
			res, _ := resources.Lookup("users")
			m := New(api, res, styles.New(styles.Dark), 100, 30)

			out := run(t, m, m.Init())
			found := false
			for _, msg := range out {
				if u, ok := msg.(UnauthorizedMsg); ok && errors.Is(u.Err, tc.err) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected UnauthorizedMsg, got %v", out)
			}
		})
	}
}

func TestListIgnoresStaleResults(t *testing.T) {
	api := &fakeAPI{records: shelters(2), total: 2}
	m := newList(t, api)

	m.Update(loadedMsg{seq: m.seq - 1, result: &client.ListResult{Data: shelters(9), Total: 9}})
	if len(m.records) != 2 {
		t.Errorf("expected stale result ignored, got %d records", len(m.records))
	}
}

func TestListNavigationMessages(t *testing.T) {
	api := &fakeAPI{records: shelters(3), total: 3}
	m := newList(t, api)

	press(t, m, "j")

	out := press(t, m, "enter")
	if len(out) != 1 {
		t.Fatalf("expected one message, got %v", out)
	}
	edit, ok := out[0].(EditMsg)
	if !ok || edit.ID != "2" || edit.Resource.Name != "shelters" {
		t.Errorf("expected EditMsg for record 2, got %#v", out[0])
	}

	if out := press(t, m, "n"); len(out) != 1 {
		t.Errorf("expected CreateMsg, got %v", out)
	} else if _, ok := out[0].(CreateMsg); !ok {
		t.Errorf("expected CreateMsg, got %T", out[0])
	}

	if out := press(t, m, "b"); len(out) != 1 {
		t.Errorf("expected BackMsg, got %v", out)
	} else if _, ok := out[0].(BackMsg); !ok {
		t.Errorf("expected BackMsg, got %T", out[0])
	}
}

func TestListEmpty(t *testing.T) {
	m := newList(t, &fakeAPI{})

	if !strings.Contains(m.View(), "No records") {
		t.Error("expected empty state")
	}
	if out := press(t, m, "enter"); len(out) != 0 {
		t.Errorf("expected no edit on empty list, got %v", out)
	}
	if !strings.Contains(m.View(), "Page 1 of 1") {
		t.Error("expected single page for empty list")
	}
}
