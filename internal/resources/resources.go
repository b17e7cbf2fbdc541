// ABOUTME: Registry of the resources exposed by the admin dashboard
// ABOUTME: Defines backend paths, labels and list columns with cell formatting

package resources

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/markalston/shelter-admin/internal/client"
)

// Kind is how a column's value is rendered
type Kind int

const (
	KindText Kind = iota
	KindBoolean
	KindDate
	KindNumber
)

// DateLayout is used for date columns
const DateLayout = "2006-01-02"

// Column is a list column
type Column struct {
	Source string
	Title  string
	Kind   Kind
	Width  int
}

// Resource is an administrable backend collection
type Resource struct {
	Name    string // short name used on the command line
	Path    string // path relative to the API base URL
	Label   string
	Columns []Column
}

// All lists the resources in menu order
var All = []Resource{
	{
		Name:  "users",
		Path:  "users/users",
		Label: "Users",
		Columns: []Column{
			{Source: "id", Title: "ID", Width: 10},
			{Source: "name", Title: "Name", Width: 24},
			{Source: "email", Title: "Email", Width: 32},
		},
	},
	{
		Name:  "shelters",
		Path:  "shelters/shelters",
		Label: "Shelters",
		Columns: []Column{
			{Source: "id", Title: "ID", Width: 10},
			{Source: "name", Title: "Name", Width: 24},
			{Source: "location", Title: "Location", Width: 24},
			{Source: "capacity", Title: "Capacity", Kind: KindNumber, Width: 10},
			{Source: "isActive", Title: "Active", Kind: KindBoolean, Width: 8},
		},
	},
	{
		Name:  "resources",
		Path:  "resources/resources",
		Label: "Resources",
		Columns: []Column{
			{Source: "id", Title: "ID", Width: 10},
			{Source: "name", Title: "Name", Width: 24},
			{Source: "type", Title: "Type", Width: 16},
			{Source: "quantity", Title: "Quantity", Kind: KindNumber, Width: 10},
			{Source: "createdAt", Title: "Created", Kind: KindDate, Width: 12},
		},
	},
	{
		Name:  "blocked-paths",
		Path:  "blocked-paths/blocked-paths",
		Label: "Blocked Paths",
		Columns: []Column{
			{Source: "id", Title: "ID", Width: 10},
			{Source: "path", Title: "Path", Width: 32},
			{Source: "isBlocked", Title: "Blocked", Kind: KindBoolean, Width: 8},
			{Source: "blockedAt", Title: "Blocked At", Kind: KindDate, Width: 12},
		},
	},
}

// Lookup finds a resource by short name or backend path
func Lookup(name string) (Resource, bool) {
	name = strings.Trim(strings.ToLower(name), "/")
	for _, r := range All {
		if r.Name == name || r.Path == name {
			return r, true
		}
	}
	return Resource{}, false
}

// Names returns the short names of all resources
func Names() []string {
	names := make([]string, len(All))
	for i, r := range All {
		names[i] = r.Name
	}
	return names
}

// Column returns the column for source, if the resource lists it
func (r Resource) Column(source string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Source == source {
			return c, true
		}
	}
	return Column{}, false
}

// Row formats rec as one cell per column
func (r Resource) Row(rec client.Record) []string {
	row := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		row[i] = FormatCell(c, rec)
	}
	return row
}

// FormatCell renders the column's value from rec
func FormatCell(c Column, rec client.Record) string {
	v, ok := rec[c.Source]
	if !ok || v == nil {
		return ""
	}
	switch c.Kind {
	case KindBoolean:
		return formatBool(v)
	case KindDate:
		return formatDate(v)
	default:
		return FormatValue(v)
	}
}

// FormatValue renders any JSON value as text
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func formatBool(v any) string {
	var b bool
	switch val := v.(type) {
	case bool:
		b = val
	case string:
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return val
		}
		b = parsed
	case float64:
		b = val != 0
	default:
		return FormatValue(v)
	}
	if b {
		return "yes"
	}
	return "no"
}

// formatDate accepts RFC 3339 strings, plain dates and epoch milliseconds
func formatDate(v any) string {
	switch val := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout} {
			if t, err := time.Parse(layout, val); err == nil {
				return t.Format(DateLayout)
			}
		}
		return val
	case float64:
		return time.UnixMilli(int64(val)).UTC().Format(DateLayout)
	default:
		return FormatValue(v)
	}
}
