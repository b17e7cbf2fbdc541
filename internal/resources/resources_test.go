// ABOUTME: Tests for the resource registry
// ABOUTME: Validates lookup by name or path and cell formatting per column kind

package resources

import (
	"testing"

	"github.com/markalston/shelter-admin/internal/client"
)

func TestRegistry(t *testing.T) {
	expected := map[string]string{
		"users":         "users/users",
		"shelters":      "shelters/shelters",
		"resources":     "resources/resources",
		"blocked-paths": "blocked-paths/blocked-paths",
	}
	if len(All) != len(expected) {
		t.Fatalf("expected %d resources, got %d", len(expected), len(All))
	}
	for _, r := range All {
		if expected[r.Name] != r.Path {
			t.Errorf("resource %s: expected path %s, got %s", r.Name, expected[r.Name], r.Path)
		}
		if len(r.Columns) == 0 || r.Columns[0].Source != "id" {
			t.Errorf("resource %s: expected id as first column", r.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"users", "users", true},
		{"shelters/shelters", "shelters", true},
		{"/blocked-paths/blocked-paths/", "blocked-paths", true},
		{"Resources", "resources", true},
		{"widgets", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r, ok := Lookup(tc.in)
			if ok != tc.ok || r.Name != tc.want {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tc.in, r.Name, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 4 || names[0] != "users" || names[3] != "blocked-paths" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestFormatCell(t *testing.T) {
	rec := client.Record{
		"id":        float64(3),
		"name":      "North",
		"isActive":  true,
		"isBlocked": "false",
		"createdAt": "2024-05-01T12:30:00Z",
		"blockedAt": float64(1714566600000),
		"tags":      []any{"a", "b"},
	}

	tests := []struct {
		col  Column
		want string
	}{
		{Column{Source: "id"}, "3"},
		{Column{Source: "name"}, "North"},
		{Column{Source: "missing"}, ""},
		{Column{Source: "isActive", Kind: KindBoolean}, "yes"},
		{Column{Source: "isBlocked", Kind: KindBoolean}, "no"},
		{Column{Source: "createdAt", Kind: KindDate}, "2024-05-01"},
		{Column{Source: "blockedAt", Kind: KindDate}, "2024-05-01"},
		{Column{Source: "tags"}, `["a","b"]`},
	}
	for _, tc := range tests {
		t.Run(tc.col.Source, func(t *testing.T) {
			if got := FormatCell(tc.col, rec); got != tc.want {
				t.Errorf("FormatCell(%s) = %q, want %q", tc.col.Source, got, tc.want)
			}
		})
	}
}

func TestFormatCell_UnparsableDateKept(t *testing.T) {
	got := FormatCell(Column{Source: "d", Kind: KindDate}, client.Record{"d": "yesterday"})
	if got != "yesterday" {
		t.Errorf("expected raw value, got %q", got)
	}
}

func TestRow(t *testing.T) {
	r, _ := Lookup("blocked-paths")
	row := r.Row(client.Record{"id": "p1", "path": "/a/b", "isBlocked": true})

	if len(row) != len(r.Columns) {
		t.Fatalf("expected %d cells, got %d", len(r.Columns), len(row))
	}
	if row[0] != "p1" || row[1] != "/a/b" || row[2] != "yes" || row[3] != "" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestResourceColumn(t *testing.T) {
	r, _ := Lookup("shelters")
	if c, ok := r.Column("isActive"); !ok || c.Kind != KindBoolean {
		t.Errorf("expected boolean isActive column, got %+v %v", c, ok)
	}
	if _, ok := r.Column("nope"); ok {
		t.Error("expected missing column")
	}
}
