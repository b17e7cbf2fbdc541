// ABOUTME: Record commands for the shelter-admin CLI
// ABOUTME: list, get, create, update and delete call the authenticated data adapter

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/resources"
)

// listOptions are the list command flags
type listOptions struct {
	Page    int
	PerPage int
	Sort    string
	Order   string
	Filters []string
}

// writeOptions are the create and update flags
type writeOptions struct {
	Data string
	Sets []string
}

var (
	listOpts  = listOptions{Page: 1, PerPage: 25, Order: "ASC"}
	writeOpts writeOptions
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resources that can be administered",
	Run: func(cmd *cobra.Command, args []string) {
		exit(runResources(os.Stdout))
	},
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List records of a resource",
	Long: `List one page of records.

Example:
  shelter-admin list shelters --sort capacity --order DESC --filter isActive=true`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(runList(cmd.Context(), os.Stdout, args[0], listOpts))
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exit(runGet(cmd.Context(), os.Stdout, args[0], args[1]))
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record",
	Long: `Create a record from a JSON object and/or field assignments.

Values given with --set are parsed as JSON when possible, otherwise taken as text.

Example:
  shelter-admin create shelters --set name=North --set capacity=40 --set isActive=true`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(runCreate(cmd.Context(), os.Stdout, args[0], writeOpts))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Update a record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exit(runUpdate(cmd.Context(), os.Stdout, args[0], args[1], writeOpts))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>...",
	Short: "Delete records",
	Long:  `Delete records one at a time, stopping at the first failure.`,
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exit(runDelete(cmd.Context(), os.Stdout, args[0], args[1:]))
	},
}

func init() {
	rootCmd.AddCommand(resourcesCmd, listCmd, getCmd, createCmd, updateCmd, deleteCmd)

	listCmd.Flags().IntVar(&listOpts.Page, "page", 1, "Page number (1-based)")
	listCmd.Flags().IntVar(&listOpts.PerPage, "per-page", 25, "Records per page")
	listCmd.Flags().StringVar(&listOpts.Sort, "sort", "id", "Field to sort by")
	listCmd.Flags().StringVar(&listOpts.Order, "order", "ASC", "Sort order: ASC or DESC")
	listCmd.Flags().StringArrayVar(&listOpts.Filters, "filter", nil, "Filter as field=value (repeatable; q=text for full-text search)")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&writeOpts.Data, "data", "", "Record as a JSON object")
		c.Flags().StringArrayVar(&writeOpts.Sets, "set", nil, "Field as field=value (repeatable, applied after --data)")
	}
}

// runResources prints the resource registry and returns exit code
func runResources(w io.Writer) int {
	if IsJSONOutput() {
		out := make([]map[string]any, 0, len(resources.All))
		for _, r := range resources.All {
			cols := make([]string, len(r.Columns))
			for i, c := range r.Columns {
				cols[i] = c.Source
			}
			out = append(out, map[string]any{
				"name":    r.Name,
				"path":    r.Path,
				"label":   r.Label,
				"columns": cols,
			})
		}
		writeJSON(w, out)
		return exitOK
	}

	rows := make([][]string, 0, len(resources.All))
	for _, r := range resources.All {
		cols := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			cols[i] = c.Source
		}
		rows = append(rows, []string{r.Name, r.Path, r.Label, strings.Join(cols, ", ")})
	}
	fmt.Fprintln(w, renderTable([]string{"Name", "Path", "Label", "Columns"}, rows))
	return exitOK
}

// runList fetches one page and returns exit code
func runList(ctx context.Context, w io.Writer, name string, opts listOptions) int {
	res, params, err := listParams(name, opts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	return withDeps(w, func(d *deps) int {
		result, err := d.client.GetList(ctx, res.Path, params)
		if err != nil {
			return failure(w, err)
		}

		if IsJSONOutput() {
			writeJSON(w, result)
		} else {
			fmt.Fprintln(w, formatListHuman(res, params, result))
		}
		return exitOK
	})
}

// listParams validates the flags and builds the adapter parameters
func listParams(name string, opts listOptions) (resources.Resource, client.ListParams, error) {
	res, err := resolveResource(name)
	if err != nil {
		return res, client.ListParams{}, err
	}
	if opts.Page < 1 {
		return res, client.ListParams{}, fmt.Errorf("--page must be at least 1, got %d", opts.Page)
	}
	if opts.PerPage < 1 {
		return res, client.ListParams{}, fmt.Errorf("--per-page must be at least 1, got %d", opts.PerPage)
	}
	order := strings.ToUpper(opts.Order)
	if order != "ASC" && order != "DESC" {
		return res, client.ListParams{}, fmt.Errorf("--order must be ASC or DESC, got %q", opts.Order)
	}
	filter, err := parseAssignments(opts.Filters)
	if err != nil {
		return res, client.ListParams{}, fmt.Errorf("invalid --filter: %w", err)
	}

	return res, client.ListParams{
		Filter:     filter,
		Pagination: client.Pagination{Page: opts.Page, PerPage: opts.PerPage},
		Sort:       client.Sort{Field: opts.Sort, Order: order},
	}, nil
}

// formatListHuman formats a page of records as a table
func formatListHuman(res resources.Resource, params client.ListParams, result *client.ListResult) string {
	if len(result.Data) == 0 {
		return fmt.Sprintf("No %s found.", strings.ToLower(res.Label))
	}

	headers := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		headers[i] = c.Title
	}
	rows := make([][]string, len(result.Data))
	for i, rec := range result.Data {
		rows[i] = res.Row(rec)
	}

	pages := 1
	if per := params.Pagination.PerPage; per > 0 && result.Total > 0 {
		pages = (result.Total + per - 1) / per
	}
	start := (params.Pagination.Page-1)*params.Pagination.PerPage + 1
	end := start + len(result.Data) - 1

	return fmt.Sprintf("%s\n%s\nShowing %d-%d of %d (page %d of %d)",
		res.Label,
		renderTable(headers, rows),
		start, end, result.Total, params.Pagination.Page, pages)
}

// runGet fetches one record and returns exit code
func runGet(ctx context.Context, w io.Writer, name, id string) int {
	res, err := resolveResource(name)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	return withDeps(w, func(d *deps) int {
		result, err := d.client.GetOne(ctx, res.Path, id)
		if err != nil {
			return failure(w, err)
		}
		printRecord(w, res, "", result.Data)
		return exitOK
	})
}

// runCreate creates a record and returns exit code
func runCreate(ctx context.Context, w io.Writer, name string, opts writeOptions) int {
	res, data, err := writeData(name, opts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	return withDeps(w, func(d *deps) int {
		result, err := d.client.Create(ctx, res.Path, data)
		if err != nil {
			return failure(w, err)
		}
		printRecord(w, res, "Created", result.Data)
		return exitOK
	})
}

// runUpdate replaces a record and returns exit code
func runUpdate(ctx context.Context, w io.Writer, name, id string, opts writeOptions) int {
	res, data, err := writeData(name, opts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	data["id"] = id

	return withDeps(w, func(d *deps) int {
		result, err := d.client.Update(ctx, res.Path, id, data)
		if err != nil {
			return failure(w, err)
		}
		printRecord(w, res, "Updated", result.Data)
		return exitOK
	})
}

// runDelete deletes records and returns exit code
func runDelete(ctx context.Context, w io.Writer, name string, ids []string) int {
	res, err := resolveResource(name)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	return withDeps(w, func(d *deps) int {
		deleted, err := d.client.DeleteMany(ctx, res.Path, ids)

		if IsJSONOutput() {
			out := map[string]any{"deleted": deleted}
			if err != nil {
				out["error"] = err.Error()
			}
			writeJSON(w, out)
		} else if len(deleted) > 0 {
			fmt.Fprintf(w, "Deleted %s %s\n", strings.ToLower(res.Label), joinIDs(deleted))
		}

		if err != nil {
			if IsJSONOutput() {
				if rejected(err) {
					return exitRejected
				}
				return exitError
			}
			return failure(w, err)
		}
		return exitOK
	})
}

func resolveResource(name string) (resources.Resource, error) {
	res, ok := resources.Lookup(name)
	if !ok {
		return res, fmt.Errorf("unknown resource %q (expected one of: %s)", name, strings.Join(resources.Names(), ", "))
	}
	return res, nil
}

// writeData builds the record body from --data and --set
func writeData(name string, opts writeOptions) (resources.Resource, client.Record, error) {
	res, err := resolveResource(name)
	if err != nil {
		return res, nil, err
	}

	data := client.Record{}
	if opts.Data != "" {
		var decoded client.Record
		if err := json.Unmarshal([]byte(opts.Data), &decoded); err != nil {
			return res, nil, fmt.Errorf("--data must be a JSON object: %w", err)
		}
		if decoded == nil {
			return res, nil, fmt.Errorf("--data must be a JSON object, got %s", strings.TrimSpace(opts.Data))
		}
		data = decoded
	}
	sets, err := parseAssignments(opts.Sets)
	if err != nil {
		return res, nil, fmt.Errorf("invalid --set: %w", err)
	}
	for k, v := range sets {
		data[k] = v
	}
	if len(data) == 0 {
		return res, nil, fmt.Errorf("no fields given, use --data or --set")
	}
	return res, data, nil
}

// parseAssignments parses field=value pairs. Values are decoded as JSON when
// they parse, so numbers and booleans keep their type.
func parseAssignments(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			out[k] = decoded
		} else {
			out[k] = v
		}
	}
	return out, nil
}

// printRecord writes rec as JSON or as aligned field lines
func printRecord(w io.Writer, res resources.Resource, verb string, rec client.Record) {
	if IsJSONOutput() {
		writeJSON(w, rec)
		return
	}
	if verb != "" {
		fmt.Fprintf(w, "%s %s #%s\n", verb, strings.ToLower(res.Label), rec.ID())
	}
	fmt.Fprintln(w, formatRecordHuman(res, rec))
}

// formatRecordHuman lists the resource's columns first, then the other fields sorted
func formatRecordHuman(res resources.Resource, rec client.Record) string {
	type line struct{ label, value string }
	var lines []line
	seen := map[string]bool{}

	for _, c := range res.Columns {
		if _, ok := rec[c.Source]; !ok {
			continue
		}
		seen[c.Source] = true
		lines = append(lines, line{c.Title, resources.FormatCell(c, rec)})
	}
	var rest []string
	for k := range rec {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		lines = append(lines, line{k, resources.FormatValue(rec[k])})
	}

	width := 0
	for _, l := range lines {
		width = max(width, len(l.label)+1)
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s  %s", width, l.label+":", l.value)
	}
	return b.String()
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func joinIDs(ids []string) string {
	tagged := make([]string, len(ids))
	for i, id := range ids {
		tagged[i] = "#" + id
	}
	return strings.Join(tagged, ", ")
}
