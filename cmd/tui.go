// ABOUTME: Dashboard command for the shelter-admin CLI
// ABOUTME: Wires the session watcher and data adapter into the TUI shell

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/shelter-admin/internal/session"
	"github.com/markalston/shelter-admin/internal/tui"
	"github.com/markalston/shelter-admin/internal/tui/styles"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the admin dashboard",
	Long:  `Open the interactive dashboard. This is also what runs when no subcommand is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runTUI(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI runs the dashboard until the user quits and returns exit code
func runTUI(ctx context.Context) int {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return withDeps(os.Stderr, func(d *deps) int {
		// A logout from another terminal signs the dashboard out too
		if err := session.Watch(ctx, d.sessions, d.store); err != nil {
			slog.Warn("session watcher unavailable", "error", err)
		}

		app := tui.New(d.client, d.authn, d.sessions, tui.Options{
			Theme: styles.ParseMode(d.cfg.Theme),
			Title: d.cfg.Title,
		})
		if err := tui.Run(app); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	})
}
