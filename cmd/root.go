// ABOUTME: Root command for the shelter-admin CLI
// ABOUTME: Handles global flags, configuration and the shared session/client wiring

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/shelter-admin/internal/auth"
	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/config"
	"github.com/markalston/shelter-admin/internal/logger"
	"github.com/markalston/shelter-admin/internal/session"
)

var (
	apiURL     string
	configDir  string
	themeName  string
	jsonOutput bool
)

// Exit codes
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "shelter-admin",
	Short: "Admin dashboard for the shelter network backend",
	Long: `shelter-admin manages users, shelters, resources and blocked paths on a
shelter network backend. Run it without a subcommand to open the dashboard.

Environment Variables:
  SHELTER_ADMIN_API_URL       Backend API URL (default: http://localhost:3000)
  SHELTER_ADMIN_CONFIG_DIR    Session and log directory (default: ~/.config/shelter-admin)
  SHELTER_ADMIN_THEME         light or dark (default: light)
  SHELTER_ADMIN_TITLE         Dashboard title (default: Admin Dashboard)
  SHELTER_ADMIN_HTTP_TIMEOUT  Request timeout (default: 30s)
  LOG_LEVEL, LOG_FORMAT       Logging for debug.log in the config directory`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runTUI(cmd.Context()))
	},
}

// Execute runs the root command
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SHELTER_ADMIN_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Session and log directory (overrides SHELTER_ADMIN_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Dashboard theme: light or dark (overrides SHELTER_ADMIN_THEME)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if apiURL != "" {
		u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
		if !strings.Contains(u, "://") {
			u = "http://" + u
		}
		cfg.APIURL = u
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if themeName != "" {
		t := strings.ToLower(strings.TrimSpace(themeName))
		if t != config.ThemeLight && t != config.ThemeDark {
			return nil, fmt.Errorf("--theme must be %q or %q, got %q", config.ThemeLight, config.ThemeDark, themeName)
		}
		cfg.Theme = t
	}
	return cfg, nil
}

// deps is the wiring shared by every command
type deps struct {
	cfg      *config.Config
	store    *session.FileStore
	sessions *session.Manager
	client   *client.Client
	authn    *auth.Authenticator
	closeLog func() error
}

func setup() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	closeLog, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.ConfigDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	store := session.NewFileStore(cfg.ConfigDir)
	sessions, err := session.NewManager(store)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	c := client.New(cfg.APIURL, sessions, client.WithTimeout(cfg.HTTPTimeout))
	slog.Debug("configured", "api_url", cfg.APIURL, "config_dir", cfg.ConfigDir, "authenticated", sessions.Authenticated())

	return &deps{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		client:   c,
		authn:    auth.New(c, sessions),
		closeLog: closeLog,
	}, nil
}

func (d *deps) Close() {
	if d.closeLog != nil {
		d.closeLog()
	}
}

// withDeps runs fn with the shared wiring, reporting setup failures to w
func withDeps(w io.Writer, fn func(d *deps) int) int {
	d, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer d.Close()
	return fn(d)
}

// failure prints err and maps it to an exit code
func failure(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	if rejected(err) {
		if client.IsUnauthorized(err) {
			fmt.Fprintln(w, "Run 'shelter-admin login' to sign in.")
		}
		return exitRejected
	}
	return exitError
}

func rejected(err error) bool {
	return client.IsUnauthorized(err) ||
		errors.Is(err, auth.ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrMissingCredentials)
}
