// ABOUTME: Session commands for the shelter-admin CLI
// ABOUTME: login, logout and whoami share the session file with the dashboard

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/shelter-admin/internal/session"
	"github.com/markalston/shelter-admin/internal/tui/styles"
)

var (
	loginEmail    string
	loginPassword string
)

// now is replaced in tests
var now = time.Now

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an administrator",
	Long: `Sign in to the backend and store the session for the dashboard and other commands.

Missing credentials are prompted for. Only administrators can sign in.`,
	Run: func(cmd *cobra.Command, args []string) {
		if loginEmail == "" || loginPassword == "" {
			if err := promptCredentials(&loginEmail, &loginPassword); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}
		exit(runLogin(cmd.Context(), os.Stdout, loginEmail, loginPassword))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		exit(runLogout(os.Stdout))
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in administrator",
	Long:  `Show the stored session. Exits 1 when nobody is signed in or the token has expired.`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runWhoami(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Administrator email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Administrator password (prompted when omitted)")
}

// promptCredentials asks for whichever credential is missing
func promptCredentials(email, password *string) error {
	theme := styles.New(styles.Light)
	if cfg, err := loadConfig(); err == nil {
		theme = styles.New(styles.ParseMode(cfg.Theme))
	}

	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(theme.Form()).Run()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, email, password string) int {
	return withDeps(w, func(d *deps) int {
		s, err := d.authn.Login(ctx, strings.TrimSpace(email), password)
		if err != nil {
			return failure(w, err)
		}

		if IsJSONOutput() {
			writeJSON(w, sessionJSON(d, s, nil))
		} else {
			fmt.Fprintf(w, "Signed in as %s\n", s.UserName)
		}
		return exitOK
	})
}

// runLogout clears the session and returns exit code
func runLogout(w io.Writer) int {
	return withDeps(w, func(d *deps) int {
		if err := d.authn.Logout(); err != nil {
			return failure(w, err)
		}
		if IsJSONOutput() {
			writeJSON(w, map[string]any{"authenticated": false})
		} else {
			fmt.Fprintln(w, "Signed out")
		}
		return exitOK
	})
}

// runWhoami prints the stored session and returns exit code
func runWhoami(w io.Writer) int {
	return withDeps(w, func(d *deps) int {
		s := d.sessions.Current()
		if !s.Authenticated() {
			if IsJSONOutput() {
				writeJSON(w, map[string]any{"authenticated": false})
			} else {
				fmt.Fprintln(w, "Not signed in. Run 'shelter-admin login' to sign in.")
			}
			return exitRejected
		}

		claims, err := session.InspectToken(s.Token)
		if err != nil && !errors.Is(err, session.ErrNotJWT) {
			return failure(w, err)
		}

		if IsJSONOutput() {
			writeJSON(w, sessionJSON(d, s, claims))
		} else {
			fmt.Fprintln(w, formatWhoamiHuman(d.cfg.APIURL, s, claims))
		}

		if claims != nil && claims.Expired(now()) {
			return exitRejected
		}
		return exitOK
	})
}

func sessionJSON(d *deps, s session.Session, claims *session.TokenClaims) map[string]any {
	out := map[string]any{
		"authenticated": s.Authenticated(),
		"user":          s.UserName,
		"role":          string(s.Role),
		"api_url":       d.cfg.APIURL,
	}
	if claims != nil && !claims.ExpiresAt.IsZero() {
		out["expires_at"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
		out["expired"] = claims.Expired(now())
	}
	return out
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(url string, s session.Session, claims *session.TokenClaims) string {
	expires := "unknown (opaque token)"
	if claims != nil {
		switch {
		case claims.ExpiresAt.IsZero():
			expires = "never"
		case claims.Expired(now()):
			expires = claims.ExpiresAt.UTC().Format(time.RFC3339) + " (expired)"
		default:
			left := claims.ExpiresAt.Sub(now()).Round(time.Minute)
			expires = fmt.Sprintf("%s (in %s)", claims.ExpiresAt.UTC().Format(time.RFC3339), left)
		}
	}

	return fmt.Sprintf(`User:     %s
Role:     %s
Backend:  %s
Expires:  %s`, s.UserName, s.Role, url, expires)
}

func writeJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
