// ABOUTME: Login flow for the admin dashboard
// ABOUTME: Requires an admin principal, persists the session, and handles logout

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/shelter-admin/internal/client"
	"github.com/markalston/shelter-admin/internal/session"
)

var (
	// ErrInvalidCredentials covers both a rejected password and a non-admin role
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrLoginFailed covers transport and response parsing failures
	ErrLoginFailed = errors.New("An error occurred while logging in")

	// ErrMissingCredentials is returned before any request when a field is empty
	ErrMissingCredentials = errors.New("email and password are required")
)

// LoginAPI is the login endpoint
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
}

// Authenticator runs the login and logout transitions against a session manager
type Authenticator struct {
	api      LoginAPI
	sessions *session.Manager
	logger   *slog.Logger
}

// New creates an authenticator
func New(api LoginAPI, sessions *session.Manager) *Authenticator {
	return &Authenticator{
		api:      api,
		sessions: sessions,
		logger:   slog.Default(),
	}
}

// Login authenticates and persists the session on success.
// A failed login never touches the stored session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (session.Session, error) {
	if email == "" || password == "" {
		return session.Session{}, ErrMissingCredentials
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.logger.Warn("login request failed", "error", err)
		return session.Session{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	// Wrong role and wrong credentials are deliberately indistinguishable to the caller
	if resp.User == nil {
		a.logger.Info("login rejected", "reason", "no principal", "status", resp.StatusCode)
		return session.Session{}, ErrInvalidCredentials
	}
	if session.ParseRole(resp.User.Role) != session.RoleAdmin {
		a.logger.Info("login rejected", "reason", "role", "role", resp.User.Role)
		return session.Session{}, ErrInvalidCredentials
	}
	if resp.Token == "" {
		a.logger.Info("login rejected", "reason", "no token", "status", resp.StatusCode)
		return session.Session{}, ErrInvalidCredentials
	}

	s := session.Session{
		Token:    resp.Token,
		UserName: resp.User.Name,
		Role:     session.RoleAdmin,
	}
	if err := a.sessions.Set(s); err != nil {
		return session.Session{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	a.logger.Info("login succeeded", "user", s.UserName)
	return s, nil
}

// Logout clears the stored session regardless of prior state
func (a *Authenticator) Logout() error {
	if err := a.sessions.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.logger.Info("logged out")
	return nil
}

// Message returns the user-facing text for a login error
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrMissingCredentials):
		return "Email and password are required"
	default:
		return ErrLoginFailed.Error()
	}
}
