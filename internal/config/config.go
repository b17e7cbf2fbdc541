// ABOUTME: Configuration loader for the admin dashboard
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/markalston/shelter-admin/internal/session"
)

// Theme modes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds the dashboard settings
type Config struct {
	APIURL      string        `env:"SHELTER_ADMIN_API_URL" envDefault:"http://localhost:3000"`
	ConfigDir   string        `env:"SHELTER_ADMIN_CONFIG_DIR"`
	Theme       string        `env:"SHELTER_ADMIN_THEME" envDefault:"light"`
	Title       string        `env:"SHELTER_ADMIN_TITLE" envDefault:"Admin Dashboard"`
	HTTPTimeout time.Duration `env:"SHELTER_ADMIN_HTTP_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env (if present) and the process environment.
// Variables already set in the environment win over .env.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg.finish()
}

// LoadFrom parses configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg.finish()
}

// finish applies derived defaults and validates
func (c *Config) finish() (*Config, error) {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return nil, fmt.Errorf("SHELTER_ADMIN_API_URL must not be empty")
	}
	if !strings.Contains(c.APIURL, "://") {
		c.APIURL = "http://" + c.APIURL
	}

	if c.ConfigDir == "" {
		c.ConfigDir = session.DefaultConfigDir()
	}

	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return nil, fmt.Errorf("SHELTER_ADMIN_THEME must be %q or %q, got %q", ThemeLight, ThemeDark, c.Theme)
	}

	if c.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("SHELTER_ADMIN_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return c, nil
}
