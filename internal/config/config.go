package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/calgrid/internal/calendar"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of `calgrid serve`.
	Listen string `yaml:"listen"`

	// DBPath is the SQLite file used by the server and by the terminal
	// client when no APIURL is set.
	DBPath string `yaml:"db_path"`

	// APIURL points the terminal client at a running server. Empty means
	// the client opens DBPath directly.
	APIURL string `yaml:"api_url"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start"`

	// DefaultView is the view the client opens with: month, week or day.
	DefaultView string `yaml:"default_view"`

	// RowsPerHour scales the week/day hour grid.
	RowsPerHour int `yaml:"rows_per_hour"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		WeekStart:   "sunday",
		DefaultView: "month",
		RowsPerHour: 1,
	}
}

// Normalize fills in missing or unknown values so partially-filled files
// still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "sunday"
	}
	c.DefaultView = strings.ToLower(strings.TrimSpace(c.DefaultView))
	if _, err := calendar.ParseMode(c.DefaultView); err != nil {
		c.DefaultView = "month"
	}
	if c.RowsPerHour < 1 {
		c.RowsPerHour = 1
	}
	if c.RowsPerHour > 4 {
		c.RowsPerHour = 4
	}
}

// Calendar converts the display settings into engine configuration.
func (c *Config) Calendar() calendar.Config {
	ws, err := calendar.ParseWeekStart(c.WeekStart)
	if err != nil {
		ws = time.Sunday
	}
	return calendar.Config{WeekStart: ws}
}

// Mode returns the configured default view.
func (c *Config) Mode() calendar.Mode {
	m, _ := calendar.ParseMode(c.DefaultView)
	return m
}

// Load loads configuration from the given YAML path. A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}

// DefaultPath returns ~/.config/calgrid/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "calgrid", "config.yaml"), nil
}
