package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/seoaudit/internal/auditclient"
	"github.com/raysh454/seoaudit/internal/demo"
	"github.com/raysh454/seoaudit/internal/webclient"
)

const (
	// AppName is used for the XDG config and data directories.
	AppName = "seoaudit"

	// DefaultAPIBase is the local development address of the audit API.
	DefaultAPIBase = "http://localhost:8000/api/v1"

	// EnvAPIBase overrides API.BaseURL when set.
	EnvAPIBase = "SEOAUDIT_API_BASE"
)

var (
	ErrInvalidAPIBase = errors.New("api base url must be an absolute http(s) url")
	ErrInvalidPoll    = errors.New("poll settings must not be negative")
	ErrInvalidLogFmt  = errors.New("log format must be json or text")
)

// APIConfig points the client at the audit API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`

	// Offline swaps the HTTP client for an in-memory one that produces demo
	// results, so the tool works without a backend.
	Offline bool `yaml:"offline"`
}

// LogConfig selects the logger backend.
type LogConfig struct {
	// Format is "json" (JSON lines) or "text" (logrus text formatter).
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// HistoryConfig controls the local audit history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig holds the console server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the complete runtime configuration.
type Config struct {
	API       APIConfig              `yaml:"api"`
	WebClient webclient.Config       `yaml:"webclient"`
	Poll      auditclient.PollConfig `yaml:"poll"`
	Log       LogConfig              `yaml:"log"`
	History   HistoryConfig          `yaml:"history"`
	Server    ServerConfig           `yaml:"server"`
	Demo      demo.Config            `yaml:"demo"`

	// ReportDir is where downloaded PDFs and exports are written.
	ReportDir string `yaml:"report_dir"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{BaseURL: DefaultAPIBase},
		WebClient: webclient.Config{
			Backend:   webclient.BackendNetHTTP,
			Timeout:   30 * time.Second,
			UserAgent: AppName + "/1.0",
		},
		Poll: auditclient.DefaultPollConfig(),
		Log:  LogConfig{Format: "json", Level: "info"},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DataDir(), "history.db"),
		},
		Server:    ServerConfig{Addr: ":8080"},
		Demo:      demo.DefaultConfig(),
		ReportDir: ".",
	}
}

// ConfigDir is the XDG config directory of the tool.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir is the XDG data directory of the tool.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadConfig reads path over the defaults, applies environment overrides
// and validates the result. An empty path reads DefaultConfigPath, which
// may be missing; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		c.API.BaseURL = v
	}
}

// Validate fails fast on settings that would only surface later as
// confusing runtime errors.
func (c *Config) Validate() error {
	if !c.API.Offline {
		u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: %q", ErrInvalidAPIBase, c.API.BaseURL)
		}
	}
	if c.Poll.Interval < 0 || c.Poll.MaxAttempts < 0 || c.Poll.MaxDuration < 0 || c.Poll.RequestTimeout < 0 {
		return ErrInvalidPoll
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFmt, c.Log.Format)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history path is required when history is enabled")
	}
	return nil
}
