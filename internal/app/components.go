package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raysh454/seoaudit/internal/auditclient"
	"github.com/raysh454/seoaudit/internal/history"
	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/webclient"
)

// NewLogger builds the logger selected by cfg. Text output goes through
// logrus, everything else is JSON lines.
func NewLogger(cfg LogConfig, out io.Writer) logging.Logger {
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "text") {
		return logging.NewLogrusLogger(out, cfg.Level)
	}
	return logging.NewWriterLogger(out, AppName, strings.EqualFold(cfg.Level, "debug"))
}

// NewClient builds the audit client selected by cfg: an in-memory client
// in offline mode, otherwise an HTTP client over the configured webclient
// backend.
func NewClient(cfg *Config, logger logging.Logger) (auditclient.Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.API.Offline {
		fake := auditclient.NewFakeClient()
		fake.SetSeed(cfg.Demo.Seed)
		logger.Info("using offline audit client")
		return fake, nil
	}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}
	client, err := auditclient.NewHTTPClient(cfg.API.BaseURL, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new audit client: %w", err)
	}
	return client, nil
}

// OpenHistory opens the history store, or returns nil when history is
// disabled.
func OpenHistory(cfg *Config, logger logging.Logger) (*history.Store, error) {
	if cfg == nil || !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
