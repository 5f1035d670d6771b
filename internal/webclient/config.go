package webclient

import "time"

type Backend string

const (
	BackendNetHTTP Backend = "nethttp"
	BackendResty   Backend = "resty"
)

// Config selects and tunes the transport backend. It lives here rather than
// in app so app.Config can embed it without an import cycle.
type Config struct {
	Backend Backend `yaml:"backend"`

	// Timeout bounds a whole exchange including reading the body; 0 means 30s.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent on every request when non-empty.
	UserAgent string `yaml:"user_agent"`

	// MaxBodyBytes caps a response body, PDFs included; 0 means 64 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) maxBody() int64 {
	if c.MaxBodyBytes <= 0 {
		return 64 << 20
	}
	return c.MaxBodyBytes
}
