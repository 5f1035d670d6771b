package demo

// Config holds configuration for the demo audit API.
type Config struct {
	// Addr is the listen address (default ":8000", the real backend's port).
	Addr string `yaml:"addr"`

	// PendingPolls is how many status reads report "pending" before a job
	// starts running.
	PendingPolls int `yaml:"pending_polls"`

	// RunningPolls is how many status reads report "running" before a job
	// reaches its terminal status.
	RunningPolls int `yaml:"running_polls"`

	// Seed varies generated results between demo runs.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8000",
		PendingPolls: 1,
		RunningPolls: 2,
		Seed:         1,
	}
}
