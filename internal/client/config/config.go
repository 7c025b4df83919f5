package config

import "time"

// Config holds runtime settings for the panel CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API (no trailing slash).
//   - SessionCheckInterval: how often the session timer re-evaluates the
//     stored session. The timer also fires one immediate check on start.
//   - SessionFile: path of the persisted session file. Empty means the
//     default location under the user's home directory.
type Config struct {
	ServerBaseURL        string
	SessionCheckInterval time.Duration
	SessionFile          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.SessionCheckInterval = 60 * time.Second
	c.SessionFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
