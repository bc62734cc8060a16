package config

import "time"

// Config holds runtime settings for the offline engine.
//
// Fields:
//   - APIBaseURL: root of the remote REST API, e.g. "https://krawl.app/api".
//   - TileURLTemplate: tile endpoint with {z}/{x}/{y} placeholders.
//   - DataDir: directory holding the SQLite database and the tile cache.
//   - SyncInterval: how often the background processor drains the sync queue.
type Config struct {
	APIBaseURL      string
	TileURLTemplate string
	DataDir         string
	SyncInterval    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://krawl.app/api"
	c.TileURLTemplate = "https://tiles.krawl.app/{z}/{x}/{y}.png"
	c.DataDir = "./krawl-data"
	c.SyncInterval = 30 * time.Second
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
