package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/krawl-app/krawl-offline/internal/flagx"
	"github.com/krawl-app/krawl-offline/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL      string         `json:"api_base_url"`
	TileURLTemplate string         `json:"tile_url_template"`
	DataDir         string         `json:"data_dir"`
	SyncInterval    timex.Duration `json:"sync_interval"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; with no flag, nothing is loaded.
// Fields absent from the JSON keep their current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.TileURLTemplate != "" {
		cfg.TileURLTemplate = jc.TileURLTemplate
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
}
