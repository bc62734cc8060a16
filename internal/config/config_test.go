package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "https://krawl.app/api", cfg.APIBaseURL)
	assert.Contains(t, cfg.TileURLTemplate, "{z}")
	assert.Equal(t, "./krawl-data", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestJsonConfig_AcceptsDurationStrings(t *testing.T) {
	var jc JsonConfig
	require.NoError(t, json.Unmarshal([]byte(`{
		"api_base_url": "http://localhost:8080/api",
		"data_dir": "/tmp/krawl",
		"sync_interval": "45s"
	}`), &jc))

	assert.Equal(t, "http://localhost:8080/api", jc.APIBaseURL)
	assert.Equal(t, "/tmp/krawl", jc.DataDir)
	assert.Equal(t, 45*time.Second, time.Duration(jc.SyncInterval.Duration))
}

func TestJsonOverlay_KeepsDefaultsForMissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var jc JsonConfig
	require.NoError(t, json.Unmarshal([]byte(`{"data_dir": "/tmp/krawl"}`), &jc))

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}

	assert.Equal(t, "/tmp/krawl", cfg.DataDir)
	assert.Equal(t, "https://krawl.app/api", cfg.APIBaseURL)
}
