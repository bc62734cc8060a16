// Package config loads runtime configuration for the offline engine.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-t string   tile URL template with {z}/{x}/{y} placeholders
//	-d string   data directory for the local store and tile cache
//	-i int      sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://krawl.app/api",
//	  "tile_url_template": "https://tiles.krawl.app/{z}/{x}/{y}.png",
//	  "data_dir": "/var/lib/krawl",
//	  "sync_interval": "30s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
