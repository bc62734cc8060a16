package config

import (
	"flag"
	"os"
	"time"

	"github.com/krawl-app/krawl-offline/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote API (default from Config)
//	-t string   tile URL template with {z}/{x}/{y} placeholders
//	-d string   data directory for the local store and tile cache
//	-i int      sync interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the remote API")
	fs.StringVar(&cfg.TileURLTemplate, "t", cfg.TileURLTemplate, "tile URL template ({z}/{x}/{y} placeholders)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for the local store and tile cache")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
