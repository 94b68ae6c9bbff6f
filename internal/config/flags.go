package config

import (
	"flag"
	"fmt"
)

// parseFlags overrides server and storage settings from the command line.
//
// Supported flags (short and long forms):
//
//	-h, --host   server host address
//	-p, --port   server port
//	-c, --cache  cache directory path
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("inventory-api", flag.ContinueOnError)

	fs.StringVar(&cfg.Server.Host, "h", cfg.Server.Host, "server host address")
	fs.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "server host address")
	fs.IntVar(&cfg.Server.Port, "p", cfg.Server.Port, "server port")
	fs.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "server port")
	fs.StringVar(&cfg.Storage.CacheDir, "c", cfg.Storage.CacheDir, "cache directory path")
	fs.StringVar(&cfg.Storage.CacheDir, "cache", cfg.Storage.CacheDir, "cache directory path")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	return nil
}
