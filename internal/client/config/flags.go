package config

import (
	"flag"
	"os"

	"fileforge/internal/flagx"
)

// parseFlags populates cfg from command-line flags. Only the flags this
// package owns are parsed; everything else in os.Args is filtered out so
// other components can define their own.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-s", "-n", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the FileForge API")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key for key-based authentication")
	fs.StringVar(&cfg.ChunkStrategy, "s", cfg.ChunkStrategy, "default chunk strategy")
	fs.IntVar(&cfg.ChunkSize, "n", cfg.ChunkSize, "default chunk size in characters")
	fs.IntVar(&cfg.ChunkOverlap, "o", cfg.ChunkOverlap, "default chunk overlap in characters")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
