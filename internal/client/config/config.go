// Package config loads runtime configuration for the forge CLI.
//
// Sources, in order of precedence (later overrides earlier):
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the FileForge API
//	-k string   API key for key-based authentication
//	-s string   default chunking strategy (none, fixed, semantic)
//	-n int      default chunk size in characters
//	-o int      default chunk overlap in characters
package config

// Config holds runtime settings for the forge CLI. Path names the JSON
// file changed settings are saved to.
type Config struct {
	ServerURL     string
	APIKey        string
	ChunkStrategy string
	ChunkSize     int
	ChunkOverlap  int

	Path string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.ChunkStrategy = "semantic"
	c.ChunkSize = 1000
	c.ChunkOverlap = 100
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	if cfg.Path == "" {
		cfg.Path = defaultPath()
	}
	return cfg
}
