package config

import (
	"encoding/json"
	"os"

	"fileforge/internal/flagx"
)

// jsonConfig is the DTO for the JSON config file. Zero values are treated
// as "not set" and leave the existing Config value alone.
type jsonConfig struct {
	ServerURL     string `json:"server_url"`
	APIKey        string `json:"api_key"`
	ChunkStrategy string `json:"chunk_strategy"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  *int   `json:"chunk_overlap"`
}

// parseJSON overlays cfg with values from the JSON file named by -c or
// -config. No flag means no JSON is loaded. Read or parse errors panic;
// a broken config file should stop the CLI before it does anything.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}
	cfg.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	if jc.ChunkStrategy != "" {
		cfg.ChunkStrategy = jc.ChunkStrategy
	}
	if jc.ChunkSize > 0 {
		cfg.ChunkSize = jc.ChunkSize
	}
	if jc.ChunkOverlap != nil {
		cfg.ChunkOverlap = *jc.ChunkOverlap
	}
}
