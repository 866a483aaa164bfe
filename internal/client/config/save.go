package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// defaultPath is where settings land when no -c/-config flag names a file.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".forge.json"
	}
	return filepath.Join(home, ".forge.json")
}

// Save writes the config back to its file so settings survive the session.
func (c *Config) Save() error {
	overlap := c.ChunkOverlap
	jc := jsonConfig{
		ServerURL:     c.ServerURL,
		APIKey:        c.APIKey,
		ChunkStrategy: c.ChunkStrategy,
		ChunkSize:     c.ChunkSize,
		ChunkOverlap:  &overlap,
	}
	data, err := json.MarshalIndent(jc, "", "  ")
	if err != nil {
		return err
	}
	path := c.Path
	if path == "" {
		path = defaultPath()
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
