package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, "semantic", c.ChunkStrategy)
	assert.Equal(t, 1000, c.ChunkSize)
	assert.Equal(t, 100, c.ChunkOverlap)
	assert.Empty(t, c.APIKey)
}

func TestLoadConfig_DefaultsWithoutFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "semantic", cfg.ChunkStrategy)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"server_url":     "http://json:9000",
		"chunk_strategy": "fixed",
	})
	os.Args = []string{"testbin", "-c", path, "-a", "http://flags:7000"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flags:7000", cfg.ServerURL, "flags win over the JSON file")
	assert.Equal(t, "fixed", cfg.ChunkStrategy, "JSON still applies where no flag is set")
}
