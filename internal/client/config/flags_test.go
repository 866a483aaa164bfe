package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		expected    Config
	}{
		{
			name: "all flags set",
			args: []string{"cmd", "-a", "http://srv:9090", "-k", "ff_live_x", "-s", "fixed", "-n", "800", "-o", "50"},
			expected: Config{
				ServerURL: "http://srv:9090", APIKey: "ff_live_x",
				ChunkStrategy: "fixed", ChunkSize: 800, ChunkOverlap: 50,
			},
		},
		{
			name:     "unset flags keep current values",
			args:     []string{"cmd", "-a", "http://srv:9090"},
			expected: Config{ServerURL: "http://srv:9090", ChunkStrategy: "semantic", ChunkSize: 1000, ChunkOverlap: 100},
		},
		{
			name:        "non-numeric chunk size panics",
			args:        []string{"cmd", "-n", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			cfg := &Config{ChunkStrategy: "semantic", ChunkSize: 1000, ChunkOverlap: 100}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}
