package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags are dropped",
			args:    []string{"-x", "1", "-y"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag followed by another flag has no value",
			args:    []string{"-c", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "empty input",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "conf.json"}
		assert.Equal(t, "conf.json", ConfigFileFlag())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"bin", "-config=alt.json"}
		assert.Equal(t, "alt.json", ConfigFileFlag())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"bin", "-a", "localhost"}
		assert.Equal(t, "", ConfigFileFlag())
	})
}
