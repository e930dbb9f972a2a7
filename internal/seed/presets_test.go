package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	assert.Equal(t, []string{"demo", "load", "tiny"}, presets.Names())

	demo, err := presets.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, 25, demo.Users)
	assert.Equal(t, DefaultPassword, demo.Password)
	assert.Equal(t, 4, demo.Workers)

	load, err := presets.Get("load")
	require.NoError(t, err)
	assert.Equal(t, 8, load.Workers)

	_, err = presets.Get("missing")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestParsePresets_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed":      "presets: [",
		"empty":          "presets: {}",
		"negative count": "presets:\n  bad:\n    users: -1\n",
		"ratio too big":  "presets:\n  bad:\n    users: 3\n    like_ratio: 2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePresets([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPresetFile_OverridesBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	doc := `presets:
  demo:
    users: 3
    posts_per_user: 1
  custom:
    users: 2
    conversations: 1
    messages_per_conversation: 2
    password: Another-Pass-99
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	presets, err := LoadPresetFile(path)
	require.NoError(t, err)
	assert.Contains(t, presets.Names(), "tiny")

	demo, err := presets.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, 3, demo.Users)

	custom, err := presets.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, "Another-Pass-99", custom.Password)

	_, err = LoadPresetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
