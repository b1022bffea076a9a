package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadMissingWritesDefault tests first-run behavior
func TestLoadMissingWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), RemapConfigName)

	cfg, err := LoadRemapConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.KnownNames)
	assert.NotNil(t, cfg.KnownReservedSuffixes)
	assert.NotNil(t, cfg.RemappedTypes)

	// The default file must now exist and parse
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := LoadRemapConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

// TestConfigRoundTrip tests save/load fidelity
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), RemapConfigName)

	cfg := RemapConfig{
		KnownNames:          []string{"int32_t", "Il2CppObject"},
		LastBuiltInTypeName: "int32_t",
		KnownReservedSuffixes: map[string]string{
			"__Array": "Il2CppArray",
		},
		RemappedTypes: map[string]string{
			"Old": "New",
		},
	}
	require.NoError(t, SaveRemapConfig(path, cfg))

	loaded, err := LoadRemapConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestLoadRejectsGarbage tests the malformed-JSON error path
func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), RemapConfigName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadRemapConfig(path)
	assert.Error(t, err)
}
