package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RemapConfigName is the configuration file expected next to the executable.
const RemapConfigName = "remapping_config.json"

// RemapConfig drives the name matcher and the prebuilt-type cache.
type RemapConfig struct {
	// KnownNames are always considered known: never re-resolved. Only the
	// built-in prefix (see LastBuiltInTypeName) is emitted from the target
	// compilation's globals.
	KnownNames []string `json:"KnownNames"`
	// LastBuiltInTypeName marks the end of the built-in prefix of
	// KnownNames; that prefix is emitted globally.
	LastBuiltInTypeName string `json:"LastBuiltInTypeName"`
	// KnownReservedSuffixes maps a name suffix (__Array, __Class, ...) to
	// the type it forces a remap to.
	KnownReservedSuffixes map[string]string `json:"KnownReservedSuffixes"`
	// RemappedTypes maps fully-qualified source names to replacements,
	// applied to the query (right-hand) side of a name comparison.
	RemappedTypes map[string]string `json:"RemappedTypes"`
}

// DefaultRemapConfig is the empty configuration written on first run.
func DefaultRemapConfig() RemapConfig {
	return RemapConfig{
		KnownNames:            []string{},
		KnownReservedSuffixes: map[string]string{},
		RemappedTypes:         map[string]string{},
	}
}

// RemapConfigPath resolves the config file adjacent to the executable.
func RemapConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), RemapConfigName), nil
}

// LoadRemapConfig reads the configuration file. A missing file is not an
// error: defaults are written in place and returned.
func LoadRemapConfig(path string) (RemapConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultRemapConfig()
		if werr := SaveRemapConfig(path, cfg); werr != nil {
			return cfg, werr
		}
		return cfg, nil
	}
	if err != nil {
		return RemapConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg RemapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RemapConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.KnownReservedSuffixes == nil {
		cfg.KnownReservedSuffixes = map[string]string{}
	}
	if cfg.RemappedTypes == nil {
		cfg.RemappedTypes = map[string]string{}
	}
	return cfg, nil
}

// SaveRemapConfig writes the configuration as indented JSON.
func SaveRemapConfig(path string, cfg RemapConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
