package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-monorepo config file at the monorepo root.
const LocalConfigFileName = ".monorepo.toml"

// LocalConfig holds per-monorepo overrides from .monorepo.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	Hooks    HooksConfig // merge by name into global
	Registry string
	Squash   *bool
}

// rawLocalConfig is used for initial TOML parsing before processing hooks
type rawLocalConfig struct {
	Hooks    map[string]any `toml:"hooks"`
	Registry string         `toml:"registry"`
	Squash   *bool          `toml:"squash"`
}

// LoadLocal reads the .monorepo.toml of the monorepo at dir.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(dir string) (*LocalConfig, error) {
	configFile := filepath.Join(dir, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		Hooks:    parseHooksConfig(raw.Hooks),
		Registry: raw.Registry,
		Squash:   raw.Squash,
	}

	if err := validateHooks(local.Hooks, configFile); err != nil {
		return nil, err
	}

	return local, nil
}

// defaultLocalConfig is the template for monorepo config init --local
const defaultLocalConfig = `# monorepo local config (per-monorepo overrides)
# Place this file at the root of the monorepo.
# Settings here override the global config for this monorepo only.

# registry = "packages.yml"
# squash = true

# Hooks - add monorepo-specific hooks or override global hooks
# Set enabled = false to disable a global hook for this monorepo
#
# [hooks.test]
# command = "cd {dir} && go test ./..."
# on = ["add", "pull"]
#
# [hooks.global-hook-name]
# enabled = false
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
