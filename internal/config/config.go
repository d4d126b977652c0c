package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the location of the global config file.
const EnvConfigPath = "MONOREPO_CONFIG"

// DefaultRegistry is the registry file used when neither flag nor config set one.
const DefaultRegistry = "monorepo.yml"

// Hook defines a command run after a successful workflow
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // workflows this hook runs on; empty means never automatically
	Enabled     *bool    `toml:"enabled"` // nil means enabled; false disables a global hook locally
}

// IsEnabled reports whether the hook is enabled.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// Config holds the monorepo configuration
type Config struct {
	Registry       string        // registry file, relative to the monorepo root
	Squash         bool          // default for --squash on add and pull
	GitBinary      string        // git executable
	CommandTimeout time.Duration // per git command, zero means none
	LogFormat      string        // "text" or "json"
	Hooks          HooksConfig
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Registry:  DefaultRegistry,
		GitBinary: "git",
		LogFormat: "text",
		Hooks:     HooksConfig{Hooks: map[string]Hook{}},
	}
}

// Path returns the path of the global config file:
// $MONOREPO_CONFIG if set, otherwise ~/.config/monorepo/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "monorepo", "config.toml"), nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	Registry       string         `toml:"registry"`
	Squash         bool           `toml:"squash"`
	GitBinary      string         `toml:"git_binary"`
	CommandTimeout string         `toml:"command_timeout"`
	LogFormat      string         `toml:"log_format"`
	Hooks          map[string]any `toml:"hooks"`
}

// Load reads the global config file.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads config from path. See Load.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	cfg.Squash = raw.Squash
	cfg.Hooks = parseHooksConfig(raw.Hooks)
	if raw.Registry != "" {
		cfg.Registry = raw.Registry
	}
	if raw.GitBinary != "" {
		expanded, err := expandPath(raw.GitBinary)
		if err != nil {
			return Default(), fmt.Errorf("expand git_binary: %w", err)
		}
		cfg.GitBinary = expanded
	}
	if raw.LogFormat != "" {
		if err := validateEnum(raw.LogFormat, "log_format", ValidLogFormats); err != nil {
			return Default(), err
		}
		cfg.LogFormat = raw.LogFormat
	}
	if raw.CommandTimeout != "" {
		d, err := parseTimeout(raw.CommandTimeout)
		if err != nil {
			return Default(), err
		}
		cfg.CommandTimeout = d
	}
	if err := validateHooks(cfg.Hooks, ""); err != nil {
		return Default(), err
	}

	return cfg, nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		// Hook definitions are tables
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		hc.Hooks[key] = hook
	}

	return hc
}

const defaultConfig = `# monorepo configuration

# Registry file, relative to the monorepo root (overridden by --config)
# registry = "monorepo.yml"

# Squash imported history by default on add and pull
# (override per command with --squash / --no-squash)
# squash = false

# git executable
# git_binary = "git"

# Abort any single git command that runs longer than this (e.g. "30s", "5m")
# Empty means no timeout.
# command_timeout = "10m"

# Log format for -v output: "text" or "json"
# log_format = "text"

# Hooks - run commands after a successful add, split or pull
#
# [hooks.build]
# command = "cd {dir} && make"
# description = "Build the imported package"
# on = ["add", "pull"]
#
# [hooks.announce]
# command = "echo 'Split {name} to {repository}'"
# on = ["split"]
#
# Available "on" values: "add", "split", "pull", "all"
# Hooks run with working directory set to the monorepo root.
#
# Available placeholders (shell-quoted):
#   {name}       - package name
#   {repository} - package repository URL or path
#   {dir}        - package directory relative to the monorepo
#   {monorepo}   - absolute monorepo path
#   {trigger}    - workflow that triggered the hook
`

// DefaultConfig returns the default configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}

	return path, nil
}
