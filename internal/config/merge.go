package config

import "maps"

// MergeLocal merges a local per-monorepo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Shallow copy: GitBinary, CommandTimeout and LogFormat are user settings
	// and are always inherited from global.
	merged := *global

	// Merge hooks by name: local overrides/adds, enabled=false removes
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)

	if local.Registry != "" {
		merged.Registry = local.Registry
	}
	if local.Squash != nil {
		merged.Squash = *local.Squash
	}

	return &merged
}

// mergeHooks merges local hooks into global hooks.
// Local hooks with the same name override global hooks.
// Local hooks with enabled=false remove the global hook.
func mergeHooks(global, local HooksConfig) HooksConfig {
	merged := HooksConfig{
		Hooks: make(map[string]Hook, len(global.Hooks)),
	}

	maps.Copy(merged.Hooks, global.Hooks)

	for name, hook := range local.Hooks {
		if !hook.IsEnabled() {
			delete(merged.Hooks, name)
			continue
		}
		merged.Hooks[name] = hook
	}

	return merged
}
