// Package config handles loading and validation of monorepo configuration.
//
// Global settings are read from ~/.config/monorepo/config.toml, or from the
// file named by $MONOREPO_CONFIG. A .monorepo.toml at the monorepo root can
// override some of them for that monorepo.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags (--config, --squash, --log-format)
//   - .monorepo.toml at the monorepo root
//   - Global config file
//   - Default values
//
// # Key Settings
//
//   - registry: registry file relative to the monorepo (default: "monorepo.yml")
//   - squash: default squash mode for add and pull
//   - git_binary: git executable (default: "git")
//   - command_timeout: per-command timeout such as "5m" (default: none)
//   - log_format: "text" or "json"
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.build]
//	command = "cd {dir} && make"
//	description = "Build the package"
//	on = ["add", "pull"]
//
// Hooks run after a successful workflow named in "on" ("all" matches
// every workflow). A local hook with enabled = false removes the global
// hook of the same name.
package config
