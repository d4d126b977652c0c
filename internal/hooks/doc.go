// Package hooks runs user-defined shell commands after a successful
// add, split or pull.
//
// Hooks are configured in [hooks.NAME] sections of the global config or
// of .monorepo.toml. A hook runs automatically when its "on" list names
// the workflow ("all" matches every workflow), or explicitly via
// --hook=NAME. --no-hook skips them.
//
// # Placeholders
//
// Values are shell-quoted before substitution:
//
//   - {name}: package name
//   - {repository}: remote URL or path of the package
//   - {dir}: package directory relative to the monorepo root
//   - {monorepo}: absolute monorepo root
//   - {trigger}: workflow that fired the hook (add, split, pull)
//
// Custom variables via --arg key=value:
//
//   - {key}: value from --arg key=value
//   - {key:raw}: the same value without quoting
//   - {key:-default}: value with fallback if not provided
//
// # Execution
//
// Commands run through "sh -c" in the monorepo root using the same
// terminal as git, so they share its timeout and verbose logging. The
// workflow already succeeded when hooks run, so [RunAllNonFatal] only
// warns about failures.
//
// # Stdin Support
//
// Use --arg key=- to read piped stdin into a variable:
//
//	echo "release notes" | monorepo pull utils --hook notify --arg notes=-
package hooks
