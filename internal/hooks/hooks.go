package hooks

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/monorepo/internal/config"
	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/terminal"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Trigger identifies the workflow that fires a hook
type Trigger string

const (
	TriggerAdd   Trigger = "add"
	TriggerSplit Trigger = "split"
	TriggerPull  Trigger = "pull"

	// TriggerManual is used when a hook is run explicitly by name.
	TriggerManual Trigger = "manual"
)

// Context holds the values for placeholder substitution
type Context struct {
	Name       string            // package name
	Repository string            // remote URL or path
	Dir        string            // package directory, relative to the monorepo root
	Monorepo   string            // absolute monorepo root
	Trigger    Trigger           // workflow that fired the hook
	Env        map[string]string // custom variables from --arg key=value
	DryRun     bool              // print the command instead of running it
}

// HookMatch represents a hook that matched the current workflow
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookName is set only that hook runs, regardless of its "on" list.
// Otherwise every hook whose "on" list names the trigger runs.
func SelectHooks(cfg config.HooksConfig, hookName string, noHook bool, trigger Trigger) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	if hookName != "" {
		hook, exists := cfg.Hooks[hookName]
		if !exists {
			return nil, fmt.Errorf("unknown hook %q", hookName)
		}
		return []HookMatch{{Hook: &hook, Name: hookName}}, nil
	}

	return findMatchingHooks(cfg, trigger), nil
}

// findMatchingHooks returns the hooks listing the trigger, ordered by name.
// Hooks without "on" only run via --hook=name.
func findMatchingHooks(cfg config.HooksConfig, trigger Trigger) []HookMatch {
	var matches []HookMatch
	for _, name := range sortedNames(cfg.Hooks) {
		hook := cfg.Hooks[name]
		if hook.IsEnabled() && hookMatches(hook, trigger) {
			matches = append(matches, HookMatch{Hook: &hook, Name: name})
		}
	}
	return matches
}

// hookMatches returns true if trigger is in the hook's "on" list.
// "all" matches every trigger.
func hookMatches(hook config.Hook, trigger Trigger) bool {
	for _, on := range hook.On {
		if on == "all" || on == string(trigger) {
			return true
		}
	}
	return false
}

// HookError reports a hook command that exited non-zero.
type HookError struct {
	Name     string
	ExitCode int
	Output   string
}

func (e *HookError) Error() string {
	msg := fmt.Sprintf("hook %q exited with status %d", e.Name, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// RunAll runs the matched hooks in the monorepo root and stops at the
// first failure.
func RunAll(ctx context.Context, term terminal.Terminal, matches []HookMatch, hctx Context) error {
	for _, match := range matches {
		if err := runHook(ctx, term, match, hctx); err != nil {
			return err
		}
	}
	return nil
}

// RunAllNonFatal runs every matched hook. Failures are logged as warnings
// and returned so the caller can report how many hooks failed.
func RunAllNonFatal(ctx context.Context, term terminal.Terminal, matches []HookMatch, hctx Context) []error {
	l := log.FromContext(ctx)
	var errs []error
	for _, match := range matches {
		if err := runHook(ctx, term, match, hctx); err != nil {
			l.Warnf("%v", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func runHook(ctx context.Context, term terminal.Terminal, match HookMatch, hctx Context) error {
	l := log.FromContext(ctx)
	cmd := SubstitutePlaceholders(match.Hook.Command, hctx)

	if hctx.DryRun {
		l.Printf("[dry-run] %s: %s\n", match.Name, cmd)
		return nil
	}

	l.Printf("Running hook '%s'...\n", match.Name)

	if hctx.Monorepo != "" {
		if err := term.PushDirectory(hctx.Monorepo); err != nil {
			return fmt.Errorf("hook %q: %w", match.Name, err)
		}
		defer func() { _ = term.PopDirectory() }()
	}

	inv, err := term.Exec(ctx, "sh", "-c", cmd)
	if err != nil {
		return fmt.Errorf("hook %q: %w", match.Name, err)
	}
	if inv.Output != "" {
		l.Println(inv.Output)
	}
	if inv.ExitCode != terminal.StatusOK {
		return &HookError{Name: match.Name, ExitCode: inv.ExitCode, Output: inv.Output}
	}

	if match.Hook.Description != "" {
		l.Printf("  ✓ %s\n", match.Hook.Description)
	}
	return nil
}

// ParseEnv parses "key=value" strings into a map.
// A value of "-" is replaced by the content of piped stdin.
func ParseEnv(entries []string) (map[string]string, error) {
	return parseEnv(entries, os.Stdin)
}

func parseEnv(entries []string, stdin *os.File) (map[string]string, error) {
	result := make(map[string]string, len(entries))
	var stdinKeys []string

	for _, e := range entries {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid arg format %q: expected KEY=VALUE", e)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid arg format %q: key cannot be empty", e)
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
			continue
		}
		result[key] = value
	}

	if len(stdinKeys) > 0 {
		content, err := readIfPiped(stdin)
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
		}
		for _, key := range stdinKeys {
			result[key] = content
		}
	}

	return result, nil
}

// readIfPiped reads f to the end unless it is a terminal.
func readIfPiped(f *os.File) (string, error) {
	if f == nil || isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// envPlaceholderRegex matches {key}, {key:raw} or {key:-default}.
// It runs after the static replacements.
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
//
// Static placeholders: {name}, {repository}, {dir}, {monorepo}, {trigger}
// Custom placeholders from Context.Env:
//   - {key}          shell-quoted value
//   - {key:raw}      unquoted value
//   - {key:-default} shell-quoted value with a fallback
//
// Unknown custom keys expand to an empty quoted string.
func SubstitutePlaceholders(command string, hctx Context) string {
	replacements := []string{
		"{name}", shellQuote(hctx.Name),
		"{repository}", shellQuote(hctx.Repository),
		"{dir}", shellQuote(hctx.Dir),
		"{monorepo}", shellQuote(hctx.Monorepo),
		"{trigger}", shellQuote(string(hctx.Trigger)),
	}
	result := strings.NewReplacer(replacements...).Replace(command)

	return envPlaceholderRegex.ReplaceAllStringFunc(result, func(match string) string {
		submatch := envPlaceholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		value, ok := hctx.Env[key]
		if !ok {
			value = submatch[3]
		}
		if isRaw {
			return value
		}
		return shellQuote(value)
	})
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
