package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Valid enum values for configuration fields.
var (
	ValidLogFormats = []string{"text", "json"}
	ValidTriggers   = []string{"add", "split", "pull", "all"}
)

// ValidateLogFormat validates a log format value against ValidLogFormats.
// Exported for use in CLI flag validation.
func ValidateLogFormat(format string) error {
	return validateEnum(format, "log-format", ValidLogFormats)
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// validateHooks checks that every hook has a command and known triggers.
func validateHooks(hc HooksConfig, contextInfo string) error {
	suffix := ""
	if contextInfo != "" {
		suffix = " in " + contextInfo
	}
	for name, hook := range hc.Hooks {
		if hook.IsEnabled() && hook.Command == "" {
			return fmt.Errorf("hook %q has no command%s", name, suffix)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, "hooks."+name+".on", ValidTriggers); err != nil {
				return fmt.Errorf("%w%s", err, suffix)
			}
		}
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid command_timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid command_timeout %q: must not be negative", s)
	}
	return d, nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
