package monorepo

import (
	"fmt"
	"strings"
)

// UnknownPackageError reports a package name that is not in the registry.
type UnknownPackageError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPackageError) Error() string {
	msg := fmt.Sprintf("unknown package %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// RemoteConflictError reports a remote that exists under the package name
// but points to a different repository.
type RemoteConflictError struct {
	Name     string
	Existing string
	Wanted   string
}

func (e *RemoteConflictError) Error() string {
	return fmt.Sprintf("remote %q already points to %s, not %s", e.Name, e.Existing, e.Wanted)
}

// InvalidDirectoryError reports a package directory outside the monorepo.
type InvalidDirectoryError struct {
	Directory string
}

func (e *InvalidDirectoryError) Error() string {
	return fmt.Sprintf("invalid package directory %q: must be a relative path inside the monorepo", e.Directory)
}

// MissingArgumentError reports a required workflow input that was empty.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing %s", e.Name)
}
