// Package registry manages the package registry of a monorepo: the
// persisted mapping from subproject name to its repository and directory.
package registry

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/monorepo/internal/storage"
)

// DefaultVersion is the schema version written to new registries.
const DefaultVersion = "1.0"

// DefaultFile is the registry path used when none is configured.
const DefaultFile = "monorepo.yml"

// Package is one subproject embedded in the monorepo.
type Package struct {
	Repository string `yaml:"Repository"` // URL or path of the upstream repository
	Directory  string `yaml:"Directory"`  // path relative to the monorepo root
}

// Registry holds every package of one monorepo.
type Registry struct {
	Version  string             `yaml:"Version"`
	Packages map[string]Package `yaml:"Packages"`
}

// CorruptError reports a registry file that exists but cannot be read or parsed.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// WriteError reports a registry that could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write registry %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// New returns an empty registry with the default version.
func New() *Registry {
	return &Registry{Version: DefaultVersion, Packages: map[string]Package{}}
}

// Load reads the registry at path.
// Returns an empty registry if the file doesn't exist.
func Load(path string) (*Registry, error) {
	reg := New()
	if err := storage.LoadYAML(path, reg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, &CorruptError{Path: path, Err: err}
	}

	if reg.Version == "" {
		reg.Version = DefaultVersion
	}
	if reg.Packages == nil {
		reg.Packages = map[string]Package{}
	}
	return reg, nil
}

// Save writes the registry to path atomically.
func (r *Registry) Save(path string) error {
	if err := storage.SaveYAML(path, r); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Upsert sets the package name, overwriting an existing entry.
// replaced reports whether an entry with that name already existed.
func (r *Registry) Upsert(name, repository, directory string) (replaced bool) {
	if r.Packages == nil {
		r.Packages = map[string]Package{}
	}
	_, replaced = r.Packages[name]
	r.Packages[name] = Package{Repository: repository, Directory: directory}
	return replaced
}

// Get looks up a package by name.
func (r *Registry) Get(name string) (Package, bool) {
	p, ok := r.Packages[name]
	return p, ok
}

// Names returns all package names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Packages))
	for name := range r.Packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Suggest returns registered names that fuzzy-match name, best match first.
func (r *Registry) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	names := r.Names()
	matches := fuzzy.Find(name, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
