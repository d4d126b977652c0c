package registry

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "monorepo.yml")
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", reg.Version, DefaultVersion)
	}
	if reg.Packages == nil || len(reg.Packages) != 0 {
		t.Errorf("Packages = %v, want empty map", reg.Packages)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Load() must not create the file")
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		packages map[string]Package
	}{
		{"zero", map[string]Package{}},
		{"one", map[string]Package{
			"p": {Repository: "https://example.com/p.git", Directory: "lib/p"},
		}},
		{"several", map[string]Package{
			"alpha": {Repository: "git@example.com:alpha.git", Directory: "alpha"},
			"beta":  {Repository: "/srv/git/beta", Directory: "libs/beta"},
			"gamma": {Repository: "../gamma", Directory: "tools/gamma dir"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "monorepo.yml")
			original := &Registry{Version: DefaultVersion, Packages: tt.packages}
			if err := original.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded.Version != original.Version {
				t.Errorf("Version = %q, want %q", loaded.Version, original.Version)
			}
			if !maps.Equal(loaded.Packages, original.Packages) {
				t.Errorf("Packages = %v, want %v", loaded.Packages, original.Packages)
			}

			// a second save of the loaded copy is stable
			if err := loaded.Save(path); err != nil {
				t.Fatal(err)
			}
			again, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if !maps.Equal(again.Packages, original.Packages) {
				t.Errorf("after resave Packages = %v", again.Packages)
			}
		})
	}
}

func TestSave_DocumentLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "monorepo.yml")
	reg := New()
	reg.Upsert("p", "https://example.com/p.git", "lib/p")
	if err := reg.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Version:", "Packages:", "Repository: https://example.com/p.git", "Directory: lib/p"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("document missing %q:\n%s", want, data)
		}
	}
}

func TestLoad_Corrupt(t *testing.T) {
	t.Parallel()

	t.Run("unparseable", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "monorepo.yml")
		if err := os.WriteFile(path, []byte("Packages: [oops\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		var corrupt *CorruptError
		if !errors.As(err, &corrupt) {
			t.Fatalf("Load() error = %v, want *CorruptError", err)
		}
		if corrupt.Path != path {
			t.Errorf("CorruptError.Path = %q, want %q", corrupt.Path, path)
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		t.Parallel()
		path := t.TempDir() // a directory cannot be read as a file
		_, err := Load(path)
		var corrupt *CorruptError
		if !errors.As(err, &corrupt) {
			t.Fatalf("Load() error = %v, want *CorruptError", err)
		}
	})
}

func TestSave_WriteError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New().Save(filepath.Join(blocker, "monorepo.yml"))
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Save() error = %v, want *WriteError", err)
	}
}

func TestUpsert(t *testing.T) {
	t.Parallel()

	reg := New()
	if replaced := reg.Upsert("p", "r1", "lib/p"); replaced {
		t.Error("Upsert() of a new name reported replaced")
	}
	if replaced := reg.Upsert("p", "r2", "lib/q"); !replaced {
		t.Error("Upsert() of an existing name did not report replaced")
	}

	got, ok := reg.Get("p")
	if !ok {
		t.Fatal("Get(p) not found")
	}
	want := Package{Repository: "r2", Directory: "lib/q"}
	if got != want {
		t.Errorf("Get(p) = %+v, want %+v", got, want)
	}
	if len(reg.Packages) != 1 {
		t.Errorf("len(Packages) = %d, want 1", len(reg.Packages))
	}

	var zero Registry
	zero.Upsert("x", "r", "d")
	if _, ok := zero.Get("x"); !ok {
		t.Error("Upsert() on zero Registry did not store the entry")
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	reg := New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		reg.Upsert(n, "r", n)
	}
	want := []string{"alpha", "mid", "zeta"}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	reg := New()
	for _, n := range []string{"utils", "core", "cli-tools"} {
		reg.Upsert(n, "r", n)
	}

	tests := []struct {
		name     string
		contains string
		empty    bool
	}{
		{name: "utls", contains: "utils"},
		{name: "cor", contains: "core"},
		{name: "xyz", empty: true},
		{name: "", empty: true},
	}
	for _, tt := range tests {
		got := reg.Suggest(tt.name)
		if tt.empty {
			if len(got) != 0 {
				t.Errorf("Suggest(%q) = %v, want none", tt.name, got)
			}
			continue
		}
		if !slices.Contains(got, tt.contains) {
			t.Errorf("Suggest(%q) = %v, want it to contain %q", tt.name, got, tt.contains)
		}
	}
}
