package terminal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/raphi011/monorepo/internal/log"
)

type entry struct {
	msg    string
	fields map[string]string
}

// recordingSink keeps every entry for inspection.
type recordingSink struct {
	entries []entry
}

func (s *recordingSink) Info(msg string, fields ...log.Field) {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	s.entries = append(s.entries, entry{msg: msg, fields: m})
}

func (s *recordingSink) messages() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.msg
	}
	return out
}

func TestLogging_RecordsCallWithDirectory(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	term := NewLogging(newLocal(t, "/repo"), sink)

	if err := term.PushDirectory("lib"); err != nil {
		t.Fatal(err)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(sink.entries), sink.messages())
	}
	e := sink.entries[0]
	if e.msg != "pushd(lib)" {
		t.Errorf("message = %q, want %q", e.msg, "pushd(lib)")
	}
	if e.fields["directory"] != "/repo" {
		t.Errorf("directory = %q, want directory before the call", e.fields["directory"])
	}
	if e.fields["source"] != "terminal" {
		t.Errorf("source = %q, want terminal", e.fields["source"])
	}
}

func TestLogging_ExecOutputPrefixed(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	term := NewLogging(newLocal(t, ""), sink)

	inv, err := term.Exec(context.Background(), "sh", "-c", "echo one; echo two")
	if err != nil {
		t.Fatal(err)
	}
	if inv.Output != "one\ntwo" {
		t.Errorf("Output = %q", inv.Output)
	}

	msgs := sink.messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(msgs), msgs)
	}
	if msgs[0] != `$ sh -c "echo one; echo two"` {
		t.Errorf("command entry = %q", msgs[0])
	}
	if msgs[1] != ">   one\n>   two" {
		t.Errorf("output entry = %q, want each line prefixed", msgs[1])
	}
}

func TestLogging_Transparent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := resolveTempDir(t)
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := newLocal(t, dir)
	logged := NewLogging(newLocal(t, dir), &recordingSink{})

	steps := []struct {
		name string
		run  func(Terminal) (string, error)
	}{
		{"pushd", func(tm Terminal) (string, error) { return "", tm.PushDirectory("sub") }},
		{"pwd", func(tm Terminal) (string, error) { return tm.PresentDirectory(), nil }},
		{"mkdir", func(tm Terminal) (string, error) {
			code, err := tm.MakeDirectory(".", 0o755)
			return strconv.Itoa(code), err
		}},
		{"exec", func(tm Terminal) (string, error) {
			inv, err := tm.Exec(ctx, "sh", "-c", "pwd; exit 4")
			return inv.Output + strconv.Itoa(inv.ExitCode), err
		}},
		{"popd", func(tm Terminal) (string, error) { return "", tm.PopDirectory() }},
		{"popd empty", func(tm Terminal) (string, error) { return "", tm.PopDirectory() }},
		{"pwd after", func(tm Terminal) (string, error) { return tm.PresentDirectory(), nil }},
	}

	for _, s := range steps {
		wantOut, wantErr := s.run(plain)
		gotOut, gotErr := s.run(logged)
		if gotOut != wantOut {
			t.Errorf("%s: decorated result %q, plain %q", s.name, gotOut, wantOut)
		}
		if (gotErr == nil) != (wantErr == nil) || (wantErr != nil && !errors.Is(gotErr, wantErr)) {
			t.Errorf("%s: decorated error %v, plain %v", s.name, gotErr, wantErr)
		}
	}
}

func TestLogging_MkdirDiagnosticIsLogged(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	term := NewLogging(newLocal(t, resolveTempDir(t)), sink)

	code, err := term.MakeDirectory(".", 0o755)
	if err != nil || code != StatusExists {
		t.Fatalf("MakeDirectory(.) = %d, %v", code, err)
	}
	msgs := sink.messages()
	if len(msgs) != 2 || !strings.HasPrefix(msgs[1], ">   mkdir:") {
		t.Errorf("entries = %v, want call and prefixed diagnostic", msgs)
	}
}

func TestLogging_Nested(t *testing.T) {
	t.Parallel()
	inner := &recordingSink{}
	outer := &recordingSink{}
	term := NewLogging(NewLogging(newLocal(t, "/repo"), inner), outer)

	if err := term.ChangeDirectory("lib"); err != nil {
		t.Fatal(err)
	}
	if got := term.PresentDirectory(); got != "/repo/lib" {
		t.Errorf("PresentDirectory() = %q", got)
	}

	for name, s := range map[string]*recordingSink{"inner": inner, "outer": outer} {
		msgs := s.messages()
		if len(msgs) != 2 || msgs[0] != "cd(lib)" || msgs[1] != "pwd()" {
			t.Errorf("%s entries = %v, want [cd(lib) pwd()]", name, msgs)
		}
	}
	if dir := outer.entries[0].fields["directory"]; dir != "/repo" {
		t.Errorf("outer directory field = %q, want /repo", dir)
	}
}
