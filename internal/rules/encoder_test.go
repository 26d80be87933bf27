package rules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smack-team/smack-go/internal/smackfs"
)

// newTestSurface builds a staging control surface holding empty regular
// files with the given control file names.
func newTestSurface(t *testing.T, files ...string) (*smackfs.Mount, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	m := smackfs.NewAt(dir)
	t.Cleanup(func() { m.Close() })
	return m, dir
}

func readSurfaceFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestSaveOutput(t *testing.T) {
	a := New()
	mustAdd := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mustAdd(a.Add("alice", "bob", "rwx"))
	mustAdd(a.Add("bob", "alice", "r"))
	mustAdd(a.AddModify("carol", "bob", "r", "w"))
	mustAdd(a.Add("alice", "carol", "a"))

	var buf strings.Builder
	if err := a.Save(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Label-insertion order, then per-label rule order; partial rules
	// carry both masks.
	want := "alice bob rwx---\n" +
		"alice carol ---a--\n" +
		"bob alice r-----\n" +
		"carol bob r----- -w----\n"
	if buf.String() != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, buf.String())
	}
}

func TestSaveOutputIsByteStable(t *testing.T) {
	a := New()
	if err := a.Add("alice", "bob", "rwx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Add("bob", "alice", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var first, second strings.Builder
	if err := a.Save(&first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Save(&second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.String() != second.String() {
		t.Error("expected identical output across saves")
	}
}

func TestApplyLongFormat(t *testing.T) {
	m, dir := newTestSurface(t, "load2", "change-rule")

	a := New()
	if err := a.Add("alice", "bob", "rwx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.AddModify("bob", "carol", "r", "w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.Apply(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Records are written back to back with no terminator.
	if got := readSurfaceFile(t, dir, "load2"); got != "alice bob rwx---" {
		t.Errorf("load2: got %q", got)
	}
	if got := readSurfaceFile(t, dir, "change-rule"); got != "bob carol r----- -w----" {
		t.Errorf("change-rule: got %q", got)
	}
}

func TestApplyShortFormat(t *testing.T) {
	// Only the legacy file exists, so probing falls back to it.
	m, dir := newTestSurface(t, "load")

	a := New()
	if err := a.Add("alice", "bob", "rwxatl"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.Apply(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Labels pad to 23 columns and the access string truncates to 5,
	// so the lock bit is dropped.
	want := "alice                   bob                     rwxat"
	if got := readSurfaceFile(t, dir, "load"); got != want {
		t.Errorf("load: expected %q, got %q", want, got)
	}
}

func TestApplyShortFormatRejectsLongLabels(t *testing.T) {
	m, dir := newTestSurface(t, "load")

	a := New()
	if err := a.Add(strings.Repeat("a", 24), "bob", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Add("alice", "bob", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.Apply(m); !errors.Is(err, smackfs.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	// The length check is pre-flight: nothing may have been written.
	if got := readSurfaceFile(t, dir, "load"); got != "" {
		t.Errorf("expected no bytes written, got %q", got)
	}
}

func TestApplyModifyUnsupported(t *testing.T) {
	// No change-rule file: the pass fails at the partial rule but the
	// complete rule before it is already applied.
	m, dir := newTestSurface(t, "load2")

	a := New()
	if err := a.Add("alice", "bob", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.AddModify("bob", "carol", "r", "w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.Apply(m); !errors.Is(err, smackfs.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if got := readSurfaceFile(t, dir, "load2"); got != "alice bob r-----" {
		t.Errorf("load2: got %q", got)
	}
}

func TestClearZeroesAllow(t *testing.T) {
	m, dir := newTestSurface(t, "load2", "change-rule")

	a := New()
	if err := a.Add("alice", "bob", "rwx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.AddModify("bob", "carol", "r", "w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.Clear(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Clearing never takes the modify path; every rule goes through
	// the load file with an empty allow set.
	if got := readSurfaceFile(t, dir, "load2"); got != "alice bob ------bob carol ------" {
		t.Errorf("load2: got %q", got)
	}
	if got := readSurfaceFile(t, dir, "change-rule"); got != "" {
		t.Errorf("change-rule: expected no bytes, got %q", got)
	}
}

func TestClearWithoutChangeRuleFile(t *testing.T) {
	// A missing change-rule file does not matter for clearing, even
	// with partial rules in the handle.
	m, dir := newTestSurface(t, "load2")

	a := New()
	if err := a.AddModify("alice", "bob", "r", "w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Clear(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readSurfaceFile(t, dir, "load2"); got != "alice bob ------" {
		t.Errorf("load2: got %q", got)
	}
}
