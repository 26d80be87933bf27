package cipso

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smack-team/smack-go/internal/label"
	"github.com/smack-team/smack-go/internal/smackfs"
)

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

func TestAddFromReader(t *testing.T) {
	tbl := NewTable()
	input := "Secret 5 1 2 3\n" +
		"\n" +
		"Public 0\n"

	if err := tbl.AddFromReader(strings.NewReader(input)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", tbl.Len())
	}

	m := tbl.Mappings()[0]
	if m.Label != "Secret" || m.Level != 5 {
		t.Errorf("expected Secret/5, got %s/%d", m.Label, m.Level)
	}
	if len(m.Cats) != 3 || m.Cats[0] != 1 || m.Cats[1] != 2 || m.Cats[2] != 3 {
		t.Errorf("expected categories [1 2 3], got %v", m.Cats)
	}

	m = tbl.Mappings()[1]
	if m.Level != 0 || len(m.Cats) != 0 {
		t.Errorf("expected level 0 with no categories, got %d/%v", m.Level, m.Cats)
	}
}

func TestAddFromReaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{"missing level", "Secret\n", ErrMalformedEntry},
		{"level not numeric", "Secret five\n", ErrMalformedEntry},
		{"level too high", "Secret 300\n", ErrLevelRange},
		{"level negative", "Secret -1\n", ErrLevelRange},
		{"category not numeric", "Secret 5 one\n", ErrMalformedEntry},
		{"category too high", "Secret 5 64\n", ErrCategoryRange},
		{"bad label", "-Secret 5\n", label.ErrInvalidLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable()
			err := tbl.AddFromReader(strings.NewReader(tt.input))
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
			if tbl.Len() != 0 {
				t.Errorf("expected empty table, got %d mappings", tbl.Len())
			}
		})
	}
}

func TestAddFromReaderKeepsEarlierLines(t *testing.T) {
	tbl := NewTable()
	input := "Public 0\n" +
		"Secret 300\n"

	err := tbl.AddFromReader(strings.NewReader(input))
	if !errors.Is(err, ErrLevelRange) {
		t.Fatalf("expected ErrLevelRange, got %v", err)
	}

	// The failing line leaves the table exactly as the lines before it
	// built it.
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 mapping, got %d", tbl.Len())
	}
	if tbl.Mappings()[0].Label != "Public" {
		t.Errorf("unexpected surviving mapping %q", tbl.Mappings()[0].Label)
	}
}

func TestAddFromReaderCategoryOverflowIgnored(t *testing.T) {
	// Category tokens past the 240th are consumed and dropped.
	var sb strings.Builder
	sb.WriteString("Secret 1")
	for i := 0; i < MaxCategories+10; i++ {
		fmt.Fprintf(&sb, " %d", i%64)
	}
	sb.WriteString("\n")

	tbl := NewTable()
	if err := tbl.AddFromReader(strings.NewReader(sb.String())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(tbl.Mappings()[0].Cats); got != MaxCategories {
		t.Errorf("expected %d categories, got %d", MaxCategories, got)
	}
}

func TestAddValidation(t *testing.T) {
	tbl := NewTable()

	if err := tbl.Add("Secret", 256, nil); !errors.Is(err, ErrLevelRange) {
		t.Errorf("expected ErrLevelRange, got %v", err)
	}
	if err := tbl.Add("Secret", 1, []int{64}); !errors.Is(err, ErrCategoryRange) {
		t.Errorf("expected ErrCategoryRange, got %v", err)
	}
	if err := tbl.Add("Se cret", 1, nil); !errors.Is(err, label.ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel, got %v", err)
	}

	tooMany := make([]int, MaxCategories+1)
	if err := tbl.Add("Secret", 1, tooMany); !errors.Is(err, ErrTooManyCategories) {
		t.Errorf("expected ErrTooManyCategories, got %v", err)
	}

	if err := tbl.Add("Secret", 5, []int{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected 1 mapping, got %d", tbl.Len())
	}
}

func TestEncodeEntryLong(t *testing.T) {
	m := Mapping{Label: "Secret", Level: 5, Cats: []int{1, 2, 3}}

	got := encodeEntry(&m, true)
	want := "Secret\x005   3   1   2   3   "
	if string(got) != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEncodeEntryShort(t *testing.T) {
	m := Mapping{Label: "Secret", Level: 200, Cats: nil}

	got := encodeEntry(&m, false)
	// The label pads to 23 columns before the NUL.
	want := "Secret                 \x00200 0   "
	if string(got) != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApply(t *testing.T) {
	m, dir := newTestSurface(t, "cipso2")

	tbl := NewTable()
	if err := tbl.Add("Secret", 5, []int{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Add("Public", 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tbl.Apply(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Secret\x005   2   1   2   " + "Public\x000   0   "
	if got := readSurfaceFile(t, dir, "cipso2"); got != want {
		t.Errorf("cipso2: expected %q, got %q", want, got)
	}
}

func TestApplyShortRejectsLongLabels(t *testing.T) {
	m, dir := newTestSurface(t, "cipso")

	tbl := NewTable()
	if err := tbl.Add(strings.Repeat("a", 24), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Add("Public", 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tbl.Apply(m); !errors.Is(err, smackfs.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if got := readSurfaceFile(t, dir, "cipso"); got != "" {
		t.Errorf("expected no bytes written, got %q", got)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20-extra": "Public 0\n",
		"10-base":  "Secret 5 1\n",
		".swap":    "not a mapping\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	tbl, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", tbl.Len())
	}
	if tbl.Mappings()[0].Label != "Secret" {
		t.Errorf("expected 10-base to load first, got %q", tbl.Mappings()[0].Label)
	}
}
