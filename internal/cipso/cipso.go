package cipso

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/smack-team/smack-go/internal/label"
	"github.com/smack-team/smack-go/internal/smackfs"
)

// Table limits.
const (
	// MaxLevel is the highest security level.
	MaxLevel = 255

	// MaxCategories is the most categories one mapping can carry.
	MaxCategories = 240

	// MaxCategoryValue is the highest category number.
	MaxCategoryValue = 63
)

// numFieldLen is the width of one decimal field in the wire encoding.
const numFieldLen = 4

// Control files for the mapping table.
const (
	cipsoLong  = "cipso2"
	cipsoShort = "cipso"
)

// Table errors.
var (
	// ErrMalformedEntry is returned for lines missing the level token
	// or carrying a non-numeric level or category.
	ErrMalformedEntry = errors.New("cipso: malformed mapping entry")

	// ErrLevelRange is returned for levels outside 0-255.
	ErrLevelRange = errors.New("cipso: level out of range")

	// ErrCategoryRange is returned for categories outside 0-63.
	ErrCategoryRange = errors.New("cipso: category out of range")

	// ErrTooManyCategories is returned when a directly added mapping
	// exceeds the category limit.
	ErrTooManyCategories = errors.New("cipso: too many categories")
)

// Mapping assigns a security level and a category set to one label.
type Mapping struct {
	Label string
	Level int
	Cats  []int
}

// Table is an ordered, append-only list of label mappings.
type Table struct {
	mappings []Mapping

	// hasLong records whether any entry's label exceeds the short
	// format field width.
	hasLong bool
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Add appends a mapping. The label is validated, the level must be
// 0-255 and at most 240 categories of value 0-63 are accepted. The
// category slice is copied.
func (t *Table) Add(lbl string, level int, cats []int) error {
	if err := label.Validate(lbl); err != nil {
		return err
	}
	if level < 0 || level > MaxLevel {
		return ErrLevelRange
	}
	if len(cats) > MaxCategories {
		return ErrTooManyCategories
	}
	for _, c := range cats {
		if c < 0 || c > MaxCategoryValue {
			return ErrCategoryRange
		}
	}

	t.append(Mapping{
		Label: lbl,
		Level: level,
		Cats:  append([]int(nil), cats...),
	})
	return nil
}

func (t *Table) append(m Mapping) {
	t.mappings = append(t.mappings, m)
	if len(m.Label) > label.ShortLength {
		t.hasLong = true
	}
}

// Len returns the number of mappings.
func (t *Table) Len() int { return len(t.mappings) }

// Mappings returns the table in input order. The slice is shared with
// the table and must not be modified.
func (t *Table) Mappings() []Mapping { return t.mappings }

// AddFromReader parses mapping lines from r. Each non-empty line holds
// a label, a required decimal level and zero or more category tokens;
// category tokens past the 240th are ignored. A failing line aborts the
// parse and leaves the table exactly as the previous lines built it.
func (t *Table) AddFromReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := t.addLine(line); err != nil {
			return fmt.Errorf("cipso: line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cipso: read: %w", err)
	}
	return nil
}

func (t *Table) addLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ErrMalformedEntry
	}

	lbl := fields[0]
	if err := label.Validate(lbl); err != nil {
		return err
	}

	level, err := strconv.Atoi(fields[1])
	if err != nil {
		return ErrMalformedEntry
	}
	if level < 0 || level > MaxLevel {
		return ErrLevelRange
	}

	var cats []int
	for _, tok := range fields[2:] {
		if len(cats) == MaxCategories {
			break
		}
		c, err := strconv.Atoi(tok)
		if err != nil {
			return ErrMalformedEntry
		}
		if c < 0 || c > MaxCategoryValue {
			return ErrCategoryRange
		}
		cats = append(cats, c)
	}

	t.append(Mapping{Label: lbl, Level: level, Cats: cats})
	return nil
}

// LoadDir parses every mapping file of dir into one Table. Files are
// read in name order; dotfiles are skipped.
func LoadDir(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cipso: read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	t := NewTable()
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("cipso: open %s: %w", name, err)
		}
		err = t.AddFromReader(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cipso: %s: %w", name, err)
		}
	}
	return t, nil
}

// Apply sends every mapping to the kernel, one write per entry. The
// cipso2 control file is probed first with fallback to the legacy cipso
// file; in short mode any long label fails the whole call before
// anything is written.
func (t *Table) Apply(m *smackfs.Mount) error {
	fd, useLong, err := m.OpenPreferLong(cipsoLong, cipsoShort, unix.O_WRONLY)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	if !useLong && t.hasLong {
		return smackfs.ErrUnsupportedFormat
	}

	for i := range t.mappings {
		if err := smackfs.WriteAll(fd, encodeEntry(&t.mappings[i], useLong)); err != nil {
			return err
		}
	}
	return nil
}

// encodeEntry builds the fixed-layout record for one mapping: the label
// (space-padded to the short width in short mode), a NUL, then
// left-justified 4-byte decimal fields for the level, the category
// count and each category.
func encodeEntry(m *Mapping, useLong bool) []byte {
	var b bytes.Buffer
	if useLong {
		b.WriteString(m.Label)
	} else {
		fmt.Fprintf(&b, "%-*s", label.ShortLength, m.Label)
	}
	b.WriteByte(0)

	fmt.Fprintf(&b, "%-*d", numFieldLen, m.Level)
	fmt.Fprintf(&b, "%-*d", numFieldLen, len(m.Cats))
	for _, c := range m.Cats {
		fmt.Fprintf(&b, "%-*d", numFieldLen, c)
	}
	return b.Bytes()
}
