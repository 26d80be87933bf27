package label

import "errors"

const (
	// MaxLength is the longest label the kernel accepts.
	MaxLength = 255

	// ShortLength is the field width of the legacy short wire format.
	// Labels longer than this cannot be represented on a control surface
	// that only offers the short-format files.
	ShortLength = 23
)

// Validation and capacity errors.
var (
	// ErrInvalidLabel is returned for strings that are not valid SMACK
	// labels.
	ErrInvalidLabel = errors.New("label: invalid label")

	// ErrTooManyLabels is returned when an Interner runs out of 16-bit
	// identities.
	ErrTooManyLabels = errors.New("label: too many labels")
)

// Label is an interned, validated label string. Labels are immutable and
// unique within their Interner: interning the same string twice yields
// the same Label.
type Label struct {
	name string
	id   uint16
}

// Name returns the label string.
func (l *Label) Name() string { return l.name }

// ID returns the label's identity within its Interner. Identities are
// dense and assigned in first-insertion order starting at 0.
func (l *Label) ID() uint16 { return l.id }

// Len returns the length of the label string in bytes.
func (l *Label) Len() int { return len(l.name) }

// IsLong reports whether the label does not fit a short-format field.
func (l *Label) IsLong() bool { return len(l.name) > ShortLength }

// Validate checks that s is a well-formed SMACK label: 1-255 bytes, all
// printable ASCII, no '/', '\', '\'' or '"', and not starting with '-'.
func Validate(s string) error {
	if len(s) == 0 || len(s) > MaxLength {
		return ErrInvalidLabel
	}
	if s[0] == '-' {
		return ErrInvalidLabel
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c > 0x7e {
			return ErrInvalidLabel
		}
		switch c {
		case '/', '"', '\\', '\'':
			return ErrInvalidLabel
		}
	}
	return nil
}
