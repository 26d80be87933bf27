package rules

import "errors"

// Mode is a set of SMACK access types. Modes are bit flags that can be
// combined using bitwise OR.
type Mode uint8

const (
	// Read allows reading the object.
	Read Mode = 1 << iota

	// Write allows writing the object.
	Write

	// Execute allows executing the object.
	Execute

	// Append allows appending to the object.
	Append

	// Transmute allows created objects to inherit the directory label.
	Transmute

	// Lock allows locking the object.
	Lock

	// All combines every access type.
	All = Read | Write | Execute | Append | Transmute | Lock
)

// ErrInvalidMode is returned when an access string contains a character
// outside the "rwxatl-" alphabet.
var ErrInvalidMode = errors.New("rules: invalid access string")

// modeLetters holds the canonical output letter for each bit position.
var modeLetters = [6]byte{'r', 'w', 'x', 'a', 't', 'l'}

// ParseMode parses an access string into a Mode. Letters are accepted
// case-insensitively and in any order, '-' is ignored, and the empty
// string is the empty Mode.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'r', 'R':
			m |= Read
		case 'w', 'W':
			m |= Write
		case 'x', 'X':
			m |= Execute
		case 'a', 'A':
			m |= Append
		case 't', 'T':
			m |= Transmute
		case 'l', 'L':
			m |= Lock
		case '-':
		default:
			return 0, ErrInvalidMode
		}
	}
	return m, nil
}

// String renders the canonical 6-character form of the mode: one fixed
// position per access type, lowercase letter where set, '-' where not.
func (m Mode) String() string {
	var buf [6]byte
	for i := range buf {
		if m&(1<<uint(i)) != 0 {
			buf[i] = modeLetters[i]
		} else {
			buf[i] = '-'
		}
	}
	return string(buf[:])
}

// Has reports whether the mode includes the given access types.
func (m Mode) Has(other Mode) bool {
	return m&other != 0
}

// Rule is a directed edge from its owning subject label to an object
// label. The object is referenced by interner identity, not by pointer.
// A rule whose allow and deny sets do not cover all access types is a
// partial rule and needs the modify wire format.
type Rule struct {
	// Object is the interner identity of the object label.
	Object uint16

	// Allow is the set of granted access types.
	Allow Mode

	// Deny is the set of revoked access types. For rules added without
	// an explicit deny it is the complement of Allow.
	Deny Mode
}

// partial reports whether the rule needs the modify wire format.
func (r Rule) partial() bool {
	return r.Allow|r.Deny != All
}
