package label

// maxLabels is the number of identities a 16-bit id can address.
const maxLabels = 1 << 16

// Interner deduplicates label strings into Labels with dense identities.
// The zero value is not usable; create one with NewInterner.
//
// An Interner only grows: labels are never removed for the lifetime of
// the handle that owns it, which keeps every handed-out identity valid.
type Interner struct {
	byName map[string]*Label
	labels []*Label
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		byName: make(map[string]*Label),
	}
}

// Intern validates s and returns its Label, allocating a new identity if
// the string has not been seen before. Interning an already-known string
// always succeeds and returns the existing Label; allocating a new one
// fails with ErrTooManyLabels once 65536 labels exist.
func (in *Interner) Intern(s string) (*Label, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if l, ok := in.byName[s]; ok {
		return l, nil
	}
	if len(in.labels) == maxLabels {
		return nil, ErrTooManyLabels
	}
	l := &Label{name: s, id: uint16(len(in.labels))}
	in.byName[s] = l
	in.labels = append(in.labels, l)
	return l, nil
}

// Lookup returns the Label for s without interning it. The second result
// is false if s has never been interned.
func (in *Interner) Lookup(s string) (*Label, bool) {
	l, ok := in.byName[s]
	return l, ok
}

// ByID returns the Label with the given identity. It panics if id has
// not been assigned; callers index with identities they obtained from
// this Interner.
func (in *Interner) ByID(id uint16) *Label {
	return in.labels[int(id)]
}

// Len returns the number of interned labels.
func (in *Interner) Len() int { return len(in.labels) }

// All returns the label directory in identity order. The returned slice
// is shared with the Interner and must not be modified.
func (in *Interner) All() []*Label { return in.labels }
