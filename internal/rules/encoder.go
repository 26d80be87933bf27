package rules

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/smack-team/smack-go/internal/smackfs"
)

// Control file names on the smackfs surface. The "2" variants take the
// long wire format; when one is absent the legacy short-format file is
// used instead.
const (
	loadLong   = "load2"
	loadShort  = "load"
	changeRule = "change-rule"
)

// Wire formats. The short format pads both labels to the legacy field
// width and truncates the access string to five characters, so the lock
// bit is not representable there.
const (
	longFormat   = "%s %s %s"
	shortFormat  = "%-23s %-23s %5.5s"
	modifyFormat = "%s %s %s %s"
)

// sink consumes fully formed wire records.
type sink func(rec []byte) error

// Save writes every rule to w as newline-terminated long-format records,
// in label-insertion order and, per label, rule-insertion order. Partial
// rules are written as four-field modify records. The output parses back
// through AddFromReader, so Save doubles as the persistence encoding.
func (a *Accesses) Save(w io.Writer) error {
	write := func(rec []byte) error {
		_, err := w.Write(rec)
		return err
	}
	return a.print(write, write, true, true, false)
}

// Apply sends every rule to the kernel. The load2 control file is
// probed first; if it does not exist the legacy load file is used, and
// in that short mode any label longer than the short field width fails
// the whole call with smackfs.ErrUnsupportedFormat before anything is
// written. Partial rules go to the change-rule file; if that file is
// absent and a partial rule is reached, the call fails at that rule.
// Records written earlier in the same pass are already applied at that
// point - each record is an independent kernel write and there is no
// rollback.
func (a *Accesses) Apply(m *smackfs.Mount) error {
	return a.apply(m, false)
}

// Clear revokes every rule in the handle by applying it with an empty
// allow set. Partial rules are cleared through the load file like any
// other rule; the modify path is never taken.
func (a *Accesses) Clear(m *smackfs.Mount) error {
	return a.apply(m, true)
}

func (a *Accesses) apply(m *smackfs.Mount, clear bool) error {
	loadFd, useLong, err := m.OpenPreferLong(loadLong, loadShort, unix.O_WRONLY)
	if err != nil {
		return err
	}
	defer unix.Close(loadFd)

	// The change-rule file may be missing on older kernels; that is
	// only an error if a partial rule actually needs it.
	var writeChange sink
	changeFd, err := m.Open(changeRule)
	if err == nil {
		defer unix.Close(changeFd)
		writeChange = func(rec []byte) error {
			return smackfs.WriteAll(changeFd, rec)
		}
	} else if !errors.Is(err, unix.ENOENT) {
		return err
	}

	writeLoad := func(rec []byte) error {
		return smackfs.WriteAll(loadFd, rec)
	}
	return a.print(writeLoad, writeChange, useLong, false, clear)
}

// print encodes every rule and hands the records to the sinks. A nil
// writeChange sink means the surface has no modify support.
func (a *Accesses) print(writeLoad, writeChange sink, useLong, addLF, clear bool) error {
	if !useLong && a.hasLong {
		return smackfs.ErrUnsupportedFormat
	}

	for _, subj := range a.interner.All() {
		for _, r := range a.ruleLists[subj.ID()] {
			obj := a.interner.ByID(r.Object)

			allow := r.Allow
			if clear {
				allow = 0
			}

			var rec string
			write := writeLoad
			switch {
			case r.partial() && !clear:
				if writeChange == nil {
					return smackfs.ErrUnsupportedFormat
				}
				write = writeChange
				rec = fmt.Sprintf(modifyFormat,
					subj.Name(), obj.Name(), allow, r.Deny)
			case useLong:
				rec = fmt.Sprintf(longFormat,
					subj.Name(), obj.Name(), allow)
			default:
				rec = fmt.Sprintf(shortFormat,
					subj.Name(), obj.Name(), allow.String())
			}
			if addLF {
				rec += "\n"
			}

			if err := write([]byte(rec)); err != nil {
				return err
			}
		}
	}
	return nil
}
