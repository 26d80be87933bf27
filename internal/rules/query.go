package rules

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/smack-team/smack-go/internal/label"
	"github.com/smack-team/smack-go/internal/smackfs"
)

// Access-query control files.
const (
	accessLong  = "access2"
	accessShort = "access"
)

// HaveAccess asks the kernel whether subject has the given access types
// to object. The query is stateless: both labels are validated (not
// interned), the control surface format is re-probed on every call, one
// record is written and a one-byte reply is read. Only a '1' reply
// grants; anything else, including an empty reply, denies.
func HaveAccess(m *smackfs.Mount, subject, object, access string) (bool, error) {
	if err := label.Validate(subject); err != nil {
		return false, err
	}
	if err := label.Validate(object); err != nil {
		return false, err
	}
	mode, err := ParseMode(access)
	if err != nil {
		return false, err
	}

	fd, useLong, err := m.OpenPreferLong(accessLong, accessShort, unix.O_RDWR)
	if err != nil {
		return false, err
	}
	defer unix.Close(fd)

	if !useLong &&
		(len(subject) > label.ShortLength || len(object) > label.ShortLength) {
		return false, smackfs.ErrUnsupportedFormat
	}

	var rec string
	if useLong {
		rec = fmt.Sprintf(longFormat, subject, object, mode)
	} else {
		rec = fmt.Sprintf(shortFormat, subject, object, mode.String())
	}
	if err := smackfs.WriteAll(fd, []byte(rec)); err != nil {
		return false, err
	}

	var reply [1]byte
	for {
		n, err := unix.Read(fd, reply[:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return false, fmt.Errorf("rules: read access reply: %w", err)
		}
		return n == 1 && reply[0] == '1', nil
	}
}
