package smackfs

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/smack-team/smack-go/internal/label"
)

// selfLabelPath is the procfs file holding the calling process's label.
const selfLabelPath = "/proc/self/attr/current"

// Extended attribute names carrying SMACK labels on filesystem objects.
const (
	// AttrAccess is the object's access label.
	AttrAccess = "security.SMACK64"

	// AttrExec is the label a binary's process runs with.
	AttrExec = "security.SMACK64EXEC"

	// AttrMmap is the label required of libraries the object may map.
	AttrMmap = "security.SMACK64MMAP"

	// AttrTransmute marks directories whose new entries inherit the
	// directory label.
	AttrTransmute = "security.SMACK64TRANSMUTE"
)

// SelfLabel returns the calling process's own label.
func SelfLabel() (string, error) {
	data, err := os.ReadFile(selfLabelPath)
	if err != nil {
		return "", fmt.Errorf("smackfs: read self label: %w", err)
	}
	return strings.TrimRight(string(data), "\x00\n"), nil
}

// SetSelfLabel changes the calling process's own label. The label is
// validated before anything is written.
func SetSelfLabel(lbl string) error {
	if err := label.Validate(lbl); err != nil {
		return err
	}
	f, err := os.OpenFile(selfLabelPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("smackfs: open self label: %w", err)
	}
	defer f.Close()
	if _, err := f.Write([]byte(lbl)); err != nil {
		return fmt.Errorf("smackfs: set self label: %w", err)
	}
	return nil
}

// SocketPeerLabel returns the label of the peer connected to the given
// socket descriptor.
func SocketPeerLabel(fd int) (string, error) {
	v, err := unix.GetsockoptString(fd, unix.SOL_SOCKET, unix.SO_PEERSEC)
	if err != nil {
		return "", fmt.Errorf("smackfs: peer label: %w", err)
	}
	return strings.TrimRight(v, "\x00"), nil
}

// PathLabel reads the named SMACK attribute of a filesystem object.
// With follow set, symbolic links are resolved; otherwise the link
// itself is examined. The result is validated before it is returned.
func PathLabel(path, attr string, follow bool) (string, error) {
	buf := make([]byte, label.MaxLength+1)
	var (
		n   int
		err error
	)
	if follow {
		n, err = unix.Getxattr(path, attr, buf)
	} else {
		n, err = unix.Lgetxattr(path, attr, buf)
	}
	if err != nil {
		return "", fmt.Errorf("smackfs: get %s on %s: %w", attr, path, err)
	}
	lbl := strings.TrimRight(string(buf[:n]), "\x00")
	if err := label.Validate(lbl); err != nil {
		return "", err
	}
	return lbl, nil
}

// SetPathLabel sets the named SMACK attribute of a filesystem object.
func SetPathLabel(path, attr, lbl string) error {
	if err := label.Validate(lbl); err != nil {
		return err
	}
	if err := unix.Setxattr(path, attr, []byte(lbl), 0); err != nil {
		return fmt.Errorf("smackfs: set %s on %s: %w", attr, path, err)
	}
	return nil
}

// RemovePathLabel removes the named SMACK attribute from a filesystem
// object.
func RemovePathLabel(path, attr string) error {
	if err := unix.Removexattr(path, attr); err != nil {
		return fmt.Errorf("smackfs: remove %s on %s: %w", attr, path, err)
	}
	return nil
}

// RevokeSubject removes every kernel rule whose subject is the given
// label by writing it to the revoke-subject control file.
func RevokeSubject(m *Mount, subject string) error {
	if err := label.Validate(subject); err != nil {
		return err
	}
	fd, err := m.Open("revoke-subject")
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return WriteAll(fd, []byte(subject))
}
