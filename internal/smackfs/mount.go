package smackfs

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// smackMagic is the statfs f_type of a mounted smackfs ("S]AC").
const smackMagic = 0x43415d53

// defaultPaths are the conventional smackfs mount points, probed in order.
var defaultPaths = []string{"/sys/fs/smackfs", "/smack"}

// Mount errors.
var (
	// ErrNotMounted is returned when no smackfs mount point can be found.
	ErrNotMounted = errors.New("smackfs: smackfs is not mounted")

	// ErrUnsupportedFormat is returned when an operation needs the long
	// wire format or modify-rule support and the mounted surface only
	// offers the legacy files.
	ErrUnsupportedFormat = errors.New("smackfs: control surface does not support required format")
)

// Mount is a handle for the smackfs control surface. The zero value is
// not usable; create one with New or NewAt.
//
// The handle resolves the mount point and opens a directory descriptor
// on first use. A failed initialization leaves the handle unresolved so
// the next operation retries it.
type Mount struct {
	override string
	resolved string
	dirfd    int
}

// New returns a handle that discovers the smackfs mount point on first
// use by probing the conventional paths and checking the filesystem
// magic.
func New() *Mount {
	return &Mount{dirfd: -1}
}

// NewAt returns a handle bound to an explicit directory instead of a
// discovered mount point. The filesystem magic is not checked, so the
// handle can address a staging directory that merely mimics the control
// surface layout.
func NewAt(path string) *Mount {
	return &Mount{override: path, dirfd: -1}
}

// init resolves the mount point and opens the directory descriptor.
// It is idempotent and safe to retry after a failure.
func (m *Mount) init() error {
	if m.dirfd >= 0 {
		return nil
	}

	path := m.override
	if path == "" {
		p, err := discover()
		if err != nil {
			return err
		}
		path = p
	}

	fd, err := unix.Open(path, unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("smackfs: open %s: %w", path, err)
	}
	m.resolved = path
	m.dirfd = fd
	return nil
}

// discover probes the conventional mount points for a directory whose
// filesystem magic identifies smackfs.
func discover() (string, error) {
	for _, p := range defaultPaths {
		var st unix.Statfs_t
		if err := unix.Statfs(p, &st); err != nil {
			continue
		}
		if st.Type == smackMagic {
			return p, nil
		}
	}
	return "", ErrNotMounted
}

// Path returns the resolved mount point, initializing the handle if
// necessary.
func (m *Mount) Path() (string, error) {
	if err := m.init(); err != nil {
		return "", err
	}
	return m.resolved, nil
}

// Close releases the directory descriptor. The handle may be reused; the
// next operation re-initializes it.
func (m *Mount) Close() error {
	if m.dirfd < 0 {
		return nil
	}
	err := unix.Close(m.dirfd)
	m.dirfd = -1
	m.resolved = ""
	return err
}

// Open opens the named control file for writing. The name is resolved
// relative to the mount point.
func (m *Mount) Open(name string) (int, error) {
	return m.open(name, unix.O_WRONLY)
}

// OpenRW opens the named control file for writing and reading back a
// reply, as the access-query endpoints require.
func (m *Mount) OpenRW(name string) (int, error) {
	return m.open(name, unix.O_RDWR)
}

func (m *Mount) open(name string, flags int) (int, error) {
	if err := m.init(); err != nil {
		return -1, err
	}
	fd, err := unix.Openat(m.dirfd, name, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("smackfs: open %s: %w", name, err)
	}
	return fd, nil
}

// OpenPreferLong opens the long-format control file, falling back to the
// short-format one only when the long name does not exist. The boolean
// result reports whether the long format is in use. Any open failure
// other than the long name's absence is returned as an error.
func (m *Mount) OpenPreferLong(longName, shortName string, flags int) (fd int, useLong bool, err error) {
	if err := m.init(); err != nil {
		return -1, false, err
	}

	fd, err = unix.Openat(m.dirfd, longName, flags|unix.O_CLOEXEC, 0)
	if err == nil {
		return fd, true, nil
	}
	if !errors.Is(err, unix.ENOENT) {
		return -1, false, fmt.Errorf("smackfs: open %s: %w", longName, err)
	}

	fd, err = unix.Openat(m.dirfd, shortName, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, false, fmt.Errorf("smackfs: open %s: %w", shortName, err)
	}
	return fd, false, nil
}
