package smackfs

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// WriteAll writes one complete record to a control file descriptor.
// Interrupted writes are retried and partial writes are continued until
// every byte of the record is out; any other failure aborts. A record is
// therefore never left half-written by a recoverable condition.
func WriteAll(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("smackfs: write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("smackfs: write: %w", io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}
