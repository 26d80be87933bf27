// Package smackfs gives the rule and CIPSO engines access to the kernel's
// SMACK control filesystem.
//
// The Mount type is an explicit handle for the mounted control surface.
// It is initialized lazily on first use, initialization is idempotent and
// may be retried after a failure, and every operation that touches the
// surface takes the handle as an argument; there is no process-wide
// mount state.
//
// The package also carries the thin label I/O wrappers around procfs and
// extended attributes: reading and setting the calling process's own
// label, reading a socket peer's label, and getting or setting the label
// attributes of filesystem objects.
package smackfs
