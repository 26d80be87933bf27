package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage information to the given writer.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `smackctl - SMACK access rule and CIPSO mapping management

Usage:
  smackctl <command> [options]

Commands:
  apply       Apply the configured rule and CIPSO directories
  clear       Revoke the rules of the configured rule directory
  status      Show control surface and rule directory status
  load        Apply rules from files or stdin
  cipso       Apply CIPSO mappings from files or stdin
  access      Ask the kernel whether an access would be granted
  revoke      Revoke all kernel rules of one subject label
  label       Read, set or remove SMACK labels on files
  watch       Watch the rule directory and re-apply on changes
  version     Show version information

Use "smackctl <command> -h" for more information about a command.
`)
}

// printApplyUsage prints the apply command usage.
func printApplyUsage(w io.Writer) {
	fmt.Fprint(w, `Apply the configured rule and CIPSO directories

Usage:
  smackctl apply [options]

Options:
  -config string
        Path to configuration file (default "/etc/smack/smackctl.toml")
  -rules string
        Rules directory (overrides config, default "/etc/smack/accesses.d")
  -cipso string
        CIPSO directory (overrides config, default "/etc/smack/cipso.d")
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message

Directories that do not exist are skipped.
`)
}

// printClearUsage prints the clear command usage.
func printClearUsage(w io.Writer) {
	fmt.Fprint(w, `Revoke the rules of the configured rule directory

Usage:
  smackctl clear [options]

Options:
  -config string
        Path to configuration file
  -rules string
        Rules directory (overrides config)
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message

Every rule found in the directory is re-applied with an empty allow
set, revoking it in the kernel.
`)
}

// printStatusUsage prints the status command usage.
func printStatusUsage(w io.Writer) {
	fmt.Fprint(w, `Show control surface and rule directory status

Usage:
  smackctl status [options]

Options:
  -config string
        Path to configuration file
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message
`)
}

// printLoadUsage prints the load command usage.
func printLoadUsage(w io.Writer) {
	fmt.Fprint(w, `Apply rules from files or stdin

Usage:
  smackctl load [options] <file>...

Each line of a rule file is "subject object access" or
"subject object allow deny". Use '-' to read from stdin.

Options:
  -clear
        Revoke the rules instead of applying them
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message
`)
}

// printCipsoUsage prints the cipso command usage.
func printCipsoUsage(w io.Writer) {
	fmt.Fprint(w, `Apply CIPSO mappings from files or stdin

Usage:
  smackctl cipso [options] <file>...

Each line of a mapping file is "label level [category ...]".
Use '-' to read from stdin.

Options:
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message
`)
}

// printAccessUsage prints the access command usage.
func printAccessUsage(w io.Writer) {
	fmt.Fprint(w, `Ask the kernel whether an access would be granted

Usage:
  smackctl access [options] <subject> <object> <access>

Prints "yes" if the subject label has the given access to the object
label, "no" otherwise.

Options:
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message
`)
}

// printRevokeUsage prints the revoke command usage.
func printRevokeUsage(w io.Writer) {
	fmt.Fprint(w, `Revoke all kernel rules of one subject label

Usage:
  smackctl revoke [options] <subject>

Options:
  -smackfs string
        Control surface path (overrides discovery)
  -h, -help
        Show this help message
`)
}

// printLabelUsage prints the label command usage.
func printLabelUsage(w io.Writer) {
	fmt.Fprint(w, `Read, set or remove SMACK labels on files

Usage:
  smackctl label [options] <path>...

Without -set or -remove, prints the SMACK attributes present on each
path.

Options:
  -attr string
        Attribute: access, exec, mmap, transmute (default "access")
  -set string
        Set the attribute to this label
  -remove
        Remove the attribute
  -follow
        Follow symbolic links when reading (default true)
  -h, -help
        Show this help message
`)
}

// printWatchUsage prints the watch command usage.
func printWatchUsage(w io.Writer) {
	fmt.Fprint(w, `Watch the rule directory and re-apply on changes

Usage:
  smackctl watch [options]

Applies the rule directory, then keeps watching it and re-applies
whenever its contents change. Runs until interrupted.

Options:
  -config string
        Path to configuration file
  -rules string
        Rules directory (overrides config)
  -smackfs string
        Control surface path (overrides discovery)
  -log-level string
        Log level: debug, info, warn, error (overrides config)
  -h, -help
        Show this help message
`)
}

// printVersionUsage prints the version command usage.
func printVersionUsage(w io.Writer) {
	fmt.Fprint(w, `Show version information

Usage:
  smackctl version [options]

Options:
  -short
        Show only version number
  -h, -help
        Show this help message
`)
}
