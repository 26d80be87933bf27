package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/smack-team/smack-go/internal/smackfs"
)

// attrByName maps the command line attribute names to the xattr names.
var attrByName = map[string]string{
	"access":    smackfs.AttrAccess,
	"exec":      smackfs.AttrExec,
	"mmap":      smackfs.AttrMmap,
	"transmute": smackfs.AttrTransmute,
}

// labelCmd handles the label command: reading, setting and removing the
// SMACK attributes of filesystem objects.
func labelCmd(args []string) int {
	fs := flag.NewFlagSet("label", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	attr := fs.String("attr", "access", "Attribute: access, exec, mmap, transmute")
	set := fs.String("set", "", "Set the attribute to this label")
	remove := fs.Bool("remove", false, "Remove the attribute")
	follow := fs.Bool("follow", true, "Follow symbolic links when reading")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printLabelUsage(os.Stdout)
		return 0
	}

	xattr, ok := attrByName[*attr]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown attribute %q\n", *attr)
		return 1
	}
	if *set != "" && *remove {
		fmt.Fprintln(os.Stderr, "Error: -set and -remove are mutually exclusive")
		return 1
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one path is required")
		return 1
	}

	exitCode := 0
	for _, path := range fs.Args() {
		switch {
		case *set != "":
			if err := smackfs.SetPathLabel(path, xattr, *set); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = 1
			}
		case *remove:
			if err := smackfs.RemovePathLabel(path, xattr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = 1
			}
		default:
			printPathLabels(path, *follow)
		}
	}
	return exitCode
}

// printPathLabels prints every SMACK attribute present on the path.
func printPathLabels(path string, follow bool) {
	fmt.Printf("%s:", path)
	for _, name := range []string{"access", "exec", "mmap", "transmute"} {
		lbl, err := smackfs.PathLabel(path, attrByName[name], follow)
		if err != nil {
			continue
		}
		fmt.Printf(" %s=%q", name, lbl)
	}
	fmt.Println()
}
