// Package main provides the smackctl command line tool for managing
// SMACK access rules and CIPSO mappings.
package main

import (
	"fmt"
	"os"
)

func main() {
	exitCode := run(os.Args)
	os.Exit(exitCode)
}

// run executes the CLI and returns an exit code.
// This is separated from main() to facilitate testing.
func run(args []string) int {
	if len(args) < 2 {
		printUsage(os.Stdout)
		return 1
	}

	switch args[1] {
	case "apply":
		return applyCmd(args[2:])
	case "clear":
		return clearCmd(args[2:])
	case "status":
		return statusCmd(args[2:])
	case "load":
		return loadCmd(args[2:])
	case "cipso":
		return cipsoCmd(args[2:])
	case "access":
		return accessCmd(args[2:])
	case "revoke":
		return revokeCmd(args[2:])
	case "label":
		return labelCmd(args[2:])
	case "watch":
		return watchCmd(args[2:])
	case "version":
		return versionCmd(args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[1])
		fmt.Fprintln(os.Stderr, "Run 'smackctl help' for usage.")
		return 1
	}
}
