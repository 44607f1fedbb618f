// Package main provides the entry point for the fsum checksum tool CLI.
package main

import (
	"os"
)

// exitCode is the process exit status for runs that completed but found
// changes or verification failures.
var exitCode int

// exitStatus maps the command outcome to the process exit status: 2 for
// fatal errors, so scripts can tell "operation failed" apart from the
// "changes found / verification failed" status 1.
func exitStatus(err error) int {
	if err != nil {
		return 2
	}
	return exitCode
}

func main() {
	os.Exit(exitStatus(Execute()))
}
