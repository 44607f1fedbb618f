//go:build !unix

package main

import (
	"os"
	"syscall"
)

// reraise approximates signal death on platforms without unix.Kill by
// exiting with the conventional 128+signal status.
func reraise(sig syscall.Signal) {
	os.Exit(128 + int(sig))
}
