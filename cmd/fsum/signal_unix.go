//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// reraise restores the default disposition for sig and sends it to the
// current process, so the shell observes a signal death rather than a
// normal exit.
func reraise(sig syscall.Signal) {
	signal.Reset(sig)
	_ = unix.Kill(os.Getpid(), sig)
}
