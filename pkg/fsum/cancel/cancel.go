// Package cancel provides the cooperative cancellation flag shared by every
// long-running loop in the engine. The flag is set exactly once, by the
// signal-handling boundary in the CLI, and read by the scanner between
// directory entries, the checksum loop between blocks, and the verification
// loop between files. Nothing is preempted: cancellation latency is bounded
// by one I/O block or one file.
package cancel

import (
	"os"
	"sync/atomic"
	"syscall"
)

// Flag is a process-wide cooperative stop request. The zero value is ready
// to use and not set.
type Flag struct {
	set atomic.Bool
	sig atomic.Int32
}

// Set records a stop request and the signal that caused it. The signal is
// kept so the caller can re-raise it after cleanup and make the termination
// cause observable to its parent. Safe to call from a signal handler
// goroutine.
func (f *Flag) Set(sig os.Signal) {
	if s, ok := sig.(syscall.Signal); ok {
		f.sig.Store(int32(s))
	}
	f.set.Store(true)
}

// Requested reports whether a stop has been requested.
func (f *Flag) Requested() bool {
	return f.set.Load()
}

// Signal returns the originating signal, or nil if no signal was recorded.
func (f *Flag) Signal() os.Signal {
	s := f.sig.Load()
	if s == 0 {
		return nil
	}
	return syscall.Signal(s)
}
