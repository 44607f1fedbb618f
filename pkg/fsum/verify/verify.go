// Package verify re-validates manifest entries against the disk. A run
// proceeds through three states: skipping (discarding already-verified
// entries when resuming), verifying (per-entry stat and re-hash), and done.
// Failures go to a report file; progress goes to a checkpoint file that is
// atomically rewritten on a fixed interval so an interrupted run can resume
// where it left off.
package verify

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/fsum/pkg/fsum/cancel"
	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/logging"
	"github.com/jamesainslie/fsum/pkg/fsum/manifest"
)

// logger is the package-level logger for verification runs.
var logger = logging.Get("verify")

// DefaultCheckpointInterval is how often the checkpoint is rewritten.
const DefaultCheckpointInterval = 60 * time.Second

// Options configures one verification run. The engine reads no ambient
// configuration: the CLI assembles this once at startup.
type Options struct {
	// Root is the directory the manifest's relative paths resolve against.
	Root string

	// Names locates the manifest and its sibling files.
	Names manifest.Names

	// ReportPath overrides the default report location. Empty uses
	// Names.Report.
	ReportPath string

	// ResumeFromLine is the 1-based entry number to resume from; entries
	// before it are discarded and counted as skipped. Zero or one starts
	// from the beginning.
	ResumeFromLine uint64

	// CheckpointInterval is the cadence of periodic checkpoint writes.
	// Zero selects DefaultCheckpointInterval.
	CheckpointInterval time.Duration

	// BlockSize is the checksum read block size; zero selects the default.
	BlockSize int

	// Stop is the cooperative cancellation flag.
	Stop *cancel.Flag

	// RunID identifies this run in the report header and log context.
	RunID string
}

// Stats aggregates one verification run.
type Stats struct {
	// Verified counts entries that matched the disk.
	Verified uint64

	// Failed counts mismatches: missing files, size changes, checksum
	// mismatches, and paths that turned into directories.
	Failed uint64

	// Skipped counts entries discarded by resume before any disk access.
	Skipped uint64

	// Interrupted is true when the run stopped on the cancellation flag.
	// The checkpoint file is left behind so the next run can resume.
	Interrupted bool

	// NextLine is the entry number a resumed run should start from. Only
	// meaningful when Interrupted.
	NextLine uint64
}

// Run executes one verification pass. On interruption it returns stats with
// Interrupted set and a nil error. Manifest format errors are fatal.
func Run(opts Options) (*Stats, error) {
	reader, err := manifest.Open(opts.Names.Final)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = opts.Names.Report
	}
	rep, err := newReport(reportPath, opts.RunID)
	if err != nil {
		return nil, err
	}

	interval := opts.CheckpointInterval
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}

	v := &verifier{
		root:  opts.Root,
		opts:  opts,
		rep:   rep,
		ckpt:  &checkpoint{path: opts.Names.Checkpoint},
		stats: &Stats{},
	}
	stats, err := v.run(reader, interval)
	if err != nil {
		if aerr := rep.abandon(); aerr != nil {
			logger.Warn("cannot close in-progress report", "error", aerr)
		}
		return nil, err
	}
	return stats, nil
}

// verifier holds the state of one run.
type verifier struct {
	root  string
	opts  Options
	rep   *report
	ckpt  *checkpoint
	stats *Stats

	// next is the entry number of the next unprocessed entry (1-based).
	next uint64
}

func (v *verifier) run(reader *manifest.Reader, interval time.Duration) (*Stats, error) {
	v.next = 1

	// One unconditional checkpoint before any entry is touched.
	if err := v.ckpt.write(0); err != nil {
		return nil, err
	}
	lastCheckpoint := time.Now()

	for {
		if v.opts.Stop != nil && v.opts.Stop.Requested() {
			return v.interrupted()
		}

		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if v.next < v.opts.ResumeFromLine {
			// Skipping state: discard without touching the disk.
			v.stats.Skipped++
			v.next++
			continue
		}

		interrupted, err := v.check(e)
		if err != nil {
			return nil, err
		}
		if interrupted {
			return v.interrupted()
		}
		v.next++

		if time.Since(lastCheckpoint) >= interval {
			if err := v.ckpt.write(v.next); err != nil {
				return nil, err
			}
			lastCheckpoint = time.Now()
		}
	}

	if err := v.rep.commit(v.stats); err != nil {
		return nil, err
	}
	if err := v.ckpt.remove(); err != nil {
		return nil, err
	}
	return v.stats, nil
}

// interrupted performs the orderly stop: a best-effort checkpoint, the
// report temp left behind, and stats flagged for the caller.
func (v *verifier) interrupted() (*Stats, error) {
	// An interruption during the skipping state must not move the resume
	// point backwards.
	if v.next < v.opts.ResumeFromLine {
		v.next = v.opts.ResumeFromLine
	}
	v.stats.Interrupted = true
	v.stats.NextLine = v.next
	if err := v.ckpt.write(v.next); err != nil {
		logger.Warn("cannot write final checkpoint", "error", err)
	}
	if err := v.rep.abandon(); err != nil {
		logger.Warn("cannot close in-progress report", "error", err)
	}
	return v.stats, nil
}

// check verifies one entry against the disk. It returns true when the
// checksum pass observed the cancellation flag.
func (v *verifier) check(e *manifest.Entry) (bool, error) {
	abs := filepath.Join(v.root, filepath.FromSlash(e.Path))

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return false, v.fail(e, "file not found")
	case err != nil:
		return false, v.fail(e, fmt.Sprintf("cannot stat: %v", err))
	case info.IsDir():
		return false, v.fail(e, "path is now a directory")
	case uint64(info.Size()) != e.Size:
		return false, v.fail(e, fmt.Sprintf("size changed (stored %d, found %d)", e.Size, info.Size()))
	}

	if e.Type == checksum.None {
		v.stats.Verified++
		return false, nil
	}

	calc := checksum.NewCalculator(e.Type, v.opts.BlockSize, v.opts.Stop)
	res, err := calc.File(abs)
	if err != nil {
		return false, v.fail(e, fmt.Sprintf("cannot read: %v", err))
	}
	if res.Interrupted {
		return true, nil
	}
	if res.Digest != e.Digest {
		msg := fmt.Sprintf("checksum mismatch (stored %s, computed %s)", e.Digest, res.Digest)
		return false, v.fail(e, msg)
	}

	v.stats.Verified++
	return false, nil
}

// fail records one mismatch in the report and the failure counter. Per-file
// failures never stop the batch.
func (v *verifier) fail(e *manifest.Entry, message string) error {
	v.stats.Failed++
	logger.Warn("verification failure", "path", e.Path, "reason", message)
	return v.rep.failure(e.Path, message)
}
