// Package diff implements the merge-join engine at the heart of manifest
// creation and update. The live directory scan and the stored manifest are
// two streams sorted by the same comparator; a single cursor over the
// manifest is advanced in lockstep with the scan, classifying every file as
// unchanged, changed, added or removed in exactly one forward pass over each
// stream. No backtracking, so both producers must be pure forward iterators.
package diff

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/jamesainslie/fsum/pkg/fsum/cancel"
	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/filter"
	"github.com/jamesainslie/fsum/pkg/fsum/logging"
	"github.com/jamesainslie/fsum/pkg/fsum/manifest"
	"github.com/jamesainslie/fsum/pkg/fsum/scanner"
	"github.com/jamesainslie/fsum/pkg/fsum/treepath"
)

// logger is the package-level logger for merge operations.
var logger = logging.Get("diff")

// Class is the merge engine's classification of one path.
type Class int

const (
	// Unchanged means stored size and timestamp match the live file; the
	// stored checksum is copied forward without recomputation.
	Unchanged Class = iota
	// Changed means the file exists in both streams but differs.
	Changed
	// Added means the file exists on disk but not in the manifest.
	Added
	// Removed means the manifest entry has no file on disk.
	Removed
)

// String returns the classification name used in update messages.
func (c Class) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Stats aggregates one create or update run.
type Stats struct {
	Unchanged uint64
	Changed   uint64
	Added     uint64
	Removed   uint64

	// Dirs and Files are the totals recorded in the new manifest;
	// TotalSize is their byte sum.
	Dirs      uint64
	Files     uint64
	TotalSize uint64

	// Failures counts per-file I/O errors that were logged and skipped.
	Failures uint64

	// Interrupted is true when the run stopped on the cancellation flag.
	// The in-progress manifest file is left on disk in that case.
	Interrupted bool
}

// Changes returns the number of classifications that differ from unchanged.
func (s *Stats) Changes() uint64 {
	return s.Added + s.Removed + s.Changed
}

// Options configures one create or update run. The engine reads no ambient
// configuration: the CLI assembles this once at startup.
type Options struct {
	// Root is the directory tree to scan.
	Root string

	// Names locates the manifest and its sibling files.
	Names manifest.Names

	// Checksum computes digests for added and changed files.
	Checksum *checksum.Calculator

	// AlwaysChecksum forces recomputation even for matching entries.
	AlwaysChecksum bool

	// Filter is the ordered include/exclude rule set. Nil means no rules.
	Filter *filter.Filter

	// Stop is the cooperative cancellation flag.
	Stop *cancel.Flag

	// Update selects update mode: the existing manifest is merged against
	// the scan and renamed to the ".previous" backup on success. Otherwise a
	// fresh manifest is created and every file classifies as added.
	Update bool

	// OnChange, when non-nil, is invoked for every added, removed and
	// changed path, in traversal order.
	OnChange func(Class, string)
}

// Run executes one create or update operation. On interruption it returns
// stats with Interrupted set and a nil error; the partially-written
// in-progress file stays on disk for the operator.
func Run(opts Options) (*Stats, error) {
	if opts.Checksum == nil {
		return nil, errors.New("checksum calculator is required")
	}

	var reader *manifest.Reader
	if opts.Update {
		r, err := manifest.Open(opts.Names.Final)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		reader = r
	}

	writer, err := manifest.NewWriter(opts.Names)
	if err != nil {
		return nil, err
	}

	// The manifest's sibling files are excluded by basename only when they
	// actually live in the scan root; a manifest kept elsewhere must not
	// shadow identically named data files.
	var excluded []string
	if filepath.Clean(opts.Names.Dir()) == filepath.Clean(opts.Root) {
		excluded = opts.Names.Basenames()
	}

	scan, err := scanner.New(scanner.Options{
		Root:             opts.Root,
		Filter:           opts.Filter,
		ExcludeBasenames: excluded,
		Stop:             opts.Stop,
	})
	if err != nil {
		writer.Abandon()
		return nil, err
	}

	m := &merger{
		root:   opts.Root,
		reader: reader,
		writer: writer,
		calc:   opts.Checksum,
		always: opts.AlwaysChecksum,
		change: opts.OnChange,
		stats:  &Stats{},
	}
	if err := m.advance(); err != nil {
		writer.Abandon()
		return nil, err
	}

	if err := scan.Walk(m); err != nil {
		// Leave the in-progress file behind; it is recoverable by hand and
		// harmless to a later run.
		if aerr := writer.Abandon(); aerr != nil {
			logger.Warn("cannot close in-progress manifest", "error", aerr)
		}
		if errors.Is(err, scanner.ErrInterrupted) {
			m.stats.Interrupted = true
			m.stats.Failures += scan.Failures()
			return m.stats, nil
		}
		return nil, err
	}

	if err := m.finish(); err != nil {
		writer.Abandon()
		return nil, err
	}

	m.stats.Dirs = scan.Dirs()
	m.stats.Files = writer.Files()
	m.stats.TotalSize = writer.TotalSize()
	m.stats.Failures += scan.Failures()

	if err := writer.Commit(scan.Dirs(), opts.Update); err != nil {
		return nil, err
	}
	return m.stats, nil
}

// merger is the scanner visitor that advances the manifest cursor in
// lockstep with the walk.
type merger struct {
	root   string
	reader *manifest.Reader
	writer *manifest.Writer
	calc   *checksum.Calculator
	always bool
	change func(Class, string)
	stats  *Stats

	// cursor is the current manifest entry, nil once the stream is drained.
	cursor *manifest.Entry
}

// advance moves the cursor to the next manifest entry.
func (m *merger) advance() error {
	if m.reader == nil {
		m.cursor = nil
		return nil
	}
	e, err := m.reader.Next()
	if err == io.EOF {
		m.cursor = nil
		return nil
	}
	if err != nil {
		return err
	}
	m.cursor = e
	return nil
}

// EnterDir retires every manifest entry whose directory sorts before the
// directory about to be visited: those files no longer exist.
func (m *merger) EnterDir(dir treepath.Stack) error {
	for m.cursor != nil && m.cursor.Dir.Compare(dir) < 0 {
		if err := m.removed(m.cursor); err != nil {
			return err
		}
	}
	return nil
}

// File classifies one live file against the cursor.
func (m *merger) File(dir treepath.Stack, name string, info fs.FileInfo) error {
	// Retire manifest entries in the same directory that sort before the
	// current file, and any stragglers from earlier directories.
	for m.cursor != nil {
		c := m.cursor.Dir.Compare(dir)
		if c < 0 || (c == 0 && treepath.CompareNames(m.cursor.Name, name) < 0) {
			if err := m.removed(m.cursor); err != nil {
				return err
			}
			continue
		}
		break
	}

	rel := dir.File(name)
	size := uint64(info.Size())
	ts := manifest.FormatTimestamp(info.ModTime())

	if m.cursor != nil && m.cursor.Dir.Compare(dir) == 0 && m.cursor.Name == name {
		stored := m.cursor
		metaSame := stored.Size == size &&
			stored.Timestamp == ts &&
			stored.Type == m.calc.Type()

		if metaSame && !m.always {
			// Unchanged: carry the stored checksum forward verbatim.
			m.stats.Unchanged++
			if err := m.writer.Add(stored); err != nil {
				return err
			}
			return m.advance()
		}

		res, ok, err := m.digest(rel)
		if err != nil {
			return err
		}
		if !ok {
			return m.advance()
		}
		class := Changed
		if metaSame && res.Digest == stored.Digest {
			// --always-checksum recomputed the digest and it still matches.
			class = Unchanged
		}
		if err := m.emit(class, dir, name, rel, size, ts, res.Digest); err != nil {
			return err
		}
		return m.advance()
	}

	// Cursor is past this path or exhausted: new on disk.
	res, ok, err := m.digest(rel)
	if err != nil || !ok {
		return err
	}
	return m.emit(Added, dir, name, rel, size, ts, res.Digest)
}

// digest checksums the live file. ok is false for a per-file I/O error,
// which is counted and logged; the file is left out of the new manifest
// rather than recorded with a guessed digest.
func (m *merger) digest(rel string) (checksum.Result, bool, error) {
	res, err := m.calc.File(filepath.Join(m.root, filepath.FromSlash(rel)))
	if err != nil {
		m.stats.Failures++
		logger.Warn("cannot checksum file", "path", rel, "error", err)
		return checksum.Result{}, false, nil
	}
	if res.Interrupted {
		return checksum.Result{}, false, scanner.ErrInterrupted
	}
	return res, true, nil
}

// emit records one classified entry with a freshly computed digest.
func (m *merger) emit(class Class, dir treepath.Stack, name, rel string, size uint64, ts, digest string) error {
	switch class {
	case Unchanged:
		m.stats.Unchanged++
	case Changed:
		m.stats.Changed++
	case Added:
		m.stats.Added++
	}
	if m.change != nil && class != Unchanged {
		m.change(class, rel)
	}
	return m.writer.Add(&manifest.Entry{
		Timestamp: ts,
		Type:      m.calc.Type(),
		Digest:    digest,
		Size:      size,
		Path:      rel,
		Dir:       dir,
		Name:      name,
	})
}

// finish retires every manifest entry the scan never reached.
func (m *merger) finish() error {
	for m.cursor != nil {
		if err := m.removed(m.cursor); err != nil {
			return err
		}
	}
	return nil
}

// removed records a retired entry and advances the cursor.
func (m *merger) removed(e *manifest.Entry) error {
	m.stats.Removed++
	if m.change != nil {
		m.change(Removed, e.Path)
	}
	return m.advance()
}
