// Package scanner provides the deterministic depth-first directory walk the
// merge engine consumes. For each directory it yields the regular files in
// byte-wise sorted order first, then recurses into each subdirectory in
// sorted order. The ordering is locale-independent and matches the manifest
// comparator exactly, which is what makes the single-pass merge-join
// possible.
//
// The walk follows symlinks and has no loop protection: a self-referential
// tree recurses forever. That is a documented limitation of the design, not
// a defect.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/jamesainslie/fsum/pkg/fsum/cancel"
	"github.com/jamesainslie/fsum/pkg/fsum/filter"
	"github.com/jamesainslie/fsum/pkg/fsum/logging"
	"github.com/jamesainslie/fsum/pkg/fsum/treepath"
)

// logger is the package-level logger for scan operations.
var logger = logging.Get("scanner")

// ErrInterrupted is returned when the cancellation flag is observed between
// directory entries. The walk stops cleanly; nothing is rolled back.
var ErrInterrupted = errors.New("scan interrupted")

// Visitor receives the walk in traversal order. EnterDir is called before a
// directory's contents are visited; File is called once per admitted regular
// file. Returning an error aborts the walk.
type Visitor interface {
	EnterDir(dir treepath.Stack) error
	File(dir treepath.Stack, name string, info fs.FileInfo) error
}

// Options configures a Scanner. The scanner reads nothing from any ambient
// source: everything it needs arrives here.
type Options struct {
	// Root is the directory to scan.
	Root string

	// Filter is the ordered include/exclude rule set. Nil means no rules.
	Filter *filter.Filter

	// ExcludeBasenames are names always excluded when encountered directly
	// under Root, regardless of filter rules. Used for the manifest and its
	// temporary, backup, report and checkpoint siblings.
	ExcludeBasenames []string

	// Stop is the cooperative cancellation flag. Nil disables checks.
	Stop *cancel.Flag
}

// Scanner walks one directory tree. It is single-use: create one per
// operation.
type Scanner struct {
	opts Options

	dirs     uint64
	failures uint64
}

// New creates a Scanner. A nil filter is replaced with an empty one.
func New(opts Options) (*Scanner, error) {
	if opts.Root == "" {
		return nil, errors.New("scan root must not be empty")
	}
	if opts.Filter == nil {
		f, err := filter.Compile(nil)
		if err != nil {
			return nil, err
		}
		opts.Filter = f
	}
	return &Scanner{opts: opts}, nil
}

// Dirs returns the number of directories visited, including the root.
func (s *Scanner) Dirs() uint64 {
	return s.dirs
}

// Failures returns the number of entries that could not be stat'ed.
func (s *Scanner) Failures() uint64 {
	return s.failures
}

// Walk traverses the tree, feeding v. It returns ErrInterrupted on
// cancellation, the visitor's error if one occurred, or an error if the root
// itself cannot be read. Per-entry stat failures are counted and logged, and
// the walk continues.
func (s *Scanner) Walk(v Visitor) error {
	info, err := os.Stat(s.opts.Root)
	if err != nil {
		return fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %s is not a directory", s.opts.Root)
	}
	return s.walkDir(s.opts.Root, nil, v)
}

// fileEntry is one admitted regular file awaiting the visitor.
type fileEntry struct {
	name string
	info fs.FileInfo
}

func (s *Scanner) walkDir(abs string, dir treepath.Stack, v Visitor) error {
	s.dirs++

	entries, err := os.ReadDir(abs)
	if err != nil {
		if len(dir) == 0 {
			return fmt.Errorf("read scan root: %w", err)
		}
		s.failures++
		logger.Warn("cannot read directory", "path", abs, "error", err)
		return nil
	}

	var files []fileEntry
	var subdirs []string
	for _, de := range entries {
		if s.stopped() {
			return ErrInterrupted
		}
		name := de.Name()
		if err := treepath.ValidateName(name); err != nil {
			s.failures++
			logger.Warn("skipping unrepresentable name", "dir", abs, "error", err)
			continue
		}
		if len(dir) == 0 && slices.Contains(s.opts.ExcludeBasenames, name) {
			continue
		}

		// Stat follows symlinks, so a link to a file is checksummed as that
		// file. Broken links land here as stat failures.
		info, err := os.Stat(filepath.Join(abs, name))
		if err != nil {
			s.failures++
			logger.Warn("cannot stat entry", "path", filepath.Join(abs, name), "error", err)
			continue
		}

		switch {
		case info.IsDir():
			if s.opts.Filter.Dir(dir.File(name)) {
				subdirs = append(subdirs, name)
			}
		case info.Mode().IsRegular():
			if s.opts.Filter.File(dir.File(name)) {
				files = append(files, fileEntry{name: name, info: info})
			}
		default:
			// Pipes, devices and sockets are skipped silently.
		}
	}

	slices.SortFunc(files, func(a, b fileEntry) int {
		return treepath.CompareNames(a.name, b.name)
	})
	slices.SortFunc(subdirs, treepath.CompareNames)

	for _, fe := range files {
		if s.stopped() {
			return ErrInterrupted
		}
		if err := v.File(dir, fe.name, fe.info); err != nil {
			return err
		}
	}
	for _, name := range subdirs {
		if s.stopped() {
			return ErrInterrupted
		}
		child := dir.Push(name)
		if err := v.EnterDir(child); err != nil {
			return err
		}
		if err := s.walkDir(filepath.Join(abs, name), child, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) stopped() bool {
	return s.opts.Stop != nil && s.opts.Stop.Requested()
}
