package manifest

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// warningComment follows the header in every generated manifest.
const warningComment = "# Machine generated and machine updated. " +
	"Fields are tab separated; paths are escaped. Do not edit by hand."

// Writer streams entries into a temporary in-progress file and replaces the
// final manifest atomically on Commit. Entries are written as they are
// produced by the merge engine, never buffered in memory.
type Writer struct {
	names Names
	f     *os.File
	buf   *bufio.Writer

	files     uint64
	totalSize uint64
	closed    bool
}

// NewWriter creates the temporary file and writes the byte-order mark,
// header and warning comment.
func NewWriter(names Names) (*Writer, error) {
	f, err := os.OpenFile(names.Temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create in-progress manifest: %w", err)
	}

	w := &Writer{names: names, f: f, buf: bufio.NewWriter(f)}
	for _, line := range []string{BOM + Header(), "", warningComment} {
		if _, err := w.buf.WriteString(line + "\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("write manifest header: %w", err)
		}
	}
	return w, nil
}

// Add appends one entry line and accumulates the summary counters.
func (w *Writer) Add(e *Entry) error {
	if _, err := w.buf.WriteString(formatLine(e) + "\n"); err != nil {
		return fmt.Errorf("write manifest entry: %w", err)
	}
	w.files++
	w.totalSize += e.Size
	return nil
}

// Files returns the number of entries written so far.
func (w *Writer) Files() uint64 {
	return w.files
}

// TotalSize returns the byte total of entries written so far.
func (w *Writer) TotalSize() uint64 {
	return w.totalSize
}

// Commit writes the trailing summary comments, closes the temporary file and
// moves it over the final name. When backup is true the existing final file
// is first renamed to the ".previous" name.
func (w *Writer) Commit(dirs uint64, backup bool) error {
	summary := []string{
		fmt.Sprintf("%s directories: %s", CommentPrefix, humanize.Comma(int64(dirs))),
		fmt.Sprintf("%s files: %s", CommentPrefix, humanize.Comma(int64(w.files))),
		fmt.Sprintf("%s total size: %s", CommentPrefix, humanize.Comma(int64(w.totalSize))),
	}
	for _, line := range summary {
		if _, err := w.buf.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write manifest summary: %w", err)
		}
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	w.closed = true

	if backup {
		if err := os.Rename(w.names.Final, w.names.Previous); err != nil {
			return fmt.Errorf("rename previous manifest: %w", err)
		}
	}
	if err := os.Rename(w.names.Temp, w.names.Final); err != nil {
		return fmt.Errorf("rename manifest into place: %w", err)
	}
	return nil
}

// Abandon closes the temporary file without renaming it. The partial file is
// deliberately left on disk so an operator can inspect or recover it after
// an interruption.
func (w *Writer) Abandon() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush abandoned manifest: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close abandoned manifest: %w", err)
	}
	return nil
}
