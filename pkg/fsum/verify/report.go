package verify

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/fsum/pkg/fsum/escape"
	"github.com/jamesainslie/fsum/pkg/fsum/manifest"
)

// reportHeader is the first line of a verification report.
const reportHeader = manifest.ProgramName +
	" - verification report - file format version " + manifest.FormatVersion

// report streams failure lines into a temporary file and renames it over the
// final report on completion, mirroring the manifest writer's discipline. On
// interruption the temporary file is left behind.
type report struct {
	path string
	temp string
	f    *os.File
	buf  *bufio.Writer

	closed bool
}

// newReport creates the temporary report file and writes its header. runID
// identifies the run in the header comments; empty omits the line.
func newReport(path, runID string) (*report, error) {
	temp := path + ".inprogress"
	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	r := &report{path: path, temp: temp, f: f, buf: bufio.NewWriter(f)}
	lines := []string{manifest.BOM + reportHeader, ""}
	if runID != "" {
		lines = append(lines, manifest.CommentPrefix+" run: "+runID)
	}
	for _, line := range lines {
		if _, err := r.buf.WriteString(line + "\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("write report header: %w", err)
		}
	}
	return r, nil
}

// failure appends one escaped "path⇥message" line.
func (r *report) failure(path, message string) error {
	line := escape.Escape(path) + "\t" + message + "\n"
	if _, err := r.buf.WriteString(line); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}
	return nil
}

// commit writes the summary comments and atomically replaces the final
// report file.
func (r *report) commit(s *Stats) error {
	summary := []string{
		fmt.Sprintf("%s verified: %s", manifest.CommentPrefix, humanize.Comma(int64(s.Verified))),
		fmt.Sprintf("%s failed: %s", manifest.CommentPrefix, humanize.Comma(int64(s.Failed))),
		fmt.Sprintf("%s skipped: %s", manifest.CommentPrefix, humanize.Comma(int64(s.Skipped))),
	}
	for _, line := range summary {
		if _, err := r.buf.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write report summary: %w", err)
		}
	}
	if err := r.buf.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	r.closed = true
	if err := os.Rename(r.temp, r.path); err != nil {
		return fmt.Errorf("rename report into place: %w", err)
	}
	return nil
}

// abandon closes the temporary report without renaming it, leaving the
// partial file on disk for the operator.
func (r *report) abandon() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.buf.Flush(); err != nil {
		r.f.Close()
		return fmt.Errorf("flush abandoned report: %w", err)
	}
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("close abandoned report: %w", err)
	}
	return nil
}
