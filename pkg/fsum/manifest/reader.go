package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader is a strict forward-only manifest reader. It validates the header
// on open, then yields entries one at a time, skipping blank and comment
// lines and tracking a 1-based physical line counter (the header is line 1)
// for diagnostics.
//
// The reader also enforces the manifest ordering invariant: every entry must
// sort strictly after its predecessor. A duplicate or out-of-order entry is
// a fatal format error, since the merge engine's single forward pass depends
// on it.
type Reader struct {
	f    *os.File
	br   *bufio.Reader
	line int
	prev *Entry
	eof  bool
}

// Open opens a manifest in raw mode, strips the byte-order mark and
// validates the header line and format version token exactly.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	r := &Reader{f: f, br: bufio.NewReader(f)}
	header, err := r.readLine()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	header = strings.TrimPrefix(header, BOM)
	if !strings.HasPrefix(header, headerPrefix) {
		f.Close()
		return nil, fmt.Errorf("%w: line 1: unrecognized header %q", ErrFormat, header)
	}
	if version := header[len(headerPrefix):]; version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("%w: line 1: unsupported format version %q", ErrFormat, version)
	}
	return r, nil
}

// Next returns the next entry, or io.EOF when the manifest is exhausted.
// Entries are yielded strictly in manifest order; format errors are fatal
// and name the offending line.
func (r *Reader) Next() (*Entry, error) {
	if r.eof {
		return nil, io.EOF
	}
	for {
		line, err := r.readLine()
		if err == io.EOF {
			r.eof = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest line %d: %w", r.line+1, err)
		}
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		e, err := parseEntry(line, r.line)
		if err != nil {
			return nil, err
		}
		if r.prev != nil {
			switch c := r.prev.Compare(e); {
			case c == 0:
				return nil, formatErr(r.line, "duplicate path %q", e.Path)
			case c > 0:
				return nil, formatErr(r.line, "entry %q out of manifest order", e.Path)
			}
		}
		r.prev = e
		return e, nil
	}
}

// Line returns the physical line number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// readLine reads one physical line, advancing the counter. The trailing
// newline (and a carriage return, if present) is stripped. A final line
// without a newline is returned before io.EOF.
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	if err != nil && err != io.EOF {
		return "", err
	}
	r.line++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
