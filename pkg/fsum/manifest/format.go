// Package manifest implements the checksum manifest codec: the tab-separated
// on-disk format, a streaming writer with atomic temp-then-rename replacement,
// and a strict forward-only reader.
//
// A manifest starts with a UTF-8 byte-order mark and a header naming the
// program and format version, followed by one line per file and trailing
// summary comments. Entries appear in a single deterministic order: for each
// directory, files sorted byte-wise first, then each subdirectory in sorted
// order. The reader rejects anything out of that order, so both the merge
// engine and the verifier can consume a manifest in one forward pass.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/escape"
	"github.com/jamesainslie/fsum/pkg/fsum/treepath"
)

// Format constants.
const (
	// ProgramName is the identity recorded in file headers.
	ProgramName = "fsum"

	// FormatVersion is the manifest format version token.
	FormatVersion = "1"

	// BOM is the UTF-8 byte-order mark all generated files start with.
	BOM = "\uFEFF"

	// CommentPrefix introduces comment lines.
	CommentPrefix = "#"

	// TimestampFormat is the fixed-width ISO-8601 UTC timestamp with
	// millisecond precision used in entry lines.
	TimestampFormat = "2006-01-02T15:04:05.000Z"

	// TimestampLen is the exact length of a valid timestamp field.
	TimestampLen = len(TimestampFormat)

	// maxSizeDigits bounds the size field. Sizes are written through a
	// signed 64-bit formatter and originate from os.FileInfo.Size, so the
	// effective range is 0..2^63-1: at most 19 decimal digits.
	maxSizeDigits = 19
)

// headerPrefix is the fixed part of the header line before the version token.
const headerPrefix = ProgramName + " - list of checksums - file format version "

// Header returns the manifest header line (without the byte-order mark).
func Header() string {
	return headerPrefix + FormatVersion
}

// ErrFormat is the root of all fatal manifest format errors: bad header,
// unsupported version, malformed field, or out-of-order entries.
var ErrFormat = errors.New("manifest format error")

// Entry is one manifest line: the recorded state of a single file.
type Entry struct {
	// Timestamp is the file's modification time in TimestampFormat.
	Timestamp string

	// Type is the checksum algorithm the digest was computed with.
	Type checksum.Type

	// Digest is the 8-hex-digit uppercase checksum, or checksum.NoDigest.
	Digest string

	// Size is the file size in bytes.
	Size uint64

	// Path is the unescaped relative path, separator "/".
	Path string

	// Dir and Name are the parsed directory stack and filename of Path.
	Dir  treepath.Stack
	Name string

	// Line is the physical line number the entry was read from (1-based,
	// header is line 1). Zero for entries built by the scanner.
	Line int
}

// Compare orders two entries in manifest order: directory stacks array-wise
// with a strict prefix sorting first, then filenames byte-wise. This matches
// the scanner's traversal order exactly.
func (e *Entry) Compare(o *Entry) int {
	if c := e.Dir.Compare(o.Dir); c != 0 {
		return c
	}
	return treepath.CompareNames(e.Name, o.Name)
}

// FormatTimestamp renders t as a manifest timestamp field.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// formatLine renders one entry line, excluding the trailing newline.
func formatLine(e *Entry) string {
	return strings.Join([]string{
		e.Timestamp,
		e.Type.String(),
		e.Digest,
		humanize.Comma(int64(e.Size)),
		escape.Escape(e.Path),
	}, "\t")
}

// parseEntry parses one non-comment manifest line. lineNo is used in
// diagnostics only. All returned errors wrap ErrFormat.
func parseEntry(line string, lineNo int) (*Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return nil, formatErr(lineNo, "expected 5 tab-separated fields, got %d", len(fields))
	}
	for i, f := range fields[:4] {
		if !isASCII(f) {
			return nil, formatErr(lineNo, "field %d contains non-ASCII content", i+1)
		}
	}

	ts := fields[0]
	if len(ts) != TimestampLen {
		return nil, formatErr(lineNo, "timestamp %q has length %d, want %d", ts, len(ts), TimestampLen)
	}
	if _, err := time.Parse(TimestampFormat, ts); err != nil {
		return nil, formatErr(lineNo, "invalid timestamp %q", ts)
	}

	typ, err := checksum.ParseType(fields[1])
	if err != nil {
		return nil, formatErr(lineNo, "invalid checksum type %q", fields[1])
	}

	digest := fields[2]
	if err := validateDigest(digest); err != nil {
		return nil, formatErr(lineNo, "%v", err)
	}

	size, err := parseSize(fields[3])
	if err != nil {
		return nil, formatErr(lineNo, "invalid size %q: %v", fields[3], err)
	}

	path, err := escape.Unescape(fields[4])
	if err != nil {
		return nil, formatErr(lineNo, "invalid path field: %v", err)
	}
	dir, name, err := treepath.Split(path)
	if err != nil {
		return nil, formatErr(lineNo, "invalid path %q: %v", path, err)
	}

	return &Entry{
		Timestamp: ts,
		Type:      typ,
		Digest:    digest,
		Size:      size,
		Path:      path,
		Dir:       dir,
		Name:      name,
		Line:      lineNo,
	}, nil
}

// validateDigest accepts the "none" sentinel or exactly 8 uppercase hex digits.
func validateDigest(s string) error {
	if s == checksum.NoDigest {
		return nil
	}
	if len(s) != 8 {
		return fmt.Errorf("checksum value %q has length %d, want 8", s, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return fmt.Errorf("checksum value %q is not uppercase hex", s)
		}
	}
	return nil
}

// parseSize parses a size field with thousands separators. The accepted
// range matches what formatLine can write back: 0..2^63-1, never a value
// the signed formatter would render with a sign.
func parseSize(s string) (uint64, error) {
	digits := strings.ReplaceAll(s, ",", "")
	if digits == "" {
		return 0, errors.New("empty")
	}
	if len(digits) > maxSizeDigits {
		return 0, fmt.Errorf("%d digits exceeds the %d-digit bound", len(digits), maxSizeDigits)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("non-digit character %q", digits[i])
		}
	}
	v, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return 0, errors.New("out of range for a file size")
	}
	return v, nil
}

// isASCII reports whether every byte of s is 7-bit ASCII.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// formatErr builds an ErrFormat-wrapped diagnostic naming the line.
func formatErr(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, lineNo, fmt.Sprintf(format, args...))
}
