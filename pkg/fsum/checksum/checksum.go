// Package checksum provides the streaming checksum calculator used when
// building and verifying manifests. The supported algorithms are 32-bit
// rolling checksums (CRC-32 and Adler-32); they are cheap corruption
// detectors and are explicitly unsafe against intentional tampering.
package checksum

import (
	"errors"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/fsum/pkg/fsum/cancel"
)

// Type selects the checksum algorithm.
type Type int

const (
	// CRC32 is the IEEE CRC-32 checksum.
	CRC32 Type = iota
	// Adler32 is the Adler-32 checksum.
	Adler32
	// None disables checksumming; only sizes and timestamps are recorded.
	None
)

// Algorithm name constants as they appear in manifest files and CLI flags.
const (
	typeCRC32   = "crc32"
	typeAdler32 = "adler32"
	typeNone    = "none"
)

// NoDigest is the sentinel recorded for empty files and for checksum type
// None, in place of a computed digest.
const NoDigest = "none"

// DefaultBlockSize is the read block size for streaming checksums.
const DefaultBlockSize = 128 * 1024

// ErrInvalidType indicates that a checksum type string could not be parsed.
var ErrInvalidType = errors.New("invalid checksum type")

// String returns the manifest representation of the type.
func (t Type) String() string {
	switch t {
	case CRC32:
		return typeCRC32
	case Adler32:
		return typeAdler32
	case None:
		return typeNone
	default:
		return typeCRC32
	}
}

// ParseType parses a string into a Type. Valid values are "crc32",
// "adler32" and "none" (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case typeCRC32:
		return CRC32, nil
	case typeAdler32:
		return Adler32, nil
	case typeNone:
		return None, nil
	default:
		return CRC32, fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Result is the outcome of checksumming one file.
type Result struct {
	// Digest is the 8-hex-digit uppercase checksum, or NoDigest for empty
	// files and type None. Unset when Interrupted.
	Digest string

	// Bytes is the total number of bytes read from the file.
	Bytes uint64

	// Interrupted is true when the cancellation flag was observed mid-stream.
	// Callers must not record a digest in this case.
	Interrupted bool
}

// Calculator streams files through a checksum accumulator in fixed-size
// blocks, consulting the cancellation flag between blocks.
type Calculator struct {
	typ       Type
	blockSize int
	stop      *cancel.Flag
}

// NewCalculator creates a calculator for the given type. A nil flag disables
// cancellation checks; blockSize <= 0 selects DefaultBlockSize.
func NewCalculator(typ Type, blockSize int, stop *cancel.Flag) *Calculator {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Calculator{typ: typ, blockSize: blockSize, stop: stop}
}

// Type returns the calculator's checksum type.
func (c *Calculator) Type() Type {
	return c.typ
}

// File opens and checksums the file at path.
func (c *Calculator) File(path string) (Result, error) {
	if c.typ == None {
		return Result{Digest: NoDigest}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return c.Sum(f)
}

// Sum streams r through the accumulator. Empty input yields NoDigest.
func (c *Calculator) Sum(r io.Reader) (Result, error) {
	if c.typ == None {
		return Result{Digest: NoDigest}, nil
	}

	var h hash.Hash32
	switch c.typ {
	case Adler32:
		h = adler32.New()
	default:
		h = crc32.NewIEEE()
	}

	buf := make([]byte, c.blockSize)
	var total uint64
	for {
		if c.stop != nil && c.stop.Requested() {
			return Result{Bytes: total, Interrupted: true}, nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += uint64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{Bytes: total}, fmt.Errorf("read: %w", err)
		}
	}

	if total == 0 {
		return Result{Digest: NoDigest}, nil
	}
	return Result{Digest: fmt.Sprintf("%08X", h.Sum32()), Bytes: total}, nil
}
