package verify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jamesainslie/fsum/pkg/fsum/manifest"
)

// checkpointHeader is the first line of a checkpoint file.
const checkpointHeader = manifest.ProgramName +
	" - verification checkpoint - file format version " + manifest.FormatVersion

// resumeKey is the key of the checkpoint's key=value line.
const resumeKey = "resume-from-line"

// noResumeComment is written before any entry has been processed.
const noResumeComment = manifest.CommentPrefix + " no resume information yet"

// checkpoint persists the next resumable entry number. Every write goes to a
// temporary file that is atomically renamed over the previous checkpoint, so
// the file is never observed half-written.
type checkpoint struct {
	path string
}

// write persists next as the entry number a later run should resume from.
// next == 0 records the "no resume information yet" form.
func (c *checkpoint) write(next uint64) error {
	var body string
	if next == 0 {
		body = noResumeComment
	} else {
		body = fmt.Sprintf("%s=%d", resumeKey, next)
	}
	content := manifest.BOM + checkpointHeader + "\n\n" + body + "\n"

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// remove deletes the checkpoint after a run completes normally.
func (c *checkpoint) remove() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// ReadCheckpoint parses a checkpoint file and returns the recorded resume
// entry number, or 0 when the file records no resume information.
func ReadCheckpoint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	text := strings.TrimPrefix(string(data), manifest.BOM)

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || lines[0] != checkpointHeader {
		return 0, fmt.Errorf("%w: unrecognized checkpoint header", manifest.ErrFormat)
	}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, manifest.CommentPrefix) {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key != resumeKey {
			return 0, fmt.Errorf("%w: malformed checkpoint line %q", manifest.ErrFormat, line)
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid resume value %q", manifest.ErrFormat, value)
		}
		return n, nil
	}
	return 0, nil
}
