package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Format_UpdateRun(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:  "update",
		Source:   "/data",
		Manifest: "/data/FileChecksums.txt",
		Changes: []Change{
			{Kind: "changed", Path: "docs/report.txt"},
			{Kind: "added", Path: "new.bin"},
		},
		Dirs:      3,
		Files:     10,
		TotalSize: 2048,
		Unchanged: 8,
		Changed:   1,
		Added:     1,
		Duration:  1500 * time.Millisecond,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")

	// Change lines come first, tab-separated.
	assert.Equal(t, "changed\tdocs/report.txt", lines[0])
	assert.Equal(t, "added\tnew.bin", lines[1])

	assert.Contains(t, output, "source")
	assert.Contains(t, output, "/data/FileChecksums.txt")
	assert.Contains(t, output, "2.0 KiB")
	assert.Contains(t, output, "unchanged")
	assert.Contains(t, output, "1.5s")
}

func TestPlainFormatter_Format_VerifyRun(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:  "verify",
		Source:   "/data",
		Manifest: "/data/FileChecksums.txt",
		Report:   "/data/FileChecksums.txt.report",
		Verified: 1500,
		Failed:   2,
		Skipped:  5,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "report")
	assert.Contains(t, output, "1,500")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "skipped")

	// Verify runs carry no scan breakdown.
	assert.NotContains(t, output, "unchanged")
	assert.NotContains(t, output, "total size")
}

func TestPlainFormatter_Format_Interrupted(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:     "verify",
		Source:      "/data",
		Manifest:    "/data/FileChecksums.txt",
		Interrupted: true,
		NextLine:    42,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "interrupted")
	assert.Contains(t, output, "resume-from-line 42")
}

func TestPlainFormatter_Format_FailuresOnlyWhenPresent(t *testing.T) {
	formatter := &PlainFormatter{}

	var clean bytes.Buffer
	require.NoError(t, formatter.Format(&clean, &Result{Command: "create"}))
	assert.NotContains(t, clean.String(), "failures")

	var dirty bytes.Buffer
	require.NoError(t, formatter.Format(&dirty, &Result{Command: "create", Failures: 3}))
	assert.Contains(t, dirty.String(), "failures")
}
