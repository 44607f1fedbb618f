package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyFormatter_Format_UpdateRun(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:  "update",
		Source:   "/data",
		Manifest: "/data/FileChecksums.txt",
		Changes: []Change{
			{Kind: "removed", Path: "old.bin"},
		},
		Dirs:    2,
		Files:   5,
		Removed: 1,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "fsum update")
	assert.Contains(t, output, "Source:")
	assert.Contains(t, output, "/data")
	assert.Contains(t, output, "old.bin")
	assert.Contains(t, output, "Removed:")
}

func TestPrettyFormatter_Format_NoChanges(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:  "update",
		Source:   "/data",
		Manifest: "/data/FileChecksums.txt",
		Files:    5,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No changes")
}

func TestPrettyFormatter_Format_VerifyNoFailures(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:  "verify",
		Source:   "/data",
		Manifest: "/data/FileChecksums.txt",
		Report:   "/data/FileChecksums.txt.report",
		Verified: 12,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Report:")
	assert.Contains(t, output, "No failures")
}

func TestPrettyFormatter_Format_Interrupted(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Command:     "verify",
		Source:      "/data",
		Manifest:    "/data/FileChecksums.txt",
		Interrupted: true,
		NextLine:    7,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "resume from line 7")
}

func TestPrettyFormatter_ChangeStyles(t *testing.T) {
	f := &PrettyFormatter{}

	assert.Equal(t, SuccessStyle, f.changeStyle("added"))
	assert.Equal(t, ErrorStyle, f.changeStyle("removed"))
	assert.Equal(t, WarningStyle, f.changeStyle("changed"))
}
