package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// PlainFormatter formats output as simple tab-separated text.
// It produces plain output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, c := range r.Changes {
		fmt.Fprintf(w, "%s\t%s\n", c.Kind, c.Path)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, row := range summaryRows(r) {
		if _, err := tw.Write([]byte(row[0] + "\t" + row[1] + "\n")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.Interrupted {
		fmt.Fprintln(w, "interrupted")
		if r.NextLine > 0 {
			fmt.Fprintf(w, "resume-from-line %d\n", r.NextLine)
		}
	}
	return nil
}

// summaryRows returns label/value pairs for the run summary, in display
// order. Manifest and verify runs share the scan counters but differ in
// their breakdown rows.
func summaryRows(r *Result) [][2]string {
	rows := [][2]string{
		{"source", r.Source},
		{"manifest", r.Manifest},
	}
	switch r.Command {
	case "verify":
		rows = append(rows,
			[2]string{"report", r.Report},
			[2]string{"verified", humanize.Comma(int64(r.Verified))},
			[2]string{"failed", humanize.Comma(int64(r.Failed))},
			[2]string{"skipped", humanize.Comma(int64(r.Skipped))},
		)
	default:
		rows = append(rows,
			[2]string{"directories", humanize.Comma(int64(r.Dirs))},
			[2]string{"files", humanize.Comma(int64(r.Files))},
			[2]string{"total size", humanize.IBytes(r.TotalSize)},
		)
		if r.Command == "update" {
			rows = append(rows,
				[2]string{"unchanged", humanize.Comma(int64(r.Unchanged))},
				[2]string{"changed", humanize.Comma(int64(r.Changed))},
				[2]string{"added", humanize.Comma(int64(r.Added))},
				[2]string{"removed", humanize.Comma(int64(r.Removed))},
			)
		}
	}
	if r.Failures > 0 {
		rows = append(rows, [2]string{"failures", humanize.Comma(int64(r.Failures))})
	}
	rows = append(rows, [2]string{"elapsed", r.Duration.Round(durationPrecision).String()})
	return rows
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
