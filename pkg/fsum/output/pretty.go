package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if changes := f.formatChanges(r); changes != "" {
		w.WriteString(changes)
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	title := TitleStyle.Render("fsum " + r.Command)
	lines = append(lines, title)

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	manifestLabel := LabelStyle.Render("Manifest:")
	manifestValue := ValueStyle.Render(r.Manifest)
	lines = append(lines, fmt.Sprintf("%s %s", manifestLabel, manifestValue))

	if r.Report != "" {
		reportLabel := LabelStyle.Render("Report:")
		reportValue := ValueStyle.Render(r.Report)
		lines = append(lines, fmt.Sprintf("%s %s", reportLabel, reportValue))
	}

	if r.Interrupted {
		interruptedStyle := WarningStyle.Bold(true)
		notice := "Run interrupted by user"
		if r.NextLine > 0 {
			notice = fmt.Sprintf("Run interrupted by user (resume from line %d)", r.NextLine)
		}
		lines = append(lines, interruptedStyle.Render(notice))
	}

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatChanges renders the per-file change lines of an update run.
func (f *PrettyFormatter) formatChanges(r *Result) string {
	if len(r.Changes) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range r.Changes {
		sb.WriteString("  ")
		sb.WriteString(f.changeStyle(c.Kind).Render(c.Kind))
		sb.WriteString(" ")
		sb.WriteString(ValueStyle.Render(c.Path))
		sb.WriteString("\n")
	}
	return sb.String()
}

// changeStyle returns the style for a change classification.
func (f *PrettyFormatter) changeStyle(kind string) lipgloss.Style {
	switch kind {
	case "added":
		return SuccessStyle
	case "removed":
		return ErrorStyle
	default:
		return WarningStyle
	}
}

// formatFooter builds the footer box with the run summary counters.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	add := func(label string, value string) {
		parts = append(parts, LabelStyle.Render(label+":")+" "+ValueStyle.Render(value))
	}

	switch r.Command {
	case "verify":
		add("Verified", humanize.Comma(int64(r.Verified)))
		if r.Failed > 0 {
			parts = append(parts, LabelStyle.Render("Failed:")+" "+
				ErrorStyle.Render(humanize.Comma(int64(r.Failed))))
		} else {
			parts = append(parts, SuccessStyle.Render("No failures"))
		}
		if r.Skipped > 0 {
			add("Skipped", humanize.Comma(int64(r.Skipped)))
		}
	default:
		add("Directories", humanize.Comma(int64(r.Dirs)))
		add("Files", humanize.Comma(int64(r.Files)))
		add("Total size", humanize.IBytes(r.TotalSize))
		if r.Command == "update" {
			if r.HasChanges() {
				add("Changed", humanize.Comma(int64(r.Changed)))
				add("Added", humanize.Comma(int64(r.Added)))
				add("Removed", humanize.Comma(int64(r.Removed)))
			} else {
				parts = append(parts, SuccessStyle.Render("No changes"))
			}
		}
	}

	if r.Failures > 0 {
		parts = append(parts, WarningStyle.Render(
			fmt.Sprintf("Failures: %s", humanize.Comma(int64(r.Failures)))))
	}
	add("Elapsed", r.Duration.Round(durationPrecision).String())

	return FooterBox.Render(strings.Join(parts, "  "))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
