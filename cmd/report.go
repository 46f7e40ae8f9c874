package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/khanhnv2901/webgrade/internal/scanner"
)

// renderReport writes the human-readable report. It reads the Report without
// mutating it; section order follows the canonical probe order.
func renderReport(w io.Writer, report *scanner.Report) {
	fmt.Fprintf(w, "\nTarget:   %s\n", report.URL)
	fmt.Fprintf(w, "Scanned:  %s (%.0f ms, %s tier)\n",
		report.ScannedAt.Format("2006-01-02 15:04:05 MST"),
		report.ScanDuration,
		report.Tier)
	fmt.Fprintf(w, "Grade:    %s  (%.1f / %.1f)\n\n",
		gradeLabel(report.Grade), report.Score, report.MaxScore)

	for _, name := range report.SectionOrder {
		section, ok := report.Sections[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s: %s (%.1f / %.1f)\n",
			name, gradeLabel(section.Grade), section.Score, section.MaxScore)

		tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		for _, check := range section.Checks {
			line := fmt.Sprintf("  %s\t%s\t%s", statusLabel(check.Status), check.Name, check.Message)
			if check.Value != "" {
				line += fmt.Sprintf(" [%s]", check.Value)
			}
			fmt.Fprintln(tw, line)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d failed, %d informational\n",
		report.Summary.Passed,
		report.Summary.Warnings,
		report.Summary.Failed,
		report.Summary.Info)
}
