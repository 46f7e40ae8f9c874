package cmd

import (
	"github.com/fatih/color"

	"github.com/khanhnv2901/webgrade/internal/scanner"
)

var (
	colorPass  = color.New(color.FgGreen).SprintFunc()
	colorWarn  = color.New(color.FgYellow).SprintFunc()
	colorFail  = color.New(color.FgRed).SprintFunc()
	colorInfo  = color.New(color.FgCyan).SprintFunc()
	colorError = color.New(color.FgRed, color.Bold).SprintFunc()
)

// statusLabel renders a finding status with its color.
func statusLabel(status scanner.Status) string {
	switch status {
	case scanner.StatusPass:
		return colorPass("PASS")
	case scanner.StatusWarn:
		return colorWarn("WARN")
	case scanner.StatusFail:
		return colorFail("FAIL")
	case scanner.StatusInfo:
		return colorInfo("INFO")
	case scanner.StatusError:
		return colorError("ERROR")
	default:
		return string(status)
	}
}

// gradeLabel colors a letter grade: A range green, B/C yellow, the rest red.
func gradeLabel(grade string) string {
	switch grade {
	case "A+", "A":
		return colorPass(grade)
	case "B", "C":
		return colorWarn(grade)
	default:
		return colorFail(grade)
	}
}
