package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at release time via -ldflags. The zero values
// mark a from-source development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionDetailed bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, versionLine())
		if versionDetailed {
			fmt.Fprintf(out, "commit:     %s\n", GitCommit)
			fmt.Fprintf(out, "built:      %s\n", BuildDate)
			fmt.Fprintf(out, "go runtime: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		}
	},
}

// versionLine is the one-line banner used by version output and bug reports.
func versionLine() string {
	return "webgrade " + Version
}

func init() {
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "include build and runtime details")
}
