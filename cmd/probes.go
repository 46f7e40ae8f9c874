package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/webgrade/internal/scanner"
	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
)

var probesTier string

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the probes enabled for a tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, err := scanner.ParseTier(probesTier)
		if err != nil {
			return err
		}

		descs := scanner.Catalog(tier, false, consts.DefaultScanTimeout)

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROBE\tWEIGHT\tTIER\tTIMEOUT CAP")
		for _, d := range descs {
			fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\n", d.Probe.Name(), d.Probe.Weight(), d.Tier, d.Cap)
		}
		return tw.Flush()
	},
}

func init() {
	probesCmd.Flags().StringVar(&probesTier, "tier", "pro", "tier to list probes for")
}
