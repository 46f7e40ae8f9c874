package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/webgrade/internal/scanner"
	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
	"github.com/khanhnv2901/webgrade/internal/shared/security"
	"github.com/khanhnv2901/webgrade/internal/usage"
)

var (
	scanTier    string
	scanFull    bool
	scanTimeout time.Duration
	scanJSON    bool
	scanOutput  string
	scanNoUsage bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a target host and print its security grade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tierName, timeout := scanSettings()
		tier, err := scanner.ParseTier(tierName)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Free tier is capped per day; pro and --full bypass the counter.
		if tier == scanner.TierFree && !scanFull && !scanNoUsage {
			if err := consumeUsage(ctx); err != nil {
				if errors.Is(err, sharedErrors.ErrUsageLimitExceeded) {
					return fmt.Errorf("%w (use --tier pro or wait until tomorrow)", err)
				}
				// Bookkeeping trouble should not block a scan.
				logger.Warnw("usage bookkeeping failed", "error", err)
			}
		}

		s := scanner.New(scanner.Options{
			Timeout:      timeout,
			Tier:         tier,
			FullOverride: scanFull,
		}, logger)

		report, err := s.Scan(ctx, args[0])
		if err != nil {
			var netErr *sharedErrors.NetworkError
			if errors.As(err, &netErr) {
				return fmt.Errorf("target unreachable: %w", netErr)
			}
			return fmt.Errorf("scan failed: %w", err)
		}

		out := os.Stdout
		if scanOutput != "" {
			if !security.IsValidPath(scanOutput) {
				return fmt.Errorf("invalid output path: %s", scanOutput)
			}
			f, err := os.OpenFile(scanOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
			if err != nil {
				return fmt.Errorf("open output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if scanJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		renderReport(out, report)
		return nil
	},
}

// consumeUsage registers the scan against the daily counter.
func consumeUsage(ctx context.Context) error {
	dataDir, err := usage.DefaultDataDir()
	if err != nil {
		return err
	}
	store, err := usage.NewFileStore(dataDir)
	if err != nil {
		return err
	}
	return usage.Consume(ctx, store, time.Now(), viper.GetInt("free_daily_scans"))
}

// bindScanFlags lets config-file values back the scan flags.
func bindScanFlags(fs *pflag.FlagSet) {
	_ = viper.BindPFlag("tier", fs.Lookup("tier"))
	_ = viper.BindPFlag("timeout", fs.Lookup("timeout"))
}

// scanSettings resolves the effective tier and timeout through viper: an
// explicit flag wins, then WEBGRADE_* environment, then the config file, then
// the flag defaults.
func scanSettings() (string, time.Duration) {
	return viper.GetString("tier"), viper.GetDuration("timeout")
}

func init() {
	scanCmd.Flags().StringVar(&scanTier, "tier", "free", "probe tier (free or pro)")
	scanCmd.Flags().BoolVar(&scanFull, "full", false, "enable every probe regardless of tier")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", consts.DefaultScanTimeout, "per-probe timeout")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the report as JSON")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write the report to a file instead of stdout")
	scanCmd.Flags().BoolVar(&scanNoUsage, "no-usage", false, "skip usage bookkeeping (for scripted runs)")
	_ = scanCmd.Flags().MarkHidden("no-usage")
	bindScanFlags(scanCmd.Flags())
}
