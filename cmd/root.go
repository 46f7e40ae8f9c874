package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
)

var cfgFile string
var verbose bool
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "webgrade",
	Short: "Probe a web host for security misconfigurations and grade the result",
	Long: `webgrade runs a battery of passive security probes (TLS, response
headers, exposed sensitive paths, open redirects and more) against a target
host, folds the results into a weighted composite score, and reports a letter
grade. Only use it against hosts you are authorized to test.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".webgrade")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("WEBGRADE")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		viper.SetDefault("tier", "free")
		viper.SetDefault("timeout", consts.DefaultScanTimeout.String())
		viper.SetDefault("free_daily_scans", consts.FreeTierDailyScans)

		// init logger
		var l *zap.Logger
		var err error
		if verbose {
			l, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			l, err = cfg.Build()
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Sugar()

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.webgrade.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(probesCmd)
	rootCmd.AddCommand(versionCmd)
}
