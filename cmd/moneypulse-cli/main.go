package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
)

var (
	configFiles []string
	envFile     string
	logLevel    string
	outputJSON  bool

	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "moneypulse-cli",
	Short:         "Score monthly finances and get short money tips",
	Long:          `Runs the MoneyPulse scoring and advice pipeline from the command line without starting the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.LoadDotEnv(envFile); err != nil {
			return err
		}

		cfg, err := common.LoadFromFiles(configFiles...)
		if err != nil {
			return err
		}
		config = cfg

		// Logs stay off stdout so output can be piped
		config.Logging.Output = []string{"file"}
		if logLevel != "" {
			config.Logging.Level = logLevel
		}
		logger = common.InitLogger(config)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Dotenv file loaded before config (missing file is ignored)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(analyzeCmd, scoreCmd, paramsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
