package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ternarybob/moneypulse/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",

	// No config needed
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "MoneyPulse version %s\n", common.GetFullVersion())
	},
}
