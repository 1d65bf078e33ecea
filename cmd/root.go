package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "golang-backtest",
	Short: "Backtest rule-based equity strategies against historical data",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backtestCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
