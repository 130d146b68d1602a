package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pickupledger",
	Short: "Pickup history parser and ledger service",
	Long: `pickupledger turns pasted gacha pull logs into per-batch results.

Each log line is one 10-pull batch: three single-digit tier counts and the
names of the tier-3 students pulled. Results are stored per user and event.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, parseCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
