package main

import (
	"fmt"
	"holdingsbuilder/internal/config"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Build rebalance holdings from candidate weights and prices",
	Long: `holdings turns a table of per-date candidate weights into integer share
quantities. Candidates without price data in the window since the previous
rebalance are dropped and their industry group is rescaled.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Path(), "Path to the YAML config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
