package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "rampart",
	Short: "Rampart - budget-bounded request inspection daemon",
	Long: `Rampart inspects HTTP requests with a pluggable WAF rule engine.

Request data is normalized into typed addresses, matched against rule
subscriptions, and evaluated under a strict CPU-time budget. Matches are
reported as structured attack events; blocking rules stop the request
before it reaches the application handler.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
