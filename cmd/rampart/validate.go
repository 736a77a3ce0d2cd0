package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bastion-hq/rampart/pkg/config"
	"bastion-hq/rampart/pkg/waf/ruleset"
)

var validateFlags struct {
	rulesOnly bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and rule files",
	Long: `Validate the configuration file and the ruleset it references without
starting the server.

Examples:
  # Validate config and rules
  rampart validate --config /etc/rampart/config.yaml

  # Validate only the ruleset referenced by the config
  rampart validate --rules-only`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.rulesOnly, "rules-only", false, "skip configuration checks beyond what rule loading needs")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if !validateFlags.rulesOnly {
		fmt.Printf("configuration valid: %s\n", cfgFile)
	}

	rs, err := ruleset.Load(cfg.Ruleset.Path)
	if err != nil {
		return fmt.Errorf("ruleset invalid: %w", err)
	}

	blocking := 0
	for _, r := range rs.Rules {
		if r.Blocking() {
			blocking++
		}
	}
	fmt.Printf("ruleset valid: %s (%d rules, %d blocking)\n", cfg.Ruleset.Path, len(rs.Rules), blocking)
	return nil
}
