package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myrtlewealth/blueprint/internal/scorer"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and check scoring rule sets",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a rule set as YAML",
	Long:  "Print the configured rule set, or a built-in one by name, as YAML. The output is a valid starting point for a custom rule set file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("rule-set")
		sc, err := newScorer(cfg.Scoring, name, "")
		if err != nil {
			return err
		}
		out, err := scorer.MarshalRuleSet(sc.Rules())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a YAML rule set file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := scorer.LoadRuleSetFile(args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (rule set %q, max risk score %d)\n", args[0], rs.Name, rs.MaxRiskScore())
		return nil
	},
}

func init() {
	rulesShowCmd.Flags().String("rule-set", "", "built-in rule set name (default from config)")

	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}
