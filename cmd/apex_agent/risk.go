package main

import (
	"github.com/spf13/cobra"

	"github.com/hmhhmm/apex-insurance/internal/observability"
	"github.com/hmhhmm/apex-insurance/internal/risk"
)

var (
	riskProfile string
	riskJSON    bool
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Compute the risk value for a profile",
	Long:  "Reads a wizard profile JSON file and prints its aggregate risk value (0-100) and tier.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		profile, err := readProfile(riskProfile)
		if err != nil {
			return err
		}

		value := risk.ComputeRisk(profile)
		if riskJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"risk_value": value,
				"tier":       risk.TierOf(value),
			})
		}

		printer := observability.NewPrinter(cmd.OutOrStdout())
		if verbose {
			printer.PrintProfile(profile)
		}
		printer.PrintRisk(value)
		return nil
	},
}

func init() {
	riskCmd.Flags().StringVarP(&riskProfile, "profile", "p", "", "Path to profile JSON file (required)")
	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "Print JSON")
	if err := riskCmd.MarkFlagRequired("profile"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(riskCmd)
}
