package main

import (
	"github.com/spf13/cobra"

	"github.com/hmhhmm/apex-insurance/internal/catalog"
	"github.com/hmhhmm/apex-insurance/internal/observability"
)

var (
	plansType    string
	plansJSON    bool
	plansCatalog string
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plan catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if plansCatalog != "" {
			cfg.Catalog.Path = plansCatalog
		}
		plans, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		if plansType != "" {
			plans = catalog.FilterByType(plans, plansType)
		}

		if plansJSON {
			return writeJSON(cmd.OutOrStdout(), plans)
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintCatalog(plans)
		return nil
	},
}

func init() {
	plansCmd.Flags().StringVarP(&plansType, "type", "t", "", "Only list plans of this type, e.g. Health")
	plansCmd.Flags().BoolVar(&plansJSON, "json", false, "Print JSON instead of a table")
	plansCmd.Flags().StringVar(&plansCatalog, "catalog", "", "Plan catalog JSON file (overrides catalog.path)")
	rootCmd.AddCommand(plansCmd)
}
