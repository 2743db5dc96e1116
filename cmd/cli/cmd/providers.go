package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"feecalc/core/calc"
	"feecalc/internal/errors"
	"feecalc/providers"
)

var providersRegion string

// providersCmd lists the provider catalog
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List payment providers and their published rates",
	Long: `Providers prints every registered payment provider with its products
and default rates per region. Rates show as percent + fixed fee in the
region's currency.`,
	Args: cobra.NoArgs,
	RunE: runProviders,
}

func init() {
	providersCmd.Flags().StringVarP(&providersRegion, "region", "r", "", "only show one region: UK, EU or US")
}

func runProviders(cmd *cobra.Command, args []string) error {
	engine := providers.NewEngine()
	reg := engine.Registry()

	regions := calc.Regions
	if providersRegion != "" {
		region := calc.Region(strings.ToUpper(providersRegion))
		if !knownRegion(region) {
			return errors.Newf(errors.TypeInput, "unknown region %q, want UK, EU or US", providersRegion)
		}
		regions = []calc.Region{region}
	}

	for _, model := range reg.Models() {
		name := model.Label()
		if model.ID() == reg.DefaultID() {
			name += " (default)"
		}
		fmt.Printf("%s  [%s]\n", name, model.ID())

		for _, region := range regions {
			products := model.Products(region)
			if len(products) == 0 {
				continue
			}
			fmt.Printf("  %s\n", region)
			for _, p := range products {
				rate, ok := model.DefaultRate(region, p.ID)
				if !ok {
					continue
				}
				fmt.Printf("    %-16s %-30s %.2f%% + %s%.2f\n",
					p.ID, p.Label, rate.Percent, reg.Symbol(region), rate.Fixed)
			}
		}
		fmt.Println()
	}

	return nil
}

func knownRegion(region calc.Region) bool {
	for _, r := range calc.Regions {
		if r == region {
			return true
		}
	}
	return false
}
