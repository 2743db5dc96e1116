package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"feecalc/core/analysis"
	"feecalc/core/money"
	"feecalc/internal/errors"
	"feecalc/providers"
)

var (
	breakEvenTarget float64
	breakEvenFormat string
)

// breakEvenCmd solves the charge needed to clear a target net
var breakEvenCmd = &cobra.Command{
	Use:   "breakeven",
	Short: "Solve the charge that nets a break-even target",
	Long: `Breakeven answers "what do I have to charge so that, after every fee,
I still clear this much per transaction". It reuses the reverse-mode
solver against the current fee structure.

Examples:
  feecalc breakeven --target 90
  feecalc breakeven --target 200 --provider paypal --platform 2 --vat 20`,
	Args: cobra.NoArgs,
	RunE: runBreakEven,
}

func init() {
	addStateFlags(breakEvenCmd)

	f := breakEvenCmd.Flags()
	f.Float64VarP(&breakEvenTarget, "target", "t", 0, "net amount to clear per transaction, before VAT")
	f.StringVarP(&breakEvenFormat, "format", "f", "cli", "output format: cli or json")
	breakEvenCmd.MarkFlagRequired("target")
}

func runBreakEven(cmd *cobra.Command, args []string) error {
	engine := providers.NewEngine()

	st, err := baseState(engine)
	if err != nil {
		return err
	}
	if err := applyStateFlags(cmd, &st); err != nil {
		return err
	}
	st.BreakEvenOn = true
	st.BreakEvenTargetNet = breakEvenTarget

	be := analysis.ComputeBreakEven(engine, st).Rounded()
	if be == nil {
		return errors.Input("break-even target must be a non-negative number")
	}

	if breakEvenFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(be)
	}
	if breakEvenFormat != "cli" {
		return errors.Newf(errors.TypeInput, "unsupported format %q, want cli or json", breakEvenFormat)
	}

	norm := engine.Normalize(st)
	symbol := engine.Registry().Symbol(norm.Region)

	fmt.Printf("Provider:        %s / %s (%s)\n", norm.ProviderID, norm.ProductID, norm.Region)
	fmt.Printf("Target net:      %s\n", money.Format(symbol, be.TargetNet))
	if !be.DenomOK {
		fmt.Println("Required charge: unreachable, combined rates eat the whole charge")
		os.Exit(2)
	}
	fmt.Printf("Required charge: %s\n", money.Format(symbol, be.RequiredCharge))
	return nil
}
