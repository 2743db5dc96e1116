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
	volumeTx          float64
	volumeRefundRate  float64
	volumeTierSpecs   []string
	volumeOverridePct float64
	volumeOverrideFix float64
	volumeFormat      string
)

// volumeCmd projects fees over a month of transactions
var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Project fees over a month of transactions",
	Long: `Volume spreads a monthly transaction count over one or more price
tiers and totals gross, fees, refund losses and VAT. Without an
explicit rate override the per-transaction rate is inferred from the
current fee structure.

Examples:
  feecalc volume --tx 500 --amount 25
  feecalc volume --tx 1200 --tier 70:9.99 --tier 30:29.99:1.5 --refund 2
  feecalc volume --tx 500 --override-percent 1.9 --override-fixed 0.25`,
	Args: cobra.NoArgs,
	RunE: runVolume,
}

func init() {
	addStateFlags(volumeCmd)

	f := volumeCmd.Flags()
	f.Float64VarP(&volumeTx, "tx", "t", 0, "transactions per month")
	f.Float64Var(&volumeRefundRate, "refund", 0, "refund rate percent")
	f.StringArrayVar(&volumeTierSpecs, "tier", nil, "price tier as share:price[:fx], repeatable")
	f.Float64Var(&volumeOverridePct, "override-percent", 0, "projection-only percentage rate override")
	f.Float64Var(&volumeOverrideFix, "override-fixed", 0, "projection-only fixed fee override")
	f.StringVarP(&volumeFormat, "format", "f", "cli", "output format: cli or json")
	volumeCmd.MarkFlagRequired("tx")
}

func runVolume(cmd *cobra.Command, args []string) error {
	engine := providers.NewEngine()

	st, err := baseState(engine)
	if err != nil {
		return err
	}
	if err := applyStateFlags(cmd, &st); err != nil {
		return err
	}

	st.VolumeOn = true
	st.VolumeTxPerMonth = volumeTx
	if cmd.Flags().Changed("refund") {
		st.VolumeRefundRatePct = volumeRefundRate
	}
	if cmd.Flags().Changed("tier") {
		tiers, err := parseTierFlags(volumeTierSpecs)
		if err != nil {
			return err
		}
		st.VolumeTiers = tiers
	}

	var override *analysis.RateOverride
	if cmd.Flags().Changed("override-percent") || cmd.Flags().Changed("override-fixed") {
		override = &analysis.RateOverride{}
		if cmd.Flags().Changed("override-percent") {
			v := volumeOverridePct
			override.Percent = &v
		}
		if cmd.Flags().Changed("override-fixed") {
			v := volumeOverrideFix
			override.Fixed = &v
		}
	}

	perTx := engine.Quote(st)
	proj := analysis.ComputeVolume(engine, st, perTx, override).Rounded()
	if proj == nil {
		return errors.Input("volume projection needs a positive --tx and at least one tier with a positive share")
	}

	if volumeFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(proj)
	}
	if volumeFormat != "cli" {
		return errors.Newf(errors.TypeInput, "unsupported format %q, want cli or json", volumeFormat)
	}

	norm := engine.Normalize(st)
	symbol := engine.Registry().Symbol(norm.Region)

	fmt.Printf("Provider:  %s / %s (%s)\n", norm.ProviderID, norm.ProductID, norm.Region)
	fmt.Printf("Rate used: %s + %s per transaction\n",
		money.FormatPercent(proj.PercentUsed), money.Format(symbol, proj.FixedUsed))
	fmt.Printf("Volume:    %.0f tx/month\n\n", proj.TxPerMonth)

	for _, tier := range proj.Tiers {
		fmt.Printf("  %5.1f%%  %s x %.0f tx -> net %s\n",
			tier.SharePct, money.Format(symbol, tier.Price), tier.TxCount, money.Format(symbol, tier.Net))
	}
	fmt.Println()

	fmt.Printf("Gross / month:          %s\n", money.Format(symbol, proj.GrossMonthly))
	fmt.Printf("Provider fees / month:  %s\n", money.Format(symbol, proj.ProviderFeesMonthly))
	if proj.FXFeesMonthly != 0 {
		fmt.Printf("FX fees / month:        %s\n", money.Format(symbol, proj.FXFeesMonthly))
	}
	if proj.PlatformFeesMonthly != 0 {
		fmt.Printf("Platform fees / month:  %s\n", money.Format(symbol, proj.PlatformFeesMonthly))
	}
	fmt.Printf("Net / month:            %s\n", money.Format(symbol, proj.NetMonthly))
	if proj.RefundRatePct > 0 {
		fmt.Printf("Refund loss (%s):     %s\n", money.FormatPercent(proj.RefundRatePct), money.Format(symbol, proj.RefundLossMonthly))
	}
	if proj.VATMonthly != 0 {
		fmt.Printf("VAT / month:            %s\n", money.Format(symbol, proj.VATMonthly))
	}
	fmt.Printf("Net after refunds+VAT:  %s\n", money.Format(symbol, proj.NetCombinedMonthly))
	return nil
}
