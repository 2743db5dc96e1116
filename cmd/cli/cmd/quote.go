package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"feecalc/api/urlstate"
	"feecalc/core/calc"
	"feecalc/core/output"
	"feecalc/internal/config"
	"feecalc/internal/errors"
	"feecalc/providers"
	"feecalc/providers/presets"
	"feecalc/scenario"
)

var (
	quoteProvider     string
	quoteProduct      string
	quoteRegion       string
	quoteMode         string
	quoteAmount       float64
	quoteNet          float64
	quoteFX           float64
	quotePlatform     float64
	quotePlatformBase string
	quoteVAT          float64
	quoteStep         float64
	quotePsych        bool
	quoteCustomPct    float64
	quoteCustomFixed  float64
	quoteCustomLabel  string
	quoteBreakEven    float64
	quoteSensitivity  bool
	quoteSensDelta    float64
	quoteSensTarget   string
	quoteVolume       float64
	quoteRefund       float64
	quoteTiers        []string
	quotePreset       string
	quoteScenarioFile string
	quoteSelect       string
	quoteFormat       string
	quoteExport       string
)

// quoteCmd computes a fee quote
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote fees and net payout for a charge",
	Long: `Quote computes provider, FX and platform fees plus VAT for a single
charge, either forward from the charge amount or in reverse from a
target net payout.

The starting state comes from defaults, a preset or a scenario file;
flags set explicitly on the command line override it. Analyses are
enabled by their flags: --break-even, --sensitivity and --volume.

Examples:
  feecalc quote --amount 250 --vat 20
  feecalc quote --net 100 --provider paypal --region EU
  feecalc quote --preset uk-freelancer --break-even 90
  feecalc quote --volume 500 --tier 60:10 --tier 40:50:1.5
  feecalc quote --scenario pricing.hcl --select launch --export launch.xlsx`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	addStateFlags(quoteCmd)

	f := quoteCmd.Flags()
	f.Float64Var(&quoteBreakEven, "break-even", 0, "break-even target net, enables the analysis")
	f.BoolVar(&quoteSensitivity, "sensitivity", false, "enable the rate sensitivity analysis")
	f.Float64Var(&quoteSensDelta, "sensitivity-delta", 0, "sensitivity rate swing percent")
	f.StringVar(&quoteSensTarget, "sensitivity-target", "", "rates to perturb: provider, fx, platform or all")
	f.Float64Var(&quoteVolume, "volume", 0, "transactions per month, enables the volume projection")
	f.Float64Var(&quoteRefund, "refund", 0, "monthly refund rate percent for the volume projection")
	f.StringArrayVar(&quoteTiers, "tier", nil, "volume tier as share:price[:fx], repeatable")
	f.StringVarP(&quoteFormat, "format", "f", "", "output format: cli, json or csv (default from config)")
	f.StringVarP(&quoteExport, "export", "o", "", "also write the report to a .csv or .xlsx file")
}

// addStateFlags registers the calculator state flags shared by quote,
// breakeven and volume.
func addStateFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVarP(&quoteProvider, "provider", "p", "", "payment provider (see 'feecalc providers')")
	f.StringVar(&quoteProduct, "product", "", "provider product, e.g. standard or intl-cards")
	f.StringVarP(&quoteRegion, "region", "r", "", "pricing region: UK, EU or US")
	f.StringVarP(&quoteMode, "mode", "m", "", "calculation mode: forward or reverse")
	f.Float64VarP(&quoteAmount, "amount", "a", 0, "charge amount (forward mode)")
	f.Float64VarP(&quoteNet, "net", "n", 0, "target net payout, implies reverse mode")
	f.Float64Var(&quoteFX, "fx", 0, "FX surcharge percent")
	f.Float64Var(&quotePlatform, "platform", 0, "platform fee percent")
	f.StringVar(&quotePlatformBase, "platform-base", "", "platform fee base: gross or afterProvider")
	f.Float64Var(&quoteVAT, "vat", 0, "VAT percent applied to the net payout")
	f.Float64Var(&quoteStep, "step", 0, "rounding step for the suggested charge: 0.01, 0.05 or 0.10")
	f.BoolVar(&quotePsych, "psych", false, "end the suggested charge in .99")
	f.Float64Var(&quoteCustomPct, "custom-percent", 0, "override the provider percentage rate")
	f.Float64Var(&quoteCustomFixed, "custom-fixed", 0, "override the provider fixed fee, negative for rebates")
	f.StringVar(&quoteCustomLabel, "custom-label", "", "display name for the custom provider")
	f.StringVar(&quotePreset, "preset", "", "start from a named preset (see 'feecalc presets')")
	f.StringVar(&quoteScenarioFile, "scenario", "", "load the state from an HCL scenario file")
	f.StringVar(&quoteSelect, "select", "", "scenario name to use from the file")
}

func runQuote(cmd *cobra.Command, args []string) error {
	engine := providers.NewEngine()

	st, err := baseState(engine)
	if err != nil {
		return err
	}
	if err := applyStateFlags(cmd, &st); err != nil {
		return err
	}
	if err := applyAnalysisFlags(cmd, &st); err != nil {
		return err
	}

	report := output.BuildReport(engine, st, Version)
	report.ShareQuery = urlstate.NewCodec(engine).EncodeString(report.State)

	if quoteExport != "" {
		if err := exportReport(quoteExport, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %s\n", quoteExport)
	}

	name := quoteFormat
	if name == "" {
		name = config.Get().Output.DefaultFormat
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	if format == output.FormatXLSX {
		return errors.Input("xlsx is file-only, use --export report.xlsx")
	}

	formatter, err := output.NewFormatter(format, config.Get().Output.ShowMeta)
	if err != nil {
		return err
	}
	if err := formatter.Render(os.Stdout, report); err != nil {
		return err
	}

	// A reverse quote whose fees leave nothing of the charge has no
	// solution. The report still renders, with zeros.
	if !report.Result.DenomOK {
		os.Exit(2)
	}
	return nil
}

// baseState resolves the starting state: defaults, then a preset or a
// scenario file when requested.
func baseState(engine *calc.Engine) (calc.State, error) {
	st := engine.DefaultState()

	if quotePreset != "" && quoteScenarioFile != "" {
		return calc.State{}, errors.Input("--preset and --scenario are mutually exclusive")
	}

	if quotePreset != "" {
		p, ok := presets.Get(quotePreset)
		if !ok {
			return calc.State{}, errors.Newf(errors.TypeInput, "unknown preset %q, run 'feecalc presets' for the list", quotePreset)
		}
		st = p.State
	}

	if quoteScenarioFile != "" {
		file, err := scenario.NewLoader().LoadFile(quoteScenarioFile)
		if err != nil {
			return calc.State{}, err
		}
		sc, err := pickScenario(file)
		if err != nil {
			return calc.State{}, err
		}
		st = sc.ToState(st)
	}

	return st, nil
}

func pickScenario(file *scenario.File) (scenario.Scenario, error) {
	if quoteSelect != "" {
		sc, ok := file.Find(quoteSelect)
		if !ok {
			return scenario.Scenario{}, errors.Newf(errors.TypeScenario,
				"scenario %q not found, file defines: %s", quoteSelect, strings.Join(file.Names(), ", "))
		}
		return sc, nil
	}
	if len(file.Scenarios) == 1 {
		return file.Scenarios[0], nil
	}
	return scenario.Scenario{}, errors.Newf(errors.TypeScenario,
		"file defines %d scenarios, pick one with --select: %s", len(file.Scenarios), strings.Join(file.Names(), ", "))
}

// applyStateFlags overlays every state flag the user actually set
// onto the state. Unset flags leave the preset or scenario values
// alone.
func applyStateFlags(cmd *cobra.Command, st *calc.State) error {
	flags := cmd.Flags()

	if flags.Changed("provider") {
		st.ProviderID = quoteProvider
	}
	if flags.Changed("product") {
		st.ProductID = quoteProduct
	}
	if flags.Changed("region") {
		st.Region = calc.Region(strings.ToUpper(quoteRegion))
	}
	if flags.Changed("amount") {
		st.Amount = quoteAmount
	}
	if flags.Changed("net") {
		st.TargetNet = quoteNet
		st.Mode = calc.ModeReverse
	}
	if flags.Changed("mode") {
		st.Mode = calc.Mode(strings.ToLower(quoteMode))
	}
	if flags.Changed("fx") {
		st.FXPercent = quoteFX
	}
	if flags.Changed("platform") {
		st.PlatformFeePercent = quotePlatform
	}
	if flags.Changed("platform-base") {
		st.PlatformFeeBase = calc.PlatformBase(quotePlatformBase)
	}
	if flags.Changed("vat") {
		st.VATPercent = quoteVAT
	}
	if flags.Changed("step") {
		st.RoundingStep = quoteStep
	}
	if flags.Changed("psych") {
		st.PsychPricing = quotePsych
	}
	if flags.Changed("custom-percent") {
		v := quoteCustomPct
		st.CustomProviderFeePercent = &v
	}
	if flags.Changed("custom-fixed") {
		v := quoteCustomFixed
		st.CustomFixedFee = &v
	}
	if flags.Changed("custom-label") {
		st.CustomProviderLabel = quoteCustomLabel
	}

	return nil
}

// applyAnalysisFlags handles the quote command's analysis toggles.
func applyAnalysisFlags(cmd *cobra.Command, st *calc.State) error {
	flags := cmd.Flags()

	if flags.Changed("break-even") {
		st.BreakEvenOn = true
		st.BreakEvenTargetNet = quoteBreakEven
	}
	if flags.Changed("sensitivity") {
		st.SensitivityOn = quoteSensitivity
	}
	if flags.Changed("sensitivity-delta") {
		st.SensitivityOn = true
		st.SensitivityDeltaPct = quoteSensDelta
	}
	if flags.Changed("sensitivity-target") {
		st.SensitivityOn = true
		st.SensitivityTarget = calc.SensitivityTarget(strings.ToLower(quoteSensTarget))
	}
	if flags.Changed("volume") {
		st.VolumeOn = true
		st.VolumeTxPerMonth = quoteVolume
	}
	if flags.Changed("refund") {
		st.VolumeRefundRatePct = quoteRefund
	}
	if flags.Changed("tier") {
		tiers, err := parseTierFlags(quoteTiers)
		if err != nil {
			return err
		}
		st.VolumeTiers = tiers
	}

	return nil
}

// parseTierFlags parses repeated --tier values of the form
// share:price or share:price:fx.
func parseTierFlags(specs []string) ([]calc.VolumeTier, error) {
	tiers := make([]calc.VolumeTier, 0, len(specs))
	for _, raw := range specs {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, errors.Newf(errors.TypeInput, "bad tier %q, want share:price[:fx]", raw)
		}
		share, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, errors.Newf(errors.TypeInput, "bad tier share in %q: %v", raw, err)
		}
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, errors.Newf(errors.TypeInput, "bad tier price in %q: %v", raw, err)
		}
		var fx float64
		if len(parts) == 3 {
			fx, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, errors.Newf(errors.TypeInput, "bad tier fx in %q: %v", raw, err)
			}
		}
		tiers = append(tiers, calc.VolumeTier{SharePct: share, Price: price, FXPercent: fx})
	}
	return tiers, nil
}

// exportReport writes the report to a file, picking the writer from
// the extension.
func exportReport(path string, report *output.Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return output.WriteXLSX(path, report)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return errors.Export("creating export file", err)
		}
		defer f.Close()
		return (&output.CSVFormatter{}).Render(f, report)
	default:
		return errors.Newf(errors.TypeInput, "unsupported export extension %q, use .csv or .xlsx", filepath.Ext(path))
	}
}
