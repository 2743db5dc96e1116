package output

import (
	"fmt"
	"io"
	"strings"

	"feecalc/core/calc"
	"feecalc/core/money"
)

const boxWidth = 72

// CLIFormatter renders a human-readable box summary.
type CLIFormatter struct {
	// ShowMeta adds the resolved rate and suggested charge lines
	ShowMeta bool
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render produces the CLI summary
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	st := report.State
	res := report.Result
	symbol := res.Symbol

	top := "┌" + strings.Repeat("─", boxWidth) + "┐"
	divider := "├" + strings.Repeat("─", boxWidth) + "┤"
	bottom := "└" + strings.Repeat("─", boxWidth) + "┘"

	fmt.Fprintln(w, top)
	fmt.Fprintf(w, "│%s│\n", center("PAYMENT FEE QUOTE", boxWidth))
	fmt.Fprintln(w, divider)

	row := func(label, value string) {
		fmt.Fprintf(w, "│ %-28s %41s │\n", truncate(label, 28), truncate(value, 41))
	}

	provider := report.Metadata.ProviderLabel
	if report.Metadata.ProductLabel != "" {
		provider = fmt.Sprintf("%s (%s)", provider, report.Metadata.ProductLabel)
	}
	row("Provider", provider)
	row("Region", fmt.Sprintf("%s, %s mode", st.Region, st.Mode))

	if !res.DenomOK {
		row("Result", "UNSOLVABLE: fees reach 100% of charge")
		fmt.Fprintln(w, bottom)
		return nil
	}

	if st.Mode == calc.ModeReverse {
		row("Target net (pre-VAT)", money.Format(symbol, st.TargetNet))
		row("Required charge", money.Format(symbol, res.Gross))
	} else {
		row("Charge (gross)", money.Format(symbol, res.Gross))
	}

	for _, fee := range res.Fees {
		if fee.Amount == 0 && fee.Key != calc.FeeProvider {
			continue
		}
		row(fee.Label, money.Format(symbol, -fee.Amount))
	}
	row("Net before VAT", money.Format(symbol, res.NetBeforeVAT))

	if res.VATPercent > 0 {
		row(fmt.Sprintf("VAT (%s incl.)", money.FormatPercent(res.VATPercent)), money.Format(symbol, -res.VATAmount))
		row("Net after VAT", money.Format(symbol, res.NetAfterVAT))
	}

	if f.ShowMeta {
		fmt.Fprintln(w, divider)
		row("Rate used", fmt.Sprintf("%s + %s", money.FormatPercent(res.Meta[calc.MetaPercentUsed]), money.Format(symbol, res.Meta[calc.MetaFixedUsed])))
		row("Suggested charge", money.Format(symbol, res.Meta[calc.MetaSuggestedCharge]))
	}

	if report.BreakEven != nil {
		fmt.Fprintln(w, divider)
		row("Break-even target", money.Format(symbol, report.BreakEven.TargetNet))
		if report.BreakEven.DenomOK {
			row("Break-even charge", money.Format(symbol, report.BreakEven.RequiredCharge))
		} else {
			row("Break-even charge", "unsolvable")
		}
	}

	if report.Sensitivity != nil {
		s := report.Sensitivity
		fmt.Fprintln(w, divider)
		row(fmt.Sprintf("Sensitivity (%s)", sensitivityLabel(s.Target)), "net after VAT")
		row("  base", money.Format(symbol, s.BaseNet))
		row(fmt.Sprintf("  rates +%s", money.FormatPercent(s.DeltaPct)), money.Format(symbol, s.NetUp))
		row(fmt.Sprintf("  rates -%s", money.FormatPercent(s.DeltaPct)), money.Format(symbol, s.NetDown))
	}

	if report.Volume != nil {
		v := report.Volume
		fmt.Fprintln(w, divider)
		row(fmt.Sprintf("Monthly volume (%.0f tx)", v.TxPerMonth), "")
		for _, tier := range v.Tiers {
			tierLabel := fmt.Sprintf("  └─ %s × %.0f tx", money.Format(symbol, tier.Price), tier.TxCount)
			row(tierLabel, money.Format(symbol, tier.Net))
		}
		row("Gross / month", money.Format(symbol, v.GrossMonthly))
		row("Provider fees / month", money.Format(symbol, -v.ProviderFeesMonthly))
		if v.FXFeesMonthly != 0 {
			row("FX fees / month", money.Format(symbol, -v.FXFeesMonthly))
		}
		if v.PlatformFeesMonthly != 0 {
			row("Platform fees / month", money.Format(symbol, -v.PlatformFeesMonthly))
		}
		row("Net / month", money.Format(symbol, v.NetMonthly))
		if v.RefundRatePct > 0 {
			row(fmt.Sprintf("Refund loss (%s)", money.FormatPercent(v.RefundRatePct)), money.Format(symbol, -v.RefundLossMonthly))
		}
		if v.VATMonthly != 0 {
			row("VAT / month", money.Format(symbol, -v.VATMonthly))
		}
		row("Net after refunds & VAT", money.Format(symbol, v.NetCombinedMonthly))
	}

	fmt.Fprintln(w, bottom)

	fmt.Fprintf(w, "\nComputed in %s (v%s)\n", report.Metadata.Duration, report.Metadata.Version)
	if report.ShareQuery != "" {
		fmt.Fprintf(w, "Share link query: ?%s\n", report.ShareQuery)
	}
	return nil
}

// sensitivityLabel names a sensitivity target for display.
func sensitivityLabel(target calc.SensitivityTarget) string {
	switch target {
	case calc.SensitivityProvider:
		return "provider fee"
	case calc.SensitivityFX:
		return "FX surcharge"
	case calc.SensitivityPlatform:
		return "platform fee"
	default:
		return "all fees"
	}
}

// center pads a title to the given width.
func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
