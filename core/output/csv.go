package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"feecalc/core/calc"
	"feecalc/internal/errors"
)

// CSVFormatter renders the report as a flat two-column table with a
// per-tier section appended when a volume projection is present.
// Amounts are written as plain numbers so spreadsheets treat them as
// values, with the currency symbol carried in its own row.
type CSVFormatter struct{}

// Format returns the format type
func (f *CSVFormatter) Format() Format {
	return FormatCSV
}

// Render produces CSV output
func (f *CSVFormatter) Render(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	st := report.State
	res := report.Result

	records := [][]string{
		{"field", "value"},
		{"provider", report.Metadata.ProviderLabel},
		{"product", report.Metadata.ProductLabel},
		{"region", string(st.Region)},
		{"currency", res.Symbol},
		{"mode", string(st.Mode)},
		{"solvable", strconv.FormatBool(res.DenomOK)},
		{"gross", num(res.Gross)},
	}
	for _, fee := range res.Fees {
		records = append(records, []string{fee.Key + "Fee", num(fee.Amount)})
	}
	records = append(records,
		[]string{"netBeforeVat", num(res.NetBeforeVAT)},
		[]string{"vatPercent", num(res.VATPercent)},
		[]string{"vatAmount", num(res.VATAmount)},
		[]string{"netAfterVat", num(res.NetAfterVAT)},
		[]string{"suggestedCharge", num(res.Meta[calc.MetaSuggestedCharge])},
	)

	if report.BreakEven != nil {
		records = append(records,
			[]string{"breakEvenTargetNet", num(report.BreakEven.TargetNet)},
			[]string{"breakEvenCharge", num(report.BreakEven.RequiredCharge)},
			[]string{"breakEvenSolvable", strconv.FormatBool(report.BreakEven.DenomOK)},
		)
	}

	if report.Sensitivity != nil {
		s := report.Sensitivity
		records = append(records,
			[]string{"sensitivityTarget", string(s.Target)},
			[]string{"sensitivityDeltaPct", num(s.DeltaPct)},
			[]string{"sensitivityBaseNet", num(s.BaseNet)},
			[]string{"sensitivityNetUp", num(s.NetUp)},
			[]string{"sensitivityNetDown", num(s.NetDown)},
		)
	}

	if report.Volume != nil {
		v := report.Volume
		records = append(records,
			[]string{"volumeTxPerMonth", num(v.TxPerMonth)},
			[]string{"volumeGrossMonthly", num(v.GrossMonthly)},
			[]string{"volumeProviderFeesMonthly", num(v.ProviderFeesMonthly)},
			[]string{"volumeFxFeesMonthly", num(v.FXFeesMonthly)},
			[]string{"volumePlatformFeesMonthly", num(v.PlatformFeesMonthly)},
			[]string{"volumeNetMonthly", num(v.NetMonthly)},
			[]string{"volumeRefundLossMonthly", num(v.RefundLossMonthly)},
			[]string{"volumeVatMonthly", num(v.VATMonthly)},
			[]string{"volumeNetCombinedMonthly", num(v.NetCombinedMonthly)},
		)
	}

	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(errors.TypeExport, "writing report rows", err)
	}

	if report.Volume != nil && len(report.Volume.Tiers) > 0 {
		tierRecords := [][]string{
			{},
			{"tierSharePct", "tierPrice", "txCount", "gross", "providerFee", "fxFee", "platformFee", "net"},
		}
		for _, tier := range report.Volume.Tiers {
			tierRecords = append(tierRecords, []string{
				num(tier.SharePct), num(tier.Price), num(tier.TxCount),
				num(tier.Gross), num(tier.ProviderFee), num(tier.FXFee),
				num(tier.PlatformFee), num(tier.Net),
			})
		}
		if err := cw.WriteAll(tierRecords); err != nil {
			return errors.Wrap(errors.TypeExport, "writing tier rows", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.TypeExport, "flushing csv", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
