package output

import (
	"github.com/xuri/excelize/v2"

	"feecalc/core/analysis"
	"feecalc/core/calc"
	"feecalc/internal/errors"
)

const (
	quoteSheet  = "Quote"
	volumeSheet = "Volume"
)

// BuildWorkbook assembles an xlsx workbook for the report: a Quote sheet
// with the fee breakdown and analyses, plus a Volume sheet when the
// report carries a monthly projection. The caller owns the returned
// file and must Close it.
func BuildWorkbook(report *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(quoteSheet); err != nil {
		f.Close()
		return nil, errors.Wrap(errors.TypeExport, "creating quote sheet", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, errors.Wrap(errors.TypeExport, "removing default sheet", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.TypeExport, "creating header style", err)
	}

	st := report.State
	res := report.Result

	rows := [][2]interface{}{
		{"Provider", report.Metadata.ProviderLabel},
		{"Product", report.Metadata.ProductLabel},
		{"Region", string(st.Region)},
		{"Currency", res.Symbol},
		{"Mode", string(st.Mode)},
		{"Solvable", res.DenomOK},
		{"Gross charge", res.Gross},
	}
	for _, fee := range res.Fees {
		rows = append(rows, [2]interface{}{fee.Label, fee.Amount})
	}
	rows = append(rows, [2]interface{}{"Net before VAT", res.NetBeforeVAT})
	if res.VATPercent > 0 {
		rows = append(rows,
			[2]interface{}{"VAT rate %", res.VATPercent},
			[2]interface{}{"VAT portion", res.VATAmount},
			[2]interface{}{"Net after VAT", res.NetAfterVAT},
		)
	}
	rows = append(rows, [2]interface{}{"Suggested charge", res.Meta[calc.MetaSuggestedCharge]})

	if report.BreakEven != nil {
		rows = append(rows,
			[2]interface{}{"Break-even target net", report.BreakEven.TargetNet},
			[2]interface{}{"Break-even charge", report.BreakEven.RequiredCharge},
		)
	}
	if report.Sensitivity != nil {
		s := report.Sensitivity
		rows = append(rows,
			[2]interface{}{"Sensitivity target", string(s.Target)},
			[2]interface{}{"Sensitivity delta %", s.DeltaPct},
			[2]interface{}{"Net at current fees", s.BaseNet},
			[2]interface{}{"Net with fees up", s.NetUp},
			[2]interface{}{"Net with fees down", s.NetDown},
		)
	}

	for i, row := range rows {
		nameCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(quoteSheet, nameCell, row[0])
		f.SetCellValue(quoteSheet, valueCell, row[1])
	}
	lastLabel, _ := excelize.CoordinatesToCellName(1, len(rows))
	f.SetCellStyle(quoteSheet, "A1", lastLabel, bold)
	f.SetColWidth(quoteSheet, "A", "A", 26)
	f.SetColWidth(quoteSheet, "B", "B", 18)

	if report.Volume != nil {
		if err := writeVolumeSheet(f, report.Volume, bold); err != nil {
			f.Close()
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(quoteSheet)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.TypeExport, "locating quote sheet", err)
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeVolumeSheet(f *excelize.File, v *analysis.VolumeProjection, bold int) error {
	if _, err := f.NewSheet(volumeSheet); err != nil {
		return errors.Wrap(errors.TypeExport, "creating volume sheet", err)
	}

	summary := [][2]interface{}{
		{"Transactions / month", v.TxPerMonth},
		{"Gross monthly", v.GrossMonthly},
		{"Provider fees monthly", v.ProviderFeesMonthly},
		{"FX fees monthly", v.FXFeesMonthly},
		{"Platform fees monthly", v.PlatformFeesMonthly},
		{"Net monthly", v.NetMonthly},
		{"Refund loss monthly", v.RefundLossMonthly},
		{"VAT monthly", v.VATMonthly},
		{"Net combined monthly", v.NetCombinedMonthly},
	}
	for i, row := range summary {
		nameCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(volumeSheet, nameCell, row[0])
		f.SetCellValue(volumeSheet, valueCell, row[1])
	}
	lastLabel, _ := excelize.CoordinatesToCellName(1, len(summary))
	f.SetCellStyle(volumeSheet, "A1", lastLabel, bold)
	f.SetColWidth(volumeSheet, "A", "A", 26)

	if len(v.Tiers) == 0 {
		return nil
	}

	headerRow := len(summary) + 2
	headers := []string{
		"Share %", "Price", "Tx count", "Gross",
		"Provider fee", "FX fee", "Platform fee", "Net",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		f.SetCellValue(volumeSheet, cell, header)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRow)
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	f.SetCellStyle(volumeSheet, firstHeader, lastHeader, bold)

	for row, tier := range v.Tiers {
		data := []interface{}{
			tier.SharePct,
			tier.Price,
			tier.TxCount,
			tier.Gross,
			tier.ProviderFee,
			tier.FXFee,
			tier.PlatformFee,
			tier.Net,
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, headerRow+1+row)
			f.SetCellValue(volumeSheet, cell, value)
		}
	}
	return nil
}

// WriteXLSX builds the workbook and saves it to path.
func WriteXLSX(path string, report *Report) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(errors.TypeExport, "saving workbook", err)
	}
	return nil
}
