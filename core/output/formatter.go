// Package output renders quote reports for humans and machines.
// Reports carry display-rounded figures only; full-precision values
// stay inside the engine and analyses.
package output

import (
	"io"
	"time"

	"feecalc/core/analysis"
	"feecalc/core/calc"
	"feecalc/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatCSV is a flat spreadsheet-importable table
	FormatCSV Format = "csv"

	// FormatXLSX is an Excel workbook
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCLI, FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", errors.Newf(errors.TypeInput, "unknown output format: %s", s)
	}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// NewFormatter returns the formatter for a format type. The XLSX
// format writes binary workbooks and is handled by BuildWorkbook
// rather than a stream formatter.
func NewFormatter(format Format, showMeta bool) (Formatter, error) {
	switch format {
	case FormatCLI:
		return &CLIFormatter{ShowMeta: showMeta}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	default:
		return nil, errors.Newf(errors.TypeExport, "no stream formatter for format: %s", format)
	}
}

// Report contains the complete output of one calculator run: the
// canonical state, the display-rounded quote and whichever analyses
// were enabled.
type Report struct {
	// State is the normalized configuration the report was run with
	State calc.State `json:"state"`

	// ShareQuery is the share link query string for State, when the
	// caller attached one
	ShareQuery string `json:"shareQuery,omitempty"`

	// Result is the display-rounded quote
	Result calc.Result `json:"result"`

	// BreakEven is present when the break-even analysis ran
	BreakEven *analysis.BreakEven `json:"breakEven,omitempty"`

	// Sensitivity is present when the sensitivity analysis ran
	Sensitivity *analysis.Sensitivity `json:"sensitivity,omitempty"`

	// Volume is present when the volume projection ran
	Volume *analysis.VolumeProjection `json:"volume,omitempty"`

	// Metadata contains execution context
	Metadata ReportMetadata `json:"metadata"`
}

// ReportMetadata contains execution context
type ReportMetadata struct {
	// Timestamp is when the report was computed
	Timestamp string `json:"timestamp"`

	// Duration is how long the computation took
	Duration string `json:"duration"`

	// Version is the tool version
	Version string `json:"version"`

	// ProviderLabel is the resolved provider display name
	ProviderLabel string `json:"providerLabel"`

	// ProductLabel is the resolved product display name
	ProductLabel string `json:"productLabel"`
}

// BuildReport runs the quote and every enabled analysis for a state
// and assembles the display-rounded report.
func BuildReport(engine *calc.Engine, st calc.State, version string) *Report {
	start := time.Now()

	norm := engine.Normalize(st)
	result := engine.Quote(norm)

	// Analyses take the raw state: break-even disables on a non-finite
	// target, which normalization would otherwise coerce to zero.
	breakEven := analysis.ComputeBreakEven(engine, st)
	sensitivity := analysis.ComputeSensitivity(engine, st)
	volume := analysis.ComputeVolume(engine, st, result, nil)

	report := &Report{
		State:       norm,
		Result:      result.Rounded(),
		BreakEven:   breakEven.Rounded(),
		Sensitivity: sensitivity.Rounded(),
		Volume:      volume.Rounded(),
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  time.Since(start).String(),
			Version:   version,
		},
	}

	if model, ok := engine.Registry().Model(norm.ProviderID); ok {
		report.Metadata.ProviderLabel = model.Label()
		if norm.ProviderID == calc.ProviderCustom && norm.CustomProviderLabel != "" {
			report.Metadata.ProviderLabel = norm.CustomProviderLabel
		}
		for _, p := range model.Products(norm.Region) {
			if p.ID == norm.ProductID {
				report.Metadata.ProductLabel = p.Label
				break
			}
		}
	}

	return report
}
