package output

import (
	"encoding/json"
	"io"

	"feecalc/internal/errors"
)

// JSONFormatter renders the report as indented JSON. Reports are
// display-sanitized before they reach the formatter, so no NaN or
// infinity can hit the encoder.
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render produces JSON output
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(errors.TypeExport, "encoding report", err)
	}
	return nil
}
