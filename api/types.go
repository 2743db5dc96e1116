package api

import (
	"feecalc/core/analysis"
	"feecalc/core/calc"
)

// QuoteRequest is the body of the POST quote and analysis endpoints.
// The state is raw client input; the server normalizes it.
type QuoteRequest struct {
	State calc.State `json:"state"`
}

// NormalizeResponse returns the canonical form of a submitted state
// together with its share link query.
type NormalizeResponse struct {
	State      calc.State `json:"state"`
	ShareQuery string     `json:"shareQuery"`
}

// BreakEvenResponse wraps the break-even analysis. Result is null when
// the target is negative or non-finite.
type BreakEvenResponse struct {
	Result *analysis.BreakEven `json:"breakEven"`
}

// SensitivityResponse wraps the sensitivity analysis. Result is null
// when the base quote is unsolvable.
type SensitivityResponse struct {
	Result *analysis.Sensitivity `json:"sensitivity"`
}

// VolumeRequest optionally pins the per-transaction rate used by the
// volume projection.
type VolumeRequest struct {
	State    calc.State             `json:"state"`
	Override *analysis.RateOverride `json:"override,omitempty"`
}

// VolumeResponse wraps the volume projection. Result is null when the
// projection is disabled or no tier has a share.
type VolumeResponse struct {
	Result *analysis.VolumeProjection `json:"volume"`
}

// ProviderProduct is one product with its table rate.
type ProviderProduct struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Fixed   float64 `json:"fixed"`
}

// ProviderInfo describes one registered fee model.
type ProviderInfo struct {
	ID       string                            `json:"id"`
	Label    string                            `json:"label"`
	Products map[calc.Region][]ProviderProduct `json:"products"`
}

// ProvidersResponse is the registry listing.
type ProvidersResponse struct {
	Providers []ProviderInfo         `json:"providers"`
	Default   string                 `json:"default"`
	Regions   []calc.Region          `json:"regions"`
	Symbols   map[calc.Region]string `json:"symbols"`
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse acknowledges an accepted submission.
type ContactResponse struct {
	Status string `json:"status"`
}

// ErrorBody is the error envelope payload.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
