package providers

import (
	"feecalc/core/calc"
)

// CustomModel is the user-defined provider. Its table rate is zero,
// so the state's override fields carry the entire rate, and the
// state's label names the fee line.
type CustomModel struct{}

// NewCustom creates the user-defined provider model.
func NewCustom() *CustomModel {
	return &CustomModel{}
}

// ID returns the stable provider identifier
func (m *CustomModel) ID() string {
	return calc.ProviderCustom
}

// Label returns the display name
func (m *CustomModel) Label() string {
	return "Custom"
}

// Products returns the single flat-rate product
func (m *CustomModel) Products(region calc.Region) []calc.Product {
	return []calc.Product{{ID: "flat", Label: "Flat rate"}}
}

// DefaultRate returns the zero base rate
func (m *CustomModel) DefaultRate(region calc.Region, productID string) (calc.Rate, bool) {
	return calc.Rate{}, productID == "flat"
}

// Quote computes a quote from the state's override rate
func (m *CustomModel) Quote(in calc.QuoteInput) calc.Result {
	label := in.State.CustomProviderLabel
	if label == "" {
		label = "Custom provider"
	}
	return calc.BuildQuote(in, calc.Rate{}, label+" fee")
}
