package providers

import (
	"feecalc/core/calc"
)

// AdyenModel prices interchange++ card processing with a blended
// stand-in rate per region.
type AdyenModel struct {
	card rateCard
}

// NewAdyen creates the Adyen fee model.
func NewAdyen() *AdyenModel {
	return &AdyenModel{
		card: rateCard{
			calc.RegionUK: {
				{ID: "cards", Label: "Card processing", Rate: calc.Rate{Percent: 1.0, Fixed: 0.11}},
				{ID: "local-methods", Label: "Local payment methods", Rate: calc.Rate{Percent: 0.6, Fixed: 0.11}},
			},
			calc.RegionEU: {
				{ID: "cards", Label: "Card processing", Rate: calc.Rate{Percent: 0.9, Fixed: 0.11}},
				{ID: "local-methods", Label: "Local payment methods", Rate: calc.Rate{Percent: 0.5, Fixed: 0.11}},
			},
			calc.RegionUS: {
				{ID: "cards", Label: "Card processing", Rate: calc.Rate{Percent: 1.2, Fixed: 0.13}},
				{ID: "local-methods", Label: "Local payment methods", Rate: calc.Rate{Percent: 0.8, Fixed: 0.13}},
			},
		},
	}
}

// ID returns the stable provider identifier
func (m *AdyenModel) ID() string {
	return "adyen"
}

// Label returns the display name
func (m *AdyenModel) Label() string {
	return "Adyen"
}

// Products returns the region's payment products
func (m *AdyenModel) Products(region calc.Region) []calc.Product {
	return m.card.products(region)
}

// DefaultRate returns the table rate for a product
func (m *AdyenModel) DefaultRate(region calc.Region, productID string) (calc.Rate, bool) {
	return m.card.rate(region, productID)
}

// Quote computes a quote at the product's table rate
func (m *AdyenModel) Quote(in calc.QuoteInput) calc.Result {
	rate, _ := m.DefaultRate(in.State.Region, in.State.ProductID)
	return calc.BuildQuote(in, rate, "Adyen fee")
}
