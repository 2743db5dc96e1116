package providers

import (
	"feecalc/core/calc"
)

// PayPalModel prices checkout and advanced card processing.
type PayPalModel struct {
	card rateCard
}

// NewPayPal creates the PayPal fee model.
func NewPayPal() *PayPalModel {
	return &PayPalModel{
		card: rateCard{
			calc.RegionUK: {
				{ID: "checkout", Label: "PayPal Checkout", Rate: calc.Rate{Percent: 2.9, Fixed: 0.30}},
				{ID: "advanced-cards", Label: "Advanced card payments", Rate: calc.Rate{Percent: 1.2, Fixed: 0.30}},
			},
			calc.RegionEU: {
				{ID: "checkout", Label: "PayPal Checkout", Rate: calc.Rate{Percent: 2.9, Fixed: 0.35}},
				{ID: "advanced-cards", Label: "Advanced card payments", Rate: calc.Rate{Percent: 1.2, Fixed: 0.35}},
			},
			calc.RegionUS: {
				{ID: "checkout", Label: "PayPal Checkout", Rate: calc.Rate{Percent: 3.49, Fixed: 0.49}},
				{ID: "advanced-cards", Label: "Advanced card payments", Rate: calc.Rate{Percent: 2.59, Fixed: 0.49}},
			},
		},
	}
}

// ID returns the stable provider identifier
func (m *PayPalModel) ID() string {
	return "paypal"
}

// Label returns the display name
func (m *PayPalModel) Label() string {
	return "PayPal"
}

// Products returns the region's payment products
func (m *PayPalModel) Products(region calc.Region) []calc.Product {
	return m.card.products(region)
}

// DefaultRate returns the table rate for a product
func (m *PayPalModel) DefaultRate(region calc.Region, productID string) (calc.Rate, bool) {
	return m.card.rate(region, productID)
}

// Quote computes a quote at the product's table rate
func (m *PayPalModel) Quote(in calc.QuoteInput) calc.Result {
	rate, _ := m.DefaultRate(in.State.Region, in.State.ProductID)
	return calc.BuildQuote(in, rate, "PayPal fee")
}
