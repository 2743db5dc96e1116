package providers

import (
	"feecalc/core/calc"
)

// SquareModel prices online and in-person card processing.
type SquareModel struct {
	card rateCard
}

// NewSquare creates the Square fee model.
func NewSquare() *SquareModel {
	return &SquareModel{
		card: rateCard{
			calc.RegionUK: {
				{ID: "online", Label: "Online payments", Rate: calc.Rate{Percent: 1.4, Fixed: 0.25}},
				{ID: "in-person", Label: "In-person payments", Rate: calc.Rate{Percent: 1.75, Fixed: 0}},
			},
			calc.RegionEU: {
				{ID: "online", Label: "Online payments", Rate: calc.Rate{Percent: 1.4, Fixed: 0.25}},
				{ID: "in-person", Label: "In-person payments", Rate: calc.Rate{Percent: 1.75, Fixed: 0}},
			},
			calc.RegionUS: {
				{ID: "online", Label: "Online payments", Rate: calc.Rate{Percent: 2.9, Fixed: 0.30}},
				{ID: "in-person", Label: "In-person payments", Rate: calc.Rate{Percent: 2.6, Fixed: 0.10}},
			},
		},
	}
}

// ID returns the stable provider identifier
func (m *SquareModel) ID() string {
	return "square"
}

// Label returns the display name
func (m *SquareModel) Label() string {
	return "Square"
}

// Products returns the region's payment products
func (m *SquareModel) Products(region calc.Region) []calc.Product {
	return m.card.products(region)
}

// DefaultRate returns the table rate for a product
func (m *SquareModel) DefaultRate(region calc.Region, productID string) (calc.Rate, bool) {
	return m.card.rate(region, productID)
}

// Quote computes a quote at the product's table rate
func (m *SquareModel) Quote(in calc.QuoteInput) calc.Result {
	rate, _ := m.DefaultRate(in.State.Region, in.State.ProductID)
	return calc.BuildQuote(in, rate, "Square fee")
}
