package providers

import (
	"feecalc/core/calc"
)

// StripeModel prices card processing from the per-region card-mix
// tier card in the region table. It is the registry's first entry
// and therefore the fallback for unknown provider ids.
type StripeModel struct{}

// NewStripe creates the tiered card processor model.
func NewStripe() *StripeModel {
	return &StripeModel{}
}

// ID returns the stable provider identifier
func (m *StripeModel) ID() string {
	return "stripe"
}

// Label returns the display name
func (m *StripeModel) Label() string {
	return "Stripe"
}

// Products returns the region's card-mix tiers
func (m *StripeModel) Products(region calc.Region) []calc.Product {
	tiers := RegionTiers(region)
	products := make([]calc.Product, len(tiers))
	for i, tier := range tiers {
		products[i] = calc.Product{ID: tier.ID, Label: tier.Label}
	}
	return products
}

// DefaultRate returns the table rate for a card-mix tier, falling
// back to the region's first tier for unknown product ids
func (m *StripeModel) DefaultRate(region calc.Region, productID string) (calc.Rate, bool) {
	tiers := RegionTiers(region)
	for _, tier := range tiers {
		if tier.ID == productID {
			return tier.Rate, true
		}
	}
	if len(tiers) > 0 {
		return tiers[0].Rate, false
	}
	return calc.Rate{}, false
}

// Quote computes a quote at the tier's table rate
func (m *StripeModel) Quote(in calc.QuoteInput) calc.Result {
	rate, _ := m.DefaultRate(in.State.Region, in.State.ProductID)
	return calc.BuildQuote(in, rate, "Stripe fee")
}
