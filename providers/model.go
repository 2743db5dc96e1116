package providers

import (
	"feecalc/core/calc"
)

// productRate pairs a product with its table rate.
type productRate struct {
	ID    string
	Label string
	Rate  calc.Rate
}

// rateCard is a region-keyed product table backing the modeled
// providers. Every region must list at least one product; the first
// entry is the region default.
type rateCard map[calc.Region][]productRate

func (c rateCard) products(region calc.Region) []calc.Product {
	entries := c.forRegion(region)
	products := make([]calc.Product, len(entries))
	for i, e := range entries {
		products[i] = calc.Product{ID: e.ID, Label: e.Label}
	}
	return products
}

func (c rateCard) rate(region calc.Region, productID string) (calc.Rate, bool) {
	entries := c.forRegion(region)
	for _, e := range entries {
		if e.ID == productID {
			return e.Rate, true
		}
	}
	if len(entries) > 0 {
		return entries[0].Rate, false
	}
	return calc.Rate{}, false
}

func (c rateCard) forRegion(region calc.Region) []productRate {
	if entries, ok := c[region]; ok {
		return entries
	}
	return c[calc.RegionUK]
}
