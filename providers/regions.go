// Package providers contains the built-in payment provider fee
// models and assembles the default registry. Rates are indicative
// published pricing, a stand-in for a live rate sheet rather than a
// contractual quote.
package providers

import (
	"feecalc/core/calc"
)

// CardTier is one card-mix tier of the tiered card processor.
type CardTier struct {
	ID    string
	Label string
	Rate  calc.Rate
}

// RegionInfo carries a region's currency symbol and the tiered card
// processor's rate card for that region.
type RegionInfo struct {
	Symbol string
	Tiers  []CardTier
}

var regionTable = map[calc.Region]RegionInfo{
	calc.RegionUK: {
		Symbol: "£",
		Tiers: []CardTier{
			{ID: "standard", Label: "UK consumer cards", Rate: calc.Rate{Percent: 1.5, Fixed: 0.20}},
			{ID: "eea-cards", Label: "EEA cards", Rate: calc.Rate{Percent: 2.5, Fixed: 0.20}},
			{ID: "international", Label: "International cards", Rate: calc.Rate{Percent: 3.25, Fixed: 0.20}},
		},
	},
	calc.RegionEU: {
		Symbol: "€",
		Tiers: []CardTier{
			{ID: "standard", Label: "Standard EEA cards", Rate: calc.Rate{Percent: 1.5, Fixed: 0.25}},
			{ID: "uk-cards", Label: "UK cards", Rate: calc.Rate{Percent: 2.5, Fixed: 0.25}},
			{ID: "international", Label: "International cards", Rate: calc.Rate{Percent: 3.25, Fixed: 0.25}},
		},
	},
	calc.RegionUS: {
		Symbol: "$",
		Tiers: []CardTier{
			{ID: "standard", Label: "Domestic cards", Rate: calc.Rate{Percent: 2.9, Fixed: 0.30}},
			{ID: "international", Label: "International cards", Rate: calc.Rate{Percent: 4.4, Fixed: 0.30}},
		},
	},
}

// Symbols returns the region currency symbol table.
func Symbols() map[calc.Region]string {
	symbols := make(map[calc.Region]string, len(regionTable))
	for region, info := range regionTable {
		symbols[region] = info.Symbol
	}
	return symbols
}

// RegionTiers returns the tiered processor's rate card for a region,
// falling back to the UK card for unknown regions.
func RegionTiers(region calc.Region) []CardTier {
	if info, ok := regionTable[region]; ok {
		return info.Tiers
	}
	return regionTable[calc.RegionUK].Tiers
}
