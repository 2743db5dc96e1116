// Package presets ships ready-made calculator configurations for
// common billing setups. Preset states are canonical: normalizing one
// returns it unchanged, so loading a preset never shifts any field.
package presets

import (
	"feecalc/core/calc"
)

// Preset is a named, ready-to-load calculator state.
type Preset struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	State       calc.State `json:"state"`
}

// All returns every preset in display order. The returned states are
// fresh values, safe for callers to mutate.
func All() []Preset {
	return build()
}

// Get returns a preset by id.
func Get(id string) (Preset, bool) {
	for _, p := range build() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// IDs lists preset ids in display order.
func IDs() []string {
	presets := build()
	ids := make([]string, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	return ids
}

// base starts a preset state from the session defaults with the
// provider and product pinned, so fields the normalizer would snap
// are already canonical.
func base(provider, product string) calc.State {
	st := calc.DefaultState()
	st.ProviderID = provider
	st.ProductID = product
	return st
}

// singleTier mirrors the tier the normalizer would synthesize for the
// current amount, keeping the preset a normalization fixed point.
func singleTier(st *calc.State) {
	st.VolumeTiers = []calc.VolumeTier{
		{SharePct: 100, Price: st.Amount, FXPercent: st.FXPercent},
	}
}

func build() []Preset {
	freelancer := base("stripe", "standard")
	freelancer.Amount = 250
	freelancer.VATPercent = 20
	freelancer.BreakEvenOn = true
	freelancer.BreakEvenTargetNet = 200
	freelancer.SensitivityOn = true
	freelancer.VolumeOn = true
	freelancer.VolumeTxPerMonth = 20
	singleTier(&freelancer)

	saas := base("stripe", "standard")
	saas.Region = calc.RegionEU
	saas.Mode = calc.ModeReverse
	saas.Amount = 29
	saas.TargetNet = 29
	saas.FXPercent = 1
	saas.VolumeOn = true
	saas.VolumeTxPerMonth = 500
	saas.VolumeTiers = []calc.VolumeTier{
		{SharePct: 80, Price: 29, FXPercent: 1},
		{SharePct: 20, Price: 99, FXPercent: 1},
	}

	marketplace := base("paypal", "checkout")
	marketplace.Region = calc.RegionUS
	marketplace.Amount = 40
	marketplace.PlatformFeePercent = 10
	marketplace.VolumeOn = true
	marketplace.VolumeTxPerMonth = 1000
	marketplace.VolumeRefundRatePct = 2
	singleTier(&marketplace)

	connect := base("stripe", "standard")
	connect.Amount = 50
	connect.PlatformFeePercent = 2.9
	connect.PlatformFeeBase = calc.PlatformBaseAfterProvider
	connect.VATPercent = 20
	connect.PsychPricing = true
	connect.RoundingStep = 0.05
	connect.SensitivityOn = true
	singleTier(&connect)

	rebate := base(calc.ProviderCustom, "flat")
	rebate.Amount = 120
	rebate.CustomProviderLabel = "Negotiated PSP"
	pct := 0.4
	rebate.CustomProviderFeePercent = &pct
	fixed := -0.05
	rebate.CustomFixedFee = &fixed
	singleTier(&rebate)

	enterprise := base("adyen", "cards")
	enterprise.Region = calc.RegionEU
	enterprise.Mode = calc.ModeReverse
	enterprise.Amount = 1000
	enterprise.TargetNet = 1000
	enterprise.VolumeOn = true
	enterprise.VolumeTxPerMonth = 2000
	singleTier(&enterprise)

	return []Preset{
		{
			ID:          "uk-freelancer",
			Label:       "UK freelancer",
			Description: "VAT-registered sole trader invoicing UK clients by card",
			State:       freelancer,
		},
		{
			ID:          "eu-saas",
			Label:       "EU SaaS subscriptions",
			Description: "Monthly subscriptions priced to a target payout, mixed plan tiers",
			State:       saas,
		},
		{
			ID:          "us-marketplace",
			Label:       "US marketplace seller",
			Description: "Marketplace checkout with a 10% platform cut and refund losses",
			State:       marketplace,
		},
		{
			ID:          "uk-platform-connect",
			Label:       "UK platform payout",
			Description: "Platform fee taken after provider fees, charm-priced checkout",
			State:       connect,
		},
		{
			ID:          "psp-rebate",
			Label:       "Negotiated PSP rates",
			Description: "Custom interchange deal with a fixed per-transaction rebate",
			State:       rebate,
		},
		{
			ID:          "eu-enterprise",
			Label:       "EU enterprise cards",
			Description: "Interchange++ card processing solved to a fixed payout",
			State:       enterprise,
		},
	}
}
