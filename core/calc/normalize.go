package calc

import (
	"math"
	"strings"

	"feecalc/core/money"
)

// maxLabelLen caps the custom provider label.
const maxLabelLen = 80

// platformBaseAfterLegacy is an accepted wire alias for
// PlatformBaseAfterProvider, kept so old share links keep decoding.
const platformBaseAfterLegacy = "afterStripe"

// Normalize coerces an arbitrary state into canonical form: enums
// snap to known values, amounts and percentages are clamped into
// range, the provider and product resolve to registered entries and
// volume tiers are given a single-tier default when empty. It is
// idempotent, never errors, and does not mutate its input.
func Normalize(in State, reg *Registry) State {
	st := in

	switch st.Mode {
	case ModeForward, ModeReverse:
	default:
		st.Mode = ModeForward
	}

	switch st.Region {
	case RegionUK, RegionEU, RegionUS:
	default:
		st.Region = RegionUK
	}

	switch st.PlatformFeeBase {
	case PlatformBaseGross, PlatformBaseAfterProvider:
	case platformBaseAfterLegacy:
		st.PlatformFeeBase = PlatformBaseAfterProvider
	default:
		st.PlatformFeeBase = PlatformBaseGross
	}

	switch st.SensitivityTarget {
	case SensitivityAll, SensitivityProvider, SensitivityFX, SensitivityPlatform:
	default:
		st.SensitivityTarget = SensitivityAll
	}

	st.Amount = clampMoney(st.Amount)
	st.TargetNet = clampMoney(st.TargetNet)

	st.FXPercent = clampPercent(st.FXPercent)
	st.PlatformFeePercent = clampPercent(st.PlatformFeePercent)
	st.VATPercent = clampPercent(st.VATPercent)
	st.SensitivityDeltaPct = clampPercent(st.SensitivityDeltaPct)
	st.VolumeRefundRatePct = clampPercent(st.VolumeRefundRatePct)

	st.RoundingStep = normalizeStep(st.RoundingStep)

	st.CustomProviderFeePercent = normalizePercentPtr(st.CustomProviderFeePercent)
	st.CustomFixedFee = normalizeFixedPtr(st.CustomFixedFee)

	// Break-even targets stay negative when given negative: a
	// negative target disables the analysis rather than clamping
	// into a meaningless zero target.
	if !money.IsFinite(st.BreakEvenTargetNet) {
		st.BreakEvenTargetNet = 0
	}

	if _, ok := reg.Model(st.ProviderID); !ok {
		st.ProviderID = reg.DefaultID()
	}
	if model, ok := reg.Model(st.ProviderID); ok {
		st.ProductID = normalizeProduct(st.ProductID, model.Products(st.Region))
	}

	if st.ProviderID == ProviderCustom {
		st.CustomProviderLabel = normalizeLabel(st.CustomProviderLabel)
	} else {
		st.CustomProviderLabel = ""
	}

	st.VolumeTxPerMonth = math.Trunc(clampMoney(st.VolumeTxPerMonth))
	st.VolumeTiers = normalizeTiers(st.VolumeTiers, st.Amount, st.FXPercent)

	return st
}

// clampMoney forces a monetary input to a finite, non-negative value.
func clampMoney(v float64) float64 {
	if !money.IsFinite(v) || v < 0 {
		return 0
	}
	return v
}

// clampPercent forces a percentage into [0, 100].
func clampPercent(v float64) float64 {
	if !money.IsFinite(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// normalizeStep snaps the rounding step to a supported value.
func normalizeStep(step float64) float64 {
	for _, s := range RoundingSteps {
		if math.Abs(step-s) < 1e-9 {
			return s
		}
	}
	return DefaultRoundingStep
}

// normalizePercentPtr clamps an optional percentage override,
// dropping non-finite values back to "use the table rate".
func normalizePercentPtr(p *float64) *float64 {
	if p == nil || !money.IsFinite(*p) {
		return nil
	}
	v := clampPercent(*p)
	return &v
}

// normalizeFixedPtr validates an optional fixed fee override. The
// value may be negative to model rebates, so only finiteness is
// enforced.
func normalizeFixedPtr(p *float64) *float64 {
	if p == nil || !money.IsFinite(*p) {
		return nil
	}
	v := *p
	return &v
}

// normalizeProduct resolves a product id against a provider's
// product list, falling back to the first product.
func normalizeProduct(id string, products []Product) string {
	for _, p := range products {
		if p.ID == id {
			return id
		}
	}
	if len(products) > 0 {
		return products[0].ID
	}
	return ""
}

// normalizeLabel trims and caps the custom provider label. The cut
// can land on whitespace, so the trim runs again after the cap.
func normalizeLabel(label string) string {
	return strings.TrimSpace(truncateLabel(strings.TrimSpace(label)))
}

// truncateLabel caps the label length without splitting a rune.
func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) > maxLabelLen {
		return string(runes[:maxLabelLen])
	}
	return label
}

// normalizeTiers clamps each tier and synthesizes a single 100%-share
// tier from the current amount when the list is empty.
func normalizeTiers(tiers []VolumeTier, amount, fxPercent float64) []VolumeTier {
	if len(tiers) == 0 {
		return []VolumeTier{{SharePct: 100, Price: amount, FXPercent: fxPercent}}
	}
	out := make([]VolumeTier, len(tiers))
	for i, tier := range tiers {
		out[i] = VolumeTier{
			SharePct:  clampPercent(tier.SharePct),
			Price:     clampMoney(tier.Price),
			FXPercent: clampPercent(tier.FXPercent),
		}
	}
	return out
}
