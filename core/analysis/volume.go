package analysis

import (
	"feecalc/core/calc"
	"feecalc/core/money"
)

// TierProjection is one tier's monthly contribution.
type TierProjection struct {
	SharePct    float64 `json:"sharePct"`
	Price       float64 `json:"price"`
	TxCount     float64 `json:"txCount"`
	Gross       float64 `json:"gross"`
	ProviderFee float64 `json:"providerFee"`
	FXFee       float64 `json:"fxFee"`
	PlatformFee float64 `json:"platformFee"`
	Net         float64 `json:"net"`
}

// RateOverride optionally pins the per-transaction provider rate
// used by a projection instead of deriving it from the state.
type RateOverride struct {
	Percent *float64
	Fixed   *float64
}

// VolumeProjection aggregates a month of transactions across price
// tiers, with refund losses and VAT folded in at the end.
type VolumeProjection struct {
	TxPerMonth  float64 `json:"txPerMonth"`
	PercentUsed float64 `json:"percentUsed"`
	FixedUsed   float64 `json:"fixedUsed"`

	GrossMonthly        float64 `json:"grossMonthly"`
	ProviderFeesMonthly float64 `json:"providerFeesMonthly"`
	FXFeesMonthly       float64 `json:"fxFeesMonthly"`
	PlatformFeesMonthly float64 `json:"platformFeesMonthly"`
	NetMonthly          float64 `json:"netMonthly"`

	RefundRatePct          float64 `json:"refundRatePct"`
	RefundLossMonthly      float64 `json:"refundLossMonthly"`
	NetAfterRefundsMonthly float64 `json:"netAfterRefundsMonthly"`

	VATMonthly         float64 `json:"vatMonthly"`
	NetAfterVATMonthly float64 `json:"netAfterVatMonthly"`

	// NetCombinedMonthly is net minus refund losses minus VAT.
	NetCombinedMonthly float64 `json:"netCombinedMonthly"`

	Tiers []TierProjection `json:"tiers"`
}

// ComputeVolume projects the current fee structure across a month of
// transactions split over the state's price tiers. perTx is the
// single-transaction quote the effective rate may be inferred from.
// Returns nil when the analysis is off, the transaction count is not
// positive or no tier carries a positive share.
func ComputeVolume(engine *calc.Engine, st calc.State, perTx calc.Result, override *RateOverride) *VolumeProjection {
	norm := engine.Normalize(st)
	if !norm.VolumeOn || norm.VolumeTxPerMonth <= 0 {
		return nil
	}

	anyShare := false
	for _, tier := range norm.VolumeTiers {
		if tier.SharePct > 0 {
			anyShare = true
			break
		}
	}
	if !anyShare {
		return nil
	}

	percent, fixed := resolveVolumeRate(norm, perTx, override)

	proj := &VolumeProjection{
		TxPerMonth:    norm.VolumeTxPerMonth,
		PercentUsed:   percent,
		FixedUsed:     fixed,
		RefundRatePct: norm.VolumeRefundRatePct,
		Tiers:         make([]TierProjection, 0, len(norm.VolumeTiers)),
	}

	for _, tier := range norm.VolumeTiers {
		txCount := norm.VolumeTxPerMonth * tier.SharePct / 100

		providerPerTx := tier.Price*percent/100 + fixed
		fxPerTx := tier.Price * tier.FXPercent / 100
		var platformPerTx float64
		if norm.PlatformFeeBase == calc.PlatformBaseAfterProvider {
			platformPerTx = (tier.Price - providerPerTx) * norm.PlatformFeePercent / 100
		} else {
			platformPerTx = tier.Price * norm.PlatformFeePercent / 100
		}

		tp := TierProjection{
			SharePct:    tier.SharePct,
			Price:       tier.Price,
			TxCount:     txCount,
			Gross:       txCount * tier.Price,
			ProviderFee: txCount * providerPerTx,
			FXFee:       txCount * fxPerTx,
			PlatformFee: txCount * platformPerTx,
		}
		tp.Net = tp.Gross - tp.ProviderFee - tp.FXFee - tp.PlatformFee

		proj.GrossMonthly += tp.Gross
		proj.ProviderFeesMonthly += tp.ProviderFee
		proj.FXFeesMonthly += tp.FXFee
		proj.PlatformFeesMonthly += tp.PlatformFee
		proj.Tiers = append(proj.Tiers, tp)
	}

	proj.NetMonthly = proj.GrossMonthly - proj.ProviderFeesMonthly - proj.FXFeesMonthly - proj.PlatformFeesMonthly
	proj.RefundLossMonthly = proj.NetMonthly * norm.VolumeRefundRatePct / 100
	proj.NetAfterRefundsMonthly = proj.NetMonthly - proj.RefundLossMonthly

	if norm.VATPercent > 0 {
		proj.VATMonthly = proj.GrossMonthly * norm.VATPercent / (100 + norm.VATPercent)
	}
	proj.NetAfterVATMonthly = proj.NetMonthly - proj.VATMonthly
	proj.NetCombinedMonthly = proj.NetMonthly - proj.RefundLossMonthly - proj.VATMonthly

	return proj
}

// resolveVolumeRate picks the per-transaction provider rate. An
// explicit override wins, then the state's custom rate. With no
// explicit percentage the effective rate is inferred by back-solving
// the single-transaction provider fee as a pure percentage of gross,
// folding any fixed part into the percentage. Override values get the
// same treatment normalization gives the state's own rate override:
// non-finite values are dropped and percentages clamp into [0, 100].
func resolveVolumeRate(st calc.State, perTx calc.Result, override *RateOverride) (percent, fixed float64) {
	var percentPtr, fixedPtr *float64
	if override != nil {
		percentPtr = sanitizePercentPtr(override.Percent)
		fixedPtr = sanitizeFixedPtr(override.Fixed)
	}
	if percentPtr == nil {
		percentPtr = st.CustomProviderFeePercent
	}
	if fixedPtr == nil {
		fixedPtr = st.CustomFixedFee
	}

	if percentPtr != nil {
		if fixedPtr != nil {
			fixed = *fixedPtr
		}
		return *percentPtr, fixed
	}

	if perTx.DenomOK && perTx.Gross > 0 {
		return perTx.Fee(calc.FeeProvider) / perTx.Gross * 100, 0
	}
	return 0, 0
}

// sanitizePercentPtr drops a non-finite percentage override and
// clamps the rest into [0, 100].
func sanitizePercentPtr(p *float64) *float64 {
	if p == nil || !money.IsFinite(*p) {
		return nil
	}
	v := *p
	if v < 0 {
		v = 0
	} else if v > 100 {
		v = 100
	}
	return &v
}

// sanitizeFixedPtr drops a non-finite fixed-fee override. Negative
// values stay, matching the state's own fixed-fee override.
func sanitizeFixedPtr(p *float64) *float64 {
	if p == nil || !money.IsFinite(*p) {
		return nil
	}
	v := *p
	return &v
}

// Rounded returns a display copy with every monthly figure rounded
// and non-finite values collapsed to zero.
func (v *VolumeProjection) Rounded() *VolumeProjection {
	if v == nil {
		return nil
	}
	out := *v
	if !money.IsFinite(v.PercentUsed) {
		out.PercentUsed = 0
	}
	if !money.IsFinite(v.FixedUsed) {
		out.FixedUsed = 0
	}
	out.GrossMonthly = displayMoney(v.GrossMonthly)
	out.ProviderFeesMonthly = displayMoney(v.ProviderFeesMonthly)
	out.FXFeesMonthly = displayMoney(v.FXFeesMonthly)
	out.PlatformFeesMonthly = displayMoney(v.PlatformFeesMonthly)
	out.NetMonthly = displayMoney(v.NetMonthly)
	out.RefundLossMonthly = displayMoney(v.RefundLossMonthly)
	out.NetAfterRefundsMonthly = displayMoney(v.NetAfterRefundsMonthly)
	out.VATMonthly = displayMoney(v.VATMonthly)
	out.NetAfterVATMonthly = displayMoney(v.NetAfterVATMonthly)
	out.NetCombinedMonthly = displayMoney(v.NetCombinedMonthly)

	out.Tiers = make([]TierProjection, len(v.Tiers))
	for i, tp := range v.Tiers {
		tp.Gross = displayMoney(tp.Gross)
		tp.ProviderFee = displayMoney(tp.ProviderFee)
		tp.FXFee = displayMoney(tp.FXFee)
		tp.PlatformFee = displayMoney(tp.PlatformFee)
		tp.Net = displayMoney(tp.Net)
		out.Tiers[i] = tp
	}
	return &out
}

// displayMoney rounds for display, collapsing non-finite values to 0.
func displayMoney(v float64) float64 {
	if !money.IsFinite(v) {
		return 0
	}
	return money.Round(v)
}
