package calc

import (
	"math"

	"feecalc/core/money"
)

// ResolveRate applies the override precedence to a provider table
// rate: a non-nil custom percentage or fixed fee on the state wins
// over the table value, independently of each other.
func ResolveRate(st State, table Rate) (percent, fixed float64) {
	percent = table.Percent
	if st.CustomProviderFeePercent != nil {
		percent = *st.CustomProviderFeePercent
	}
	fixed = table.Fixed
	if st.CustomFixedFee != nil {
		fixed = *st.CustomFixedFee
	}
	return percent, fixed
}

// SolveGross inverts the fee algebra: it returns the gross charge
// whose net before VAT equals targetNet under the given rates. When
// the combined percentages reach or exceed 100% of gross the
// denominator is not positive and no solution exists; the result is
// then NaN, to be carried as data rather than an error.
func SolveGross(targetNet, percent, fixed, fxPercent, platformPercent float64, base PlatformBase) float64 {
	p := percent / 100
	fx := fxPercent / 100
	pl := platformPercent / 100

	var denom, num float64
	if base == PlatformBaseAfterProvider {
		denom = 1 - p - fx - pl + p*pl
		num = targetNet + fixed*(1-pl)
	} else {
		denom = 1 - p - fx - pl
		num = targetNet + fixed
	}

	if denom <= 0 {
		return math.NaN()
	}
	return num / denom
}

// AdjustCharge applies the display rounding strategy to a charge:
// charm pricing when enabled, otherwise rounding to the configured
// step. The adjusted value is a presentation suggestion and never
// feeds back into the quote algebra.
func AdjustCharge(amount, step float64, psych bool) float64 {
	if psych {
		return money.ApplyPsychPrice(amount, step)
	}
	return money.RoundToStep(amount, step)
}

// BuildQuote runs the shared fee algebra for a resolved provider
// rate. In forward mode the gross charge is the state's amount; in
// reverse mode it is solved from the target net. The returned result
// keeps full precision; callers round via Result.Rounded.
func BuildQuote(in QuoteInput, table Rate, feeLabel string) Result {
	st := in.State
	percent, fixed := ResolveRate(st, table)

	var gross float64
	if st.Mode == ModeReverse {
		gross = SolveGross(st.TargetNet, percent, fixed, st.FXPercent, st.PlatformFeePercent, st.PlatformFeeBase)
	} else {
		gross = st.Amount
	}

	denomOK := money.IsFinite(gross) && gross >= 0

	var providerFee, fxFee, platformFee float64
	var netBefore, vat, netAfter float64
	if denomOK {
		providerFee = gross*percent/100 + fixed
		fxFee = gross * st.FXPercent / 100
		if st.PlatformFeeBase == PlatformBaseAfterProvider {
			platformFee = (gross - providerFee) * st.PlatformFeePercent / 100
		} else {
			platformFee = gross * st.PlatformFeePercent / 100
		}

		netBefore = gross - providerFee - fxFee - platformFee
		if st.VATPercent > 0 {
			vat = gross * st.VATPercent / (100 + st.VATPercent)
		}
		netAfter = netBefore - vat
	}

	return Result{
		Symbol: in.Symbol,
		Gross:  gross,
		Fees: []FeeLine{
			{Key: FeeProvider, Label: feeLabel, Amount: providerFee},
			{Key: FeeFX, Label: "FX surcharge", Amount: fxFee},
			{Key: FeePlatform, Label: "Platform fee", Amount: platformFee},
		},
		NetBeforeVAT: netBefore,
		VATPercent:   st.VATPercent,
		VATAmount:    vat,
		NetAfterVAT:  netAfter,
		DenomOK:      denomOK,
		Meta: map[string]float64{
			MetaPercentUsed:     percent,
			MetaFixedUsed:       fixed,
			MetaSuggestedCharge: AdjustCharge(gross, st.RoundingStep, st.PsychPricing),
		},
	}
}

// Rounded returns a display copy of the result with every monetary
// field rounded to two decimals and every non-finite value replaced
// by zero. DenomOK still records whether the quote was solvable, so
// the invalid state survives sanitization.
func (r Result) Rounded() Result {
	out := r
	out.Gross = displayMoney(r.Gross)
	out.NetBeforeVAT = displayMoney(r.NetBeforeVAT)
	out.VATAmount = displayMoney(r.VATAmount)
	out.NetAfterVAT = displayMoney(r.NetAfterVAT)

	out.Fees = make([]FeeLine, len(r.Fees))
	for i, f := range r.Fees {
		f.Amount = displayMoney(f.Amount)
		out.Fees[i] = f
	}

	out.Meta = make(map[string]float64, len(r.Meta))
	for k, v := range r.Meta {
		switch k {
		case MetaPercentUsed, MetaFixedUsed:
			if !money.IsFinite(v) {
				v = 0
			}
		default:
			v = displayMoney(v)
		}
		out.Meta[k] = v
	}
	return out
}

// displayMoney rounds for display, collapsing non-finite values to 0.
func displayMoney(v float64) float64 {
	if !money.IsFinite(v) {
		return 0
	}
	return money.Round(v)
}
