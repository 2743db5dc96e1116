package analysis

import (
	"feecalc/core/calc"
)

// Sensitivity reports the net outcome when fee rates move by a
// relative delta in either direction.
type Sensitivity struct {
	DeltaPct float64                `json:"deltaPct"`
	Target   calc.SensitivityTarget `json:"target"`
	BaseNet  float64                `json:"baseNet"`
	NetUp    float64                `json:"netUp"`
	NetDown  float64                `json:"netDown"`
}

// ComputeSensitivity perturbs the targeted fee percentages by ±delta
// around the current quote. The gross charge is held fixed and
// non-targeted fees stay at their base amounts: the question
// answered is "what if the rates moved under this charge", not a
// re-solve. Returns nil when the analysis is off or the base quote
// is unsolvable.
func ComputeSensitivity(engine *calc.Engine, st calc.State) *Sensitivity {
	if !st.SensitivityOn {
		return nil
	}

	norm := engine.Normalize(st)
	base := engine.Quote(norm)
	if !base.DenomOK {
		return nil
	}

	factor := norm.SensitivityDeltaPct / 100
	return &Sensitivity{
		DeltaPct: norm.SensitivityDeltaPct,
		Target:   norm.SensitivityTarget,
		BaseNet:  base.NetAfterVAT,
		NetUp:    perturbedNet(norm, base, 1+factor),
		NetDown:  perturbedNet(norm, base, 1-factor),
	}
}

// perturbedNet recomputes net after VAT with the targeted
// percentages scaled by factor. When the "all" target perturbs the
// provider fee and the platform fee is based on the after-provider
// amount, the platform fee is recomputed off the perturbed provider
// fee.
func perturbedNet(st calc.State, base calc.Result, factor float64) float64 {
	gross := base.Gross
	target := st.SensitivityTarget

	providerFee := base.Fee(calc.FeeProvider)
	if target == calc.SensitivityAll || target == calc.SensitivityProvider {
		percent := base.Meta[calc.MetaPercentUsed]
		fixed := base.Meta[calc.MetaFixedUsed]
		providerFee = gross*(percent*factor)/100 + fixed
	}

	fxFee := base.Fee(calc.FeeFX)
	if target == calc.SensitivityAll || target == calc.SensitivityFX {
		fxFee = gross * (st.FXPercent * factor) / 100
	}

	platformFee := base.Fee(calc.FeePlatform)
	if target == calc.SensitivityAll || target == calc.SensitivityPlatform {
		platformPct := st.PlatformFeePercent * factor
		if st.PlatformFeeBase == calc.PlatformBaseAfterProvider {
			platformFee = (gross - providerFee) * platformPct / 100
		} else {
			platformFee = gross * platformPct / 100
		}
	}

	return gross - providerFee - fxFee - platformFee - base.VATAmount
}

// Rounded returns a display copy with sanitized money fields.
func (s *Sensitivity) Rounded() *Sensitivity {
	if s == nil {
		return nil
	}
	out := *s
	out.BaseNet = displayMoney(s.BaseNet)
	out.NetUp = displayMoney(s.NetUp)
	out.NetDown = displayMoney(s.NetDown)
	return &out
}
