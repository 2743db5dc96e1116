// Package analysis implements the derived analyses layered on the
// quote engine: break-even solving, fee sensitivity and monthly
// volume projection. Each analysis returns nil when its toggle is
// off or its inputs make the question meaningless, so callers can
// embed results directly as optional payload blocks.
package analysis

import (
	"feecalc/core/calc"
	"feecalc/core/money"
)

// BreakEven reports the charge required to take home a target net
// before VAT.
type BreakEven struct {
	TargetNet      float64 `json:"targetNet"`
	RequiredCharge float64 `json:"requiredCharge"`
	DenomOK        bool    `json:"denomOk"`
}

// ComputeBreakEven solves the gross charge whose net before VAT
// equals the break-even target, reusing the reverse-mode solver.
// Returns nil when the analysis is off or the target is negative or
// non-finite.
func ComputeBreakEven(engine *calc.Engine, st calc.State) *BreakEven {
	if !st.BreakEvenOn || !money.IsFinite(st.BreakEvenTargetNet) || st.BreakEvenTargetNet < 0 {
		return nil
	}

	rev := engine.Normalize(st)
	rev.Mode = calc.ModeReverse
	rev.TargetNet = rev.BreakEvenTargetNet

	res := engine.Quote(rev)
	return &BreakEven{
		TargetNet:      rev.BreakEvenTargetNet,
		RequiredCharge: res.Gross,
		DenomOK:        res.DenomOK,
	}
}

// Rounded returns a display copy with sanitized money fields.
func (b *BreakEven) Rounded() *BreakEven {
	if b == nil {
		return nil
	}
	out := *b
	out.TargetNet = money.Round(b.TargetNet)
	out.RequiredCharge = displayMoney(b.RequiredCharge)
	return &out
}
