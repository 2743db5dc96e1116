// Package money provides rounding and formatting helpers for
// currency amounts. The calculator works in full float64 precision
// and rounds only at presentation boundaries, so every helper here
// passes non-finite values through unchanged.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// epsilon nudges boundary values so halves round up, matching the
// rounding the browser UI applies.
const epsilon = 1e-9

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Round rounds n to two decimal places, halves up.
func Round(n float64) float64 {
	if !IsFinite(n) {
		return n
	}
	return math.Round((n+epsilon)*100) / 100
}

// RoundToStep rounds v to the nearest multiple of step (0.01, 0.05 or
// 0.10), then to two decimal places. Non-positive steps pass v
// through unchanged.
func RoundToStep(v, step float64) float64 {
	if !IsFinite(v) || step <= 0 {
		return v
	}
	return Round(math.Round(v/step+epsilon) * step)
}

// PsychEnding returns the charm ending for a rounding step: .99 for
// penny steps, .95 for 5p steps, .90 for 10p steps.
func PsychEnding(step float64) float64 {
	switch step {
	case 0.05:
		return 0.95
	case 0.10:
		return 0.90
	default:
		return 0.99
	}
}

// ApplyPsychPrice floors v to a whole unit and applies the charm
// ending for step, so 19.70 at a penny step becomes 19.99. Values at
// or below zero pass through unchanged.
func ApplyPsychPrice(v, step float64) float64 {
	if !IsFinite(v) || v <= 0 {
		return v
	}
	return Round(math.Floor(v) + PsychEnding(step))
}

// Format renders an amount with a currency symbol at two decimal
// places, e.g. "£10.50". Non-finite amounts render as a dash.
func Format(symbol string, amount float64) string {
	if !IsFinite(amount) {
		return "—"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + decimal.NewFromFloat(Round(amount)).StringFixed(2)
}

// FormatPercent renders a percentage with trailing zeros trimmed,
// e.g. "1.5%".
func FormatPercent(p float64) string {
	if !IsFinite(p) {
		return "—"
	}
	return decimal.NewFromFloat(p).String() + "%"
}
