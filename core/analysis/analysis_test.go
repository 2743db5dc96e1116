package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"feecalc/core/calc"
	"feecalc/providers"
)

func floatPtr(v float64) *float64 {
	return &v
}

func approx(t *testing.T, name string, got, expected float64) {
	t.Helper()
	if math.Abs(got-expected) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", name, expected, got)
	}
}

// TestBreakEvenRequiredCharge tests the break-even solve reuses the
// reverse algebra and round-trips through the forward quote
func TestBreakEvenRequiredCharge(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Region = calc.RegionUK
	st.BreakEvenOn = true
	st.BreakEvenTargetNet = 100

	be := ComputeBreakEven(engine, st)
	if be == nil {
		t.Fatal("expected a break-even result")
	}
	if !be.DenomOK {
		t.Fatal("expected solvable break-even")
	}

	// (100 + 0.20) / (1 - 0.015)
	approx(t, "requiredCharge", be.RequiredCharge, 100.2/0.985)

	fwd := st
	fwd.Mode = calc.ModeForward
	fwd.Amount = be.RequiredCharge
	res := engine.Quote(fwd)
	if math.Abs(res.NetBeforeVAT-100) > 1e-6 {
		t.Errorf("expected forward net 100 at the break-even charge, got %v", res.NetBeforeVAT)
	}
}

// TestBreakEvenDisabled tests the nil gates
func TestBreakEvenDisabled(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.BreakEvenTargetNet = 100
	if got := ComputeBreakEven(engine, st); got != nil {
		t.Errorf("expected nil with toggle off, got %+v", got)
	}

	st.BreakEvenOn = true
	st.BreakEvenTargetNet = -1
	if got := ComputeBreakEven(engine, st); got != nil {
		t.Errorf("expected nil with negative target, got %+v", got)
	}

	st.BreakEvenTargetNet = math.NaN()
	if got := ComputeBreakEven(engine, st); got != nil {
		t.Errorf("expected nil with NaN target, got %+v", got)
	}
}

// TestBreakEvenUnsolvable tests an unsolvable target keeps the
// invalid flag
func TestBreakEvenUnsolvable(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = calc.ProviderCustom
	st.CustomProviderFeePercent = floatPtr(100)
	st.BreakEvenOn = true
	st.BreakEvenTargetNet = 50

	be := ComputeBreakEven(engine, st)
	if be == nil {
		t.Fatal("expected a break-even result")
	}
	if be.DenomOK {
		t.Error("expected unsolvable break-even at 100% fees")
	}
	if !math.IsNaN(be.RequiredCharge) {
		t.Errorf("expected NaN required charge, got %v", be.RequiredCharge)
	}
	if be.Rounded().RequiredCharge != 0 {
		t.Errorf("expected sanitized display charge 0, got %v", be.Rounded().RequiredCharge)
	}
}

// TestSensitivityZeroFXTargetIsNoop tests that targeting a zero FX
// rate moves nothing
func TestSensitivityZeroFXTargetIsNoop(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Amount = 100
	st.FXPercent = 0
	st.PlatformFeePercent = 5
	st.VATPercent = 20
	st.SensitivityOn = true
	st.SensitivityDeltaPct = 10
	st.SensitivityTarget = calc.SensitivityFX

	s := ComputeSensitivity(engine, st)
	if s == nil {
		t.Fatal("expected a sensitivity result")
	}
	if s.NetUp != s.BaseNet || s.NetDown != s.BaseNet {
		t.Errorf("expected both nets to equal base %v, got up %v down %v", s.BaseNet, s.NetUp, s.NetDown)
	}
}

// TestSensitivityProviderTarget tests a provider-only perturbation
// holds the other fees at base
func TestSensitivityProviderTarget(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Amount = 100
	st.SensitivityOn = true
	st.SensitivityDeltaPct = 10
	st.SensitivityTarget = calc.SensitivityProvider

	s := ComputeSensitivity(engine, st)
	if s == nil {
		t.Fatal("expected a sensitivity result")
	}

	// Base: 100 − (1.5% + 0.20) = 98.30. ±10% moves the percentage
	// part by 0.15.
	approx(t, "baseNet", s.BaseNet, 98.30)
	approx(t, "netUp", s.NetUp, 98.15)
	approx(t, "netDown", s.NetDown, 98.45)
}

// TestSensitivityAllRecomputesPlatform tests the all target feeds the
// perturbed provider fee into an after-provider platform fee
func TestSensitivityAllRecomputesPlatform(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Amount = 100
	st.PlatformFeePercent = 10
	st.PlatformFeeBase = calc.PlatformBaseAfterProvider
	st.SensitivityOn = true
	st.SensitivityDeltaPct = 10
	st.SensitivityTarget = calc.SensitivityAll

	s := ComputeSensitivity(engine, st)
	if s == nil {
		t.Fatal("expected a sensitivity result")
	}

	// Base: provider 1.70, platform (100−1.70)·10% = 9.83.
	approx(t, "baseNet", s.BaseNet, 100-1.70-9.83)
	// Up: provider 1.85, platform (100−1.85)·11% = 10.7965.
	approx(t, "netUp", s.NetUp, 100-1.85-10.7965)
}

// TestSensitivityDisabled tests the nil gates
func TestSensitivityDisabled(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	if got := ComputeSensitivity(engine, st); got != nil {
		t.Errorf("expected nil with toggle off, got %+v", got)
	}

	st.ProviderID = calc.ProviderCustom
	st.CustomProviderFeePercent = floatPtr(100)
	st.Mode = calc.ModeReverse
	st.TargetNet = 50
	st.SensitivityOn = true
	if got := ComputeSensitivity(engine, st); got != nil {
		t.Errorf("expected nil on unsolvable base quote, got %+v", got)
	}
}

// TestVolumeProjectionFixedRate tests the monthly roll-up at an
// explicit per-transaction rate
func TestVolumeProjectionFixedRate(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = calc.ProviderCustom
	st.Amount = 10
	st.CustomProviderFeePercent = floatPtr(1.5)
	st.CustomFixedFee = floatPtr(1.20)
	st.VolumeOn = true
	st.VolumeTxPerMonth = 100

	perTx := engine.Quote(st)
	proj := ComputeVolume(engine, st, perTx, nil)
	if proj == nil {
		t.Fatal("expected a volume projection")
	}

	approx(t, "grossMonthly", proj.GrossMonthly, 1000)
	approx(t, "providerFeesMonthly", proj.ProviderFeesMonthly, 135)
	approx(t, "netMonthly", proj.NetMonthly, 865)

	// Same shape with a 0.20 fixed fee.
	st.CustomFixedFee = floatPtr(0.20)
	perTx = engine.Quote(st)
	proj = ComputeVolume(engine, st, perTx, nil)
	if proj == nil {
		t.Fatal("expected a volume projection")
	}
	approx(t, "providerFeesMonthly", proj.ProviderFeesMonthly, 35)
	approx(t, "netMonthly", proj.NetMonthly, 965)
}

// TestVolumeBackSolvedRate tests rate inference from the
// single-transaction quote when no explicit rate exists
func TestVolumeBackSolvedRate(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Region = calc.RegionUK
	st.Amount = 10
	st.VolumeOn = true
	st.VolumeTxPerMonth = 100
	st.VolumeTiers = []calc.VolumeTier{
		{SharePct: 60, Price: 10},
		{SharePct: 40, Price: 20},
	}

	perTx := engine.Quote(st)
	proj := ComputeVolume(engine, st, perTx, nil)
	if proj == nil {
		t.Fatal("expected a volume projection")
	}

	// Provider fee 0.35 on a £10 charge folds to an effective 3.5%.
	approx(t, "percentUsed", proj.PercentUsed, 3.5)
	approx(t, "fixedUsed", proj.FixedUsed, 0)

	// Tier 1: 60 tx × 10 × 3.5%; tier 2: 40 tx × 20 × 3.5%.
	approx(t, "tier1 providerFee", proj.Tiers[0].ProviderFee, 21)
	approx(t, "tier2 providerFee", proj.Tiers[1].ProviderFee, 28)
	approx(t, "providerFeesMonthly", proj.ProviderFeesMonthly, 49)
	approx(t, "grossMonthly", proj.GrossMonthly, 60*10+40*20.0)
}

// TestVolumeRefundsAndVAT tests the combined net subtracts refund
// losses and VAT from the fee net
func TestVolumeRefundsAndVAT(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = calc.ProviderCustom
	st.Amount = 121
	st.CustomProviderFeePercent = floatPtr(0)
	st.VATPercent = 21
	st.VolumeOn = true
	st.VolumeTxPerMonth = 100
	st.VolumeRefundRatePct = 5

	perTx := engine.Quote(st)
	proj := ComputeVolume(engine, st, perTx, nil)
	if proj == nil {
		t.Fatal("expected a volume projection")
	}

	approx(t, "grossMonthly", proj.GrossMonthly, 12100)
	approx(t, "netMonthly", proj.NetMonthly, 12100)
	approx(t, "refundLossMonthly", proj.RefundLossMonthly, 605)
	approx(t, "vatMonthly", proj.VATMonthly, 2100)
	approx(t, "netAfterVatMonthly", proj.NetAfterVATMonthly, 10000)
	approx(t, "netCombinedMonthly", proj.NetCombinedMonthly, 12100-605-2100)
}

// TestVolumeRateOverride tests an explicit override wins over both
// the state rate and inference
func TestVolumeRateOverride(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.Amount = 10
	st.VolumeOn = true
	st.VolumeTxPerMonth = 10

	perTx := engine.Quote(st)
	proj := ComputeVolume(engine, st, perTx, &RateOverride{Percent: floatPtr(2.0), Fixed: floatPtr(0.10)})
	if proj == nil {
		t.Fatal("expected a volume projection")
	}

	approx(t, "percentUsed", proj.PercentUsed, 2.0)
	approx(t, "fixedUsed", proj.FixedUsed, 0.10)
	// 10 tx × (10 × 2% + 0.10)
	approx(t, "providerFeesMonthly", proj.ProviderFeesMonthly, 3)
}

// TestVolumeOverrideSanitized tests junk override values fall back
// instead of reaching the projection
func TestVolumeOverrideSanitized(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.ProductID = "standard"
	st.Region = calc.RegionUK
	st.Amount = 10
	st.VolumeOn = true
	st.VolumeTxPerMonth = 100

	perTx := engine.Quote(st)
	proj := ComputeVolume(engine, st, perTx, &RateOverride{
		Percent: floatPtr(math.NaN()),
		Fixed:   floatPtr(math.Inf(1)),
	})
	if proj == nil {
		t.Fatal("expected a volume projection")
	}

	// With the override dropped the rate is inferred as usual.
	approx(t, "percentUsed", proj.PercentUsed, 3.5)
	approx(t, "fixedUsed", proj.FixedUsed, 0)
	approx(t, "providerFeesMonthly", proj.ProviderFeesMonthly, 35)

	proj = ComputeVolume(engine, st, perTx, &RateOverride{Percent: floatPtr(150)})
	if proj == nil {
		t.Fatal("expected a volume projection")
	}
	approx(t, "percentUsed", proj.PercentUsed, 100)
}

// TestVolumeRoundedSanitizesNonFinite tests the display copy never
// carries a non-finite figure into encoding
func TestVolumeRoundedSanitizesNonFinite(t *testing.T) {
	proj := &VolumeProjection{
		PercentUsed:         math.Inf(1),
		FixedUsed:           math.NaN(),
		GrossMonthly:        1000,
		ProviderFeesMonthly: math.NaN(),
		Tiers:               []TierProjection{{Gross: 1000, Net: math.NaN()}},
	}

	got := proj.Rounded()
	if got.PercentUsed != 0 || got.FixedUsed != 0 {
		t.Errorf("expected rate figures zeroed, got %v and %v", got.PercentUsed, got.FixedUsed)
	}
	if got.ProviderFeesMonthly != 0 {
		t.Errorf("expected NaN provider fees zeroed, got %v", got.ProviderFeesMonthly)
	}
	if got.Tiers[0].Net != 0 {
		t.Errorf("expected NaN tier net zeroed, got %v", got.Tiers[0].Net)
	}
	approx(t, "grossMonthly", got.GrossMonthly, 1000)

	if _, err := json.Marshal(got); err != nil {
		t.Errorf("expected display copy to encode, got %v", err)
	}
}

// TestVolumeDisabled tests the nil gates
func TestVolumeDisabled(t *testing.T) {
	engine := providers.NewEngine()

	st := calc.DefaultState()
	st.VolumeTxPerMonth = 100
	perTx := engine.Quote(st)
	if got := ComputeVolume(engine, st, perTx, nil); got != nil {
		t.Errorf("expected nil with toggle off, got %+v", got)
	}

	st.VolumeOn = true
	st.VolumeTxPerMonth = 0
	if got := ComputeVolume(engine, st, perTx, nil); got != nil {
		t.Errorf("expected nil with zero transactions, got %+v", got)
	}

	st.VolumeTxPerMonth = 100
	st.VolumeTiers = []calc.VolumeTier{{SharePct: 0, Price: 10}}
	if got := ComputeVolume(engine, st, perTx, nil); got != nil {
		t.Errorf("expected nil with no positive tier share, got %+v", got)
	}
}
