package presets

import (
	"math"
	"reflect"
	"testing"

	"feecalc/core/calc"
	"feecalc/providers"
)

func TestPresetStatesAreCanonical(t *testing.T) {
	engine := providers.NewEngine()

	for _, p := range All() {
		norm := engine.Normalize(p.State)
		if !reflect.DeepEqual(norm, p.State) {
			t.Errorf("Preset %q state is not canonical:\nstate:      %+v\nnormalized: %+v", p.ID, p.State, norm)
		}
	}
}

func TestPresetQuotesSolvable(t *testing.T) {
	engine := providers.NewEngine()

	for _, p := range All() {
		res := engine.Quote(p.State)
		if !res.DenomOK {
			t.Errorf("Preset %q should produce a solvable quote", p.ID)
		}
	}
}

func TestPresetIDsUniqueAndOrdered(t *testing.T) {
	ids := IDs()
	if len(ids) == 0 {
		t.Fatal("Expected at least one preset")
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("Duplicate preset id %q", id)
		}
		seen[id] = true
	}

	if ids[0] != "uk-freelancer" {
		t.Errorf("Expected 'uk-freelancer' first, got %q", ids[0])
	}

	all := All()
	for i, p := range all {
		if p.ID != ids[i] {
			t.Errorf("IDs()[%d] = %q but All()[%d].ID = %q", i, ids[i], i, p.ID)
		}
		if p.Label == "" || p.Description == "" {
			t.Errorf("Preset %q is missing display text", p.ID)
		}
	}
}

func TestGet(t *testing.T) {
	p, ok := Get("eu-saas")
	if !ok {
		t.Fatal("Expected 'eu-saas' preset to exist")
	}
	if p.State.Region != calc.RegionEU {
		t.Errorf("Expected EU region, got %q", p.State.Region)
	}
	if p.State.Mode != calc.ModeReverse {
		t.Errorf("Expected reverse mode, got %q", p.State.Mode)
	}
	if len(p.State.VolumeTiers) != 2 {
		t.Errorf("Expected 2 volume tiers, got %d", len(p.State.VolumeTiers))
	}

	if _, ok := Get("nonexistent"); ok {
		t.Error("Expected ok=false for an unknown preset id")
	}
}

func TestGetReturnsFreshState(t *testing.T) {
	p1, _ := Get("psp-rebate")
	*p1.State.CustomProviderFeePercent = 50
	p1.State.Amount = 9999

	p2, _ := Get("psp-rebate")
	if *p2.State.CustomProviderFeePercent != 0.4 {
		t.Errorf("Expected catalog rate to stay 0.4, got %v", *p2.State.CustomProviderFeePercent)
	}
	if p2.State.Amount != 120 {
		t.Errorf("Expected catalog amount to stay 120, got %v", p2.State.Amount)
	}
}

func TestRebatePresetQuote(t *testing.T) {
	engine := providers.NewEngine()

	p, ok := Get("psp-rebate")
	if !ok {
		t.Fatal("Expected 'psp-rebate' preset to exist")
	}

	res := engine.Quote(p.State)
	// 0.4% of 120 minus the 0.05 rebate.
	if math.Abs(res.Fee(calc.FeeProvider)-0.43) > 1e-9 {
		t.Errorf("Expected provider fee 0.43, got %v", res.Fee(calc.FeeProvider))
	}
	if math.Abs(res.NetBeforeVAT-119.57) > 1e-9 {
		t.Errorf("Expected net 119.57, got %v", res.NetBeforeVAT)
	}
	if res.Fees[0].Label != "Negotiated PSP fee" {
		t.Errorf("Expected fee label 'Negotiated PSP fee', got %q", res.Fees[0].Label)
	}
}
