// Package scenario loads calculator configurations from HCL files.
// A scenario file holds named scenario blocks whose attributes overlay
// the session defaults, so a file only states what differs from them.
package scenario

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"feecalc/core/calc"
	"feecalc/internal/errors"
)

// File is a parsed scenario file.
type File struct {
	Scenarios []Scenario `hcl:"scenario,block"`
}

// Scenario is one named calculator configuration. Every attribute is
// optional; absent attributes keep the base state's value.
type Scenario struct {
	Name string `hcl:"name,label"`

	Provider *string `hcl:"provider,optional"`
	Product  *string `hcl:"product,optional"`
	Region   *string `hcl:"region,optional"`
	Mode     *string `hcl:"mode,optional"`

	Amount    *float64 `hcl:"amount,optional"`
	TargetNet *float64 `hcl:"target_net,optional"`

	FXPercent       *float64 `hcl:"fx_percent,optional"`
	PlatformPercent *float64 `hcl:"platform_percent,optional"`
	PlatformBase    *string  `hcl:"platform_base,optional"`
	VATPercent      *float64 `hcl:"vat_percent,optional"`

	RoundingStep *float64 `hcl:"rounding_step,optional"`
	PsychPricing *bool    `hcl:"psych_pricing,optional"`

	CustomPercent *float64 `hcl:"custom_percent,optional"`
	CustomFixed   *float64 `hcl:"custom_fixed,optional"`
	CustomLabel   *string  `hcl:"custom_label,optional"`

	// BreakEvenTarget enables the break-even analysis when present.
	BreakEvenTarget *float64 `hcl:"break_even_target,optional"`

	Sensitivity *SensitivityBlock `hcl:"sensitivity,block"`
	Volume      *VolumeBlock      `hcl:"volume,block"`
}

// SensitivityBlock enables the sensitivity analysis.
type SensitivityBlock struct {
	DeltaPercent *float64 `hcl:"delta_percent,optional"`
	Target       *string  `hcl:"target,optional"`
}

// VolumeBlock enables the monthly volume projection.
type VolumeBlock struct {
	TxPerMonth    float64     `hcl:"tx_per_month"`
	RefundPercent *float64    `hcl:"refund_percent,optional"`
	Tiers         []TierBlock `hcl:"tier,block"`
}

// TierBlock is one price tier of a volume projection.
type TierBlock struct {
	SharePercent float64  `hcl:"share_percent"`
	Price        float64  `hcl:"price"`
	FXPercent    *float64 `hcl:"fx_percent,optional"`
}

// Loader parses scenario files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a scenario file loader.
func NewLoader() *Loader {
	return &Loader{
		parser: hclparse.NewParser(),
	}
}

// LoadFile parses a scenario file from disk.
func (l *Loader) LoadFile(path string) (*File, error) {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Scenario("parsing scenario file", diags)
	}
	return l.decode(hclFile)
}

// Parse parses scenario source. The filename names the source in
// diagnostics only.
func (l *Loader) Parse(src []byte, filename string) (*File, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Scenario("parsing scenario source", diags)
	}
	return l.decode(hclFile)
}

func (l *Loader) decode(hclFile *hcl.File) (*File, error) {
	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, errors.Scenario("decoding scenario blocks", diags)
	}

	seen := make(map[string]bool, len(file.Scenarios))
	for _, sc := range file.Scenarios {
		if seen[sc.Name] {
			return nil, errors.Newf(errors.TypeScenario, "duplicate scenario %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	return &file, nil
}

// Find returns a scenario by name.
func (f *File) Find(name string) (Scenario, bool) {
	for _, sc := range f.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Names lists scenario names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Scenarios))
	for i, sc := range f.Scenarios {
		names[i] = sc.Name
	}
	return names
}

// ToState overlays the scenario onto a base state. The result is raw:
// callers normalize it through the engine like any other input.
func (s *Scenario) ToState(base calc.State) calc.State {
	st := base

	if s.Provider != nil {
		st.ProviderID = *s.Provider
	}
	if s.Product != nil {
		st.ProductID = *s.Product
	}
	// Region and mode are case-folded so "eu" and "EU" both resolve;
	// the normalizer would otherwise snap an unknown casing to UK.
	if s.Region != nil {
		st.Region = calc.Region(strings.ToUpper(*s.Region))
	}
	if s.Mode != nil {
		st.Mode = calc.Mode(strings.ToLower(*s.Mode))
	}

	if s.Amount != nil {
		st.Amount = *s.Amount
	}
	if s.TargetNet != nil {
		st.TargetNet = *s.TargetNet
	}

	if s.FXPercent != nil {
		st.FXPercent = *s.FXPercent
	}
	if s.PlatformPercent != nil {
		st.PlatformFeePercent = *s.PlatformPercent
	}
	if s.PlatformBase != nil {
		st.PlatformFeeBase = calc.PlatformBase(*s.PlatformBase)
	}
	if s.VATPercent != nil {
		st.VATPercent = *s.VATPercent
	}

	if s.RoundingStep != nil {
		st.RoundingStep = *s.RoundingStep
	}
	if s.PsychPricing != nil {
		st.PsychPricing = *s.PsychPricing
	}

	if s.CustomPercent != nil {
		v := *s.CustomPercent
		st.CustomProviderFeePercent = &v
	}
	if s.CustomFixed != nil {
		v := *s.CustomFixed
		st.CustomFixedFee = &v
	}
	if s.CustomLabel != nil {
		st.CustomProviderLabel = *s.CustomLabel
	}

	if s.BreakEvenTarget != nil {
		st.BreakEvenOn = true
		st.BreakEvenTargetNet = *s.BreakEvenTarget
	}

	if s.Sensitivity != nil {
		st.SensitivityOn = true
		if s.Sensitivity.DeltaPercent != nil {
			st.SensitivityDeltaPct = *s.Sensitivity.DeltaPercent
		}
		if s.Sensitivity.Target != nil {
			st.SensitivityTarget = calc.SensitivityTarget(*s.Sensitivity.Target)
		}
	}

	if s.Volume != nil {
		st.VolumeOn = true
		st.VolumeTxPerMonth = s.Volume.TxPerMonth
		if s.Volume.RefundPercent != nil {
			st.VolumeRefundRatePct = *s.Volume.RefundPercent
		}
		if len(s.Volume.Tiers) > 0 {
			tiers := make([]calc.VolumeTier, len(s.Volume.Tiers))
			for i, tier := range s.Volume.Tiers {
				fx := st.FXPercent
				if tier.FXPercent != nil {
					fx = *tier.FXPercent
				}
				tiers[i] = calc.VolumeTier{
					SharePct:  tier.SharePercent,
					Price:     tier.Price,
					FXPercent: fx,
				}
			}
			st.VolumeTiers = tiers
		}
	}

	return st
}
