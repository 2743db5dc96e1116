// Package calc implements the fee calculation engine: the calculator
// state model, the normalizer that keeps it canonical, the shared
// quote algebra and the provider fee model registry. All arithmetic
// runs in full float64 precision; an unsolvable reverse quote is
// represented as data (NaN gross, DenomOK false), never as an error.
package calc

// Region identifies a pricing region.
type Region string

const (
	RegionUK Region = "UK"
	RegionEU Region = "EU"
	RegionUS Region = "US"
)

// Regions lists supported regions in display order.
var Regions = []Region{RegionUK, RegionEU, RegionUS}

// Mode selects the calculation direction.
type Mode string

const (
	// ModeForward computes fees and net from a charge amount.
	ModeForward Mode = "forward"

	// ModeReverse solves the charge amount that yields a target net.
	ModeReverse Mode = "reverse"
)

// PlatformBase selects the base the platform fee percentage applies to.
type PlatformBase string

const (
	// PlatformBaseGross applies the platform percentage to the gross charge.
	PlatformBaseGross PlatformBase = "gross"

	// PlatformBaseAfterProvider applies it to gross minus the provider fee.
	PlatformBaseAfterProvider PlatformBase = "afterProvider"
)

// SensitivityTarget selects which fee inputs a sensitivity run perturbs.
type SensitivityTarget string

const (
	SensitivityAll      SensitivityTarget = "all"
	SensitivityProvider SensitivityTarget = "provider"
	SensitivityFX       SensitivityTarget = "fx"
	SensitivityPlatform SensitivityTarget = "platform"
)

// RoundingSteps lists the supported charge rounding steps.
var RoundingSteps = []float64{0.01, 0.05, 0.10}

// DefaultRoundingStep is used when a state carries an unsupported step.
const DefaultRoundingStep = 0.01

// ProviderCustom is the well-known id of the user-defined provider.
// It is the only provider that carries a free-text label.
const ProviderCustom = "custom"

// VolumeTier is one price point in a monthly volume projection.
type VolumeTier struct {
	// SharePct is this tier's share of monthly transactions, 0-100.
	SharePct float64 `json:"sharePct"`

	// Price is the per-transaction charge for this tier.
	Price float64 `json:"price"`

	// FXPercent is the FX surcharge applied to this tier's price.
	FXPercent float64 `json:"fxPercent"`
}

// State is the complete calculator configuration. It is plain data:
// every analysis and quote derives from one State value, and the
// normalizer can always coerce an arbitrary State into canonical
// form without errors.
type State struct {
	ProviderID string `json:"providerId"`
	ProductID  string `json:"productId"`
	Region     Region `json:"region"`
	Mode       Mode   `json:"mode"`

	// Amount is the gross charge in forward mode.
	Amount float64 `json:"amount"`

	// TargetNet is the desired net in reverse mode.
	TargetNet float64 `json:"targetNet"`

	FXPercent          float64      `json:"fxPercent"`
	PlatformFeePercent float64      `json:"platformFeePercent"`
	PlatformFeeBase    PlatformBase `json:"platformFeeBase"`
	VATPercent         float64      `json:"vatPercent"`

	RoundingStep float64 `json:"roundingStep"`
	PsychPricing bool    `json:"psychPricing"`

	// CustomProviderFeePercent and CustomFixedFee override the
	// provider's table rate when non-nil. The fixed override may be
	// negative to model per-transaction rebates.
	CustomProviderFeePercent *float64 `json:"customProviderFeePercent"`
	CustomFixedFee           *float64 `json:"customFixedFee"`

	// CustomProviderLabel names the user-defined provider. Forced
	// empty for every other provider.
	CustomProviderLabel string `json:"customProviderLabel"`

	BreakEvenOn        bool    `json:"breakEvenOn"`
	BreakEvenTargetNet float64 `json:"breakEvenTargetNet"`

	SensitivityOn       bool              `json:"sensitivityOn"`
	SensitivityDeltaPct float64           `json:"sensitivityDeltaPct"`
	SensitivityTarget   SensitivityTarget `json:"sensitivityTarget"`

	VolumeOn            bool         `json:"volumeOn"`
	VolumeTxPerMonth    float64      `json:"volumeTxPerMonth"`
	VolumeRefundRatePct float64      `json:"volumeRefundRatePct"`
	VolumeTiers         []VolumeTier `json:"volumeTiers"`
}

// DefaultState returns the state a fresh calculator session starts
// from. Provider and product are left empty and resolve to the
// registry's first entries during normalization.
func DefaultState() State {
	return State{
		Region:              RegionUK,
		Mode:                ModeForward,
		Amount:              10,
		PlatformFeeBase:     PlatformBaseGross,
		RoundingStep:        DefaultRoundingStep,
		SensitivityDeltaPct: 10,
		SensitivityTarget:   SensitivityAll,
		VolumeTxPerMonth:    100,
	}
}

// Rate is a provider fee rate: a percentage of the charge plus a
// fixed per-transaction amount in the region's currency.
type Rate struct {
	Percent float64 `json:"percent"`
	Fixed   float64 `json:"fixed"`
}

// Product is one fee tier or payment product offered by a provider.
type Product struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Fee line keys shared by every provider model.
const (
	FeeProvider = "provider"
	FeeFX       = "fx"
	FeePlatform = "platform"
)

// Result meta keys.
const (
	MetaPercentUsed     = "percentUsed"
	MetaFixedUsed       = "fixedUsed"
	MetaSuggestedCharge = "suggestedCharge"
)

// FeeLine is one deducted fee in a quote breakdown.
type FeeLine struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// QuoteInput carries a normalized state plus resolved region data
// into a provider fee model.
type QuoteInput struct {
	State  State
	Symbol string
}

// Result is a full-precision quote. Gross is NaN and DenomOK false
// when a reverse solve has no solution; fee and net fields are zero
// in that case.
type Result struct {
	Symbol       string             `json:"symbol"`
	Gross        float64            `json:"gross"`
	Fees         []FeeLine          `json:"fees"`
	NetBeforeVAT float64            `json:"netBeforeVat"`
	VATPercent   float64            `json:"vatPercent"`
	VATAmount    float64            `json:"vatAmount"`
	NetAfterVAT  float64            `json:"netAfterVat"`
	DenomOK      bool               `json:"denomOk"`
	Meta         map[string]float64 `json:"meta"`
}

// Fee returns the amount of the fee line with the given key.
func (r Result) Fee(key string) float64 {
	for _, f := range r.Fees {
		if f.Key == key {
			return f.Amount
		}
	}
	return 0
}

// FeeModel computes quotes for one payment provider.
type FeeModel interface {
	// ID returns the stable provider identifier.
	ID() string

	// Label returns the display name.
	Label() string

	// Products returns the provider's products for a region, first
	// entry being the default.
	Products(region Region) []Product

	// DefaultRate returns the table rate for a product in a region.
	DefaultRate(region Region, productID string) (Rate, bool)

	// Quote computes a full-precision quote for a normalized state.
	Quote(in QuoteInput) Result
}
