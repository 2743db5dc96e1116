package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feecalc/core/calc"
	"feecalc/providers"
)

func floatPtr(v float64) *float64 {
	return &v
}

// TestShareLinkRoundTrip tests that canonical states survive an
// encode/decode cycle bit for bit
func TestShareLinkRoundTrip(t *testing.T) {
	engine := providers.NewEngine()
	codec := NewCodec(engine)

	custom := calc.DefaultState()
	custom.ProviderID = calc.ProviderCustom
	custom.CustomProviderFeePercent = floatPtr(0.9)
	custom.CustomFixedFee = floatPtr(-0.05)
	custom.CustomProviderLabel = "Acme PSP"
	custom.Mode = calc.ModeReverse
	custom.TargetNet = 50

	loaded := calc.DefaultState()
	loaded.ProviderID = "paypal"
	loaded.ProductID = "advanced-cards"
	loaded.Region = calc.RegionUS
	loaded.Amount = 29.99
	loaded.FXPercent = 1.5
	loaded.PlatformFeePercent = 10
	loaded.PlatformFeeBase = calc.PlatformBaseAfterProvider
	loaded.VATPercent = 20
	loaded.RoundingStep = 0.05
	loaded.PsychPricing = true
	loaded.BreakEvenOn = true
	loaded.BreakEvenTargetNet = 500
	loaded.SensitivityOn = true
	loaded.SensitivityDeltaPct = 25
	loaded.SensitivityTarget = calc.SensitivityProvider
	loaded.VolumeOn = true
	loaded.VolumeTxPerMonth = 350
	loaded.VolumeRefundRatePct = 2
	loaded.VolumeTiers = []calc.VolumeTier{
		{SharePct: 60, Price: 9.99},
		{SharePct: 40, Price: 29.99, FXPercent: 1.5},
	}

	tests := []struct {
		name string
		in   calc.State
	}{
		{name: "default state", in: calc.DefaultState()},
		{name: "custom provider with overrides", in: custom},
		{name: "everything dialed in", in: loaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical := engine.Normalize(tt.in)
			decoded := codec.Decode(codec.Encode(tt.in))
			require.Equal(t, canonical, decoded)
		})
	}
}

// TestEncodeOmitsDefaults tests default state encodes to an empty
// query string
func TestEncodeOmitsDefaults(t *testing.T) {
	codec := NewCodec(providers.NewEngine())

	values := codec.Encode(calc.DefaultState())
	assert.Empty(t, values, "default state should encode to no parameters")
}

// TestEncodeOnlyDiffs tests a single change yields a single parameter
func TestEncodeOnlyDiffs(t *testing.T) {
	codec := NewCodec(providers.NewEngine())

	st := calc.DefaultState()
	st.Amount = 25

	values := codec.Encode(st)
	assert.Len(t, values, 1)
	assert.Equal(t, "25", values.Get("amount"))
}

// TestDecodeEmptyYieldsDefaults tests an empty query decodes to the
// canonical default state
func TestDecodeEmptyYieldsDefaults(t *testing.T) {
	engine := providers.NewEngine()
	codec := NewCodec(engine)

	decoded := codec.Decode(url.Values{})
	assert.Equal(t, engine.DefaultState(), decoded)
}

// TestDecodeMangledLink tests malformed parameters degrade to
// defaults instead of failing
func TestDecodeMangledLink(t *testing.T) {
	engine := providers.NewEngine()
	codec := NewCodec(engine)

	values := url.Values{}
	values.Set("amount", "not-a-number")
	values.Set("region", "MARS")
	values.Set("provider", "vanished")
	values.Set("fx", "250")
	values.Set("tiers", "junk|60:9.99|40:29.99:1.5")

	decoded := codec.Decode(values)

	assert.Equal(t, 10.0, decoded.Amount, "unparseable amount keeps the default")
	assert.Equal(t, calc.RegionUK, decoded.Region)
	assert.Equal(t, "stripe", decoded.ProviderID)
	assert.Equal(t, 100.0, decoded.FXPercent, "out-of-range fx clamps")
	require.Len(t, decoded.VolumeTiers, 1, "only the well-formed tier segment survives")
	assert.Equal(t, calc.VolumeTier{SharePct: 40, Price: 29.99, FXPercent: 1.5}, decoded.VolumeTiers[0])
}

// TestDecodeLegacyPlatformBase tests the old platform base spelling
// still decodes
func TestDecodeLegacyPlatformBase(t *testing.T) {
	codec := NewCodec(providers.NewEngine())

	decoded := codec.DecodeString("platbase=afterStripe")
	assert.Equal(t, calc.PlatformBaseAfterProvider, decoded.PlatformFeeBase)
}

// TestDecodeStringStripsQuestionMark tests full query strings decode
func TestDecodeStringStripsQuestionMark(t *testing.T) {
	codec := NewCodec(providers.NewEngine())

	decoded := codec.DecodeString("?amount=42&vat=20")
	assert.Equal(t, 42.0, decoded.Amount)
	assert.Equal(t, 20.0, decoded.VATPercent)
}
