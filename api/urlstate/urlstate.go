// Package urlstate encodes calculator state into URL query
// parameters for share links and decodes it back. Encoding starts
// from the canonical default state and writes only what differs, so
// links stay short; decoding overlays present parameters onto the
// defaults and normalizes, so any link, however stale or mangled,
// yields a valid state.
package urlstate

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"feecalc/core/calc"
)

// Query parameter keys. Stable: they are the share link wire format.
const (
	keyProvider  = "provider"
	keyProduct   = "product"
	keyRegion    = "region"
	keyMode      = "mode"
	keyAmount    = "amount"
	keyTargetNet = "net"
	keyFX        = "fx"
	keyPlatform  = "plat"
	keyPlatBase  = "platbase"
	keyVAT       = "vat"
	keyStep      = "step"
	keyPsych     = "psych"
	keyCustomPct = "cpct"
	keyCustomFix = "cfix"
	keyLabel     = "clabel"
	keyBreakEven = "be"
	keyBENet     = "benet"
	keySens      = "sens"
	keySensDelta = "sensd"
	keySensTgt   = "senst"
	keyVolume    = "vol"
	keyVolumeTx  = "voltx"
	keyVolumeRef = "volref"
	keyTiers     = "tiers"
)

// Codec translates between calculator state and query parameters.
type Codec struct {
	engine *calc.Engine
}

// NewCodec creates a codec over an engine.
func NewCodec(engine *calc.Engine) *Codec {
	return &Codec{engine: engine}
}

// Encode normalizes the state and renders the parameters that differ
// from the canonical defaults.
func (c *Codec) Encode(st calc.State) url.Values {
	st = c.engine.Normalize(st)
	def := c.engine.DefaultState()

	values := url.Values{}
	setString := func(key, v, defV string) {
		if v != defV {
			values.Set(key, v)
		}
	}
	setFloat := func(key string, v, defV float64) {
		if v != defV {
			values.Set(key, formatFloat(v))
		}
	}
	setBool := func(key string, v, defV bool) {
		if v != defV {
			values.Set(key, "1")
		}
	}

	setString(keyProvider, st.ProviderID, def.ProviderID)
	setString(keyProduct, st.ProductID, def.ProductID)
	setString(keyRegion, string(st.Region), string(def.Region))
	setString(keyMode, string(st.Mode), string(def.Mode))
	setFloat(keyAmount, st.Amount, def.Amount)
	setFloat(keyTargetNet, st.TargetNet, def.TargetNet)
	setFloat(keyFX, st.FXPercent, def.FXPercent)
	setFloat(keyPlatform, st.PlatformFeePercent, def.PlatformFeePercent)
	setString(keyPlatBase, string(st.PlatformFeeBase), string(def.PlatformFeeBase))
	setFloat(keyVAT, st.VATPercent, def.VATPercent)
	setFloat(keyStep, st.RoundingStep, def.RoundingStep)
	setBool(keyPsych, st.PsychPricing, def.PsychPricing)

	if st.CustomProviderFeePercent != nil {
		values.Set(keyCustomPct, formatFloat(*st.CustomProviderFeePercent))
	}
	if st.CustomFixedFee != nil {
		values.Set(keyCustomFix, formatFloat(*st.CustomFixedFee))
	}
	setString(keyLabel, st.CustomProviderLabel, def.CustomProviderLabel)

	setBool(keyBreakEven, st.BreakEvenOn, def.BreakEvenOn)
	setFloat(keyBENet, st.BreakEvenTargetNet, def.BreakEvenTargetNet)

	setBool(keySens, st.SensitivityOn, def.SensitivityOn)
	setFloat(keySensDelta, st.SensitivityDeltaPct, def.SensitivityDeltaPct)
	setString(keySensTgt, string(st.SensitivityTarget), string(def.SensitivityTarget))

	setBool(keyVolume, st.VolumeOn, def.VolumeOn)
	setFloat(keyVolumeTx, st.VolumeTxPerMonth, def.VolumeTxPerMonth)
	setFloat(keyVolumeRef, st.VolumeRefundRatePct, def.VolumeRefundRatePct)
	if !reflect.DeepEqual(st.VolumeTiers, def.VolumeTiers) {
		values.Set(keyTiers, encodeTiers(st.VolumeTiers))
	}

	return values
}

// EncodeString renders the encoded parameters as a query string.
func (c *Codec) EncodeString(st calc.State) string {
	return c.Encode(st).Encode()
}

// Decode overlays present parameters onto the default state and
// normalizes the result. Malformed values are ignored; decoding
// never fails.
func (c *Codec) Decode(values url.Values) calc.State {
	st := c.engine.DefaultState()

	getString := func(key string, dst *string) {
		if values.Has(key) {
			*dst = values.Get(key)
		}
	}
	getFloat := func(key string, dst *float64) {
		if values.Has(key) {
			if v, err := strconv.ParseFloat(values.Get(key), 64); err == nil {
				*dst = v
			}
		}
	}
	getBool := func(key string, dst *bool) {
		if values.Has(key) {
			if v, err := strconv.ParseBool(values.Get(key)); err == nil {
				*dst = v
			}
		}
	}

	getString(keyProvider, &st.ProviderID)
	getString(keyProduct, &st.ProductID)
	if values.Has(keyRegion) {
		st.Region = calc.Region(values.Get(keyRegion))
	}
	if values.Has(keyMode) {
		st.Mode = calc.Mode(values.Get(keyMode))
	}
	getFloat(keyAmount, &st.Amount)
	getFloat(keyTargetNet, &st.TargetNet)
	getFloat(keyFX, &st.FXPercent)
	getFloat(keyPlatform, &st.PlatformFeePercent)
	if values.Has(keyPlatBase) {
		st.PlatformFeeBase = calc.PlatformBase(values.Get(keyPlatBase))
	}
	getFloat(keyVAT, &st.VATPercent)
	getFloat(keyStep, &st.RoundingStep)
	getBool(keyPsych, &st.PsychPricing)

	if values.Has(keyCustomPct) {
		if v, err := strconv.ParseFloat(values.Get(keyCustomPct), 64); err == nil {
			st.CustomProviderFeePercent = &v
		}
	}
	if values.Has(keyCustomFix) {
		if v, err := strconv.ParseFloat(values.Get(keyCustomFix), 64); err == nil {
			st.CustomFixedFee = &v
		}
	}
	getString(keyLabel, &st.CustomProviderLabel)

	getBool(keyBreakEven, &st.BreakEvenOn)
	getFloat(keyBENet, &st.BreakEvenTargetNet)

	getBool(keySens, &st.SensitivityOn)
	getFloat(keySensDelta, &st.SensitivityDeltaPct)
	if values.Has(keySensTgt) {
		st.SensitivityTarget = calc.SensitivityTarget(values.Get(keySensTgt))
	}

	getBool(keyVolume, &st.VolumeOn)
	getFloat(keyVolumeTx, &st.VolumeTxPerMonth)
	getFloat(keyVolumeRef, &st.VolumeRefundRatePct)
	if values.Has(keyTiers) {
		if tiers := decodeTiers(values.Get(keyTiers)); tiers != nil {
			st.VolumeTiers = tiers
		}
	}

	return c.engine.Normalize(st)
}

// DecodeString parses a raw query string and decodes it.
func (c *Codec) DecodeString(raw string) calc.State {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		values = url.Values{}
	}
	return c.Decode(values)
}

// encodeTiers renders tiers as "share:price:fx" segments joined by
// "|", e.g. "60:9.99:0|40:29.99:1.5".
func encodeTiers(tiers []calc.VolumeTier) string {
	segments := make([]string, len(tiers))
	for i, tier := range tiers {
		segments[i] = formatFloat(tier.SharePct) + ":" + formatFloat(tier.Price) + ":" + formatFloat(tier.FXPercent)
	}
	return strings.Join(segments, "|")
}

// decodeTiers parses the tier segments, skipping malformed ones.
// Returns nil when nothing parses so the default tier survives.
func decodeTiers(raw string) []calc.VolumeTier {
	var tiers []calc.VolumeTier
	for _, segment := range strings.Split(raw, "|") {
		parts := strings.Split(segment, ":")
		if len(parts) != 3 {
			continue
		}
		share, err1 := strconv.ParseFloat(parts[0], 64)
		price, err2 := strconv.ParseFloat(parts[1], 64)
		fx, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		tiers = append(tiers, calc.VolumeTier{SharePct: share, Price: price, FXPercent: fx})
	}
	return tiers
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
