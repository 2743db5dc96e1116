package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feecalc/core/analysis"
	"feecalc/core/calc"
	"feecalc/core/output"
	"feecalc/internal/config"
	"feecalc/providers"
	"feecalc/providers/presets"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.UIDir = ""
	cfg.RateLimit.MaxRequests = 2
	return NewServer(providers.NewEngine(), cfg, "test")
}

func doRequest(t *testing.T, s *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestQuotePost(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.Amount = 100
	st.PlatformFeePercent = 2
	st.VATPercent = 20

	rec := doRequest(t, s, http.MethodPost, "/v1/quote", QuoteRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report output.Report
	decodeJSON(t, rec, &report)
	assert.True(t, report.Result.DenomOK)
	assert.InDelta(t, 100.0, report.Result.Gross, 1e-9)
	assert.InDelta(t, 1.70, report.Result.Fee(calc.FeeProvider), 1e-9)
	assert.InDelta(t, 2.00, report.Result.Fee(calc.FeePlatform), 1e-9)
	assert.InDelta(t, 96.30, report.Result.NetBeforeVAT, 1e-9)
	assert.Equal(t, "Stripe", report.Metadata.ProviderLabel)
	assert.Contains(t, report.ShareQuery, "amount=100")
}

func TestQuoteGetShareLink(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?amount=250&vat=20", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report output.Report
	decodeJSON(t, rec, &report)
	assert.Equal(t, "stripe", report.State.ProviderID)
	assert.InDelta(t, 250.0, report.Result.Gross, 1e-9)
	assert.InDelta(t, 41.67, report.Result.VATAmount, 1e-9)
}

func TestQuoteGetTiers(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?vol=1&voltx=200&tiers=60%3A10%3A0%7C40%3A50%3A1.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report output.Report
	decodeJSON(t, rec, &report)
	require.Len(t, report.State.VolumeTiers, 2)
	assert.Equal(t, calc.VolumeTier{SharePct: 60, Price: 10}, report.State.VolumeTiers[0])
	assert.Equal(t, calc.VolumeTier{SharePct: 40, Price: 50, FXPercent: 1.5}, report.State.VolumeTiers[1])
	require.NotNil(t, report.Volume)
	assert.InDelta(t, 200.0, report.Volume.TxPerMonth, 1e-9)
}

func TestQuoteGetCSV(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?amount=100&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "feecalc-quote.csv")
	assert.Contains(t, rec.Body.String(), "provider,Stripe")
	assert.Contains(t, rec.Body.String(), "gross,100")
}

func TestQuoteGetXLSX(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "body is not a zip archive")
}

func TestQuoteGetCLI(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?amount=100&format=cli", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "PAYMENT FEE QUOTE")
}

func TestQuoteUnknownFormat(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/quote?format=pdf", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var er ErrorResponse
	decodeJSON(t, rec, &er)
	assert.Equal(t, "INPUT_ERROR", er.Error.Code)
	assert.NotEmpty(t, er.Error.RequestID)
}

func TestQuotePostMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/quote", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var er ErrorResponse
	decodeJSON(t, rec, &er)
	assert.Equal(t, "INPUT_ERROR", er.Error.Code)
}

func TestQuoteUnsolvableReverse(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.Mode = calc.ModeReverse
	st.TargetNet = 50
	st.ProviderID = calc.ProviderCustom
	pct := 99.0
	st.CustomProviderFeePercent = &pct
	st.PlatformFeePercent = 50

	rec := doRequest(t, s, http.MethodPost, "/v1/quote", QuoteRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "NaN")

	var report output.Report
	decodeJSON(t, rec, &report)
	assert.False(t, report.Result.DenomOK)
	assert.Zero(t, report.Result.Gross)
}

func TestNormalize(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/normalize", map[string]interface{}{
		"state": map[string]interface{}{"providerId": "worldpay", "amount": 50},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NormalizeResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "stripe", resp.State.ProviderID)
	assert.Equal(t, "standard", resp.State.ProductID)
	assert.Equal(t, calc.RegionUK, resp.State.Region)
	assert.Equal(t, calc.ModeForward, resp.State.Mode)
	assert.Equal(t, calc.DefaultRoundingStep, resp.State.RoundingStep)
	assert.Equal(t, calc.SensitivityAll, resp.State.SensitivityTarget)
	assert.Contains(t, resp.ShareQuery, "amount=50")

	// The share query must decode back to the same canonical state.
	assert.Equal(t, resp.State, s.codec.DecodeString(resp.ShareQuery))
}

func TestBreakEvenEndpoint(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.Amount = 100
	st.PlatformFeePercent = 2
	st.BreakEvenTargetNet = 90
	// BreakEvenOn stays false; calling the endpoint enables it.

	rec := doRequest(t, s, http.MethodPost, "/v1/breakeven", QuoteRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BreakEvenResponse
	decodeJSON(t, rec, &resp)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.DenomOK)
	assert.InDelta(t, 93.47, resp.Result.RequiredCharge, 1e-9)
}

func TestBreakEvenNegativeTarget(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.BreakEvenTargetNet = -5

	rec := doRequest(t, s, http.MethodPost, "/v1/breakeven", QuoteRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BreakEvenResponse
	decodeJSON(t, rec, &resp)
	assert.Nil(t, resp.Result)
}

func TestSensitivityEndpoint(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.Amount = 100

	rec := doRequest(t, s, http.MethodPost, "/v1/sensitivity", QuoteRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SensitivityResponse
	decodeJSON(t, rec, &resp)
	require.NotNil(t, resp.Result)
	assert.InDelta(t, 10.0, resp.Result.DeltaPct, 1e-9)
	assert.InDelta(t, 98.30, resp.Result.BaseNet, 1e-9)
	assert.InDelta(t, 98.15, resp.Result.NetUp, 1e-9)
	assert.InDelta(t, 98.45, resp.Result.NetDown, 1e-9)
}

func TestVolumeEndpointOverride(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.ProviderID = "stripe"
	st.Amount = 100
	pct := 2.0

	rec := doRequest(t, s, http.MethodPost, "/v1/volume", VolumeRequest{
		State:    st,
		Override: &analysis.RateOverride{Percent: &pct},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VolumeResponse
	decodeJSON(t, rec, &resp)
	require.NotNil(t, resp.Result)
	assert.InDelta(t, 2.0, resp.Result.PercentUsed, 1e-9)
	assert.InDelta(t, 10000.0, resp.Result.GrossMonthly, 1e-9)
	assert.InDelta(t, 200.0, resp.Result.ProviderFeesMonthly, 1e-9)
	assert.InDelta(t, 9800.0, resp.Result.NetMonthly, 1e-9)
}

func TestVolumeEndpointZeroTx(t *testing.T) {
	s := newTestServer(t)

	st := calc.DefaultState()
	st.VolumeTxPerMonth = 0

	rec := doRequest(t, s, http.MethodPost, "/v1/volume", VolumeRequest{State: st})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VolumeResponse
	decodeJSON(t, rec, &resp)
	assert.Nil(t, resp.Result)
}

func TestProvidersEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProvidersResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "stripe", resp.Default)
	assert.Equal(t, calc.Regions, resp.Regions)
	assert.Equal(t, "£", resp.Symbols[calc.RegionUK])
	require.Len(t, resp.Providers, 5)
	assert.Equal(t, "stripe", resp.Providers[0].ID)

	uk := resp.Providers[0].Products[calc.RegionUK]
	require.Len(t, uk, 3)
	assert.Equal(t, "standard", uk[0].ID)
	assert.InDelta(t, 1.5, uk[0].Percent, 1e-9)
	assert.InDelta(t, 0.20, uk[0].Fixed, 1e-9)
}

func TestPresetsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Presets []presets.Preset `json:"presets"`
	}
	decodeJSON(t, rec, &resp)
	require.NotEmpty(t, resp.Presets)
	assert.Equal(t, "uk-freelancer", resp.Presets[0].ID)
}

func TestPresetEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/presets/eu-saas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p presets.Preset
	decodeJSON(t, rec, &p)
	assert.Equal(t, "eu-saas", p.ID)
	assert.Equal(t, calc.RegionEU, p.State.Region)
}

func TestPresetNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/presets/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var er ErrorResponse
	decodeJSON(t, rec, &er)
	assert.Equal(t, "NOT_FOUND", er.Error.Code)
}

func TestContactAcceptedThenLimited(t *testing.T) {
	s := newTestServer(t)

	body := ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "Hello from the form"}

	for i := 0; i < 2; i++ {
		rec := doRequest(t, s, http.MethodPost, "/v1/contact", body)
		require.Equal(t, http.StatusAccepted, rec.Code, "submission %d", i+1)

		var resp ContactResponse
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "accepted", resp.Status)
	}

	rec := doRequest(t, s, http.MethodPost, "/v1/contact", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var er ErrorResponse
	decodeJSON(t, rec, &er)
	assert.Equal(t, "RATE_LIMITED", er.Error.Code)
}

func TestContactValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		req  ContactRequest
	}{
		{"missing name", ContactRequest{Email: "a@b.com", Message: "hi"}},
		{"missing email", ContactRequest{Name: "Ada", Message: "hi"}},
		{"bad email", ContactRequest{Name: "Ada", Email: "not-an-email", Message: "hi"}},
		{"missing message", ContactRequest{Name: "Ada", Email: "a@b.com"}},
		{"oversized message", ContactRequest{Name: "Ada", Email: "a@b.com", Message: strings.Repeat("x", 4001)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/v1/contact", tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var er ErrorResponse
			decodeJSON(t, rec, &er)
			assert.Equal(t, "INPUT_ERROR", er.Error.Code)
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = doRequest(t, s, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/v1/quote", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicRecovery(t *testing.T) {
	s := newTestServer(t)
	s.mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := doRequest(t, s, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var er ErrorResponse
	decodeJSON(t, rec, &er)
	assert.Equal(t, "INTERNAL_ERROR", er.Error.Code)
}
