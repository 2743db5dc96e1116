// Package api exposes the fee engine over HTTP: quote and analysis
// endpoints, the provider catalog, presets, share link state and a
// rate limited contact form. The API only ingests input, orchestrates
// the engine and serializes output; it never computes fees itself.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"feecalc/api/urlstate"
	"feecalc/core/analysis"
	"feecalc/core/calc"
	"feecalc/core/output"
	"feecalc/internal/config"
	"feecalc/internal/errors"
	"feecalc/internal/logging"
	"feecalc/providers/presets"
)

// MaxBodySize limits request body reads.
const MaxBodySize = 1 << 20

// Server is the API server.
type Server struct {
	engine  *calc.Engine
	codec   *urlstate.Codec
	limiter Limiter
	mailer  Mailer
	config  *config.Config
	version string
	logger  *zap.Logger

	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
}

// NewServer assembles the API over an engine. A nil config falls back
// to defaults.
func NewServer(engine *calc.Engine, cfg *config.Config, version string) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		engine:  engine,
		codec:   urlstate.NewCodec(engine),
		config:  cfg,
		version: version,
		logger:  logging.Named("api"),
		mux:     http.NewServeMux(),
	}
	s.limiter = newLimiter(cfg.RateLimit)
	s.mailer = LogMailer{Recipient: cfg.Contact.Recipient, Logger: s.logger}

	s.registerRoutes()

	handler := s.corsMiddleware(s.mux)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	s.handler = s.requestIDMiddleware(handler)

	return s
}

func newLimiter(cfg config.RateLimitConfig) Limiter {
	if !cfg.Enabled {
		return nil
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if cfg.RedisAddr != "" {
		return NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, window, int64(cfg.MaxRequests))
	}
	return NewMemoryLimiter(window, int64(cfg.MaxRequests))
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	s.mux.HandleFunc("GET /v1/quote", s.handleQuoteGet)
	s.mux.HandleFunc("POST /v1/quote", s.handleQuotePost)
	s.mux.HandleFunc("POST /v1/normalize", s.handleNormalize)
	s.mux.HandleFunc("POST /v1/breakeven", s.handleBreakEven)
	s.mux.HandleFunc("POST /v1/sensitivity", s.handleSensitivity)
	s.mux.HandleFunc("POST /v1/volume", s.handleVolume)
	s.mux.HandleFunc("GET /v1/providers", s.handleProviders)
	s.mux.HandleFunc("GET /v1/presets", s.handlePresets)
	s.mux.HandleFunc("GET /v1/presets/{id}", s.handlePreset)
	s.mux.HandleFunc("POST /v1/contact", s.handleContact)

	// Everything else falls through to the static browser UI.
	if dir := s.config.Server.UIDir; dir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	readTimeout := time.Duration(s.config.Server.ReadTimeoutSeconds) * time.Second
	s.httpServer = &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: 2 * readTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Close releases the contact rate limiter's backend connection.
func (s *Server) Close() error {
	if c, ok := s.limiter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
		"engine":  "feecalc",
	})
}

// handleQuoteGet handles GET /v1/quote. The query string is a share
// link state; ?format= selects the response body.
func (s *Server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st := s.codec.Decode(r.URL.Query())
	s.renderQuote(w, r, st, format)
}

// handleQuotePost handles POST /v1/quote
func (s *Server) handleQuotePost(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderQuote(w, r, req.State, format)
}

// renderQuote builds the full report for a state and writes it in the
// requested format. An unsolvable reverse quote is still a 200: the
// report carries denomOk false and display-safe zeros.
func (s *Server) renderQuote(w http.ResponseWriter, r *http.Request, st calc.State, format output.Format) {
	report := output.BuildReport(s.engine, st, s.version)
	report.ShareQuery = s.codec.EncodeString(report.State)

	switch format {
	case output.FormatXLSX:
		f, err := output.BuildWorkbook(report)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="feecalc-quote.xlsx"`)
		if err := f.Write(w); err != nil {
			s.logger.Error("writing workbook", zap.Error(err))
		}
	case output.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="feecalc-quote.csv"`)
		if err := (&output.CSVFormatter{}).Render(w, report); err != nil {
			s.logger.Error("writing csv", zap.Error(err))
		}
	case output.FormatCLI:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		formatter := &output.CLIFormatter{ShowMeta: s.config.Output.ShowMeta}
		if err := formatter.Render(w, report); err != nil {
			s.logger.Error("writing report", zap.Error(err))
		}
	default:
		s.writeJSON(w, http.StatusOK, report)
	}
}

// handleNormalize handles POST /v1/normalize
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	norm := s.engine.Normalize(req.State)
	s.writeJSON(w, http.StatusOK, NormalizeResponse{
		State:      norm,
		ShareQuery: s.codec.EncodeString(norm),
	})
}

// handleBreakEven handles POST /v1/breakeven. Calling the endpoint is
// the toggle; the target gates still apply.
func (s *Server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := req.State
	st.BreakEvenOn = true
	s.writeJSON(w, http.StatusOK, BreakEvenResponse{Result: analysis.ComputeBreakEven(s.engine, st).Rounded()})
}

// handleSensitivity handles POST /v1/sensitivity
func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := req.State
	st.SensitivityOn = true
	s.writeJSON(w, http.StatusOK, SensitivityResponse{Result: analysis.ComputeSensitivity(s.engine, st).Rounded()})
}

// handleVolume handles POST /v1/volume
func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req VolumeRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := req.State
	st.VolumeOn = true
	base := s.engine.Quote(st)
	s.writeJSON(w, http.StatusOK, VolumeResponse{Result: analysis.ComputeVolume(s.engine, st, base, req.Override).Rounded()})
}

// handleProviders handles GET /v1/providers
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()

	models := reg.Models()
	infos := make([]ProviderInfo, 0, len(models))
	for _, model := range models {
		info := ProviderInfo{
			ID:       model.ID(),
			Label:    model.Label(),
			Products: make(map[calc.Region][]ProviderProduct, len(calc.Regions)),
		}
		for _, region := range calc.Regions {
			products := model.Products(region)
			out := make([]ProviderProduct, 0, len(products))
			for _, p := range products {
				rate, _ := model.DefaultRate(region, p.ID)
				out = append(out, ProviderProduct{
					ID:      p.ID,
					Label:   p.Label,
					Percent: rate.Percent,
					Fixed:   rate.Fixed,
				})
			}
			info.Products[region] = out
		}
		infos = append(infos, info)
	}

	symbols := make(map[calc.Region]string, len(calc.Regions))
	for _, region := range calc.Regions {
		symbols[region] = reg.Symbol(region)
	}

	s.writeJSON(w, http.StatusOK, ProvidersResponse{
		Providers: infos,
		Default:   reg.DefaultID(),
		Regions:   calc.Regions,
		Symbols:   symbols,
	})
}

// handlePresets handles GET /v1/presets
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"presets": presets.All(),
	})
}

// handlePreset handles GET /v1/presets/{id}
func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := presets.Get(id)
	if !ok {
		s.writeError(w, r, errors.NotFound("preset", id))
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// handleContact handles POST /v1/contact
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := validateContact(req, s.config.Contact)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(r.Context(), "contact:"+clientIP(r))
		if err != nil {
			// Counter backend trouble must not block the form.
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.writeError(w, r, errors.RateLimited("too many messages, try again later"))
			return
		}
	}

	if err := s.mailer.Send(msg); err != nil {
		s.writeError(w, r, errors.Internal("delivering message", err))
		return
	}

	s.writeJSON(w, http.StatusAccepted, ContactResponse{Status: "accepted"})
}

// Middleware

type ctxKey int

const requestIDKey ctxKey = 0

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", requestID(r.Context())),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				s.writeError(w, r, errors.New(errors.TypeInternal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helpers

// requestFormat reads the ?format= query parameter, defaulting to JSON.
func requestFormat(r *http.Request) (output.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(raw)
}

func (s *Server) parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		return errors.Wrap(errors.TypeInput, "reading request body", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.TypeInput, "decoding request body", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	s.writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   errorMessage(err),
		RequestID: requestID(r.Context()),
	}})
}

// statusForError maps a domain error type to an HTTP status and wire
// code.
func statusForError(err error) (int, string) {
	e, ok := err.(*errors.Error)
	if !ok {
		return http.StatusInternalServerError, string(errors.TypeInternal)
	}
	switch e.Type {
	case errors.TypeInput, errors.TypeProvider, errors.TypeScenario:
		return http.StatusBadRequest, string(e.Type)
	case errors.TypeNotFound:
		return http.StatusNotFound, string(e.Type)
	case errors.TypeRateLimited:
		return http.StatusTooManyRequests, string(e.Type)
	default:
		return http.StatusInternalServerError, string(e.Type)
	}
}

// errorMessage keeps internal causes off the wire, except for input
// errors where the decode detail helps the caller.
func errorMessage(err error) string {
	e, ok := err.(*errors.Error)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil && e.Type == errors.TypeInput {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// clientIP extracts the caller's address for rate limit keying.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
