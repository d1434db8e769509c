// Package api provides the HTTP REST API server for fundamentals.
//
// It exposes book value, free cash flow, discounted cash flow and summary
// endpoints for a ticker, backed by the registered statement sources.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/analysis/fundamental"
	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/pkg/utils"
)

// RateSource supplies a market discount rate, as a decimal, from a named
// interest-rate series.
type RateSource interface {
	LatestRate(ctx context.Context, series string) (float64, error)
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	reg    *provider.Registry
	rates  RateSource // nil when no market rate source is configured
	log    zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reg *provider.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		reg: reg,
		log: logger.With().Str("component", "api").Logger(),
	}
	s.router = s.buildRouter()
	return s
}

// SetRateSource enables discount=market on the DCF endpoint.
func (s *Server) SetRateSource(rates RateSource) {
	s.rates = rates
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.log.Info().Msg("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Valuation
		r.Get("/book/{symbol}", s.handleBook)
		r.Get("/fcf/{symbol}", s.handleFreeCashFlow)
		r.Get("/dcf/{symbol}", s.handleDCF)
		r.Get("/summary/{symbol}", s.handleSummary)

		// Sources & configuration
		r.Get("/sources", s.handleSources)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// --- Request / Response Types ---

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SeriesResponse is the payload of the book and fcf endpoints.
type SeriesResponse struct {
	Symbol  string `json:"symbol"`
	Source  string `json:"source"`
	Records any    `json:"records"`
}

// DCFResponse is the payload of the dcf endpoint.
type DCFResponse struct {
	Symbol    string                `json:"symbol"`
	Source    string                `json:"source"`
	Params    fundamental.DCFParams `json:"params"`
	Value     float64               `json:"value"`
	Formatted string                `json:"formatted"`
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if src, err := s.reg.Default(); err == nil {
		data["source"] = src.Info().Name
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	a, symbol, ok := s.prepare(w, r)
	if !ok {
		return
	}

	records, err := fundamental.Collect(a.BookValueSeries(r.Context(), symbol))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    SeriesResponse{Symbol: symbol, Source: a.Source().Info().Name, Records: records},
	})
}

func (s *Server) handleFreeCashFlow(w http.ResponseWriter, r *http.Request) {
	a, symbol, ok := s.prepare(w, r)
	if !ok {
		return
	}

	records, err := fundamental.Collect(a.FreeCashFlowSeries(r.Context(), symbol))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    SeriesResponse{Symbol: symbol, Source: a.Source().Info().Name, Records: records},
	})
}

func (s *Server) handleDCF(w http.ResponseWriter, r *http.Request) {
	a, symbol, ok := s.prepare(w, r)
	if !ok {
		return
	}
	params, err := s.dcfParams(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	value, err := a.ProjectDiscountedCashFlow(r.Context(), symbol, params.GrowthRate, params.Years, params.DiscountRate)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: DCFResponse{
			Symbol:    symbol,
			Source:    a.Source().Info().Name,
			Params:    params,
			Value:     value,
			Formatted: utils.FormatAmount(value),
		},
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	a, symbol, ok := s.prepare(w, r)
	if !ok {
		return
	}
	params, err := s.dcfParams(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	summary, err := a.Summarize(r.Context(), symbol, params)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summary})
}

// --- Helpers ---

// prepare resolves the symbol path parameter and the analyzer for the
// optional ?source= query parameter.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (*fundamental.Analyzer, string, bool) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return nil, "", false
	}

	var (
		src provider.Source
		err error
	)
	if name := r.URL.Query().Get("source"); name != "" {
		src, err = s.reg.Get(name)
	} else {
		src, err = s.reg.Default()
	}
	if err != nil {
		s.writeFailure(w, err)
		return nil, "", false
	}
	return fundamental.NewAnalyzer(src, s.log), symbol, true
}

// dcfParams reads growth, years and discount from the query string, using
// the configured valuation defaults for absent values. discount=market
// reads the latest rate from the configured rate source.
func (s *Server) dcfParams(r *http.Request) (fundamental.DCFParams, error) {
	q := r.URL.Query()
	p := fundamental.DCFParams{
		GrowthRate:   s.cfg.Valuation.GrowthRate,
		Years:        s.cfg.Valuation.Years,
		DiscountRate: s.cfg.Valuation.DiscountRate,
	}

	if v := q.Get("growth"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, &fundamental.ErrInvalidParameter{Name: "growth rate", Value: v, Reason: "not a number"}
		}
		p.GrowthRate = f
	}
	if v := q.Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, &fundamental.ErrInvalidParameter{Name: "years", Value: v, Reason: "not an integer"}
		}
		p.Years = n
	}
	switch v := q.Get("discount"); v {
	case "":
	case "market":
		if s.rates == nil {
			return p, &fundamental.ErrInvalidParameter{Name: "discount rate", Value: v, Reason: "no market rate source configured"}
		}
		rate, err := s.rates.LatestRate(r.Context(), s.cfg.Valuation.FRED.Series)
		if err != nil {
			return p, err
		}
		p.DiscountRate = rate
	default:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, &fundamental.ErrInvalidParameter{Name: "discount rate", Value: v, Reason: "not a number"}
		}
		p.DiscountRate = f
	}
	return p, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		invalid     *fundamental.ErrInvalidParameter
		missing     *fundamental.ErrMissingField
		empty       *fundamental.ErrEmptySeries
		unavailable *provider.ErrDataUnavailable
		noSource    *provider.ErrSourceNotFound
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &noSource):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &empty):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		if errors.Is(err, provider.ErrSymbolNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// Remaining errors come from upstream rate sources.
		return http.StatusBadGateway
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	s.writeError(w, status, err.Error())
}

// writeJSON encodes v before writing the header, so a value that cannot
// be encoded still produces a 500 with an error envelope.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.log.Error().Err(err).Int("status", status).Msg("encode JSON response")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(APIResponse{Success: false, Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Debug().Err(err).Msg("write JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
