// Package api exposes rules, simulations, analytics and insights over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"subsidy-lab/internal/observability"
	"subsidy-lab/internal/orchestrator"
	"subsidy-lab/internal/reporting"
	"subsidy-lab/internal/storage"
)

// Service identity reported by GET /.
const (
	ServiceName    = "Subsidy Design Engine API"
	ServiceVersion = "1.0.0"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	orch       *orchestrator.Orchestrator
	rules      storage.RuleStore
	indicators storage.IndicatorStore
	reports    *reporting.Generator
	metrics    *observability.Metrics
	clock      func() time.Time
	logger     *slog.Logger
}

// Options for creating Server.
type Options struct {
	// Required
	Orchestrator *orchestrator.Orchestrator
	Rules        storage.RuleStore
	Indicators   storage.IndicatorStore

	// Optional: report endpoints answer 404 when nil
	Reports *reporting.Generator
	// Optional: GET /metrics is not mounted when nil
	Metrics *observability.Metrics

	Clock  func() time.Time
	Logger *slog.Logger
}

// New creates a new Server.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		orch:       opts.Orchestrator,
		rules:      opts.Rules,
		indicators: opts.Indicators,
		reports:    opts.Reports,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
		logger:     opts.Logger.With("component", "api"),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Rules
	mux.HandleFunc("POST /rules", s.handleCreateRule)
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("GET /rules/{id}", s.handleGetRule)
	mux.HandleFunc("PUT /rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /rules/{id}", s.handleDeleteRule)

	// Simulations
	mux.HandleFunc("GET /simulate", s.handleSimulateBasic)
	mux.HandleFunc("GET /simulate-realistic", s.handleSimulateRealistic)
	mux.HandleFunc("POST /simulate-enhanced", s.handleSimulateEnhanced)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/report", s.handleRunReport)

	// Analytics
	mux.HandleFunc("GET /analytics/districts", s.handleDistrictAnalytics)
	mux.HandleFunc("GET /dashboard/efficiency", s.handleEfficiencyDashboard)
	mux.HandleFunc("GET /weather/{region}", s.handleWeather)
	mux.HandleFunc("GET /satellite/subsidy-analysis/{district}", s.handleSatelliteAnalysis)
	mux.HandleFunc("POST /ai/generate-insights", s.handleGenerateInsights)

	// Recovery sits inside instrumentation so panics are counted as 500s.
	var handler http.Handler = s.recoverPanics(mux)
	handler = s.instrument(mux, handler)
	handler = withCORS(handler)
	handler = withRequestID(handler)
	return handler
}
