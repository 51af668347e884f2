package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/reporting"
	"subsidy-lab/internal/storage"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

type enhancedRequest struct {
	Location string `json:"location"`
}

func (s *Server) handleSimulateBasic(w http.ResponseWriter, r *http.Request) {
	s.simulate(w, r, domain.ModeBasic)
}

func (s *Server) handleSimulateRealistic(w http.ResponseWriter, r *http.Request) {
	s.simulate(w, r, domain.ModeRealistic)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request, mode domain.SimulationMode) {
	run, err := s.orch.Simulate(r.Context(), mode, domain.TriggerAPI)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSimulationView(run))
}

// handleSimulateEnhanced accepts an optional body; the location defaults server-side.
func (s *Server) handleSimulateEnhanced(w http.ResponseWriter, r *http.Request) {
	var req enhancedRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.orch.SimulateEnhanced(r.Context(), req.Location, domain.TriggerAPI)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newEnhancedView(out))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: invalid limit %q", errBadRequest, raw))
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := s.orch.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]runListItem, len(runs))
	for i, run := range runs {
		out[i] = newRunListItem(run)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.orch.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("run %s: %w", r.PathValue("id"), err))
		return
	}

	v := newSimulationView(run)
	if run.Weather != nil {
		v.TriggeredSubsidies = newSubsidyViews(run.AdjustedSubsidies)
		adjusted := run.AdjustedPayout
		v.Summary.AdjustedPayout = &adjusted
		factor := run.Weather.Factor
		v.Summary.EnhancementFactor = &factor
	}
	v.Summary.WeatherUnavailable = run.WeatherError
	s.writeJSON(w, http.StatusOK, v)
}

// handleRunReport renders a recorded run as Markdown (default) or CSV.
// ?format=csv lists the triggered subsidies, ?format=districts-csv the district scores.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, r, fmt.Errorf("reports: %w", storage.ErrNotFound))
		return
	}
	id := r.PathValue("id")
	run, err := s.orch.Run(r.Context(), id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("run %s: %w", id, err))
		return
	}
	report, err := s.reports.FromRun(r.Context(), run)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body, contentType string
	switch format := r.URL.Query().Get("format"); format {
	case "", "markdown":
		body, contentType = reporting.RenderMarkdown(report), "text/markdown; charset=utf-8"
	case "csv":
		body, contentType = reporting.RenderCSV(report.Subsidies), "text/csv; charset=utf-8"
	case "districts-csv":
		body, contentType = reporting.RenderDistrictCSV(report.Districts), "text/csv; charset=utf-8"
	default:
		s.writeError(w, r, fmt.Errorf("%w: unknown format %q", errBadRequest, format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		s.logger.Warn("write report failed", "run_id", id, "error", err)
	}
}
