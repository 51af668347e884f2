package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"subsidy-lab/internal/dataset"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/scoring"
)

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveRules int       `json:"active_rules"`
}

// insightsRequest carries either a recorded run ID or the simulation response
// returned by a previous call.
type insightsRequest struct {
	RunID              string        `json:"runId"`
	TriggeredSubsidies []subsidyView `json:"triggeredSubsidies"`
	Summary            struct {
		TotalFarmersImpacted int64 `json:"totalFarmersImpacted"`
		TotalPayoutAmount    int64 `json:"totalPayoutAmount"`
	} `json:"summary"`
}

func (req insightsRequest) toResult() *domain.SimulationResult {
	res := &domain.SimulationResult{
		RunID:              req.RunID,
		TriggeredSubsidies: subsidiesFromViews(req.TriggeredSubsidies),
	}
	res.Summary.RulesTriggered = len(res.TriggeredSubsidies)
	res.Summary.TotalFarmersImpacted = req.Summary.TotalFarmersImpacted
	res.Summary.TotalPayout = req.Summary.TotalPayoutAmount
	return res
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, rootResponse{Message: ServiceName, Version: ServiceVersion})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.rules.Count(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("count rules: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Timestamp: s.clock(), ActiveRules: n})
}

func (s *Server) loadSnapshots(r *http.Request) ([]domain.IndicatorSnapshot, error) {
	stored, err := s.indicators.List(r.Context())
	if err != nil {
		return nil, fmt.Errorf("load indicators: %w", err)
	}
	out := make([]domain.IndicatorSnapshot, len(stored))
	for i, sn := range stored {
		out[i] = *sn
	}
	return out, nil
}

// handleDistrictAnalytics returns every district keyed by name, with its risk
// and efficiency scores.
func (s *Server) handleDistrictAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.loadSnapshots(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.clock()
	out := make(map[string]districtView, len(snapshots))
	for i := range snapshots {
		sn := &snapshots[i]
		risk, err := scoring.ScoreRisk(*sn)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		eff, err := scoring.ScoreEfficiency(*sn)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out[sn.Region] = newDistrictView(sn, risk, eff, now)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEfficiencyDashboard(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.loadSnapshots(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := scoring.BuildDashboard(snapshots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newDashboardView(d, s.clock()))
}

// handleSatelliteAnalysis allocates the satellite-targeted schemes over the
// field survey of one district.
func (s *Server) handleSatelliteAnalysis(w http.ResponseWriter, r *http.Request) {
	district := strings.TrimSpace(r.PathValue("district"))
	if district == "" {
		s.writeError(w, r, fmt.Errorf("%w: district is required", errBadRequest))
		return
	}
	snap, err := s.indicators.GetByRegion(r.Context(), district)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("district %s: %w", district, err))
		return
	}
	analysis, err := scoring.AnalyzeFields(snap.Region, dataset.FieldSurvey(*snap))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSatelliteAnalysisView(analysis, s.clock()))
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.PathValue("region"))
	if region == "" {
		s.writeError(w, r, fmt.Errorf("%w: region is required", errBadRequest))
		return
	}
	snap, err := s.orch.CurrentWeather(r.Context(), region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newWeatherView(snap))
}

// handleGenerateInsights always answers 200 once an advisor is configured:
// generator failures produce the fallback advisory.
func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	result := req.toResult()
	if req.RunID != "" && len(req.TriggeredSubsidies) == 0 {
		run, err := s.orch.Run(r.Context(), req.RunID)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("run %s: %w", req.RunID, err))
			return
		}
		result = &run.Result
	}

	report, err := s.orch.Insights(r.Context(), result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newInsightReportView(report))
}
