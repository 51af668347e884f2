package api

import (
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	rule, err := s.rules.Create(r.Context(), req.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "rule created", "rule_id", rule.ID, "scheme", rule.SchemeName, "region", rule.Region)
	s.writeJSON(w, http.StatusOK, newRuleView(rule))
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ruleView, len(rules))
	for i, rule := range rules {
		out[i] = newRuleView(rule)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id, err := ruleID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rule, err := s.rules.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("rule %d: %w", id, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newRuleView(rule))
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := ruleID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ruleRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	update := req.toDomain()
	update.ID = id
	rule, err := s.rules.Update(r.Context(), update)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("rule %d: %w", id, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newRuleView(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := ruleID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.rules.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, fmt.Errorf("rule %d: %w", id, err))
		return
	}
	s.logger.InfoContext(r.Context(), "rule deleted", "rule_id", id)
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Rule deleted successfully"})
}

func ruleID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid rule id %q", errBadRequest, raw)
	}
	return id, nil
}
