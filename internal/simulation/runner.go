// Package simulation runs a rule set against regional indicator data and
// aggregates the triggered subsidies into a SimulationResult.
package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"subsidy-lab/internal/condition"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
	"subsidy-lab/internal/scoring"
)

// Defaults for Options.
const (
	DefaultReferenceRegion = "Ahmedabad"
	defaultDataSources     = "AgriStack, Krishi-DSS, PM-KISAN Database"
)

// Options configures a Runner.
type Options struct {
	Mode            domain.SimulationMode
	Rand            eligibility.Rand // basic mode only; seeded from the clock when nil
	Clock           func() time.Time
	ReferenceRegion string // region reported in SimulationResult.Conditions
	Logger          *slog.Logger

	// Dataset used for the realistic-mode system efficiency block.
	// When nil, the snapshots of the evaluated rules are used.
	Dataset []domain.IndicatorSnapshot
}

// Runner evaluates rule sets. It holds only its options and may be reused
// sequentially; concurrent runs need distinct Rand sources.
type Runner struct {
	mode      domain.SimulationMode
	rng       eligibility.Rand
	clock     func() time.Time
	reference string
	logger    *slog.Logger
	dataset   []domain.IndicatorSnapshot
}

// NewRunner creates a simulation runner.
func NewRunner(opts Options) *Runner {
	if opts.Mode == "" {
		opts.Mode = domain.ModeBasic
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = eligibility.NewRand(uint64(opts.Clock().UnixNano()))
	}
	if opts.ReferenceRegion == "" {
		opts.ReferenceRegion = DefaultReferenceRegion
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		mode:      opts.Mode,
		rng:       opts.Rand,
		clock:     opts.Clock,
		reference: opts.ReferenceRegion,
		logger:    opts.Logger.With("component", "simulation"),
		dataset:   opts.Dataset,
	}
}

// Mode returns the estimator mode of the runner.
func (r *Runner) Mode() domain.SimulationMode {
	return r.mode
}

// Run evaluates every rule in order.
// Steps per rule:
//  1. Resolve the region snapshot (unknown region: skip and count)
//  2. Parse the condition (unparseable: inert, count)
//  3. Estimate eligibility with the mode's estimator (not fired: skip)
//  4. Append the triggered subsidy and, in realistic mode, its challenge lines
//
// An invalid snapshot fails the run with domain.ErrInvalidIndicatorData.
func (r *Runner) Run(rules []domain.Rule, lookup SnapshotLookup) (*domain.SimulationResult, error) {
	if lookup == nil {
		return nil, errors.New("simulation: nil snapshot lookup")
	}
	if r.mode != domain.ModeBasic && r.mode != domain.ModeRealistic {
		return nil, fmt.Errorf("simulation: unknown mode %q", r.mode)
	}

	result := &domain.SimulationResult{
		RunID:              uuid.NewString(),
		Mode:               r.mode,
		Timestamp:          r.clock(),
		TriggeredSubsidies: []domain.TriggeredSubsidy{},
	}
	summary := &result.Summary
	summary.RulesEvaluated = len(rules)

	used := make(map[string]domain.IndicatorSnapshot)

	for _, rule := range rules {
		// 1. Resolve snapshot
		snap, ok := lookup(rule.Region)
		if !ok {
			summary.SkippedUnknownRegion++
			r.logger.Info("rule skipped: unknown region", "rule_id", rule.ID, "region", rule.Region)
			continue
		}
		used[domain.RegionKey(snap.Region)] = snap

		// 2. Parse condition
		if _, err := condition.Parse(rule.Condition); err != nil {
			summary.InertRules++
			r.logger.Debug("rule inert", "rule_id", rule.ID, "condition", rule.Condition, "error", err)
			continue
		}

		// 3. Estimate
		sub, report, err := r.estimate(rule, snap)
		if errors.Is(err, eligibility.ErrNotTriggered) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", rule.ID, rule.Region, err)
		}

		// 4. Accumulate
		total, err := domain.AddPayout(summary.TotalPayout, sub.TotalPayout)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", rule.ID, rule.Region, err)
		}
		result.TriggeredSubsidies = append(result.TriggeredSubsidies, *sub)
		summary.TotalFarmersImpacted += sub.EligibleFarmers
		summary.TotalPayout = total
		if report != nil {
			summary.Challenges = append(summary.Challenges, report.Lines()...)
		}
	}
	summary.RulesTriggered = len(result.TriggeredSubsidies)

	if ref, ok := lookup(r.reference); ok {
		result.Conditions = &domain.ConditionsSummary{
			Region:      ref.Region,
			Rainfall:    ref.Rainfall,
			Temperature: ref.Temperature,
			SoilPH:      ref.SoilPH,
			CropHealth:  ref.CropHealth,
			DataSources: defaultDataSources,
		}
	}

	if r.mode == domain.ModeRealistic {
		summary.UniqueChallenges = countUnique(summary.Challenges)
		summary.SystemEfficiency = scoring.SystemEfficiency(r.efficiencyDataset(used))
	}

	r.logger.Info("simulation run complete",
		"run_id", result.RunID,
		"mode", string(r.mode),
		"rules_evaluated", summary.RulesEvaluated,
		"rules_triggered", summary.RulesTriggered,
		"skipped_unknown_region", summary.SkippedUnknownRegion,
		"inert_rules", summary.InertRules,
		"total_payout", summary.TotalPayout,
	)

	return result, nil
}

func (r *Runner) estimate(rule domain.Rule, snap domain.IndicatorSnapshot) (*domain.TriggeredSubsidy, *eligibility.ChallengeReport, error) {
	if r.mode == domain.ModeRealistic {
		return eligibility.EstimateRealistic(rule, snap)
	}
	sub, err := eligibility.EstimateBasic(rule, snap, r.rng)
	return sub, nil, err
}

func (r *Runner) efficiencyDataset(used map[string]domain.IndicatorSnapshot) []domain.IndicatorSnapshot {
	if r.dataset != nil {
		return r.dataset
	}
	keys := make([]string, 0, len(used))
	for k := range used {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.IndicatorSnapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, used[k])
	}
	return out
}

func countUnique(lines []string) int {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		seen[l] = struct{}{}
	}
	return len(seen)
}
