package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/orchestrator"
)

// Scheduler runs recurring simulations on a cron schedule.
// A run still in progress when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	orch   *orchestrator.Orchestrator
	mode   domain.SimulationMode
	ctx    context.Context
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	runs    int
}

// NewScheduler creates a scheduler for a standard five-field cron spec.
// Runs use ctx, so cancelling it aborts in-flight store calls.
func NewScheduler(ctx context.Context, orch *orchestrator.Orchestrator, spec string, mode domain.SimulationMode, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		orch:   orch,
		mode:   mode,
		ctx:    ctx,
		logger: logger.With("component", "scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", "schedule", s.spec, "mode", s.mode)
	s.cron.Start()
}

// Stop stops firing and returns a context that is done once the running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Runs returns the number of completed scheduled runs.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous scheduled run still in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.runs++
		s.mu.Unlock()
	}()

	run, err := s.orch.Simulate(s.ctx, s.mode, domain.TriggerScheduled)
	if err != nil {
		s.logger.Error("scheduled run failed", "mode", s.mode, "error", err)
		return
	}
	s.logger.Info("scheduled run completed",
		"run_id", run.Result.RunID,
		"mode", s.mode,
		"rules_triggered", run.Result.Summary.RulesTriggered,
		"total_payout", run.Result.Summary.TotalPayout,
	)
}
