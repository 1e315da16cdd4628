package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDayTickInterval keeps worst-case day advancement latency around
	// one minute past the 03:00 boundary.
	DefaultDayTickInterval = time.Minute
	// DefaultTournamentTickInterval is coarser; bracket deadlines are minutes
	// apart, not seconds.
	DefaultTournamentTickInterval = 5 * time.Minute
)

// DayReconciler is the scheduler's view of the day progression controller.
type DayReconciler interface {
	ReconcileDayState(ctx context.Context) error
}

// TournamentReconciler is the scheduler's view of the bracket engine.
type TournamentReconciler interface {
	ReconcileTournaments(ctx context.Context) error
}

// Scheduler owns the two background loops that drive the league forward.
// Each loop guards against overlap: if a pass outlives its interval, the
// colliding tick is dropped rather than queued.
type Scheduler struct {
	day        DayReconciler
	tournament TournamentReconciler
	logger     *slog.Logger

	dayInterval        time.Duration
	tournamentInterval time.Duration

	dayRunning        atomic.Bool
	tournamentRunning atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(day DayReconciler, tournament TournamentReconciler, dayInterval, tournamentInterval time.Duration, logger *slog.Logger) *Scheduler {
	if dayInterval <= 0 {
		dayInterval = DefaultDayTickInterval
	}
	if tournamentInterval <= 0 {
		tournamentInterval = DefaultTournamentTickInterval
	}
	return &Scheduler{
		day:                day,
		tournament:         tournament,
		logger:             logger,
		dayInterval:        dayInterval,
		tournamentInterval: tournamentInterval,
	}
}

// Start launches both loops. Each runs its pass immediately so a restarted
// process begins reconciling without waiting out a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop(ctx, "day", s.dayInterval, &s.dayRunning, s.day.ReconcileDayState)
	go s.loop(ctx, "tournament", s.tournamentInterval, &s.tournamentRunning, s.tournament.ReconcileTournaments)

	s.logger.Info("scheduler started",
		slog.Duration("day_interval", s.dayInterval),
		slog.Duration("tournament_interval", s.tournamentInterval))
}

// Stop cancels both loops and waits for in-flight passes to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, running *atomic.Bool, pass func(context.Context) error) {
	defer s.wg.Done()

	s.runPass(ctx, name, running, pass)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass(ctx, name, running, pass)
		}
	}
}

// runPass executes one pass under the loop's re-entrancy guard.
func (s *Scheduler) runPass(ctx context.Context, name string, running *atomic.Bool, pass func(context.Context) error) {
	if !running.CompareAndSwap(false, true) {
		s.logger.Warn("previous pass still running, skipping tick", slog.String("loop", name))
		return
	}
	defer running.Store(false)

	runID := uuid.NewString()
	start := time.Now()
	if err := pass(ctx); err != nil {
		s.logger.Error("scheduler pass failed",
			slog.String("loop", name),
			slog.String("run_id", runID),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("scheduler pass finished",
		slog.String("loop", name),
		slog.String("run_id", runID),
		slog.Duration("elapsed", time.Since(start)))
}
