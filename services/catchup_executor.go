package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSimConcurrency = 4
	defaultSimTimeout     = 30 * time.Second
)

// DayExecution summarizes one catch-up pass over a day's matches.
type DayExecution struct {
	Day       int
	Attempted int
	Succeeded int
	Failed    int
}

// Retryable reports whether the day should be replayed on a later tick.
func (e DayExecution) Retryable() bool {
	return e.Failed > 0
}

// CatchUpExecutor replays simulation for league matches whose day window has
// elapsed. Idempotent: completed matches are never in the candidate set, so
// executing the same day twice is safe.
type CatchUpExecutor interface {
	ExecuteDay(ctx context.Context, season *models.Season, day int) (DayExecution, error)
	// ExecuteOverdue runs matches up to and including the season's current
	// day that are past their scheduled instant (or whose scheduled instant
	// fell out of their assigned day window).
	ExecuteOverdue(ctx context.Context, season *models.Season, now time.Time) (DayExecution, error)
}

type catchUpExecutor struct {
	matchRepo   repositories.MatchRepository
	simulator   MatchSimulator
	logger      *slog.Logger
	concurrency int
	simTimeout  time.Duration
}

func NewCatchUpExecutor(matchRepo repositories.MatchRepository, simulator MatchSimulator, logger *slog.Logger) CatchUpExecutor {
	return &catchUpExecutor{
		matchRepo:   matchRepo,
		simulator:   simulator,
		logger:      logger,
		concurrency: defaultSimConcurrency,
		simTimeout:  defaultSimTimeout,
	}
}

func (e *catchUpExecutor) ExecuteDay(ctx context.Context, season *models.Season, day int) (DayExecution, error) {
	scheduled := models.MatchStatusScheduled
	league := models.MatchTypeLeague
	matches, err := e.matchRepo.ListBySeason(ctx, season.ID, repositories.ListMatchesFilter{
		Day:       &day,
		Status:    &scheduled,
		MatchType: &league,
	})
	if err != nil {
		return DayExecution{Day: day}, err
	}
	return e.runMatches(ctx, day, matches), nil
}

func (e *catchUpExecutor) ExecuteOverdue(ctx context.Context, season *models.Season, now time.Time) (DayExecution, error) {
	matches, err := e.matchRepo.ListOverdue(ctx, season.ID, season.CurrentDay, models.MatchTypeLeague, now)
	if err != nil {
		return DayExecution{Day: season.CurrentDay}, err
	}
	return e.runMatches(ctx, season.CurrentDay, matches), nil
}

// runMatches simulates a batch with bounded fan-out. One match's failure or
// timeout never aborts the rest of the batch; failures are counted so the
// caller knows the day must be retried.
func (e *catchUpExecutor) runMatches(ctx context.Context, day int, matches []*models.Match) DayExecution {
	var succeeded, failed atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	attempted := 0
	for _, match := range matches {
		if match.Status == models.MatchStatusCompleted {
			continue
		}
		attempted++
		match := match
		g.Go(func() error {
			matchCtx, cancel := context.WithTimeout(ctx, e.simTimeout)
			defer cancel()

			homeScore, awayScore, err := e.simulator.Simulate(matchCtx, match.HomeTeamID, match.AwayTeamID)
			if err != nil {
				failed.Add(1)
				e.logger.Error("match simulation failed",
					slog.Int("match_id", match.ID),
					slog.Int("day", day),
					slog.Any("error", err))
				return nil
			}

			if err := e.matchRepo.UpdateResult(ctx, match.ID, homeScore, awayScore, models.MatchStatusCompleted, true); err != nil {
				failed.Add(1)
				e.logger.Error("failed to store match result",
					slog.Int("match_id", match.ID),
					slog.Int("day", day),
					slog.Any("error", err))
				return nil
			}

			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return DayExecution{
		Day:       day,
		Attempted: attempted,
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
}
