package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/ws"
)

// SyncState is the day progression state machine: the persisted day cursor
// relative to the wall clock.
type SyncState int

const (
	// StateInSync: persisted day equals the calculated day.
	StateInSync SyncState = iota
	// StateBehind: the wall clock has crossed at least one day boundary the
	// cursor has not recorded yet.
	StateBehind
	// StateCatchingUp: missed days are being replayed before the cursor
	// advances.
	StateCatchingUp
)

func (s SyncState) String() string {
	switch s {
	case StateInSync:
		return "in_sync"
	case StateBehind:
		return "behind"
	case StateCatchingUp:
		return "catching_up"
	default:
		return "unknown"
	}
}

// RolloverCoordinator is the part of the rollover service the controller
// depends on.
type RolloverCoordinator interface {
	Rollover(ctx context.Context, expiring *models.Season) (*models.Season, error)
}

// Progression reconciles the persisted day cursor of the current season with
// the wall clock: replays missed days, executes overdue matches, and hands
// off to rollover at a season boundary. Invoked once per scheduler tick; all
// progress is re-derived from storage, so it is safe to stop and restart at
// any tick boundary.
type Progression struct {
	seasonRepo  repositories.SeasonRepository
	catchUp     CatchUpExecutor
	rollover    RolloverCoordinator
	broadcaster EventBroadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewProgression(
	seasonRepo repositories.SeasonRepository,
	catchUp CatchUpExecutor,
	rollover RolloverCoordinator,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) *Progression {
	return &Progression{
		seasonRepo:  seasonRepo,
		catchUp:     catchUp,
		rollover:    rollover,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// classify derives the sync state from the persisted cursor and the clock.
func (p *Progression) classify(season *models.Season, calculatedDay int) SyncState {
	if calculatedDay > season.CurrentDay {
		return StateBehind
	}
	return StateInSync
}

// ReconcileDayState runs one pass of the controller.
func (p *Progression) ReconcileDayState(ctx context.Context) error {
	season, err := p.seasonRepo.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			p.logger.WarnContext(ctx, "no active season, skipping day reconciliation")
			return nil
		}
		return err
	}

	now := p.now()

	// A crossed season boundary supersedes day advancement for this tick.
	if !now.Before(season.EndDate) ||
		gameday.ExpectedSeasonNumber(season.StartDate, season.SeasonNumber, now) > season.SeasonNumber {
		p.logger.InfoContext(ctx, "season boundary reached, delegating to rollover",
			slog.Int("season_number", season.SeasonNumber))
		_, err := p.rollover.Rollover(ctx, season)
		return err
	}

	calculatedDay := gameday.CalculateDay(season.StartDate, now)

	if calculatedDay < season.CurrentDay {
		// Clock anomaly: the cursor is monotonic and never moves back.
		p.logger.WarnContext(ctx, "calculated day behind persisted cursor, ignoring",
			slog.Int("calculated_day", calculatedDay),
			slog.Int("current_day", season.CurrentDay))
		return nil
	}

	switch p.classify(season, calculatedDay) {
	case StateBehind:
		if calculatedDay > gameday.SeasonDays {
			// Derivation anomaly: never force an out-of-range persisted day.
			p.logger.ErrorContext(ctx, "calculated day outside season range, skipping",
				slog.Int("calculated_day", calculatedDay))
			return nil
		}
		return p.catchUpAndAdvance(ctx, season, calculatedDay)

	case StateInSync:
		return p.executeOverdueToday(ctx, season, now)
	}
	return nil
}

// catchUpAndAdvance replays every missed day in order and only then persists
// the new cursor. If the process dies mid-replay the cursor is untouched and
// the next tick re-derives the remaining work from storage, so no day is
// ever skipped.
func (p *Progression) catchUpAndAdvance(ctx context.Context, season *models.Season, calculatedDay int) error {
	p.logger.InfoContext(ctx, "day cursor behind, catching up",
		slog.String("state", StateCatchingUp.String()),
		slog.Int("from_day", season.CurrentDay),
		slog.Int("to_day", calculatedDay))

	for day := season.CurrentDay; day < calculatedDay; day++ {
		exec, err := p.catchUp.ExecuteDay(ctx, season, day)
		if err != nil {
			// One day's failure does not block replay of the later days;
			// its unexecuted matches stay overdue and are retried.
			p.logger.ErrorContext(ctx, "day catch-up failed",
				slog.Int("day", day), slog.Any("error", err))
			continue
		}
		p.logger.InfoContext(ctx, "day caught up",
			slog.Int("day", day),
			slog.Int("attempted", exec.Attempted),
			slog.Int("succeeded", exec.Succeeded),
			slog.Int("failed", exec.Failed))
	}

	advanced, err := p.seasonRepo.AdvanceCurrentDay(ctx, season.ID, calculatedDay)
	if err != nil {
		return err
	}
	if advanced {
		p.broadcaster.BroadcastToRoom(ws.RoomLeague, ws.EventDayAdvanced, map[string]int{
			"season_number": season.SeasonNumber,
			"day":           calculatedDay,
		})
	}
	return nil
}

// executeOverdueToday handles the orthogonal OVERDUE_TODAY condition: the
// cursor is current but a transient failure left matches unsimulated.
func (p *Progression) executeOverdueToday(ctx context.Context, season *models.Season, now time.Time) error {
	exec, err := p.catchUp.ExecuteOverdue(ctx, season, now)
	if err != nil {
		return err
	}
	if exec.Attempted > 0 {
		p.logger.InfoContext(ctx, "executed overdue matches",
			slog.Int("day", season.CurrentDay),
			slog.Int("attempted", exec.Attempted),
			slog.Int("succeeded", exec.Succeeded),
			slog.Int("failed", exec.Failed))
	}
	return nil
}
