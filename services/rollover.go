package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/ws"
)

// rolloverCoordinator closes an expiring season and opens the next one.
// Effectively single-shot: the phase is re-checked under a row lock inside
// the transaction, so concurrent or repeated invocations create exactly one
// new season.
type rolloverCoordinator struct {
	txRunner    repositories.TxRunner
	seasonRepo  repositories.SeasonRepository
	effects     SeasonEndEffects
	scheduleGen ScheduleGenerator
	broadcaster EventBroadcaster
	logger      *slog.Logger
}

func NewRolloverCoordinator(
	txRunner repositories.TxRunner,
	seasonRepo repositories.SeasonRepository,
	effects SeasonEndEffects,
	scheduleGen ScheduleGenerator,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) RolloverCoordinator {
	return &rolloverCoordinator{
		txRunner:    txRunner,
		seasonRepo:  seasonRepo,
		effects:     effects,
		scheduleGen: scheduleGen,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (c *rolloverCoordinator) Rollover(ctx context.Context, expiring *models.Season) (*models.Season, error) {
	if expiring.Phase == models.PhaseEnded {
		// Already rolled over; the successor was created in the same
		// transaction that ended this season.
		return c.seasonRepo.GetCurrent(ctx)
	}

	next := &models.Season{
		SeasonNumber: expiring.SeasonNumber + 1,
		StartDate:    expiring.EndDate,
		EndDate:      gameday.SeasonEnd(expiring.EndDate),
		CurrentDay:   1,
		Phase:        models.PhaseRegularSeason,
	}

	var alreadyEnded bool
	err := c.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		phase, err := c.seasonRepo.GetPhaseForUpdate(ctx, exec, expiring.ID)
		if err != nil {
			return err
		}
		if phase == models.PhaseEnded {
			alreadyEnded = true
			return nil
		}
		if err := c.seasonRepo.UpdatePhase(ctx, exec, expiring.ID, models.PhaseEnded); err != nil {
			return err
		}
		return c.seasonRepo.Create(ctx, exec, next)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll over season %d: %w", expiring.SeasonNumber, err)
	}
	if alreadyEnded {
		return c.seasonRepo.GetCurrent(ctx)
	}

	c.logger.InfoContext(ctx, "season rolled over",
		slog.Int("ended_season", expiring.SeasonNumber),
		slog.Int("new_season", next.SeasonNumber))

	// Post-commit effects are fire-and-forget: the rollover itself is done.
	if c.effects != nil {
		if err := c.effects.Apply(ctx, expiring.ID); err != nil {
			c.logger.ErrorContext(ctx, "season-end effects failed",
				slog.Int("season_id", expiring.ID), slog.Any("error", err))
		}
	}
	if c.scheduleGen != nil {
		if err := c.scheduleGen.GenerateForSeason(ctx, next); err != nil {
			c.logger.ErrorContext(ctx, "schedule generation for new season failed",
				slog.Int("season_id", next.ID), slog.Any("error", err))
		}
	}

	c.broadcaster.BroadcastToRoom(ws.RoomLeague, ws.EventSeasonRolledOver, map[string]int{
		"ended_season":  expiring.SeasonNumber,
		"new_season":    next.SeasonNumber,
		"new_season_id": next.ID,
	})
	return next, nil
}
