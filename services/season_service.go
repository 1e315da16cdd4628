package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

// SeasonService is the read surface over seasons plus first-boot
// initialization.
type SeasonService struct {
	seasonRepo  repositories.SeasonRepository
	matchRepo   repositories.MatchRepository
	scheduleGen ScheduleGenerator
	logger      *slog.Logger
	now         func() time.Time
}

func NewSeasonService(
	seasonRepo repositories.SeasonRepository,
	matchRepo repositories.MatchRepository,
	scheduleGen ScheduleGenerator,
	logger *slog.Logger,
) *SeasonService {
	return &SeasonService{
		seasonRepo:  seasonRepo,
		matchRepo:   matchRepo,
		scheduleGen: scheduleGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SeasonService) GetCurrent(ctx context.Context) (*models.Season, error) {
	season, err := s.seasonRepo.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (s *SeasonService) GetByID(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

// ListMatches returns a season's matches, optionally narrowed by day, status
// or type.
func (s *SeasonService) ListMatches(ctx context.Context, seasonID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	if _, err := s.GetByID(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListBySeason(ctx, seasonID, filter)
}

// Bootstrap creates season 1 if no season exists yet. The season starts at
// the boundary of the current day window so the persisted cursor and the
// calculated day agree from the first tick.
func (s *SeasonService) Bootstrap(ctx context.Context) error {
	_, err := s.seasonRepo.GetCurrent(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrSeasonNotFound) {
		return err
	}

	now := s.now()
	start := gameday.CurrentWindowStart(now)
	season := &models.Season{
		SeasonNumber: 1,
		StartDate:    start,
		EndDate:      gameday.SeasonEnd(start),
		CurrentDay:   1,
		Phase:        models.PhaseRegularSeason,
	}
	if err := s.seasonRepo.Create(ctx, nil, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonNumberConflict) {
			// A concurrent boot won the race.
			return nil
		}
		return fmt.Errorf("failed to create initial season: %w", err)
	}

	s.logger.InfoContext(ctx, "initial season created",
		slog.Time("start_date", season.StartDate),
		slog.Time("end_date", season.EndDate))

	if err := s.scheduleGen.GenerateForSeason(ctx, season); err != nil {
		return fmt.Errorf("failed to generate initial schedule: %w", err)
	}
	return nil
}
