package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fantasy-arena/backend/models"
)

var ErrSeasonStandingNotFound = errors.New("season standing not found")

type SeasonStandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error
	ListBySeason(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error)
}

type postgresSeasonStandingRepository struct {
	db *sql.DB
}

func NewPostgresSeasonStandingRepository(db *sql.DB) SeasonStandingRepository {
	return &postgresSeasonStandingRepository{db: db}
}

func (r *postgresSeasonStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error {
	executor := r.getExecutor(exec)
	if len(standings) == 0 {
		return nil
	}

	query := `
		INSERT INTO season_standings
			(season_id, team_id, points, games_played, wins, draws, losses, score_for, score_against, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	for _, s := range standings {
		err := executor.QueryRowContext(ctx, query,
			s.SeasonID, s.TeamID, s.Points, s.GamesPlayed, s.Wins, s.Draws, s.Losses,
			s.ScoreFor, s.ScoreAgainst, s.Rank,
		).Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create standing for season %d team %d: %w", s.SeasonID, s.TeamID, err)
		}
	}
	return nil
}

func (r *postgresSeasonStandingRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	query := `
		SELECT id, season_id, team_id, points, games_played, wins, draws, losses, score_for, score_against, rank, created_at
		FROM season_standings
		WHERE season_id = $1
		ORDER BY rank ASC, team_id ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	standings := make([]*models.SeasonStanding, 0)
	for rows.Next() {
		var s models.SeasonStanding
		if scanErr := rows.Scan(
			&s.ID, &s.SeasonID, &s.TeamID, &s.Points, &s.GamesPlayed, &s.Wins, &s.Draws,
			&s.Losses, &s.ScoreFor, &s.ScoreAgainst, &s.Rank, &s.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}
