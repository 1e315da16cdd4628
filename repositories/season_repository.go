package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fantasy-arena/backend/models"
	"github.com/lib/pq"
)

var (
	ErrSeasonNotFound       = errors.New("season not found")
	ErrSeasonNumberConflict = errors.New("season number already exists")
)

type SeasonRepository interface {
	Create(ctx context.Context, exec SQLExecutor, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	// GetCurrent returns the latest season that has not ended.
	GetCurrent(ctx context.Context) (*models.Season, error)
	// GetPhaseForUpdate locks the season row inside the given transaction
	// and returns its phase. Used as the rollover single-shot guard.
	GetPhaseForUpdate(ctx context.Context, exec SQLExecutor, id int) (models.SeasonPhase, error)
	// AdvanceCurrentDay moves the day cursor forward. The update is guarded
	// so the cursor never moves backwards; a stale write reports advanced=false.
	AdvanceCurrentDay(ctx context.Context, id int, day int) (advanced bool, err error)
	UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.SeasonPhase) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, season *models.Season) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO seasons (season_number, start_date, end_date, current_day, phase)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		season.SeasonNumber, season.StartDate, season.EndDate, season.CurrentDay, season.Phase,
	).Scan(&season.ID, &season.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrSeasonNumberConflict
	}
	return err
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `
		SELECT id, season_number, start_date, end_date, current_day, phase, created_at
		FROM seasons
		WHERE id = $1`

	s := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.SeasonNumber, &s.StartDate, &s.EndDate, &s.CurrentDay, &s.Phase, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSeasonRepository) GetCurrent(ctx context.Context) (*models.Season, error) {
	query := `
		SELECT id, season_number, start_date, end_date, current_day, phase, created_at
		FROM seasons
		WHERE phase != $1
		ORDER BY season_number DESC
		LIMIT 1`

	s := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, models.PhaseEnded).Scan(
		&s.ID, &s.SeasonNumber, &s.StartDate, &s.EndDate, &s.CurrentDay, &s.Phase, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan current season: %w", err)
	}
	return s, nil
}

func (r *postgresSeasonRepository) GetPhaseForUpdate(ctx context.Context, exec SQLExecutor, id int) (models.SeasonPhase, error) {
	executor := r.getExecutor(exec)
	query := `SELECT phase FROM seasons WHERE id = $1 FOR UPDATE`

	var phase models.SeasonPhase
	err := executor.QueryRowContext(ctx, query, id).Scan(&phase)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSeasonNotFound
		}
		return "", err
	}
	return phase, nil
}

func (r *postgresSeasonRepository) AdvanceCurrentDay(ctx context.Context, id int, day int) (bool, error) {
	query := `UPDATE seasons SET current_day = $1 WHERE id = $2 AND current_day < $1`
	result, err := r.db.ExecContext(ctx, query, day, id)
	if err != nil {
		return false, fmt.Errorf("failed to advance current day for season %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresSeasonRepository) UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.SeasonPhase) error {
	executor := r.getExecutor(exec)
	query := `UPDATE seasons SET phase = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, phase, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}
