package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fantasy-arena/backend/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type ListMatchesFilter struct {
	Day       *int
	Status    *models.MatchStatus
	MatchType *models.MatchType
}

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListBySeason(ctx context.Context, seasonID int, filter ListMatchesFilter) ([]*models.Match, error)
	// ListOverdue returns SCHEDULED matches of the given type whose day is
	// at most maxDay and which are overdue at now: either their scheduled
	// instant has passed, or it falls outside the window their day column
	// nominally assigns them to (stale rows from before the scheduling fix).
	ListOverdue(ctx context.Context, seasonID int, maxDay int, matchType models.MatchType, now time.Time) ([]*models.Match, error)
	UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus, simulated bool) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, season_id, home_team_id, away_team_id, day, day_window_start,
	       scheduled_at, match_type, status, simulated, home_score, away_score, created_at`

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.SeasonID, &m.HomeTeamID, &m.AwayTeamID, &m.Day, &m.DayWindowStart,
		&m.ScheduledAt, &m.MatchType, &m.Status, &m.Simulated, &m.HomeScore, &m.AwayScore, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	if len(matches) == 0 {
		return nil
	}

	query := `
		INSERT INTO matches
			(season_id, home_team_id, away_team_id, day, day_window_start, scheduled_at, match_type, status, simulated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.SeasonID, m.HomeTeamID, m.AwayTeamID, m.Day, m.DayWindowStart, m.ScheduledAt, m.MatchType, m.Status, m.Simulated,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListBySeason(ctx context.Context, seasonID int, filter ListMatchesFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE season_id = $1`)

	args := []interface{}{seasonID}
	placeholderIndex := 2

	if filter.Day != nil {
		queryBuilder.WriteString(" AND day = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Day)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}
	if filter.MatchType != nil {
		queryBuilder.WriteString(" AND match_type = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.MatchType)
	}

	queryBuilder.WriteString(" ORDER BY day ASC, scheduled_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListOverdue(ctx context.Context, seasonID int, maxDay int, matchType models.MatchType, now time.Time) ([]*models.Match, error) {
	// The second disjunct catches rows whose scheduled_at disagrees with
	// their day window: day_window_start is stored alongside the match at
	// schedule-generation time.
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE season_id = $1
		  AND day <= $2
		  AND match_type = $3
		  AND status = $4
		  AND (
			scheduled_at <= $5
			OR scheduled_at < day_window_start
			OR scheduled_at >= day_window_start + INTERVAL '24 hours'
		  )
		ORDER BY day ASC, scheduled_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID, maxDay, matchType, models.MatchStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue matches for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus, simulated bool) error {
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, status = $3, simulated = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, homeScore, awayScore, status, simulated, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
