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
	ErrEntryNotFound = errors.New("tournament entry not found")
	ErrEntryConflict = errors.New("team is already registered for this tournament")
)

type TournamentEntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.TournamentEntry) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentEntry, error)
	UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, teamID, placement int) error
}

type postgresTournamentEntryRepository struct {
	db *sql.DB
}

func NewPostgresTournamentEntryRepository(db *sql.DB) TournamentEntryRepository {
	return &postgresTournamentEntryRepository{db: db}
}

func (r *postgresTournamentEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentEntryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.TournamentEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_entries (tournament_id, team_id)
		VALUES ($1, $2)
		RETURNING id, registered_at`

	err := executor.QueryRowContext(ctx, query, entry.TournamentID, entry.TeamID).
		Scan(&entry.ID, &entry.RegisteredAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		if pqErr.Constraint == "tournament_entries_tournament_id_team_id_key" {
			return ErrEntryConflict
		}
	}
	return err
}

func (r *postgresTournamentEntryRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tournament_entries WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresTournamentEntryRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentEntry, error) {
	query := `
		SELECT id, tournament_id, team_id, registered_at, placement
		FROM tournament_entries
		WHERE tournament_id = $1
		ORDER BY registered_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]*models.TournamentEntry, 0)
	for rows.Next() {
		var e models.TournamentEntry
		if scanErr := rows.Scan(&e.ID, &e.TournamentID, &e.TeamID, &e.RegisteredAt, &e.Placement); scanErr != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during entry rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresTournamentEntryRepository) UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, teamID, placement int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournament_entries SET placement = $1 WHERE tournament_id = $2 AND team_id = $3`
	result, err := executor.ExecContext(ctx, query, placement, tournamentID, teamID)
	if err != nil {
		return fmt.Errorf("failed to update placement for tournament %d team %d: %w", tournamentID, teamID, err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}
