package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fantasy-arena/backend/models"
	"github.com/lib/pq"
)

var (
	ErrBracketMatchNotFound = errors.New("bracket match not found")
	ErrBracketSlotConflict  = errors.New("bracket match round/order conflict")
)

type BracketMatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.BracketMatch, error)
	UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus, winnerTeamID int) error
	// ResolveSlots fills the team side of pending slots. Nil arguments
	// leave the corresponding slot untouched.
	ResolveSlots(ctx context.Context, exec SQLExecutor, id int, homeTeamID, awayTeamID *int) error
}

type postgresBracketMatchRepository struct {
	db *sql.DB
}

func NewPostgresBracketMatchRepository(db *sql.DB) BracketMatchRepository {
	return &postgresBracketMatchRepository{db: db}
}

func (r *postgresBracketMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const bracketMatchColumns = `id, tournament_id, round, order_in_round,
	       home_team_id, home_source_match_id, away_team_id, away_source_match_id,
	       status, home_score, away_score, winner_team_id, scheduled_at, created_at`

func scanBracketMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.BracketMatch, error) {
	var m models.BracketMatch
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.OrderInRound,
		&m.Home.TeamID, &m.Home.SourceMatchID, &m.Away.TeamID, &m.Away.SourceMatchID,
		&m.Status, &m.HomeScore, &m.AwayScore, &m.WinnerTeamID, &m.ScheduledAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresBracketMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches
			(tournament_id, round, order_in_round,
			 home_team_id, home_source_match_id, away_team_id, away_source_match_id,
			 status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.Round, m.OrderInRound,
			m.Home.TeamID, m.Home.SourceMatchID, m.Away.TeamID, m.Away.SourceMatchID,
			m.Status, m.ScheduledAt,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return r.handleBracketMatchError(err)
		}
	}
	return nil
}

func (r *postgresBracketMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.BracketMatch, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + bracketMatchColumns + ` FROM bracket_matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if round != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(2))
		args = append(args, *round)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, order_in_round ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bracket matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.BracketMatch, 0)
	for rows.Next() {
		m, scanErr := scanBracketMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresBracketMatchRepository) UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus, winnerTeamID int) error {
	query := `
		UPDATE bracket_matches
		SET home_score = $1, away_score = $2, status = $3, winner_team_id = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, homeScore, awayScore, status, winnerTeamID, id)
	if err != nil {
		return r.handleBracketMatchError(err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}

func (r *postgresBracketMatchRepository) ResolveSlots(ctx context.Context, exec SQLExecutor, id int, homeTeamID, awayTeamID *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE bracket_matches
		SET home_team_id = COALESCE($1, home_team_id),
		    away_team_id = COALESCE($2, away_team_id)
		WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, homeTeamID, awayTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to resolve slots for bracket match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}

func (r *postgresBracketMatchRepository) handleBracketMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		if pqErr.Constraint == "bracket_matches_tournament_id_round_order_in_round_key" {
			return ErrBracketSlotConflict
		}
	}
	return err
}
