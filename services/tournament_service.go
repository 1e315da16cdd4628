package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fantasy-arena/backend/brackets"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

type CreateTournamentInput struct {
	Name                 string    `json:"name"`
	Division             string    `json:"division"`
	Capacity             int       `json:"capacity"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
}

// TournamentService is the user-facing surface over tournaments: creation,
// registration, and reads. Lifecycle transitions belong to the bracket
// engine.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	entryRepo      repositories.TournamentEntryRepository
	bracketRepo    repositories.BracketMatchRepository
	teamRepo       repositories.TeamRepository
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	entryRepo repositories.TournamentEntryRepository,
	bracketRepo repositories.BracketMatchRepository,
	teamRepo repositories.TeamRepository,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		entryRepo:      entryRepo,
		bracketRepo:    bracketRepo,
		teamRepo:       teamRepo,
		now:            time.Now,
	}
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.RegistrationDeadline.After(s.now()) {
		return nil, ErrTournamentInvalidDeadline
	}
	if input.Capacity < 2 || !brackets.IsPowerOfTwo(input.Capacity) {
		return nil, ErrTournamentInvalidCapacity
	}

	t := &models.Tournament{
		Name:                 input.Name,
		Division:             input.Division,
		Capacity:             input.Capacity,
		Status:               models.TournamentRegistrationOpen,
		RegistrationDeadline: input.RegistrationDeadline,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return t, nil
}

// RegisterTeam enters a team into an open tournament. The capacity check here
// is advisory; the unique entry constraint and the engine's field validation
// are the hard guarantees.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.TournamentEntry, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentRegistrationOpen {
		return nil, ErrRegistrationNotOpen
	}
	if !s.now().Before(t.RegistrationDeadline) {
		return nil, ErrRegistrationNotOpen
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	count, err := s.entryRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= t.Capacity {
		return nil, ErrTournamentFull
	}

	entry := &models.TournamentEntry{TournamentID: tournamentID, TeamID: teamID}
	if err := s.entryRepo.Create(ctx, nil, entry); err != nil {
		if errors.Is(err, repositories.ErrEntryConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	return entry, nil
}

// Get returns a tournament with its entries and bracket loaded.
func (s *TournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.entryRepo.ListByTournament(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to load entries: %w", err)
		}
		t.Entries = entries
		return nil
	})
	g.Go(func() error {
		matches, err := s.bracketRepo.ListByTournament(gctx, id, nil)
		if err != nil {
			return fmt.Errorf("failed to load bracket: %w", err)
		}
		t.BracketMatches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListByStatus(ctx, status)
}

func (s *TournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}
