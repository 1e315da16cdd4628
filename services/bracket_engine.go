package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fantasy-arena/backend/brackets"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/ws"
)

const (
	// roundDelay is how far in the future newly created bracket matches are
	// scheduled, giving clients time to show the pairings before kickoff.
	defaultRoundDelay = 10 * time.Minute

	placementWinner    = 1
	placementRunnerUp  = 2
	placementSemifinal = 3

	bracketSimTimeout = 30 * time.Second
)

// BracketEngine drives every tournament through its lifecycle:
// registration close (with bot fill), round generation, match execution and
// winner advancement, completion and placements. Tournaments are independent
// units of work; one tournament's failure never stops the others.
type BracketEngine struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	entryRepo      repositories.TournamentEntryRepository
	bracketRepo    repositories.BracketMatchRepository
	provisioner    TeamProvisioner
	simulator      MatchSimulator
	broadcaster    EventBroadcaster
	logger         *slog.Logger
	now            func() time.Time
	roundDelay     time.Duration
}

func NewBracketEngine(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	entryRepo repositories.TournamentEntryRepository,
	bracketRepo repositories.BracketMatchRepository,
	provisioner TeamProvisioner,
	simulator MatchSimulator,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) *BracketEngine {
	return &BracketEngine{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		entryRepo:      entryRepo,
		bracketRepo:    bracketRepo,
		provisioner:    provisioner,
		simulator:      simulator,
		broadcaster:    broadcaster,
		logger:         logger,
		now:            time.Now,
		roundDelay:     defaultRoundDelay,
	}
}

// ReconcileTournaments runs one pass over all tournaments that may need a
// state transition.
func (e *BracketEngine) ReconcileTournaments(ctx context.Context) error {
	open, err := e.tournamentRepo.ListByStatus(ctx, models.TournamentRegistrationOpen)
	if err != nil {
		return fmt.Errorf("failed to list open tournaments: %w", err)
	}
	now := e.now()
	for _, t := range open {
		count, err := e.entryRepo.CountByTournament(ctx, t.ID)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to count tournament entries",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		if now.Before(t.RegistrationDeadline) && count < t.Capacity {
			continue
		}
		if err := e.startTournament(ctx, t, count); err != nil {
			e.logger.ErrorContext(ctx, "failed to start tournament",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}

	active, err := e.tournamentRepo.ListByStatus(ctx, models.TournamentInProgress)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}
	for _, t := range active {
		if err := e.advanceTournament(ctx, t); err != nil {
			e.logger.ErrorContext(ctx, "failed to advance tournament",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}
	return nil
}

// startTournament closes registration: fills the field to capacity with bot
// teams if needed, then generates round 1. The status transition is the
// concurrency gate; a tick that loses the race does nothing.
func (e *BracketEngine) startTournament(ctx context.Context, t *models.Tournament, entryCount int) error {
	if entryCount > t.Capacity {
		return fmt.Errorf("%w: tournament %d has %d entries for capacity %d",
			ErrBracketFieldInvalid, t.ID, entryCount, t.Capacity)
	}

	// Fill before generate: the bracket generator never sees a short field.
	if entryCount < t.Capacity {
		need := t.Capacity - entryCount
		teamIDs, err := e.provisioner.FillTournament(ctx, t.ID, need)
		if err != nil {
			return fmt.Errorf("failed to provision %d filler teams: %w", need, err)
		}
		if len(teamIDs) != need {
			return fmt.Errorf("%w: provisioner returned %d teams, wanted %d",
				ErrBracketFieldInvalid, len(teamIDs), need)
		}
		for _, teamID := range teamIDs {
			entry := &models.TournamentEntry{TournamentID: t.ID, TeamID: teamID}
			if err := e.entryRepo.Create(ctx, nil, entry); err != nil {
				return fmt.Errorf("failed to register filler team %d: %w", teamID, err)
			}
		}
		e.logger.InfoContext(ctx, "tournament field filled",
			slog.Int("tournament_id", t.ID), slog.Int("fillers", need))
	}

	entries, err := e.entryRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(entries) != t.Capacity || !brackets.IsPowerOfTwo(len(entries)) {
		return fmt.Errorf("%w: tournament %d has %d entries after fill",
			ErrBracketFieldInvalid, t.ID, len(entries))
	}

	teamIDs := make([]int, len(entries))
	for i, entry := range entries {
		teamIDs[i] = entry.TeamID
	}

	matches, err := brackets.FirstRound(teamIDs)
	if err != nil {
		return err
	}
	kickoff := e.now().Add(e.roundDelay)
	for _, m := range matches {
		m.TournamentID = t.ID
		m.ScheduledAt = kickoff
	}

	err = e.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := e.tournamentRepo.UpdateStatusGuarded(ctx, exec, t.ID,
			models.TournamentRegistrationOpen, models.TournamentInProgress); err != nil {
			return err
		}
		return e.bracketRepo.CreateBatch(ctx, exec, matches)
	})
	if errors.Is(err, repositories.ErrTournamentStatusStale) {
		// Another tick started this tournament first.
		return nil
	}
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "tournament started",
		slog.Int("tournament_id", t.ID), slog.Int("round_1_matches", len(matches)))
	e.broadcaster.BroadcastToRoom(ws.TournamentRoom(t.ID), ws.EventBracketUpdated, map[string]int{
		"tournament_id": t.ID,
		"round":         1,
	})
	return nil
}

// advanceTournament resolves pending slots, executes due bracket matches,
// and creates the next round (or completes the tournament) once the current
// round has fully resolved.
func (e *BracketEngine) advanceTournament(ctx context.Context, t *models.Tournament) error {
	all, err := e.bracketRepo.ListByTournament(ctx, t.ID, nil)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("%w: tournament %d is in progress with no bracket", ErrBracketFieldInvalid, t.ID)
	}

	changed := e.resolvePendingSlots(ctx, all)
	if e.simulateDueMatches(ctx, all) {
		changed = true
	}

	maxRound := 0
	for _, m := range all {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	lastRound := make([]*models.BracketMatch, 0)
	for _, m := range all {
		if m.Round == maxRound {
			lastRound = append(lastRound, m)
		}
	}

	roundComplete := true
	for _, m := range lastRound {
		if m.Status != models.MatchStatusCompleted {
			roundComplete = false
			break
		}
	}

	if roundComplete {
		if len(lastRound) == 1 {
			return e.completeTournament(ctx, t, all, lastRound[0])
		}
		if err := e.createNextRound(ctx, t, all, lastRound); err != nil {
			return err
		}
		changed = true
	}

	if changed {
		e.broadcaster.BroadcastToRoom(ws.TournamentRoom(t.ID), ws.EventBracketUpdated, map[string]int{
			"tournament_id": t.ID,
		})
	}
	return nil
}

// resolvePendingSlots fills Pending slots whose source matches have
// completed. Runs every tick so a crash between round creation and slot
// resolution heals itself.
func (e *BracketEngine) resolvePendingSlots(ctx context.Context, all []*models.BracketMatch) bool {
	changed := false
	for _, m := range all {
		if m.Status != models.MatchStatusScheduled {
			continue
		}
		var home, away *int
		if !m.Home.Resolved() && m.Home.SourceMatchID != nil {
			home = brackets.WinnerOf(all, *m.Home.SourceMatchID)
		}
		if !m.Away.Resolved() && m.Away.SourceMatchID != nil {
			away = brackets.WinnerOf(all, *m.Away.SourceMatchID)
		}
		if home == nil && away == nil {
			continue
		}
		if err := e.bracketRepo.ResolveSlots(ctx, nil, m.ID, home, away); err != nil {
			e.logger.ErrorContext(ctx, "failed to resolve bracket slots",
				slog.Int("bracket_match_id", m.ID), slog.Any("error", err))
			continue
		}
		if home != nil {
			m.Home.TeamID = home
		}
		if away != nil {
			m.Away.TeamID = away
		}
		changed = true
	}
	return changed
}

// simulateDueMatches executes bracket matches whose kickoff has passed and
// whose both slots are resolved. A failed simulation leaves the match
// scheduled for the next tick.
func (e *BracketEngine) simulateDueMatches(ctx context.Context, all []*models.BracketMatch) bool {
	now := e.now()
	changed := false
	for _, m := range all {
		if m.Status != models.MatchStatusScheduled || !m.Home.Resolved() || !m.Away.Resolved() {
			continue
		}
		if now.Before(m.ScheduledAt) {
			continue
		}

		matchCtx, cancel := context.WithTimeout(ctx, bracketSimTimeout)
		homeScore, awayScore, err := e.simulator.Simulate(matchCtx, *m.Home.TeamID, *m.Away.TeamID)
		cancel()
		if err != nil {
			e.logger.ErrorContext(ctx, "bracket match simulation failed",
				slog.Int("bracket_match_id", m.ID), slog.Any("error", err))
			continue
		}
		// Knockout matches cannot draw; the home side takes a level tie.
		if homeScore == awayScore {
			homeScore++
		}
		winner := *m.Home.TeamID
		if awayScore > homeScore {
			winner = *m.Away.TeamID
		}

		if err := e.bracketRepo.UpdateResult(ctx, m.ID, homeScore, awayScore, models.MatchStatusCompleted, winner); err != nil {
			e.logger.ErrorContext(ctx, "failed to store bracket match result",
				slog.Int("bracket_match_id", m.ID), slog.Any("error", err))
			continue
		}
		m.HomeScore, m.AwayScore = &homeScore, &awayScore
		m.Status = models.MatchStatusCompleted
		m.WinnerTeamID = &winner
		changed = true
	}
	return changed
}

func (e *BracketEngine) createNextRound(ctx context.Context, t *models.Tournament, all, lastRound []*models.BracketMatch) error {
	next, err := brackets.NextRound(lastRound)
	if err != nil {
		return fmt.Errorf("failed to pair round %d winners for tournament %d: %w",
			lastRound[0].Round, t.ID, err)
	}
	kickoff := e.now().Add(e.roundDelay)
	for _, m := range next {
		m.ScheduledAt = kickoff
	}

	err = e.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return e.bracketRepo.CreateBatch(ctx, exec, next)
	})
	if errors.Is(err, repositories.ErrBracketSlotConflict) {
		// Another tick created this round first.
		return nil
	}
	if err != nil {
		return err
	}

	// Winners are already known, so resolve the fresh pending slots now;
	// resolvePendingSlots covers the crash window on the next tick.
	e.resolvePendingSlots(ctx, append(all, next...))

	e.logger.InfoContext(ctx, "bracket round created",
		slog.Int("tournament_id", t.ID),
		slog.Int("round", next[0].Round),
		slog.Int("matches", len(next)))
	return nil
}

// completeTournament records the final result and placements: winner 1,
// losing finalist 2, semifinal losers 3.
func (e *BracketEngine) completeTournament(ctx context.Context, t *models.Tournament, all []*models.BracketMatch, final *models.BracketMatch) error {
	if final.WinnerTeamID == nil {
		return fmt.Errorf("%w: final of tournament %d completed without a winner", ErrBracketFieldInvalid, t.ID)
	}
	winner := *final.WinnerTeamID
	runnerUp := final.LoserTeamID()

	err := e.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := e.tournamentRepo.UpdateStatusGuarded(ctx, exec, t.ID,
			models.TournamentInProgress, models.TournamentCompleted); err != nil {
			return err
		}
		if err := e.tournamentRepo.SetWinner(ctx, exec, t.ID, winner); err != nil {
			return err
		}
		if err := e.entryRepo.UpdatePlacement(ctx, exec, t.ID, winner, placementWinner); err != nil {
			return err
		}
		if runnerUp != nil {
			if err := e.entryRepo.UpdatePlacement(ctx, exec, t.ID, *runnerUp, placementRunnerUp); err != nil {
				return err
			}
		}
		for _, m := range all {
			if m.Round != final.Round-1 {
				continue
			}
			if loser := m.LoserTeamID(); loser != nil {
				if err := e.entryRepo.UpdatePlacement(ctx, exec, t.ID, *loser, placementSemifinal); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, repositories.ErrTournamentStatusStale) {
		return nil
	}
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "tournament completed",
		slog.Int("tournament_id", t.ID), slog.Int("winner_team_id", winner))
	e.broadcaster.BroadcastToRoom(ws.TournamentRoom(t.ID), ws.EventTournamentCompleted, map[string]int{
		"tournament_id":  t.ID,
		"winner_team_id": winner,
	})
	return nil
}
