// Package brackets holds the pure pairing math for single-elimination
// tournaments. It never touches storage; the bracket engine persists and
// schedules what is generated here.
package brackets

import (
	"errors"
	"fmt"

	"github.com/fantasy-arena/backend/models"
)

var (
	ErrFieldNotPowerOfTwo = errors.New("participant count must be a power of two")
	ErrFieldTooSmall      = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrRoundIncomplete    = errors.New("round has matches that are not completed")
	ErrRoundIsFinal       = errors.New("round already produced a single winner")
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FirstRound pairs a full field into round-1 matches in entry order:
// entry 1 vs entry 2, entry 3 vs entry 4, and so on. The field must be a
// power of two; filling short fields is the caller's job.
func FirstRound(teamIDs []int) ([]*models.BracketMatch, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, ErrFieldTooSmall
	}
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d", ErrFieldNotPowerOfTwo, n)
	}

	matches := make([]*models.BracketMatch, 0, n/2)
	for i := 0; i < n; i += 2 {
		matches = append(matches, &models.BracketMatch{
			Round:        1,
			OrderInRound: i/2 + 1,
			Home:         models.ResolvedSlot(teamIDs[i]),
			Away:         models.ResolvedSlot(teamIDs[i+1]),
			Status:       models.MatchStatusScheduled,
		})
	}
	return matches, nil
}

// NextRound builds round r+1 from a fully completed round r. Matches are
// paired in bracket order (winner of match 1 vs winner of match 2, ...);
// slots are created Pending against their source matches so a crash
// between creation and resolution loses nothing.
func NextRound(round []*models.BracketMatch) ([]*models.BracketMatch, error) {
	if len(round) == 0 {
		return nil, ErrRoundIncomplete
	}
	if len(round) == 1 {
		return nil, ErrRoundIsFinal
	}
	if len(round)%2 != 0 {
		return nil, fmt.Errorf("%w: %d matches in round %d", ErrFieldNotPowerOfTwo, len(round), round[0].Round)
	}
	for _, m := range round {
		if m.Status != models.MatchStatusCompleted || m.WinnerTeamID == nil {
			return nil, fmt.Errorf("%w: match %d", ErrRoundIncomplete, m.ID)
		}
	}

	next := make([]*models.BracketMatch, 0, len(round)/2)
	for i := 0; i < len(round); i += 2 {
		next = append(next, &models.BracketMatch{
			TournamentID: round[i].TournamentID,
			Round:        round[i].Round + 1,
			OrderInRound: i/2 + 1,
			Home:         models.PendingSlot(round[i].ID),
			Away:         models.PendingSlot(round[i+1].ID),
			Status:       models.MatchStatusScheduled,
		})
	}
	return next, nil
}

// WinnerOf returns the winner of the identified source match, if completed.
func WinnerOf(matches []*models.BracketMatch, sourceMatchID int) *int {
	for _, m := range matches {
		if m.ID == sourceMatchID && m.Status == models.MatchStatusCompleted {
			return m.WinnerTeamID
		}
	}
	return nil
}
