package brackets

import (
	"errors"
	"testing"

	"github.com/fantasy-arena/backend/models"
)

func completeMatch(m *models.BracketMatch, winnerID int) {
	m.Status = models.MatchStatusCompleted
	m.WinnerTeamID = &winnerID
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 64} {
		if !IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, -4, 3, 6, 12, 100} {
		if IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", n)
		}
	}
}

func TestFirstRoundPairsInEntryOrder(t *testing.T) {
	teams := []int{11, 22, 33, 44, 55, 66, 77, 88}

	matches, err := FirstRound(teams)
	if err != nil {
		t.Fatalf("FirstRound() error = %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}

	for i, m := range matches {
		if m.Round != 1 {
			t.Errorf("match %d round = %d, want 1", i, m.Round)
		}
		if m.OrderInRound != i+1 {
			t.Errorf("match %d order = %d, want %d", i, m.OrderInRound, i+1)
		}
		if !m.Home.Resolved() || !m.Away.Resolved() {
			t.Fatalf("match %d has unresolved slots", i)
		}
		if *m.Home.TeamID != teams[i*2] || *m.Away.TeamID != teams[i*2+1] {
			t.Errorf("match %d pairing = %d vs %d, want %d vs %d",
				i, *m.Home.TeamID, *m.Away.TeamID, teams[i*2], teams[i*2+1])
		}
	}
}

func TestFirstRoundRejectsInvalidFields(t *testing.T) {
	if _, err := FirstRound([]int{1}); !errors.Is(err, ErrFieldTooSmall) {
		t.Errorf("single entry: error = %v, want ErrFieldTooSmall", err)
	}
	if _, err := FirstRound([]int{1, 2, 3, 4, 5, 6}); !errors.Is(err, ErrFieldNotPowerOfTwo) {
		t.Errorf("six entries: error = %v, want ErrFieldNotPowerOfTwo", err)
	}
}

func TestNextRoundShrinksBracket(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5, 6, 7, 8}
	round1, err := FirstRound(teams)
	if err != nil {
		t.Fatalf("FirstRound() error = %v", err)
	}

	// Home side wins every match.
	for i, m := range round1 {
		m.ID = 100 + i
		completeMatch(m, *m.Home.TeamID)
	}

	round2, err := NextRound(round1)
	if err != nil {
		t.Fatalf("NextRound() error = %v", err)
	}
	if len(round2) != 2 {
		t.Fatalf("round 2 has %d matches, want 2", len(round2))
	}

	for i, m := range round2 {
		if m.Round != 2 {
			t.Errorf("round = %d, want 2", m.Round)
		}
		if m.Home.Resolved() || m.Away.Resolved() {
			t.Fatalf("round 2 match %d should have pending slots", i)
		}
		if *m.Home.SourceMatchID != round1[i*2].ID || *m.Away.SourceMatchID != round1[i*2+1].ID {
			t.Errorf("match %d sources = %d, %d, want %d, %d",
				i, *m.Home.SourceMatchID, *m.Away.SourceMatchID, round1[i*2].ID, round1[i*2+1].ID)
		}
	}

	for i, m := range round2 {
		m.ID = 200 + i
		winner := WinnerOf(round1, *m.Home.SourceMatchID)
		if winner == nil {
			t.Fatal("WinnerOf returned nil for completed source")
		}
		completeMatch(m, *winner)
	}

	final, err := NextRound(round2)
	if err != nil {
		t.Fatalf("NextRound(round2) error = %v", err)
	}
	if len(final) != 1 {
		t.Fatalf("final round has %d matches, want 1", len(final))
	}
	if final[0].Round != 3 {
		t.Errorf("final round = %d, want 3", final[0].Round)
	}
}

func TestNextRoundRequiresCompletedRound(t *testing.T) {
	round1, _ := FirstRound([]int{1, 2, 3, 4})
	round1[0].ID = 1
	round1[1].ID = 2
	completeMatch(round1[0], 1)
	// round1[1] still scheduled.

	if _, err := NextRound(round1); !errors.Is(err, ErrRoundIncomplete) {
		t.Errorf("error = %v, want ErrRoundIncomplete", err)
	}
}

func TestNextRoundStopsAtFinal(t *testing.T) {
	final := []*models.BracketMatch{{
		ID:     9,
		Round:  3,
		Home:   models.ResolvedSlot(1),
		Away:   models.ResolvedSlot(2),
		Status: models.MatchStatusCompleted,
	}}
	winner := 1
	final[0].WinnerTeamID = &winner

	if _, err := NextRound(final); !errors.Is(err, ErrRoundIsFinal) {
		t.Errorf("error = %v, want ErrRoundIsFinal", err)
	}
}

func TestWinnerOf(t *testing.T) {
	matches, _ := FirstRound([]int{1, 2, 3, 4})
	matches[0].ID = 10
	matches[1].ID = 11
	completeMatch(matches[0], 2)

	if got := WinnerOf(matches, 10); got == nil || *got != 2 {
		t.Errorf("WinnerOf(10) = %v, want 2", got)
	}
	if got := WinnerOf(matches, 11); got != nil {
		t.Errorf("WinnerOf(incomplete) = %v, want nil", got)
	}
	if got := WinnerOf(matches, 999); got != nil {
		t.Errorf("WinnerOf(unknown) = %v, want nil", got)
	}
}
