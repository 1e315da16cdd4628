package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
)

func TestRoundRobinRoundsCoverEveryPairingOnce(t *testing.T) {
	for _, n := range []int{2, 4, 5, 6, 8} {
		t.Run(fmt.Sprintf("%d_teams", n), func(t *testing.T) {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = i + 1
			}

			rounds := roundRobinRounds(ids)

			wantRounds := n - 1
			if n%2 != 0 {
				wantRounds = n
			}
			if len(rounds) != wantRounds {
				t.Fatalf("rounds = %d, want %d", len(rounds), wantRounds)
			}

			seen := make(map[[2]int]bool)
			for _, round := range rounds {
				teamsThisRound := make(map[int]bool)
				for _, pair := range round {
					a, b := pair[0], pair[1]
					if a == b {
						t.Fatalf("team %d paired with itself", a)
					}
					if teamsThisRound[a] || teamsThisRound[b] {
						t.Fatalf("a team plays twice in one round: %v", round)
					}
					teamsThisRound[a] = true
					teamsThisRound[b] = true

					key := [2]int{min(a, b), max(a, b)}
					if seen[key] {
						t.Fatalf("pairing %v appears twice", key)
					}
					seen[key] = true
				}
			}

			wantPairings := n * (n - 1) / 2
			if len(seen) != wantPairings {
				t.Errorf("distinct pairings = %d, want %d", len(seen), wantPairings)
			}
		})
	}
}

func TestGenerateForSeasonPlacesMatchesInsideDayWindows(t *testing.T) {
	teamRepo := newFakeTeamRepo(
		&models.Team{Name: "A", Division: "east"},
		&models.Team{Name: "B", Division: "east"},
		&models.Team{Name: "C", Division: "west"},
		&models.Team{Name: "D", Division: "west"},
		&models.Team{Name: "Bot X", Division: "east", IsBot: true},
	)
	matchRepo := newFakeMatchRepo()
	gen := NewLeagueScheduler(teamRepo, matchRepo, testLogger())

	start := gameday.CurrentWindowStart(time.Now())
	season := &models.Season{
		ID:        1,
		StartDate: start,
		EndDate:   gameday.SeasonEnd(start),
	}

	if err := gen.GenerateForSeason(context.Background(), season); err != nil {
		t.Fatalf("GenerateForSeason() error = %v", err)
	}

	matches, _ := matchRepo.ListBySeason(context.Background(), 1, listFilter(nil, nil, nil))
	// 4 non-bot teams, 3 rounds of 2 matches.
	if len(matches) != 6 {
		t.Fatalf("matches = %d, want 6", len(matches))
	}

	for _, m := range matches {
		if m.MatchType != models.MatchTypeLeague {
			t.Errorf("match type = %s, want league", m.MatchType)
		}
		if m.Day < 1 || m.Day > gameday.SeasonDays {
			t.Errorf("day %d outside season range", m.Day)
		}

		windowStart, windowEnd := gameday.DayWindow(season.StartDate, m.Day)
		if !m.DayWindowStart.Equal(windowStart) {
			t.Errorf("day %d window start = %v, want %v", m.Day, m.DayWindowStart, windowStart)
		}
		if m.ScheduledAt.Before(windowStart) || !m.ScheduledAt.Before(windowEnd) {
			t.Errorf("scheduled at %v outside window [%v, %v)", m.ScheduledAt, windowStart, windowEnd)
		}

		homeTeam, err := teamRepo.GetByID(context.Background(), m.HomeTeamID)
		if err != nil {
			t.Fatalf("unknown home team %d", m.HomeTeamID)
		}
		if homeTeam.IsBot {
			t.Error("bot team scheduled into the league")
		}
	}
}

func TestGenerateForSeasonNoOpWithoutTeams(t *testing.T) {
	gen := NewLeagueScheduler(newFakeTeamRepo(), newFakeMatchRepo(), testLogger())
	start := gameday.CurrentWindowStart(time.Now())
	season := &models.Season{ID: 1, StartDate: start}

	if err := gen.GenerateForSeason(context.Background(), season); err != nil {
		t.Fatalf("GenerateForSeason() with no teams: error = %v", err)
	}
}
