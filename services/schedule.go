package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

// kickoffOffset places league fixtures in the evening of their day window,
// 15 hours after the 03:00 boundary.
const kickoffOffset = 15 * time.Hour

// leagueScheduler generates each season's league fixtures with the circle
// method: every pairing is spread over the season's days, one matchday per
// in-game day. Bot teams never enter the league.
type leagueScheduler struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	logger    *slog.Logger
}

func NewLeagueScheduler(teamRepo repositories.TeamRepository, matchRepo repositories.MatchRepository, logger *slog.Logger) ScheduleGenerator {
	return &leagueScheduler{teamRepo: teamRepo, matchRepo: matchRepo, logger: logger}
}

func (g *leagueScheduler) GenerateForSeason(ctx context.Context, season *models.Season) error {
	teams, err := g.teamRepo.List(ctx, nil, false)
	if err != nil {
		return fmt.Errorf("failed to list teams for scheduling: %w", err)
	}
	if len(teams) < 2 {
		g.logger.WarnContext(ctx, "not enough teams to schedule a season",
			slog.Int("season_id", season.ID), slog.Int("teams", len(teams)))
		return nil
	}

	teamIDs := make([]int, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	rounds := roundRobinRounds(teamIDs)
	matches := make([]*models.Match, 0, len(rounds)*len(teamIDs)/2)
	for i, round := range rounds {
		// Matchdays wrap when there are more season days than rounds; the
		// remaining days carry no league fixtures only in the reverse case.
		day := i%gameday.SeasonDays + 1
		windowStart, _ := gameday.DayWindow(season.StartDate, day)
		for _, pair := range round {
			matches = append(matches, &models.Match{
				SeasonID:       season.ID,
				HomeTeamID:     pair[0],
				AwayTeamID:     pair[1],
				Day:            day,
				DayWindowStart: windowStart,
				ScheduledAt:    windowStart.Add(kickoffOffset),
				MatchType:      models.MatchTypeLeague,
				Status:         models.MatchStatusScheduled,
			})
		}
	}

	if err := g.matchRepo.CreateBatch(ctx, nil, matches); err != nil {
		return fmt.Errorf("failed to persist season %d schedule: %w", season.ID, err)
	}
	g.logger.InfoContext(ctx, "season schedule generated",
		slog.Int("season_id", season.ID),
		slog.Int("matchdays", len(rounds)),
		slog.Int("matches", len(matches)))
	return nil
}

// roundRobinRounds pairs the teams with the circle method. With an odd team
// count a bye slot is inserted; pairs touching it are dropped. Each round is
// a slice of [home, away] pairs.
func roundRobinRounds(teamIDs []int) [][][2]int {
	const bye = 0

	ids := make([]int, len(teamIDs))
	copy(ids, teamIDs)
	if len(ids)%2 != 0 {
		ids = append(ids, bye)
	}
	n := len(ids)

	rounds := make([][][2]int, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([][2]int, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == bye || away == bye {
				continue
			}
			// Alternate venues so the fixed first team is not always at home.
			if r%2 == 1 {
				home, away = away, home
			}
			round = append(round, [2]int{home, away})
		}
		rounds = append(rounds, round)

		// Rotate all but the first element.
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}
	return rounds
}
