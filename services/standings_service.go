package services

import (
	"context"
	"sort"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// StandingsService derives the league table for a season from its completed
// league matches. The live table is computed on read; a snapshot is persisted
// once at season end.
type StandingsService struct {
	matchRepo    repositories.MatchRepository
	standingRepo repositories.SeasonStandingRepository
}

func NewStandingsService(matchRepo repositories.MatchRepository, standingRepo repositories.SeasonStandingRepository) *StandingsService {
	return &StandingsService{matchRepo: matchRepo, standingRepo: standingRepo}
}

// ComputeTable returns the standings sorted by points, then score difference,
// then score for, ranks assigned from 1.
func (s *StandingsService) ComputeTable(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	completed := models.MatchStatusCompleted
	league := models.MatchTypeLeague
	matches, err := s.matchRepo.ListBySeason(ctx, seasonID, repositories.ListMatchesFilter{
		Status:    &completed,
		MatchType: &league,
	})
	if err != nil {
		return nil, err
	}

	rows := make(map[int]*models.SeasonStanding)
	row := func(teamID int) *models.SeasonStanding {
		if r, ok := rows[teamID]; ok {
			return r
		}
		r := &models.SeasonStanding{SeasonID: seasonID, TeamID: teamID}
		rows[teamID] = r
		return r
	}

	for _, m := range matches {
		if m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		home, away := row(m.HomeTeamID), row(m.AwayTeamID)
		hs, as := *m.HomeScore, *m.AwayScore

		home.GamesPlayed++
		away.GamesPlayed++
		home.ScoreFor += hs
		home.ScoreAgainst += as
		away.ScoreFor += as
		away.ScoreAgainst += hs

		switch {
		case hs > as:
			home.Wins++
			home.Points += pointsWin
			away.Losses++
		case hs < as:
			away.Wins++
			away.Points += pointsWin
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points += pointsDraw
			away.Points += pointsDraw
		}
	}

	table := make([]*models.SeasonStanding, 0, len(rows))
	for _, r := range rows {
		table = append(table, r)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		diffA := a.ScoreFor - a.ScoreAgainst
		diffB := b.ScoreFor - b.ScoreAgainst
		if diffA != diffB {
			return diffA > diffB
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return a.TeamID < b.TeamID
	})
	for i, r := range table {
		r.Rank = i + 1
	}
	return table, nil
}

// SnapshotSeason persists the final table of a season.
func (s *StandingsService) SnapshotSeason(ctx context.Context, seasonID int) error {
	table, err := s.ComputeTable(ctx, seasonID)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		return nil
	}
	return s.standingRepo.BatchCreate(ctx, nil, table)
}

// ListSnapshot returns the persisted season-end standings.
func (s *StandingsService) ListSnapshot(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	return s.standingRepo.ListBySeason(ctx, seasonID)
}
