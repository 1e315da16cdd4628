package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listFilter(day *int, status *models.MatchStatus, matchType *models.MatchType) repositories.ListMatchesFilter {
	return repositories.ListMatchesFilter{Day: day, Status: status, MatchType: matchType}
}

// fakeTxRunner executes the function directly; the fakes below are not
// transactional.
type fakeTxRunner struct {
	beginErr error
}

func (r *fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	return fn(nil)
}

type fakeSeasonRepo struct {
	mu      sync.Mutex
	seasons map[int]*models.Season
	nextID  int
}

func newFakeSeasonRepo(seasons ...*models.Season) *fakeSeasonRepo {
	r := &fakeSeasonRepo{seasons: make(map[int]*models.Season), nextID: 1}
	for _, s := range seasons {
		if s.ID == 0 {
			s.ID = r.nextID
		}
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
		r.seasons[s.ID] = s
	}
	return r
}

func (r *fakeSeasonRepo) Create(_ context.Context, _ repositories.SQLExecutor, season *models.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seasons {
		if s.SeasonNumber == season.SeasonNumber {
			return repositories.ErrSeasonNumberConflict
		}
	}
	season.ID = r.nextID
	r.nextID++
	r.seasons[season.ID] = season
	return nil
}

func (r *fakeSeasonRepo) GetByID(_ context.Context, id int) (*models.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	return s, nil
}

func (r *fakeSeasonRepo) GetCurrent(_ context.Context) (*models.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var current *models.Season
	for _, s := range r.seasons {
		if s.Phase == models.PhaseEnded {
			continue
		}
		if current == nil || s.SeasonNumber > current.SeasonNumber {
			current = s
		}
	}
	if current == nil {
		return nil, repositories.ErrSeasonNotFound
	}
	return current, nil
}

func (r *fakeSeasonRepo) GetPhaseForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (models.SeasonPhase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return "", repositories.ErrSeasonNotFound
	}
	return s.Phase, nil
}

func (r *fakeSeasonRepo) AdvanceCurrentDay(_ context.Context, id int, day int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return false, repositories.ErrSeasonNotFound
	}
	if s.CurrentDay >= day {
		return false, nil
	}
	s.CurrentDay = day
	return true, nil
}

func (r *fakeSeasonRepo) UpdatePhase(_ context.Context, _ repositories.SQLExecutor, id int, phase models.SeasonPhase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	s.Phase = phase
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches []*models.Match
	nextID  int

	updateErrs map[int]error
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{nextID: 1, updateErrs: make(map[int]error)}
	for _, m := range matches {
		if m.ID == 0 {
			m.ID = r.nextID
		}
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
		r.matches = append(r.matches, m)
	}
	return r
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		m.ID = r.nextID
		r.nextID++
		r.matches = append(r.matches, m)
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListBySeason(_ context.Context, seasonID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.SeasonID != seasonID {
			continue
		}
		if filter.Day != nil && m.Day != *filter.Day {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.MatchType != nil && m.MatchType != *filter.MatchType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMatchRepo) ListOverdue(_ context.Context, seasonID int, maxDay int, matchType models.MatchType, now time.Time) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.SeasonID != seasonID || m.MatchType != matchType || m.Status != models.MatchStatusScheduled {
			continue
		}
		if m.Day > maxDay {
			continue
		}
		outsideWindow := m.ScheduledAt.Before(m.DayWindowStart) || !m.ScheduledAt.Before(m.DayWindowStart.Add(24*time.Hour))
		if !m.ScheduledAt.After(now) || outsideWindow {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, id int, homeScore, awayScore int, status models.MatchStatus, simulated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.updateErrs[id]; ok {
		return err
	}
	for _, m := range r.matches {
		if m.ID == id {
			m.HomeScore, m.AwayScore = &homeScore, &awayScore
			m.Status = status
			m.Simulated = simulated
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, t := range tournaments {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) ListByStatus(_ context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatusGuarded(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok || t.Status != from {
		return repositories.ErrTournamentStatusStale
	}
	t.Status = to
	return nil
}

func (r *fakeTournamentRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerTeamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerTeamID = &winnerTeamID
	return nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*models.TournamentEntry
	nextID  int
}

func newFakeEntryRepo(entries ...*models.TournamentEntry) *fakeEntryRepo {
	r := &fakeEntryRepo{nextID: 1}
	for _, e := range entries {
		if e.ID == 0 {
			e.ID = r.nextID
		}
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
		r.entries = append(r.entries, e)
	}
	return r
}

func (r *fakeEntryRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.TournamentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TournamentID == entry.TournamentID && e.TeamID == entry.TeamID {
			return repositories.ErrEntryConflict
		}
	}
	entry.ID = r.nextID
	r.nextID++
	entry.RegisteredAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeEntryRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.entries {
		if e.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEntryRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TournamentEntry, 0)
	for _, e := range r.entries {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) UpdatePlacement(_ context.Context, _ repositories.SQLExecutor, tournamentID, teamID, placement int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TournamentID == tournamentID && e.TeamID == teamID {
			p := placement
			e.Placement = &p
			return nil
		}
	}
	return repositories.ErrEntryNotFound
}

type fakeBracketRepo struct {
	mu      sync.Mutex
	matches []*models.BracketMatch
	nextID  int
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{nextID: 1}
}

func (r *fakeBracketRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.BracketMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		for _, existing := range r.matches {
			if existing.TournamentID == m.TournamentID && existing.Round == m.Round && existing.OrderInRound == m.OrderInRound {
				return repositories.ErrBracketSlotConflict
			}
		}
		m.ID = r.nextID
		r.nextID++
		r.matches = append(r.matches, m)
	}
	return nil
}

func (r *fakeBracketRepo) ListByTournament(_ context.Context, tournamentID int, round *int) ([]*models.BracketMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.BracketMatch, 0)
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBracketRepo) UpdateResult(_ context.Context, id int, homeScore, awayScore int, status models.MatchStatus, winnerTeamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.HomeScore, m.AwayScore = &homeScore, &awayScore
			m.Status = status
			m.WinnerTeamID = &winnerTeamID
			return nil
		}
	}
	return repositories.ErrBracketMatchNotFound
}

func (r *fakeBracketRepo) ResolveSlots(_ context.Context, _ repositories.SQLExecutor, id int, homeTeamID, awayTeamID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			if homeTeamID != nil {
				m.Home.TeamID = homeTeamID
			}
			if awayTeamID != nil {
				m.Away.TeamID = awayTeamID
			}
			return nil
		}
	}
	return repositories.ErrBracketMatchNotFound
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
	for _, t := range teams {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	r.teams[t.ID] = t
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return t, nil
}

func (r *fakeTeamRepo) List(_ context.Context, division *string, includeBots bool) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0)
	for id := 1; id < r.nextID; id++ {
		t, ok := r.teams[id]
		if !ok {
			continue
		}
		if division != nil && t.Division != *division {
			continue
		}
		if t.IsBot && !includeBots {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateCrestKey(_ context.Context, teamID int, crestKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CrestKey = crestKey
	return nil
}

type fakeStandingRepo struct {
	mu        sync.Mutex
	standings []*models.SeasonStanding
	nextID    int
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{nextID: 1}
}

func (r *fakeStandingRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, standings []*models.SeasonStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range standings {
		s.ID = r.nextID
		r.nextID++
		r.standings = append(r.standings, s)
	}
	return nil
}

func (r *fakeStandingRepo) ListBySeason(_ context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.SeasonStanding, 0)
	for _, s := range r.standings {
		if s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeSimulator returns a fixed score and records every pairing it was asked
// to simulate. Pairings listed in failFor fail instead.
type fakeSimulator struct {
	mu        sync.Mutex
	homeScore int
	awayScore int
	calls     [][2]int
	failFor   map[int]bool
}

func newFakeSimulator(homeScore, awayScore int) *fakeSimulator {
	return &fakeSimulator{homeScore: homeScore, awayScore: awayScore, failFor: make(map[int]bool)}
}

func (s *fakeSimulator) Simulate(_ context.Context, homeTeamID, awayTeamID int) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[homeTeamID] {
		return 0, 0, errors.New("simulation blew up")
	}
	s.calls = append(s.calls, [2]int{homeTeamID, awayTeamID})
	return s.homeScore, s.awayScore, nil
}

func (s *fakeSimulator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type broadcastEvent struct {
	room      string
	eventType string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, eventType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{room: roomID, eventType: eventType})
}

func (b *fakeBroadcaster) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.eventType
	}
	return out
}
