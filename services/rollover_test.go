package services

import (
	"context"
	"testing"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/ws"
)

type recordingEffects struct {
	applied []int
}

func (e *recordingEffects) Apply(_ context.Context, seasonID int) error {
	e.applied = append(e.applied, seasonID)
	return nil
}

type recordingScheduleGen struct {
	seasons []*models.Season
}

func (g *recordingScheduleGen) GenerateForSeason(_ context.Context, season *models.Season) error {
	g.seasons = append(g.seasons, season)
	return nil
}

func expiringSeason(number int) *models.Season {
	start := gameday.CurrentWindowStart(time.Now()).AddDate(0, 0, -gameday.SeasonDays)
	return &models.Season{
		SeasonNumber: number,
		StartDate:    start,
		EndDate:      gameday.SeasonEnd(start),
		CurrentDay:   gameday.SeasonDays,
		Phase:        models.PhaseRegularSeason,
	}
}

func TestRolloverCreatesSuccessorSeason(t *testing.T) {
	expiring := expiringSeason(4)
	seasonRepo := newFakeSeasonRepo(expiring)
	effects := &recordingEffects{}
	scheduleGen := &recordingScheduleGen{}
	broadcaster := &fakeBroadcaster{}

	coordinator := NewRolloverCoordinator(&fakeTxRunner{}, seasonRepo, effects, scheduleGen, broadcaster, testLogger())

	next, err := coordinator.Rollover(context.Background(), expiring)
	if err != nil {
		t.Fatalf("Rollover() error = %v", err)
	}

	if next.SeasonNumber != 5 {
		t.Errorf("next season number = %d, want 5", next.SeasonNumber)
	}
	if next.CurrentDay != 1 {
		t.Errorf("next season current day = %d, want 1", next.CurrentDay)
	}
	if !next.StartDate.Equal(expiring.EndDate) {
		t.Errorf("next start = %v, want the expiring end %v", next.StartDate, expiring.EndDate)
	}
	if !next.EndDate.Equal(gameday.SeasonEnd(next.StartDate)) {
		t.Errorf("next end = %v, want %v", next.EndDate, gameday.SeasonEnd(next.StartDate))
	}
	if expiring.Phase != models.PhaseEnded {
		t.Errorf("expiring phase = %s, want ended", expiring.Phase)
	}

	if len(effects.applied) != 1 || effects.applied[0] != expiring.ID {
		t.Errorf("effects applied to %v, want [%d]", effects.applied, expiring.ID)
	}
	if len(scheduleGen.seasons) != 1 || scheduleGen.seasons[0].SeasonNumber != 5 {
		t.Error("schedule was not generated for the new season")
	}

	types := broadcaster.eventTypes()
	if len(types) != 1 || types[0] != ws.EventSeasonRolledOver {
		t.Errorf("broadcast events = %v, want one %s", types, ws.EventSeasonRolledOver)
	}
}

func TestRolloverIsSingleShot(t *testing.T) {
	expiring := expiringSeason(4)
	seasonRepo := newFakeSeasonRepo(expiring)
	effects := &recordingEffects{}
	scheduleGen := &recordingScheduleGen{}

	coordinator := NewRolloverCoordinator(&fakeTxRunner{}, seasonRepo, effects, scheduleGen, &fakeBroadcaster{}, testLogger())

	first, err := coordinator.Rollover(context.Background(), expiring)
	if err != nil {
		t.Fatalf("first Rollover() error = %v", err)
	}
	second, err := coordinator.Rollover(context.Background(), expiring)
	if err != nil {
		t.Fatalf("second Rollover() error = %v", err)
	}

	if first.SeasonNumber != second.SeasonNumber {
		t.Errorf("second rollover produced season %d, want existing %d", second.SeasonNumber, first.SeasonNumber)
	}
	current, err := seasonRepo.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent() error = %v", err)
	}
	if current.SeasonNumber != 5 {
		t.Errorf("current season = %d, exactly one successor expected", current.SeasonNumber)
	}
	if len(effects.applied) != 1 {
		t.Errorf("effects applied %d times, want 1", len(effects.applied))
	}
	if len(scheduleGen.seasons) != 1 {
		t.Errorf("schedule generated %d times, want 1", len(scheduleGen.seasons))
	}
}

func TestRolloverWithStaleSnapshotReturnsCurrent(t *testing.T) {
	// The caller holds a pre-rollover snapshot, but the row is already ended.
	expiring := expiringSeason(4)
	seasonRepo := newFakeSeasonRepo(expiring)
	coordinator := NewRolloverCoordinator(&fakeTxRunner{}, seasonRepo, &recordingEffects{}, &recordingScheduleGen{}, &fakeBroadcaster{}, testLogger())

	if _, err := coordinator.Rollover(context.Background(), expiring); err != nil {
		t.Fatalf("Rollover() error = %v", err)
	}

	stale := *expiring
	stale.Phase = models.PhaseRegularSeason

	got, err := coordinator.Rollover(context.Background(), &stale)
	if err != nil {
		t.Fatalf("Rollover(stale) error = %v", err)
	}
	if got.SeasonNumber != 5 {
		t.Errorf("rollover with stale snapshot returned season %d, want 5", got.SeasonNumber)
	}
}
