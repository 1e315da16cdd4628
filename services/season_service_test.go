package services

import (
	"context"
	"testing"
	"time"

	"github.com/fantasy-arena/backend/gameday"
	"github.com/fantasy-arena/backend/models"
)

func TestBootstrapCreatesSeasonOne(t *testing.T) {
	seasonRepo := newFakeSeasonRepo()
	scheduleGen := &recordingScheduleGen{}
	svc := NewSeasonService(seasonRepo, newFakeMatchRepo(), scheduleGen, testLogger())

	now := time.Now()
	svc.now = func() time.Time { return now }

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	season, err := svc.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent() after bootstrap: error = %v", err)
	}
	if season.SeasonNumber != 1 || season.CurrentDay != 1 {
		t.Errorf("season = number %d day %d, want 1/1", season.SeasonNumber, season.CurrentDay)
	}
	if !season.StartDate.Equal(gameday.CurrentWindowStart(now)) {
		t.Errorf("start date = %v, want current window start", season.StartDate)
	}
	if day := gameday.CalculateDay(season.StartDate, now); day != 1 {
		t.Errorf("calculated day right after bootstrap = %d, want 1", day)
	}
	if len(scheduleGen.seasons) != 1 {
		t.Errorf("schedule generated %d times, want 1", len(scheduleGen.seasons))
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	seasonRepo := newFakeSeasonRepo(&models.Season{
		SeasonNumber: 3,
		StartDate:    gameday.CurrentWindowStart(time.Now()),
		CurrentDay:   2,
		Phase:        models.PhaseRegularSeason,
	})
	scheduleGen := &recordingScheduleGen{}
	svc := NewSeasonService(seasonRepo, newFakeMatchRepo(), scheduleGen, testLogger())

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	season, _ := svc.GetCurrent(context.Background())
	if season.SeasonNumber != 3 {
		t.Errorf("bootstrap replaced the active season, got number %d", season.SeasonNumber)
	}
	if len(scheduleGen.seasons) != 0 {
		t.Error("bootstrap regenerated the schedule for an existing season")
	}
}
