// Package gameday maps wall-clock instants to 1-based game days within a
// season. A service day rolls over at a fixed local hour instead of
// midnight UTC, so matches scheduled near the boundary stay on the same
// day across DST shifts.
package gameday

import "time"

const (
	// SeasonDays is the number of game days in one season cycle.
	SeasonDays = 17

	// BoundaryHour is the local hour at which a new service day begins.
	BoundaryHour = 3
)

var boundaryZone = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("gameday: failed to load time zone " + name + ": " + err.Error())
	}
	return loc
}

// serviceDate returns the calendar date (as midnight UTC) that the instant
// belongs to under the boundary rule: anything before BoundaryHour local
// time still counts as the previous day.
func serviceDate(t time.Time) time.Time {
	lt := t.In(boundaryZone)
	if lt.Hour() < BoundaryHour {
		lt = lt.AddDate(0, 0, -1)
	}
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// CalculateDay computes the 1-based day-in-cycle for now relative to the
// season start. The result is clamped to a minimum of 1; it may exceed
// SeasonDays, which callers treat as a season-boundary signal.
func CalculateDay(seasonStart, now time.Time) int {
	elapsed := int(serviceDate(now).Sub(serviceDate(seasonStart)).Hours() / 24)
	day := elapsed + 1
	if day < 1 {
		return 1
	}
	return day
}

// DayWindow returns the half-open interval [start, start+24h) covering the
// given day of the season. Matches scheduled for that day must fall inside
// the window; the overdue check treats anything outside it as stale data.
func DayWindow(seasonStart time.Time, day int) (start, end time.Time) {
	base := serviceDate(seasonStart).AddDate(0, 0, day-1)
	start = time.Date(base.Year(), base.Month(), base.Day(), BoundaryHour, 0, 0, 0, boundaryZone)
	return start, start.Add(24 * time.Hour)
}

// CurrentWindowStart returns the boundary instant that opened the day window
// containing now. Useful as a season start anchor: a season starting here has
// CalculateDay == 1 immediately.
func CurrentWindowStart(now time.Time) time.Time {
	base := serviceDate(now)
	return time.Date(base.Year(), base.Month(), base.Day(), BoundaryHour, 0, 0, 0, boundaryZone)
}

// SeasonEnd returns the instant at which a season starting at start is over,
// i.e. the close of its last day window.
func SeasonEnd(start time.Time) time.Time {
	_, end := DayWindow(start, SeasonDays)
	return end
}

// ExpectedSeasonNumber derives from the wall clock which season number
// should currently be active, given the start and number of the persisted
// season. A result greater than currentNumber means a rollover is overdue.
func ExpectedSeasonNumber(currentStart time.Time, currentNumber int, now time.Time) int {
	day := CalculateDay(currentStart, now)
	if day <= SeasonDays {
		return currentNumber
	}
	return currentNumber + (day-1)/SeasonDays
}
