package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/edumatch/tutor-scheduler/internal/httperr"
)

// ===============================
// Slot times
// ===============================

// Slots span a fixed hour.
const SlotDuration = time.Hour

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3 PM",
	"3:04PM",
	"3PM",
	"15",
}

// ParseClock normalizes a flexible time representation ("14:00",
// "2:00 PM", "14") into canonical HH:MM.
func ParseClock(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", httperr.ErrBusiness("invalid_time")
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}

	return "", httperr.ErrBusinessDetails("invalid_time", map[string]any{
		"time": raw,
	})
}

// EndOfSlot returns the canonical end time one hour after start; a
// 23:00 slot wraps to 00:00 on the next day.
func EndOfSlot(start string) string {
	t, _ := time.Parse("15:04", start)
	return t.Add(SlotDuration).Format("15:04")
}

// Weekday returns the 1–7 (Monday–Sunday) day number of t.
func Weekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// CombineDateClock anchors an HH:MM clock reading onto a calendar day
// in the given location.
func CombineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine date and clock: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), nil
}

// NextOccurrence resolves a weekday-template slot to its next concrete
// start. If today is the slot's weekday but the start time has already
// passed, the occurrence a week out is chosen, never today in the
// past.
func NextOccurrence(now time.Time, weekday int, start string, loc *time.Location) (time.Time, error) {
	if weekday < 1 || weekday > 7 {
		return time.Time{}, httperr.ErrBusinessDetails("invalid_weekday", map[string]any{
			"weekday": weekday,
		})
	}

	now = now.In(loc)

	daysAhead := (weekday - Weekday(now) + 7) % 7
	candidate, err := CombineDateClock(now.AddDate(0, 0, daysAhead), start, loc)
	if err != nil {
		return time.Time{}, err
	}

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate, nil
}
