package availability

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = mustLoad("Europe/Paris")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, paris)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsAvailable(t *testing.T) {
	existing := []Interval{{Start: at("2025-09-15", "09:00"), End: at("2025-09-15", "12:00")}}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"entirely before", "07:00", "08:00", true},
		{"entirely after", "14:00", "18:00", true},
		{"ends exactly at booking start", "08:00", "09:00", true},
		{"starts exactly at booking end", "12:00", "13:00", true},
		{"same interval", "09:00", "12:00", false},
		{"starts inside", "10:00", "13:00", false},
		{"ends inside", "08:00", "10:00", false},
		{"inside", "10:00", "11:00", false},
		// documented gap: containment is not detected
		{"strictly contains booking", "08:00", "13:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAvailable(at("2025-09-15", tt.start), at("2025-09-15", tt.end), existing)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAvailableNoBookings(t *testing.T) {
	assert.True(t, IsAvailable(at("2025-09-15", "09:00"), at("2025-09-15", "10:00"), nil))
}

func TestIntervalOverlapsCatchesContainment(t *testing.T) {
	booked := Interval{Start: at("2025-09-15", "09:00"), End: at("2025-09-15", "12:00")}
	candidate := Interval{Start: at("2025-09-15", "08:00"), End: at("2025-09-15", "13:00")}
	assert.True(t, candidate.Overlaps(booked))
	assert.True(t, booked.Overlaps(candidate))

	after := Interval{Start: at("2025-09-15", "12:00"), End: at("2025-09-15", "13:00")}
	assert.False(t, after.Overlaps(booked))
}

func TestResolve(t *testing.T) {
	weekly := WeeklyAvailability{
		time.Monday: {"9:00-12:00", "14:00-18:00"},
	}
	// 2025-09-15 is a Monday
	monday := at("2025-09-15", "00:00")
	booked := []Interval{{Start: at("2025-09-15", "09:00"), End: at("2025-09-15", "12:00")}}

	slots, err := Resolve(weekly, monday, booked)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, at("2025-09-15", "09:00"), slots[0].Start)
	assert.Equal(t, at("2025-09-15", "12:00"), slots[0].End)
	assert.False(t, slots[0].IsAvailable)

	assert.Equal(t, at("2025-09-15", "14:00"), slots[1].Start)
	assert.True(t, slots[1].IsAvailable)
}

func TestResolveEmptyTemplate(t *testing.T) {
	slots, err := Resolve(WeeklyAvailability{}, time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveDayWithoutEntry(t *testing.T) {
	weekly := WeeklyAvailability{time.Monday: {"9:00-12:00"}}
	sunday := at("2025-09-14", "00:00")
	slots, err := Resolve(weekly, sunday, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveMalformedRange(t *testing.T) {
	weekly := WeeklyAvailability{time.Monday: {"9h-12h"}}
	_, err := Resolve(weekly, at("2025-09-15", "00:00"), nil)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("09:00-12:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(540), start)
	assert.Equal(t, Clock(750), end)
	assert.Equal(t, "12:30", end.String())

	_, end, err = ParseRange("18:00-23:59")
	require.NoError(t, err)
	assert.Equal(t, Clock(23*60+59), end)

	for _, bad := range []string{"", "09:00", "9-12", "25:00-26:00", "09:60-10:00", "12:00-09:00", "10:00-10:00",
		"+9:00-+12:00", "09:+5-10:00", "22:00-24:00", " 9: 00-10:00"} {
		_, _, err := ParseRange(bad)
		assert.ErrorIs(t, err, ErrInvalidRange, bad)
	}
}

func TestWeeklyAvailabilityJSON(t *testing.T) {
	var byName, byNumber WeeklyAvailability
	require.NoError(t, json.Unmarshal([]byte(`{"Lundi":["9:00-12:00"],"tuesday":["14:00-18:00"]}`), &byName))
	require.NoError(t, json.Unmarshal([]byte(`{"1":["9:00-12:00"],"2":["14:00-18:00"]}`), &byNumber))
	assert.Equal(t, byNumber, byName)

	out, err := json.Marshal(byName)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":["9:00-12:00"],"2":["14:00-18:00"]}`, string(out))
}

func TestFromNamedReportsUnknownKeys(t *testing.T) {
	weekly, unknown := FromNamed(map[string][]string{
		"Lundi":    {"9:00-12:00"},
		"Funday":   {"9:00-12:00"},
		"7":        {"9:00-12:00"},
		"mercredi": {"8:00-10:00"},
	})
	assert.Equal(t, []string{"7", "Funday"}, unknown)
	assert.Len(t, weekly, 2)
	assert.Equal(t, []string{"8:00-10:00"}, weekly[time.Wednesday])
}

func TestContains(t *testing.T) {
	weekly := WeeklyAvailability{time.Monday: {"9:00-12:00"}}
	assert.True(t, weekly.Contains(time.Monday, Clock(540), Clock(720)))
	assert.False(t, weekly.Contains(time.Monday, Clock(540), Clock(600)))
	assert.False(t, weekly.Contains(time.Tuesday, Clock(540), Clock(720)))
}

func TestNextDays(t *testing.T) {
	now := at("2025-09-15", "17:42")
	days := NextDays(now, DaysAhead)
	require.Len(t, days, 14)
	assert.Equal(t, at("2025-09-15", "00:00"), days[0])
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i])
	}
	assert.Equal(t, "2025-09-28", days[13].Format(time.DateOnly))
}
