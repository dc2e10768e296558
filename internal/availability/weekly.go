package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidRange = errors.New("invalid time range")

// WeeklyAvailability maps a weekday to its bookable ranges ("HH:MM-HH:MM").
// Keys are numeric (Sunday = 0) so the template does not depend on a display locale.
type WeeklyAvailability map[time.Weekday][]string

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "dimanche": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "lundi": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "mardi": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "mercredi": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "jeudi": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "vendredi": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "samedi": time.Saturday,
}

// ParseWeekday accepts "0".."6" or an English/French weekday name in any case.
func ParseWeekday(key string) (time.Weekday, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if n, err := strconv.Atoi(key); err == nil {
		if n < 0 || n > 6 {
			return 0, false
		}
		return time.Weekday(n), true
	}
	d, ok := weekdayNames[key]
	return d, ok
}

// FromNamed converts a template keyed by strings. Keys that are not a weekday are
// returned in unknown, sorted, and left out of the result.
func FromNamed(named map[string][]string) (WeeklyAvailability, []string) {
	out := make(WeeklyAvailability, len(named))
	var unknown []string
	for key, ranges := range named {
		day, ok := ParseWeekday(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		out[day] = append(out[day], ranges...)
	}
	sort.Strings(unknown)
	return out, unknown
}

// Validate checks every range string of the template.
func (w WeeklyAvailability) Validate() error {
	for day, ranges := range w {
		for _, r := range ranges {
			if _, _, err := ParseRange(r); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
		}
	}
	return nil
}

// Contains reports whether the range "start-end" is listed for day.
func (w WeeklyAvailability) Contains(day time.Weekday, start, end Clock) bool {
	for _, r := range w[day] {
		s, e, err := ParseRange(r)
		if err != nil {
			continue
		}
		if s == start && e == end {
			return true
		}
	}
	return false
}

func (w WeeklyAvailability) MarshalJSON() ([]byte, error) {
	m := make(map[string][]string, len(w))
	for day, ranges := range w {
		m[strconv.Itoa(int(day))] = ranges
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes numeric or named keys. Unrecognised keys are ignored, which
// leaves that day without slots; use FromNamed to find out which keys were dropped.
func (w *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var named map[string][]string
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	*w, _ = FromNamed(named)
	return nil
}

// Clock is a time of day in minutes from midnight.
type Clock int

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On anchors the clock time on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}

// ParseClock parses "H:MM" or "HH:MM" between 00:00 and 23:59. Signs are refused.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 || !digits(h) || !digits(m) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return Clock(hour*60 + minute), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseRange splits "HH:MM-HH:MM" into its two clock times. end must be after start.
func ParseRange(r string) (Clock, Clock, error) {
	a, b, ok := strings.Cut(r, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, r)
	}
	start, err := ParseClock(a)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(b)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%w: %q ends before it starts", ErrInvalidRange, r)
	}
	return start, end, nil
}
