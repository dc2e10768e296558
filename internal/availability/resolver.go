package availability

import (
	"fmt"
	"time"
)

// DaysAhead is how many calendar dates are offered for booking.
const DaysAhead = 14

type Slot struct {
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// Resolve builds the slots of date from the weekly template, in template order, each
// checked against bookings. A weekday without an entry yields no slots.
func Resolve(weekly WeeklyAvailability, date time.Time, bookings []Interval) ([]Slot, error) {
	ranges := weekly[date.Weekday()]
	slots := make([]Slot, 0, len(ranges))
	for _, r := range ranges {
		startClock, endClock, err := ParseRange(r)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", date.Format(time.DateOnly), err)
		}
		start, end := startClock.On(date), endClock.On(date)
		slots = append(slots, Slot{
			Start:       start,
			End:         end,
			IsAvailable: IsAvailable(start, end, bookings),
		})
	}
	return slots, nil
}

// NextDays returns n consecutive midnights starting with the day of now, in now's location.
func NextDays(now time.Time, n int) []time.Time {
	y, m, d := now.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	days := make([]time.Time, n)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}
