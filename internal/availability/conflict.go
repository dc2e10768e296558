package availability

import "time"

// Interval is a half-open [Start, End) span of absolute time.
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Overlaps is the full half-open overlap test, containment included.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsAvailable reports whether [start, end) is free against the given bookings.
// A candidate is rejected when its start falls inside a booking or its end does.
// A candidate that strictly contains a booking is NOT rejected; exclusivity is enforced
// when a booking gets confirmed, not here.
func IsAvailable(start, end time.Time, bookings []Interval) bool {
	for _, b := range bookings {
		startsInside := !start.Before(b.Start) && start.Before(b.End)
		endsInside := end.After(b.Start) && !end.After(b.End)
		if startsInside || endsInside {
			return false
		}
	}
	return true
}
