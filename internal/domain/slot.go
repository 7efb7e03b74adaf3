package domain

import "time"

// Slot полуоткрытый интервал [Start, End), занимаемый записью
type Slot struct {
	Start time.Time
	End   time.Time
}

// NewSlot returns the slot of a session starting at the given instant
func NewSlot(start time.Time) Slot {
	return Slot{Start: start, End: start.Add(SessionDuration)}
}

// Overlaps reports whether two half-open intervals intersect: s1 < e2 && s2 < e1.
// Adjacent slots (one ends exactly when the other starts) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Contains reports whether the instant falls inside the slot
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}
