package booking

// Interval is a minute-granular [Start, End) time range within a single day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether two intervals intersect. Boundary-adjacent
// intervals, where one ends exactly when the other starts, do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Duration returns the length of the interval.
func (i Interval) Duration() TimeOfDay {
	return i.End - i.Start
}

// Hours returns the interval length in fractional hours.
func (i Interval) Hours() float64 {
	return float64(i.End-i.Start) / 60
}

// FreeSlots computes the maximal free intervals within working hours given
// the booked intervals for a room and date, which must be sorted by start
// time ascending. The result is the exact complement of the booked set inside
// [workStart, workEnd).
func FreeSlots(workStart, workEnd TimeOfDay, booked []Interval) []Interval {
	var free []Interval
	cursor := workStart
	for _, b := range booked {
		if cursor < b.Start {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		// The max guard keeps the sweep correct even for an interval nested
		// inside a previous one, which the ledger's no-overlap invariant
		// normally rules out.
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < workEnd {
		free = append(free, Interval{Start: cursor, End: workEnd})
	}
	return free
}
