package booking

import "time"

// Status identifies the lifecycle state of a reservation. The stored domain
// is wider than the transitions the ledger ever writes: StatusCompleted is
// only ever derived from the clock at read time and is never persisted.
type Status string

const (
	// StatusConfirmed is the state every reservation is created in.
	StatusConfirmed Status = "confirmed"
	// StatusCanceled is reached only through an explicit cancel before the
	// reservation's start time.
	StatusCanceled Status = "canceled"
	// StatusCompleted is a query-time classification of a confirmed
	// reservation whose end time has elapsed.
	StatusCompleted Status = "completed"
)

// ValidStored reports whether the status is one the ledger may persist.
func (s Status) ValidStored() bool {
	return s == StatusConfirmed || s == StatusCanceled
}

// IsPast reports whether a reservation ending at end on date has already
// finished at the given instant.
func IsPast(date time.Time, end TimeOfDay, now time.Time) bool {
	return now.After(end.At(date))
}

// CanCancel reports whether a reservation may still be canceled: it must be
// confirmed and its start time must not have elapsed.
func CanCancel(date time.Time, start TimeOfDay, status Status, now time.Time) bool {
	return status == StatusConfirmed && start.At(date).After(now)
}

// EffectiveStatus classifies a reservation for presentation. Confirmed
// reservations whose end has elapsed read as completed; the stored status is
// returned unchanged otherwise.
func EffectiveStatus(status Status, date time.Time, end TimeOfDay, now time.Time) Status {
	if status == StatusConfirmed && IsPast(date, end, now) {
		return StatusCompleted
	}
	return status
}
