package persistence

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Room represents a catalog entry for a physical meeting room. Rooms are
// created and edited by administrators and referenced by reservations and
// maintenance windows.
type Room struct {
	ID          string
	Name        string
	Location    string
	Capacity    int
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reservation represents an exclusive time slice of a room held by a
// requester. Date is a midnight-normalized calendar date; Start and End are
// minute-precision wall-clock times within that date.
type Reservation struct {
	ID          string
	RoomID      string
	Requester   string
	Date        time.Time
	Start       booking.TimeOfDay
	End         booking.TimeOfDay
	Attendees   int
	Title       string
	Description string
	Status      booking.Status
	CreatedAt   time.Time
}

// Interval returns the reservation's [start, end) time range.
func (r Reservation) Interval() booking.Interval {
	return booking.Interval{Start: r.Start, End: r.End}
}

// MaintenanceWindow represents an inclusive blackout date range during which
// a room accepts no reservations.
type MaintenanceWindow struct {
	ID        string
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}

// Covers reports whether the window's inclusive date range contains the date.
func (w MaintenanceWindow) Covers(date time.Time) bool {
	return !date.Before(w.StartDate) && !date.After(w.EndDate)
}
