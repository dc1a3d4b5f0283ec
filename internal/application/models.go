package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// Principal represents the already-authorized actor invoking a service
// method. Credential validation happens upstream; the engine only consumes
// the identity and the privileged capability bit.
type Principal struct {
	ActorID string
	IsAdmin bool
}

// WorkingHours bounds the daily window reservations may occupy. Both bounds
// are inclusive: a reservation may start at Start and end exactly at End.
type WorkingHours struct {
	Start booking.TimeOfDay
	End   booking.TimeOfDay
}

// DefaultWorkingHours is the 08:00-20:00 window used when no configuration
// overrides it.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: booking.NewTimeOfDay(8, 0), End: booking.NewTimeOfDay(20, 0)}
}

// Contains reports whether the interval lies within the working window.
func (w WorkingHours) Contains(interval booking.Interval) bool {
	return interval.Start >= w.Start && interval.End <= w.End
}

// ReserveParams wraps the data required to book a room.
type ReserveParams struct {
	Principal   Principal
	RoomID      string
	Date        time.Time
	Start       booking.TimeOfDay
	End         booking.TimeOfDay
	Attendees   int
	Title       string
	Description string
}

// ReservationGroups classifies a requester's reservations for presentation:
// upcoming keeps confirmed bookings that have not ended, past keeps confirmed
// bookings whose end has elapsed, canceled keeps the rest.
type ReservationGroups struct {
	Upcoming []persistence.Reservation
	Past     []persistence.Reservation
	Canceled []persistence.Reservation
}

// AdminListFilter narrows the all-status administrative reservation listing.
type AdminListFilter struct {
	Status   booking.Status
	RoomID   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// MaintenanceParams wraps the data required to create or update a blackout
// window.
type MaintenanceParams struct {
	Principal Principal
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name        string
	Location    string
	Capacity    int
	Description string
}

// RoomDetail is the read model behind a room page: the room itself, its
// confirmed reservations for the requested date, and blackout windows that
// have not yet ended.
type RoomDetail struct {
	Room         persistence.Room
	Reservations []persistence.Reservation
	Maintenance  []persistence.MaintenanceWindow
}

// Availability describes a room's bookable state for one date. When the room
// is inactive or under maintenance, Available is false and Reason explains
// why; otherwise Slots holds the free intervals and Reservations the
// confirmed bookings the slots complement.
type Availability struct {
	Available    bool
	Reason       string
	Slots        []booking.Interval
	Reservations []persistence.Reservation
}

// CalendarEvent is one entry of the date-range calendar feed: either a
// confirmed reservation or a maintenance blackout.
type CalendarEvent struct {
	ID          string
	Title       string
	RoomID      string
	Date        time.Time
	Start       booking.TimeOfDay
	End         booking.TimeOfDay
	EndDate     time.Time
	Maintenance bool
}

// ReportRange is the resolved inclusive date range of a report.
type ReportRange struct {
	From time.Time
	To   time.Time
}

// ReportParams selects the date range and optional room filter of a report.
// Nil bounds fall back to the configured default lookback ending today.
type ReportParams struct {
	Principal Principal
	From      *time.Time
	To        *time.Time
	RoomID    string
}

// RoomUsageRow is one room's usage joined with its catalog name. Rooms with
// no activity in range appear with zero counts, mirroring the admin report.
type RoomUsageRow struct {
	RoomID       string
	RoomName     string
	Reservations int
	TotalHours   float64
}

// DashboardSummary backs the admin landing page: today's confirmed count,
// the Monday-start week's confirmed count, and per-room counts for that week.
type DashboardSummary struct {
	TodayReservations int
	WeekReservations  int
	RoomUsage         []RoomUsageRow
}
