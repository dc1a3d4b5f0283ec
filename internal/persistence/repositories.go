package persistence

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// RoomRepository exposes catalog operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, activeOnly bool) ([]Room, error)
}

// ReservationOrder selects the result ordering of a reservation listing.
type ReservationOrder int

const (
	// OrderDateAsc is the chronological default: (date asc, start asc).
	OrderDateAsc ReservationOrder = iota
	// OrderDateDesc keeps days latest-first while each day reads
	// chronologically: (date desc, start asc).
	OrderDateDesc
	// OrderRecentFirst is strictly latest-first: (date desc, start desc).
	OrderRecentFirst
)

// ReservationFilter narrows reservation queries. Zero-valued fields are
// ignored; Status empty means all statuses.
type ReservationFilter struct {
	RoomID    string
	Requester string
	Date      *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    booking.Status
	Limit     int
	Order     ReservationOrder
}

// ReservationRepository stores reservation records. ListReservations results
// are ordered by (date, start time) so callers can rely on the sweep
// precondition of the availability computation.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, status booking.Status) error
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
}

// MaintenanceFilter narrows maintenance window queries. CoversDate matches
// windows whose inclusive range contains the date; From/To match windows
// intersecting the inclusive date range.
type MaintenanceFilter struct {
	RoomID     string
	CoversDate *time.Time
	From       *time.Time
	To         *time.Time
}

// MaintenanceRepository stores blackout windows per room.
type MaintenanceRepository interface {
	CreateWindow(ctx context.Context, window MaintenanceWindow) error
	UpdateWindow(ctx context.Context, window MaintenanceWindow) error
	GetWindow(ctx context.Context, id string) (MaintenanceWindow, error)
	DeleteWindow(ctx context.Context, id string) error
	ListWindows(ctx context.Context, filter MaintenanceFilter) ([]MaintenanceWindow, error)
}
