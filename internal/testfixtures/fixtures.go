// Package testfixtures supplies deterministic clocks, identifier generators,
// and record builders shared by tests across the module.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

var (
	roomCounter        uint64
	reservationCounter uint64
	maintenanceCounter uint64
)

// referenceTime is a Monday so weekday assertions stay readable.
var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the date portion of ReferenceTime.
func ReferenceDate() time.Time {
	return booking.DateOf(referenceTime)
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures a generated room record.
type RoomOption func(*persistence.Room)

// NewRoom returns a deterministic active room record with optional overrides.
func NewRoom(opts ...RoomOption) persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	room := persistence.Room{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  "Main Office",
		Capacity:  int(4 + idx%4),
		Active:    true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) { r.ID = id }
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *persistence.Room) { r.Capacity = capacity }
}

// WithRoomInactive marks the room as not accepting reservations.
func WithRoomInactive() RoomOption {
	return func(r *persistence.Room) { r.Active = false }
}

// -------------------------- Reservation fixtures --------------------------

// ReservationOption configures a generated reservation record.
type ReservationOption func(*persistence.Reservation)

// NewReservation returns a deterministic confirmed reservation with optional
// overrides. The default booking occupies 10:00-11:00 on the reference date.
func NewReservation(opts ...ReservationOption) persistence.Reservation {
	idx := atomic.AddUint64(&reservationCounter, 1)
	reservation := persistence.Reservation{
		ID:        fmt.Sprintf("reservation-%03d", idx),
		RoomID:    "room-001",
		Requester: "alice",
		Date:      ReferenceDate(),
		Start:     booking.NewTimeOfDay(10, 0),
		End:       booking.NewTimeOfDay(11, 0),
		Attendees: 2,
		Title:     fmt.Sprintf("Meeting %03d", idx),
		Status:    booking.StatusConfirmed,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&reservation)
	}
	return reservation
}

// WithReservationRoom sets the room the reservation occupies.
func WithReservationRoom(roomID string) ReservationOption {
	return func(r *persistence.Reservation) { r.RoomID = roomID }
}

// WithReservationRequester sets the booking owner.
func WithReservationRequester(requester string) ReservationOption {
	return func(r *persistence.Reservation) { r.Requester = requester }
}

// WithReservationDate sets the booking date.
func WithReservationDate(date time.Time) ReservationOption {
	return func(r *persistence.Reservation) { r.Date = booking.DateOf(date) }
}

// WithReservationTimes sets the start and end times.
func WithReservationTimes(start, end booking.TimeOfDay) ReservationOption {
	return func(r *persistence.Reservation) {
		r.Start = start
		r.End = end
	}
}

// WithReservationStatus sets the stored status.
func WithReservationStatus(status booking.Status) ReservationOption {
	return func(r *persistence.Reservation) { r.Status = status }
}

// -------------------------- Maintenance fixtures --------------------------

// MaintenanceOption configures a generated maintenance window record.
type MaintenanceOption func(*persistence.MaintenanceWindow)

// NewMaintenanceWindow returns a deterministic one-day blackout on the
// reference date with optional overrides.
func NewMaintenanceWindow(opts ...MaintenanceOption) persistence.MaintenanceWindow {
	idx := atomic.AddUint64(&maintenanceCounter, 1)
	window := persistence.MaintenanceWindow{
		ID:        fmt.Sprintf("maintenance-%03d", idx),
		RoomID:    "room-001",
		StartDate: ReferenceDate(),
		EndDate:   ReferenceDate(),
		Reason:    "Projector replacement",
		CreatedBy: "admin",
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&window)
	}
	return window
}

// WithMaintenanceRoom sets the room the window blocks.
func WithMaintenanceRoom(roomID string) MaintenanceOption {
	return func(w *persistence.MaintenanceWindow) { w.RoomID = roomID }
}

// WithMaintenanceRange sets the inclusive date range of the window.
func WithMaintenanceRange(start, end time.Time) MaintenanceOption {
	return func(w *persistence.MaintenanceWindow) {
		w.StartDate = booking.DateOf(start)
		w.EndDate = booking.DateOf(end)
	}
}
