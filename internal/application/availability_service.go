package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// AvailabilityService computes the bookable intervals of a room for a date
// by subtracting confirmed reservations from the working-hours window.
type AvailabilityService struct {
	reservations ReservationStore
	rooms        RoomCatalog
	maintenance  BlackoutCalendar
	hours        WorkingHours
	logger       *slog.Logger
}

// NewAvailabilityService wires dependencies for availability queries.
func NewAvailabilityService(reservations ReservationStore, rooms RoomCatalog, maintenance BlackoutCalendar, hours WorkingHours) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(reservations, rooms, maintenance, hours, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a
// specified logger.
func NewAvailabilityServiceWithLogger(reservations ReservationStore, rooms RoomCatalog, maintenance BlackoutCalendar, hours WorkingHours, logger *slog.Logger) *AvailabilityService {
	if hours == (WorkingHours{}) {
		hours = DefaultWorkingHours()
	}
	return &AvailabilityService{
		reservations: reservations,
		rooms:        rooms,
		maintenance:  maintenance,
		hours:        hours,
		logger:       defaultLogger(logger),
	}
}

// ComputeFreeSlots returns the availability view for one room and date. An
// inactive room or a covering maintenance window short-circuits to an
// unavailable result; the slot sweep only runs for bookable rooms.
func (s *AvailabilityService) ComputeFreeSlots(ctx context.Context, roomID string, date time.Time) (availability Availability, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AvailabilityService", "ComputeFreeSlots",
		"room_id", roomID,
		"date", date.Format(booking.DateLayout),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute free slots", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	room, rerr := s.rooms.GetRoom(ctx, roomID)
	if rerr != nil {
		err = mapRepoError(rerr)
		return
	}
	if !room.Active {
		availability = Availability{Reason: "room is currently unavailable"}
		return availability, nil
	}

	day := booking.DateOf(date)

	if s.maintenance != nil {
		windows, werr := s.maintenance.ListWindows(ctx, persistence.MaintenanceFilter{
			RoomID:     roomID,
			CoversDate: &day,
		})
		if werr != nil {
			err = mapRepoError(werr)
			return
		}
		if len(windows) > 0 {
			w := windows[0]
			availability = Availability{
				Reason: fmt.Sprintf("under maintenance from %s to %s",
					w.StartDate.Format(booking.DateLayout), w.EndDate.Format(booking.DateLayout)),
			}
			return availability, nil
		}
	}

	reservations, lerr := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		RoomID: roomID,
		Date:   &day,
		Status: booking.StatusConfirmed,
	})
	if lerr != nil {
		err = mapRepoError(lerr)
		return
	}

	booked := make([]booking.Interval, 0, len(reservations))
	for _, r := range reservations {
		booked = append(booked, r.Interval())
	}

	availability = Availability{
		Available:    true,
		Slots:        booking.FreeSlots(s.hours.Start, s.hours.End, booked),
		Reservations: reservations,
	}
	return availability, nil
}
