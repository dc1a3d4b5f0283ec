package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

func newAvailabilityHarness(room persistence.Room) (*AvailabilityService, *reservationStoreStub, *blackoutStub) {
	store := &reservationStoreStub{}
	rooms := &roomCatalogStub{rooms: map[string]persistence.Room{room.ID: room}}
	maintenance := &blackoutStub{}
	svc := NewAvailabilityService(store, rooms, maintenance, WorkingHours{})
	return svc, store, maintenance
}

func TestAvailabilityService_ComputeFreeSlots(t *testing.T) {
	room := testfixtures.NewRoom()
	day := testfixtures.ReferenceDate().AddDate(0, 0, 1)

	t.Run("empty day yields the full working window", func(t *testing.T) {
		svc, _, _ := newAvailabilityHarness(room)

		availability, err := svc.ComputeFreeSlots(context.Background(), room.ID, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !availability.Available {
			t.Fatalf("expected available, got reason %q", availability.Reason)
		}
		want := []booking.Interval{{Start: booking.NewTimeOfDay(8, 0), End: booking.NewTimeOfDay(20, 0)}}
		assertIntervals(t, availability.Slots, want)
	})

	t.Run("slots complement the confirmed bookings", func(t *testing.T) {
		svc, store, _ := newAvailabilityHarness(room)
		store.records = append(store.records,
			testfixtures.NewReservation(
				testfixtures.WithReservationRoom(room.ID),
				testfixtures.WithReservationDate(day),
				testfixtures.WithReservationTimes(booking.NewTimeOfDay(9, 0), booking.NewTimeOfDay(10, 0)),
			),
			testfixtures.NewReservation(
				testfixtures.WithReservationRoom(room.ID),
				testfixtures.WithReservationDate(day),
				testfixtures.WithReservationTimes(booking.NewTimeOfDay(13, 0), booking.NewTimeOfDay(14, 0)),
			),
		)

		availability, err := svc.ComputeFreeSlots(context.Background(), room.ID, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []booking.Interval{
			{Start: booking.NewTimeOfDay(8, 0), End: booking.NewTimeOfDay(9, 0)},
			{Start: booking.NewTimeOfDay(10, 0), End: booking.NewTimeOfDay(13, 0)},
			{Start: booking.NewTimeOfDay(14, 0), End: booking.NewTimeOfDay(20, 0)},
		}
		assertIntervals(t, availability.Slots, want)
		if len(availability.Reservations) != 2 {
			t.Fatalf("expected bookings attached, got %d", len(availability.Reservations))
		}
	})

	t.Run("canceled bookings do not consume slots", func(t *testing.T) {
		svc, store, _ := newAvailabilityHarness(room)
		store.records = append(store.records, testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationDate(day),
			testfixtures.WithReservationStatus(booking.StatusCanceled),
		))

		availability, err := svc.ComputeFreeSlots(context.Background(), room.ID, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(availability.Slots) != 1 {
			t.Fatalf("expected full window, got %+v", availability.Slots)
		}
	})

	t.Run("inactive room is unavailable", func(t *testing.T) {
		inactive := testfixtures.NewRoom(testfixtures.WithRoomInactive())
		svc, _, _ := newAvailabilityHarness(inactive)

		availability, err := svc.ComputeFreeSlots(context.Background(), inactive.ID, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability.Available {
			t.Fatal("expected unavailable")
		}
		if availability.Reason == "" {
			t.Fatal("expected a reason")
		}
		if len(availability.Slots) != 0 {
			t.Fatalf("expected no slots, got %+v", availability.Slots)
		}
	})

	t.Run("maintenance blocks the whole day", func(t *testing.T) {
		svc, _, maintenance := newAvailabilityHarness(room)
		maintenance.windows = append(maintenance.windows, testfixtures.NewMaintenanceWindow(
			testfixtures.WithMaintenanceRoom(room.ID),
			testfixtures.WithMaintenanceRange(day, day.AddDate(0, 0, 1)),
		))

		availability, err := svc.ComputeFreeSlots(context.Background(), room.ID, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability.Available {
			t.Fatal("expected unavailable")
		}
		if !strings.Contains(availability.Reason, "maintenance") {
			t.Fatalf("expected maintenance reason, got %q", availability.Reason)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, _, _ := newAvailabilityHarness(room)

		_, err := svc.ComputeFreeSlots(context.Background(), "missing", day)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func assertIntervals(t *testing.T, got, want []booking.Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d: expected %s-%s, got %s-%s", i, want[i].Start, want[i].End, got[i].Start, got[i].End)
		}
	}
}
