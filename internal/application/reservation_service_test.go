package application

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

type reservationStoreStub struct {
	records   []persistence.Reservation
	createErr error
	listErr   error
}

func (s *reservationStoreStub) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.records = append(s.records, reservation)
	return nil
}

func (s *reservationStoreStub) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return persistence.Reservation{}, persistence.ErrNotFound
}

func (s *reservationStoreStub) UpdateReservationStatus(ctx context.Context, id string, status booking.Status) error {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Status = status
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *reservationStoreStub) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []persistence.Reservation
	for _, r := range s.records {
		if filter.RoomID != "" && r.RoomID != filter.RoomID {
			continue
		}
		if filter.Requester != "" && r.Requester != filter.Requester {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Date != nil && !booking.SameDate(r.Date, *filter.Date) {
			continue
		}
		if filter.DateFrom != nil && r.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && r.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			if filter.Order != persistence.OrderDateAsc {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Date.Before(out[j].Date)
		}
		if filter.Order == persistence.OrderRecentFirst {
			return out[i].Start > out[j].Start
		}
		return out[i].Start < out[j].Start
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type roomCatalogStub struct {
	rooms  map[string]persistence.Room
	getErr error
}

func (s *roomCatalogStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if s.getErr != nil {
		return persistence.Room{}, s.getErr
	}
	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

type blackoutStub struct {
	windows []persistence.MaintenanceWindow
	listErr error
}

func (s *blackoutStub) ListWindows(ctx context.Context, filter persistence.MaintenanceFilter) ([]persistence.MaintenanceWindow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []persistence.MaintenanceWindow
	for _, w := range s.windows {
		if filter.RoomID != "" && w.RoomID != filter.RoomID {
			continue
		}
		if filter.CoversDate != nil && !w.Covers(*filter.CoversDate) {
			continue
		}
		if filter.From != nil && w.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && w.StartDate.After(*filter.To) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func newReservationHarness(room persistence.Room) (*ReservationService, *reservationStoreStub, *blackoutStub, *testfixtures.Clock) {
	store := &reservationStoreStub{}
	rooms := &roomCatalogStub{rooms: map[string]persistence.Room{room.ID: room}}
	maintenance := &blackoutStub{}
	clock := testfixtures.NewClock(time.Time{})
	svc := NewReservationService(store, rooms, maintenance, nil, WorkingHours{},
		testfixtures.NewIDGenerator("reservation").NextFunc(), clock.NowFunc())
	return svc, store, maintenance, clock
}

func validParams(roomID string) ReserveParams {
	return ReserveParams{
		Principal: Principal{ActorID: "alice"},
		RoomID:    roomID,
		Date:      testfixtures.ReferenceDate().AddDate(0, 0, 1),
		Start:     booking.NewTimeOfDay(10, 0),
		End:       booking.NewTimeOfDay(11, 0),
		Attendees: 2,
		Title:     "Design review",
	}
}

func TestReservationService_TryReserve(t *testing.T) {
	room := testfixtures.NewRoom(testfixtures.WithRoomCapacity(6))

	t.Run("books a free slot", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)

		reservation, err := svc.TryReserve(context.Background(), validParams(room.ID))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reservation.Status != booking.StatusConfirmed {
			t.Fatalf("expected confirmed status, got %s", reservation.Status)
		}
		if reservation.ID == "" {
			t.Fatal("expected generated reservation ID")
		}
		if len(store.records) != 1 {
			t.Fatalf("expected one stored reservation, got %d", len(store.records))
		}
	})

	t.Run("rejects overlapping confirmed reservation", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		store.records = append(store.records, testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 1)),
			testfixtures.WithReservationTimes(booking.NewTimeOfDay(10, 30), booking.NewTimeOfDay(11, 30)),
		))

		_, err := svc.TryReserve(context.Background(), validParams(room.ID))

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.Reason != ReasonTimeConflict {
			t.Fatalf("expected time_conflict, got %s", cErr.Reason)
		}
		if len(cErr.Reservations) != 1 {
			t.Fatalf("expected conflicting reservation attached, got %d", len(cErr.Reservations))
		}
	})

	t.Run("allows back to back reservations", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		store.records = append(store.records, testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 1)),
			testfixtures.WithReservationTimes(booking.NewTimeOfDay(9, 0), booking.NewTimeOfDay(10, 0)),
		))

		if _, err := svc.TryReserve(context.Background(), validParams(room.ID)); err != nil {
			t.Fatalf("adjacent booking should succeed, got %v", err)
		}
	})

	t.Run("ignores canceled reservations when checking conflicts", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		store.records = append(store.records, testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 1)),
			testfixtures.WithReservationTimes(booking.NewTimeOfDay(10, 0), booking.NewTimeOfDay(11, 0)),
			testfixtures.WithReservationStatus(booking.StatusCanceled),
		))

		if _, err := svc.TryReserve(context.Background(), validParams(room.ID)); err != nil {
			t.Fatalf("canceled booking should not block, got %v", err)
		}
	})

	t.Run("rejects dates under maintenance", func(t *testing.T) {
		svc, _, maintenance, _ := newReservationHarness(room)
		target := testfixtures.ReferenceDate().AddDate(0, 0, 1)
		maintenance.windows = append(maintenance.windows, testfixtures.NewMaintenanceWindow(
			testfixtures.WithMaintenanceRoom(room.ID),
			testfixtures.WithMaintenanceRange(target, target.AddDate(0, 0, 2)),
		))

		_, err := svc.TryReserve(context.Background(), validParams(room.ID))

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.Reason != ReasonMaintenanceConflict {
			t.Fatalf("expected maintenance_conflict, got %s", cErr.Reason)
		}
		if cErr.Window == nil {
			t.Fatal("expected covering window attached")
		}
	})

	t.Run("rejects inverted time range", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Start = booking.NewTimeOfDay(11, 0)
		params.End = booking.NewTimeOfDay(10, 0)

		_, err := svc.TryReserve(context.Background(), params)
		assertConflictReason(t, err, ReasonInvalidTimeRange)
	})

	t.Run("rejects zero length reservation", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.End = params.Start

		_, err := svc.TryReserve(context.Background(), params)
		assertConflictReason(t, err, ReasonInvalidTimeRange)
	})

	t.Run("rejects times outside working hours", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Start = booking.NewTimeOfDay(7, 0)
		params.End = booking.NewTimeOfDay(9, 0)

		_, err := svc.TryReserve(context.Background(), params)
		assertConflictReason(t, err, ReasonOutsideWorkingHours)
	})

	t.Run("accepts reservation touching both bounds", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Start = booking.NewTimeOfDay(8, 0)
		params.End = booking.NewTimeOfDay(20, 0)

		if _, err := svc.TryReserve(context.Background(), params); err != nil {
			t.Fatalf("full-window booking should succeed, got %v", err)
		}
	})

	t.Run("rejects attendee count above capacity", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Attendees = room.Capacity + 1

		_, err := svc.TryReserve(context.Background(), params)
		assertConflictReason(t, err, ReasonCapacityExceeded)
	})

	t.Run("rejects inactive room", func(t *testing.T) {
		inactive := testfixtures.NewRoom(testfixtures.WithRoomInactive())
		svc, _, _, _ := newReservationHarness(inactive)

		_, err := svc.TryReserve(context.Background(), validParams(inactive.ID))
		assertConflictReason(t, err, ReasonRoomInactive)
	})

	t.Run("rejects unknown room", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.RoomID = "missing"

		_, err := svc.TryReserve(context.Background(), params)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("validates required fields", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Title = "   "
		params.Attendees = 0

		_, err := svc.TryReserve(context.Background(), params)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["title"]; !ok {
			t.Fatalf("expected title error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["attendees"]; !ok {
			t.Fatalf("expected attendees error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects past dates", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)
		params := validParams(room.ID)
		params.Date = testfixtures.ReferenceDate().AddDate(0, 0, -1)

		_, err := svc.TryReserve(context.Background(), params)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["date"]; !ok {
			t.Fatalf("expected date error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("wraps storage failures", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		store.createErr = errors.New("disk full")

		_, err := svc.TryReserve(context.Background(), validParams(room.ID))

		var sErr *StorageError
		if !errors.As(err, &sErr) {
			t.Fatalf("expected StorageError, got %v", err)
		}
	})
}

func TestReservationService_Cancel(t *testing.T) {
	room := testfixtures.NewRoom()

	future := func() persistence.Reservation {
		return testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 2)),
		)
	}

	t.Run("owner cancels an upcoming reservation", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		reservation := future()
		store.records = append(store.records, reservation)

		if err := svc.Cancel(context.Background(), Principal{ActorID: reservation.Requester}, reservation.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.records[0].Status != booking.StatusCanceled {
			t.Fatalf("expected canceled status, got %s", store.records[0].Status)
		}
	})

	t.Run("admin cancels another requester's reservation", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		reservation := future()
		store.records = append(store.records, reservation)

		err := svc.Cancel(context.Background(), Principal{ActorID: "admin", IsAdmin: true}, reservation.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects other requesters", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		reservation := future()
		store.records = append(store.records, reservation)

		err := svc.Cancel(context.Background(), Principal{ActorID: "mallory"}, reservation.ID)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects double cancellation", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		reservation := future()
		reservation.Status = booking.StatusCanceled
		store.records = append(store.records, reservation)

		err := svc.Cancel(context.Background(), Principal{ActorID: reservation.Requester}, reservation.ID)
		if !errors.Is(err, ErrAlreadyCanceled) {
			t.Fatalf("expected ErrAlreadyCanceled, got %v", err)
		}
	})

	t.Run("rejects cancellation after start time", func(t *testing.T) {
		svc, store, _, clock := newReservationHarness(room)
		reservation := future()
		store.records = append(store.records, reservation)
		clock.Set(reservation.Start.At(reservation.Date).Add(time.Minute))

		err := svc.Cancel(context.Background(), Principal{ActorID: reservation.Requester}, reservation.ID)
		if !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("expected ErrAlreadyStarted, got %v", err)
		}
	})

	t.Run("start guard binds admins too", func(t *testing.T) {
		svc, store, _, clock := newReservationHarness(room)
		reservation := future()
		store.records = append(store.records, reservation)
		clock.Set(reservation.Start.At(reservation.Date).Add(time.Minute))

		err := svc.Cancel(context.Background(), Principal{ActorID: "admin", IsAdmin: true}, reservation.ID)
		if !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("expected ErrAlreadyStarted, got %v", err)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)

		err := svc.Cancel(context.Background(), Principal{ActorID: "alice"}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationService_GroupedForRequester(t *testing.T) {
	room := testfixtures.NewRoom()
	svc, store, _, clock := newReservationHarness(room)
	clock.Set(testfixtures.ReferenceDate().Add(12 * time.Hour))

	past := testfixtures.NewReservation(
		testfixtures.WithReservationRoom(room.ID),
		testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, -1)),
	)
	upcoming := testfixtures.NewReservation(
		testfixtures.WithReservationRoom(room.ID),
		testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 1)),
	)
	canceled := testfixtures.NewReservation(
		testfixtures.WithReservationRoom(room.ID),
		testfixtures.WithReservationDate(testfixtures.ReferenceDate().AddDate(0, 0, 2)),
		testfixtures.WithReservationStatus(booking.StatusCanceled),
	)
	store.records = append(store.records, past, upcoming, canceled)

	groups, err := svc.GroupedForRequester(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups.Past) != 1 || groups.Past[0].ID != past.ID {
		t.Fatalf("expected past bucket with %s, got %+v", past.ID, groups.Past)
	}
	if len(groups.Upcoming) != 1 || groups.Upcoming[0].ID != upcoming.ID {
		t.Fatalf("expected upcoming bucket with %s, got %+v", upcoming.ID, groups.Upcoming)
	}
	if len(groups.Canceled) != 1 || groups.Canceled[0].ID != canceled.ID {
		t.Fatalf("expected canceled bucket with %s, got %+v", canceled.ID, groups.Canceled)
	}
}

func TestReservationService_AdminViews(t *testing.T) {
	room := testfixtures.NewRoom()

	t.Run("recent listing requires administrator", func(t *testing.T) {
		svc, _, _, _ := newReservationHarness(room)

		_, err := svc.ListRecent(context.Background(), Principal{ActorID: "alice"}, 5)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("recent listing is strictly latest first within a date", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		morning := testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationTimes(booking.NewTimeOfDay(9, 0), booking.NewTimeOfDay(10, 0)),
		)
		afternoon := testfixtures.NewReservation(
			testfixtures.WithReservationRoom(room.ID),
			testfixtures.WithReservationTimes(booking.NewTimeOfDay(14, 0), booking.NewTimeOfDay(15, 0)),
		)
		store.records = append(store.records, morning, afternoon)

		out, err := svc.ListRecent(context.Background(), Principal{ActorID: "admin", IsAdmin: true}, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected two reservations, got %d", len(out))
		}
		if out[0].Start != afternoon.Start || out[1].Start != morning.Start {
			t.Fatalf("expected %s before %s, got %s then %s", afternoon.Start, morning.Start, out[0].Start, out[1].Start)
		}
	})

	t.Run("admin listing filters by status", func(t *testing.T) {
		svc, store, _, _ := newReservationHarness(room)
		store.records = append(store.records,
			testfixtures.NewReservation(testfixtures.WithReservationRoom(room.ID)),
			testfixtures.NewReservation(
				testfixtures.WithReservationRoom(room.ID),
				testfixtures.WithReservationStatus(booking.StatusCanceled),
			),
		)

		out, err := svc.AdminList(context.Background(), Principal{ActorID: "admin", IsAdmin: true}, AdminListFilter{
			Status: booking.StatusCanceled,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 1 || out[0].Status != booking.StatusCanceled {
			t.Fatalf("expected one canceled reservation, got %+v", out)
		}
	})
}

func TestReservationService_CalendarEvents(t *testing.T) {
	room := testfixtures.NewRoom()
	svc, store, maintenance, _ := newReservationHarness(room)

	day := testfixtures.ReferenceDate().AddDate(0, 0, 3)
	reservation := testfixtures.NewReservation(
		testfixtures.WithReservationRoom(room.ID),
		testfixtures.WithReservationDate(day),
	)
	store.records = append(store.records, reservation)
	maintenance.windows = append(maintenance.windows, testfixtures.NewMaintenanceWindow(
		testfixtures.WithMaintenanceRoom(room.ID),
		testfixtures.WithMaintenanceRange(day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)),
	))

	events, err := svc.CalendarEvents(context.Background(), day, day.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Maintenance || events[0].ID != reservation.ID {
		t.Fatalf("expected reservation first, got %+v", events[0])
	}
	if !events[1].Maintenance {
		t.Fatalf("expected maintenance event second, got %+v", events[1])
	}
}

func assertConflictReason(t *testing.T, err error, want ConflictReason) {
	t.Helper()
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cErr.Reason != want {
		t.Fatalf("expected %s, got %s", want, cErr.Reason)
	}
}
