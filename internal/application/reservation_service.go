package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// ReservationStore captures the persistence interactions needed by the
// reservation ledger.
type ReservationStore interface {
	CreateReservation(ctx context.Context, reservation persistence.Reservation) error
	GetReservation(ctx context.Context, id string) (persistence.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, status booking.Status) error
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
}

// RoomCatalog exposes room lookup for booking validation.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
}

// BlackoutCalendar exposes maintenance window lookups for booking validation
// and the calendar feed.
type BlackoutCalendar interface {
	ListWindows(ctx context.Context, filter persistence.MaintenanceFilter) ([]persistence.MaintenanceWindow, error)
}

// ReservationService owns the reservation ledger: it validates booking
// requests, guards the no-overlap invariant, and serves the read views
// derived from booking history.
type ReservationService struct {
	reservations ReservationStore
	rooms        RoomCatalog
	maintenance  BlackoutCalendar
	locks        *LockTable
	hours        WorkingHours
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations. The
// lock table must be shared with the maintenance service so both take the
// same per-room critical sections.
func NewReservationService(reservations ReservationStore, rooms RoomCatalog, maintenance BlackoutCalendar, locks *LockTable, hours WorkingHours, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, maintenance, locks, hours, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a
// specified logger.
func NewReservationServiceWithLogger(reservations ReservationStore, rooms RoomCatalog, maintenance BlackoutCalendar, locks *LockTable, hours WorkingHours, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if locks == nil {
		locks = NewLockTable()
	}
	if hours == (WorkingHours{}) {
		hours = DefaultWorkingHours()
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		maintenance:  maintenance,
		locks:        locks,
		hours:        hours,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

func (s *ReservationService) lockRoom(roomID string) func() {
	s.locks.Lock(roomID)
	return func() { s.locks.Unlock(roomID) }
}

// TryReserve validates every booking invariant and, atomically with the
// conflict check for the target room, appends a confirmed reservation.
func (s *ReservationService) TryReserve(ctx context.Context, params ReserveParams) (reservation persistence.Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "TryReserve",
		"actor_id", params.Principal.ActorID,
		"room_id", params.RoomID,
		"date", params.Date.Format(booking.DateLayout),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reserve room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	if vErr := s.validateReserveInput(params); vErr.HasErrors() {
		err = vErr
		return
	}

	requested := booking.Interval{Start: params.Start, End: params.End}
	if requested.Start >= requested.End {
		err = conflictErr(ReasonInvalidTimeRange, "end time must be after start time")
		return
	}
	if !s.hours.Contains(requested) {
		err = conflictErr(ReasonOutsideWorkingHours, "reservation must lie within working hours (%s-%s)", s.hours.Start, s.hours.End)
		return
	}

	room, rerr := s.rooms.GetRoom(ctx, params.RoomID)
	if rerr != nil {
		err = mapRepoError(rerr)
		return
	}
	if !room.Active {
		err = conflictErr(ReasonRoomInactive, "room %s is currently unavailable", room.Name)
		return
	}
	if params.Attendees > room.Capacity {
		err = conflictErr(ReasonCapacityExceeded, "attendee count exceeds room capacity (%d)", room.Capacity)
		return
	}

	date := booking.DateOf(params.Date)

	unlock := s.lockRoom(room.ID)
	defer unlock()

	if err = s.checkBlackout(ctx, room.ID, date); err != nil {
		return
	}

	conflicts, lerr := s.confirmedOverlapping(ctx, room.ID, date, requested)
	if lerr != nil {
		err = lerr
		return
	}
	if len(conflicts) > 0 {
		err = &ConflictError{
			Reason:       ReasonTimeConflict,
			Message:      "the room is already booked for the requested time",
			Reservations: conflicts,
		}
		return
	}

	reservation = persistence.Reservation{
		ID:          s.idGenerator(),
		RoomID:      room.ID,
		Requester:   params.Principal.ActorID,
		Date:        date,
		Start:       params.Start,
		End:         params.End,
		Attendees:   params.Attendees,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      booking.StatusConfirmed,
		CreatedAt:   s.now(),
	}

	if cerr := s.reservations.CreateReservation(ctx, reservation); cerr != nil {
		reservation = persistence.Reservation{}
		err = mapRepoError(cerr)
		return
	}

	return reservation, nil
}

// Cancel flips a reservation to canceled. Only the original requester or a
// privileged actor may cancel, and only while the start time has not elapsed.
func (s *ReservationService) Cancel(ctx context.Context, principal Principal, reservationID string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}

	logger := s.loggerWith(ctx, "Cancel",
		"actor_id", principal.ActorID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation canceled")
	}()

	reservation, gerr := s.reservations.GetReservation(ctx, reservationID)
	if gerr != nil {
		err = mapRepoError(gerr)
		return
	}

	if reservation.Requester != principal.ActorID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if reservation.Status == booking.StatusCanceled {
		err = ErrAlreadyCanceled
		return
	}
	if !booking.CanCancel(reservation.Date, reservation.Start, reservation.Status, s.now()) {
		err = ErrAlreadyStarted
		return
	}

	if uerr := s.reservations.UpdateReservationStatus(ctx, reservationID, booking.StatusCanceled); uerr != nil {
		err = mapRepoError(uerr)
		return
	}
	return nil
}

// GetReservation returns one reservation. Non-privileged actors may only
// read their own.
func (s *ReservationService) GetReservation(ctx context.Context, principal Principal, reservationID string) (persistence.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return persistence.Reservation{}, mapRepoError(err)
	}
	if reservation.Requester != principal.ActorID && !principal.IsAdmin {
		return persistence.Reservation{}, ErrUnauthorized
	}
	return reservation, nil
}

// ListForRequester returns all of a requester's reservations ordered by
// (date, start time) ascending.
func (s *ReservationService) ListForRequester(ctx context.Context, requester string) ([]persistence.Reservation, error) {
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{Requester: requester})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// GroupedForRequester splits a requester's history into upcoming, past, and
// canceled buckets using the injected clock, most recent date first.
func (s *ReservationService) GroupedForRequester(ctx context.Context, requester string) (ReservationGroups, error) {
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Requester: requester,
		Order:     persistence.OrderDateDesc,
	})
	if err != nil {
		return ReservationGroups{}, mapRepoError(err)
	}

	now := s.now()
	var groups ReservationGroups
	for _, r := range reservations {
		switch {
		case r.Status == booking.StatusCanceled:
			groups.Canceled = append(groups.Canceled, r)
		case booking.IsPast(r.Date, r.End, now):
			groups.Past = append(groups.Past, r)
		default:
			groups.Upcoming = append(groups.Upcoming, r)
		}
	}
	return groups, nil
}

// ListForRoomAndDate returns a room's reservations for one date ordered by
// start time ascending, optionally narrowed to one status.
func (s *ReservationService) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, status booking.Status) ([]persistence.Reservation, error) {
	day := booking.DateOf(date)
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		RoomID: roomID,
		Date:   &day,
		Status: status,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// ListUpcoming returns confirmed reservations dated today or later, earliest
// first, capped at limit when positive.
func (s *ReservationService) ListUpcoming(ctx context.Context, limit int) ([]persistence.Reservation, error) {
	today := booking.DateOf(s.now())
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Status:   booking.StatusConfirmed,
		DateFrom: &today,
		Limit:    limit,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// ListRecent returns the latest reservations across all statuses for the
// admin dashboard feed.
func (s *ReservationService) ListRecent(ctx context.Context, principal Principal, limit int) ([]persistence.Reservation, error) {
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Order: persistence.OrderRecentFirst,
		Limit: limit,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// AdminList returns reservations across all requesters with optional status,
// room, and date-range filters, most recent date first.
func (s *ReservationService) AdminList(ctx context.Context, principal Principal, filter AdminListFilter) ([]persistence.Reservation, error) {
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Status:   filter.Status,
		RoomID:   filter.RoomID,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
		Order:    persistence.OrderDateDesc,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// CalendarEvents merges confirmed reservations and maintenance blackouts
// intersecting the inclusive date range, optionally narrowed to one room.
func (s *ReservationService) CalendarEvents(ctx context.Context, from, to time.Time, roomID string) ([]CalendarEvent, error) {
	fromDate := booking.DateOf(from)
	toDate := booking.DateOf(to)

	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Status:   booking.StatusConfirmed,
		RoomID:   roomID,
		DateFrom: &fromDate,
		DateTo:   &toDate,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	events := make([]CalendarEvent, 0, len(reservations))
	for _, r := range reservations {
		events = append(events, CalendarEvent{
			ID:      r.ID,
			Title:   r.Title,
			RoomID:  r.RoomID,
			Date:    r.Date,
			Start:   r.Start,
			End:     r.End,
			EndDate: r.Date,
		})
	}

	if s.maintenance != nil {
		windows, werr := s.maintenance.ListWindows(ctx, persistence.MaintenanceFilter{
			RoomID: roomID,
			From:   &fromDate,
			To:     &toDate,
		})
		if werr != nil {
			return nil, mapRepoError(werr)
		}
		for _, w := range windows {
			events = append(events, CalendarEvent{
				ID:          w.ID,
				Title:       "Maintenance: " + w.Reason,
				RoomID:      w.RoomID,
				Date:        w.StartDate,
				EndDate:     w.EndDate,
				Maintenance: true,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Start < events[j].Start
	})
	return events, nil
}

func (s *ReservationService) validateReserveInput(params ReserveParams) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(params.Title) == "" {
		vErr.add("title", "title is required")
	}
	if params.Attendees <= 0 {
		vErr.add("attendees", "attendee count must be positive")
	}
	if params.Date.IsZero() {
		vErr.add("date", "date is required")
	} else if booking.DateOf(params.Date).Before(booking.DateOf(s.now())) {
		vErr.add("date", "cannot book a past date")
	}
	if !params.Start.Valid() {
		vErr.add("start", "start time is invalid")
	}
	if !params.End.Valid() {
		vErr.add("end", "end time is invalid")
	}
	return vErr
}

func (s *ReservationService) checkBlackout(ctx context.Context, roomID string, date time.Time) error {
	if s.maintenance == nil {
		return nil
	}
	windows, err := s.maintenance.ListWindows(ctx, persistence.MaintenanceFilter{
		RoomID:     roomID,
		CoversDate: &date,
	})
	if err != nil {
		return mapRepoError(err)
	}
	if len(windows) == 0 {
		return nil
	}
	window := windows[0]
	return &ConflictError{
		Reason: ReasonMaintenanceConflict,
		Message: fmt.Sprintf("room is under maintenance from %s to %s",
			window.StartDate.Format(booking.DateLayout), window.EndDate.Format(booking.DateLayout)),
		Window: &window,
	}
}

func (s *ReservationService) confirmedOverlapping(ctx context.Context, roomID string, date time.Time, requested booking.Interval) ([]persistence.Reservation, error) {
	existing, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		RoomID: roomID,
		Date:   &date,
		Status: booking.StatusConfirmed,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	var conflicts []persistence.Reservation
	for _, r := range existing {
		if requested.Overlaps(r.Interval()) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts, nil
}
