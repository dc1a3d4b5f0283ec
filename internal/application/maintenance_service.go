package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// MaintenanceStore captures the persistence interactions needed by the
// maintenance calendar.
type MaintenanceStore interface {
	CreateWindow(ctx context.Context, window persistence.MaintenanceWindow) error
	UpdateWindow(ctx context.Context, window persistence.MaintenanceWindow) error
	GetWindow(ctx context.Context, id string) (persistence.MaintenanceWindow, error)
	DeleteWindow(ctx context.Context, id string) error
	ListWindows(ctx context.Context, filter persistence.MaintenanceFilter) ([]persistence.MaintenanceWindow, error)
}

// ConfirmedBookingsReader answers which confirmed reservations exist for a
// room within a date range, used to reject windows over existing bookings.
type ConfirmedBookingsReader interface {
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
}

// MaintenanceService owns blackout windows: it rejects windows that would
// swallow confirmed bookings and answers blackout lookups for the booking
// path.
type MaintenanceService struct {
	windows      MaintenanceStore
	reservations ConfirmedBookingsReader
	rooms        RoomCatalog
	locks        *LockTable
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewMaintenanceService wires dependencies for maintenance operations. The
// lock table must be the one the reservation service uses.
func NewMaintenanceService(windows MaintenanceStore, reservations ConfirmedBookingsReader, rooms RoomCatalog, locks *LockTable, idGenerator func() string, now func() time.Time) *MaintenanceService {
	return NewMaintenanceServiceWithLogger(windows, reservations, rooms, locks, idGenerator, now, nil)
}

// NewMaintenanceServiceWithLogger constructs a maintenance service with a
// specified logger.
func NewMaintenanceServiceWithLogger(windows MaintenanceStore, reservations ConfirmedBookingsReader, rooms RoomCatalog, locks *LockTable, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MaintenanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if locks == nil {
		locks = NewLockTable()
	}
	return &MaintenanceService{
		windows:      windows,
		reservations: reservations,
		rooms:        rooms,
		locks:        locks,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *MaintenanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MaintenanceService", operation, attrs...)
}

// CreateWindow declares a blackout range for a room. The window is rejected,
// carrying the offending reservations, if any confirmed booking falls inside
// it; bookings are never silently canceled.
func (s *MaintenanceService) CreateWindow(ctx context.Context, params MaintenanceParams) (window persistence.MaintenanceWindow, err error) {
	if s == nil {
		err = fmt.Errorf("MaintenanceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateWindow",
		"actor_id", params.Principal.ActorID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create maintenance window", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("window_id", window.ID).InfoContext(ctx, "maintenance window created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if err = s.validateWindow(ctx, params); err != nil {
		return
	}

	startDate := booking.DateOf(params.StartDate)
	endDate := booking.DateOf(params.EndDate)

	s.locks.Lock(params.RoomID)
	defer s.locks.Unlock(params.RoomID)

	if err = s.checkBookingConflicts(ctx, params.RoomID, startDate, endDate); err != nil {
		return
	}

	window = persistence.MaintenanceWindow{
		ID:        s.idGenerator(),
		RoomID:    params.RoomID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    strings.TrimSpace(params.Reason),
		CreatedBy: params.Principal.ActorID,
		CreatedAt: s.now(),
	}

	if cerr := s.windows.CreateWindow(ctx, window); cerr != nil {
		window = persistence.MaintenanceWindow{}
		err = mapRepoError(cerr)
		return
	}
	return window, nil
}

// UpdateWindow edits an existing blackout. The booking-conflict check is
// re-run when the room or either date changes.
func (s *MaintenanceService) UpdateWindow(ctx context.Context, windowID string, params MaintenanceParams) (window persistence.MaintenanceWindow, err error) {
	if s == nil {
		err = fmt.Errorf("MaintenanceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateWindow",
		"actor_id", params.Principal.ActorID,
		"window_id", windowID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update maintenance window", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "maintenance window updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	existing, gerr := s.windows.GetWindow(ctx, windowID)
	if gerr != nil {
		err = mapRepoError(gerr)
		return
	}

	if err = s.validateWindow(ctx, params); err != nil {
		return
	}

	startDate := booking.DateOf(params.StartDate)
	endDate := booking.DateOf(params.EndDate)

	rangeChanged := params.RoomID != existing.RoomID ||
		!startDate.Equal(existing.StartDate) ||
		!endDate.Equal(existing.EndDate)

	s.locks.Lock(params.RoomID)
	defer s.locks.Unlock(params.RoomID)

	if rangeChanged {
		if err = s.checkBookingConflicts(ctx, params.RoomID, startDate, endDate); err != nil {
			return
		}
	}

	window = existing
	window.RoomID = params.RoomID
	window.StartDate = startDate
	window.EndDate = endDate
	window.Reason = strings.TrimSpace(params.Reason)

	if uerr := s.windows.UpdateWindow(ctx, window); uerr != nil {
		window = persistence.MaintenanceWindow{}
		err = mapRepoError(uerr)
		return
	}
	return window, nil
}

// DeleteWindow removes a blackout unconditionally. Reservations are never
// affected.
func (s *MaintenanceService) DeleteWindow(ctx context.Context, principal Principal, windowID string) (err error) {
	if s == nil {
		return fmt.Errorf("MaintenanceService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteWindow",
		"actor_id", principal.ActorID,
		"window_id", windowID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete maintenance window", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "maintenance window deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if derr := s.windows.DeleteWindow(ctx, windowID); derr != nil {
		err = mapRepoError(derr)
		return
	}
	return nil
}

// IsBlocked reports whether the room is under maintenance on the date,
// returning the covering window when it is.
func (s *MaintenanceService) IsBlocked(ctx context.Context, roomID string, date time.Time) (bool, *persistence.MaintenanceWindow, error) {
	day := booking.DateOf(date)
	windows, err := s.windows.ListWindows(ctx, persistence.MaintenanceFilter{
		RoomID:     roomID,
		CoversDate: &day,
	})
	if err != nil {
		return false, nil, mapRepoError(err)
	}
	if len(windows) == 0 {
		return false, nil, nil
	}
	window := windows[0]
	return true, &window, nil
}

// ListWindows returns blackout windows, optionally narrowed to one room,
// ordered by start date.
func (s *MaintenanceService) ListWindows(ctx context.Context, roomID string) ([]persistence.MaintenanceWindow, error) {
	windows, err := s.windows.ListWindows(ctx, persistence.MaintenanceFilter{RoomID: roomID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return windows, nil
}

func (s *MaintenanceService) validateWindow(ctx context.Context, params MaintenanceParams) error {
	vErr := &ValidationError{}
	if params.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if strings.TrimSpace(params.Reason) == "" {
		vErr.add("reason", "reason is required")
	}
	if params.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if params.EndDate.IsZero() {
		vErr.add("end_date", "end date is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if booking.DateOf(params.StartDate).After(booking.DateOf(params.EndDate)) {
		return conflictErr(ReasonInvalidDateRange, "end date must not precede start date")
	}

	if s.rooms != nil {
		if _, err := s.rooms.GetRoom(ctx, params.RoomID); err != nil {
			return mapRepoError(err)
		}
	}
	return nil
}

func (s *MaintenanceService) checkBookingConflicts(ctx context.Context, roomID string, startDate, endDate time.Time) error {
	if s.reservations == nil {
		return nil
	}
	conflicts, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		RoomID:   roomID,
		Status:   booking.StatusConfirmed,
		DateFrom: &startDate,
		DateTo:   &endDate,
	})
	if err != nil {
		return mapRepoError(err)
	}
	if len(conflicts) == 0 {
		return nil
	}
	return &ConflictError{
		Reason:       ReasonBookingConflict,
		Message:      fmt.Sprintf("%d confirmed reservation(s) fall inside the proposed window", len(conflicts)),
		Reservations: conflicts,
	}
}
