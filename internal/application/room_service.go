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

// RoomStore captures the persistence interactions needed by the room
// registry.
type RoomStore interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	UpdateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context, activeOnly bool) ([]persistence.Room, error)
}

// RoomService owns the room registry: catalog CRUD plus the read model that
// joins a room with its schedule.
type RoomService struct {
	rooms        RoomStore
	reservations ReservationStore
	maintenance  BlackoutCalendar
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewRoomService wires dependencies for room operations.
func NewRoomService(rooms RoomStore, reservations ReservationStore, maintenance BlackoutCalendar, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, reservations, maintenance, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified
// logger.
func NewRoomServiceWithLogger(rooms RoomStore, reservations ReservationStore, maintenance BlackoutCalendar, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:        rooms,
		reservations: reservations,
		maintenance:  maintenance,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom registers a new active room in the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"actor_id", principal.ActorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateRoomInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room = persistence.Room{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Location:    strings.TrimSpace(input.Location),
		Capacity:    input.Capacity,
		Description: input.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cerr := s.rooms.CreateRoom(ctx, room); cerr != nil {
		room = persistence.Room{}
		err = mapRepoError(cerr)
		return
	}
	return room, nil
}

// UpdateRoom edits the catalog fields of an existing room. The active flag
// is controlled separately through SetActive.
func (s *RoomService) UpdateRoom(ctx context.Context, principal Principal, roomID string, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"actor_id", principal.ActorID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateRoomInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	existing, gerr := s.rooms.GetRoom(ctx, roomID)
	if gerr != nil {
		err = mapRepoError(gerr)
		return
	}

	room = existing
	room.Name = strings.TrimSpace(input.Name)
	room.Location = strings.TrimSpace(input.Location)
	room.Capacity = input.Capacity
	room.Description = input.Description
	room.UpdatedAt = s.now()

	if uerr := s.rooms.UpdateRoom(ctx, room); uerr != nil {
		room = persistence.Room{}
		err = mapRepoError(uerr)
		return
	}
	return room, nil
}

// SetActive toggles whether a room accepts new reservations. Deactivating a
// room does not touch its existing reservations.
func (s *RoomService) SetActive(ctx context.Context, principal Principal, roomID string, active bool) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "SetActive",
		"actor_id", principal.ActorID,
		"room_id", roomID,
		"active", active,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to toggle room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room toggled")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	room, gerr := s.rooms.GetRoom(ctx, roomID)
	if gerr != nil {
		err = mapRepoError(gerr)
		return
	}
	if room.Active == active {
		return nil
	}

	room.Active = active
	room.UpdatedAt = s.now()
	if uerr := s.rooms.UpdateRoom(ctx, room); uerr != nil {
		err = mapRepoError(uerr)
		return
	}
	return nil
}

// GetRoom returns one room by ID.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (persistence.Room, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return persistence.Room{}, mapRepoError(err)
	}
	return room, nil
}

// ListRooms returns the catalog, restricted to active rooms unless the
// caller asks for everything.
func (s *RoomService) ListRooms(ctx context.Context, activeOnly bool) ([]persistence.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx, activeOnly)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rooms, nil
}

// GetRoomDetail assembles the room page read model: the room, its confirmed
// reservations for the given date, and blackout windows that end on or after
// that date.
func (s *RoomService) GetRoomDetail(ctx context.Context, roomID string, date time.Time) (RoomDetail, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return RoomDetail{}, mapRepoError(err)
	}

	day := booking.DateOf(date)
	detail := RoomDetail{Room: room}

	if s.reservations != nil {
		reservations, lerr := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
			RoomID: roomID,
			Date:   &day,
			Status: booking.StatusConfirmed,
		})
		if lerr != nil {
			return RoomDetail{}, mapRepoError(lerr)
		}
		detail.Reservations = reservations
	}

	if s.maintenance != nil {
		windows, werr := s.maintenance.ListWindows(ctx, persistence.MaintenanceFilter{
			RoomID: roomID,
			From:   &day,
		})
		if werr != nil {
			return RoomDetail{}, mapRepoError(werr)
		}
		detail.Maintenance = windows
	}

	return detail, nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	return vErr
}
