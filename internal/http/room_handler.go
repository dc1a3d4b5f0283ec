package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

type roomService interface {
	CreateRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (persistence.Room, error)
	UpdateRoom(ctx context.Context, principal application.Principal, roomID string, input application.RoomInput) (persistence.Room, error)
	SetActive(ctx context.Context, principal application.Principal, roomID string, active bool) error
	ListRooms(ctx context.Context, activeOnly bool) ([]persistence.Room, error)
	GetRoomDetail(ctx context.Context, roomID string, date time.Time) (application.RoomDetail, error)
}

type availabilityService interface {
	ComputeFreeSlots(ctx context.Context, roomID string, date time.Time) (application.Availability, error)
}

type RoomHandler struct {
	service      roomService
	availability availabilityService
	responder    responder
	logger       *slog.Logger
	now          func() time.Time
}

func NewRoomHandler(service roomService, availability availabilityService, now func() time.Time, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &RoomHandler{
		service:      service,
		availability: availability,
		responder:    newResponder(base),
		logger:       base,
		now:          now,
	}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

type roomRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", principal.ActorID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", principal.ActorID)

	room, err := h.service.CreateRoom(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomDTO(room))
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "actor_id", principal.ActorID, "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", principal.ActorID, "room_id", roomID)

	room, err := h.service.UpdateRoom(r.Context(), principal, roomID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

type roomActiveRequest struct {
	Active bool `json:"active"`
}

func (h *RoomHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetActive", "actor_id", principal.ActorID, "room_id", roomID, "active", req.Active)

	if err := h.service.SetActive(r.Context(), principal, roomID, req.Active); err != nil {
		logger.ErrorContext(r.Context(), "room toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	rooms, err := h.service.ListRooms(r.Context(), activeOnly)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "room listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"rooms": out})
}

func (h *RoomHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	date := booking.DateOf(h.now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		date = parsed
	}

	detail, err := h.service.GetRoomDetail(r.Context(), roomID, date)
	if err != nil {
		h.log(r.Context(), "Detail", "room_id", roomID).ErrorContext(r.Context(), "room detail failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"room":         toRoomDTO(detail.Room),
		"reservations": toReservationDTOs(detail.Reservations),
		"maintenance":  toWindowDTOs(detail.Maintenance),
	})
}

func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.availability == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	date := booking.DateOf(h.now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		date = parsed
	}

	availability, err := h.availability.ComputeFreeSlots(r.Context(), roomID, date)
	if err != nil {
		h.log(r.Context(), "Availability", "room_id", roomID).ErrorContext(r.Context(), "availability failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"available":    availability.Available,
		"reason":       availability.Reason,
		"slots":        toSlotDTOs(availability.Slots),
		"reservations": toReservationDTOs(availability.Reservations),
	})
}
