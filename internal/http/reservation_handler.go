package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

type reservationService interface {
	TryReserve(ctx context.Context, params application.ReserveParams) (persistence.Reservation, error)
	Cancel(ctx context.Context, principal application.Principal, reservationID string) error
	GetReservation(ctx context.Context, principal application.Principal, reservationID string) (persistence.Reservation, error)
	ListForRequester(ctx context.Context, requester string) ([]persistence.Reservation, error)
	GroupedForRequester(ctx context.Context, requester string) (application.ReservationGroups, error)
	ListUpcoming(ctx context.Context, limit int) ([]persistence.Reservation, error)
	ListRecent(ctx context.Context, principal application.Principal, limit int) ([]persistence.Reservation, error)
	AdminList(ctx context.Context, principal application.Principal, filter application.AdminListFilter) ([]persistence.Reservation, error)
	CalendarEvents(ctx context.Context, from, to time.Time, roomID string) ([]application.CalendarEvent, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
	now       func() time.Time
}

func NewReservationHandler(service reservationService, now func() time.Time, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base, now: now}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

type reservationRequest struct {
	RoomID      string `json:"room_id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Attendees   int    `json:"attendees"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", principal.ActorID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	date, err := booking.ParseDate(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	start, err := booking.ParseTimeOfDay(req.Start)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	end, err := booking.ParseTimeOfDay(req.End)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", principal.ActorID, "room_id", req.RoomID)

	reservation, err := h.service.TryReserve(r.Context(), application.ReserveParams{
		Principal:   principal,
		RoomID:      req.RoomID,
		Date:        date,
		Start:       start,
		End:         end,
		Attendees:   req.Attendees,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toReservationDTO(reservation))
}

// List returns the acting requester's reservations. With grouped=true the
// history is split into upcoming, past, and canceled buckets.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if r.URL.Query().Get("grouped") == "true" {
		groups, err := h.service.GroupedForRequester(r.Context(), principal.ActorID)
		if err != nil {
			h.log(r.Context(), "List", "actor_id", principal.ActorID).ErrorContext(r.Context(), "reservation listing failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"upcoming": toReservationDTOs(groups.Upcoming),
			"past":     toReservationDTOs(groups.Past),
			"canceled": toReservationDTOs(groups.Canceled),
		})
		return
	}

	reservations, err := h.service.ListForRequester(r.Context(), principal.ActorID)
	if err != nil {
		h.log(r.Context(), "List", "actor_id", principal.ActorID).ErrorContext(r.Context(), "reservation listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"reservations": toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	reservation, err := h.service.GetReservation(r.Context(), principal, reservationID)
	if err != nil {
		h.log(r.Context(), "Get", "actor_id", principal.ActorID, "reservation_id", reservationID).ErrorContext(r.Context(), "reservation lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(reservation))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "actor_id", principal.ActorID, "reservation_id", reservationID)

	if err := h.service.Cancel(r.Context(), principal, reservationID); err != nil {
		logger.ErrorContext(r.Context(), "cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation canceled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 20)
	reservations, err := h.service.ListUpcoming(r.Context(), limit)
	if err != nil {
		h.log(r.Context(), "Upcoming").ErrorContext(r.Context(), "upcoming listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"reservations": toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	limit := parseLimit(r.URL.Query().Get("limit"), 10)

	reservations, err := h.service.ListRecent(r.Context(), principal, limit)
	if err != nil {
		h.log(r.Context(), "Recent", "actor_id", principal.ActorID).ErrorContext(r.Context(), "recent listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"reservations": toReservationDTOs(reservations)})
}

// AdminList returns reservations across all requesters with optional status,
// room, and date-range query filters.
func (h *ReservationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	filter := application.AdminListFilter{
		Status: booking.Status(query.Get("status")),
		RoomID: query.Get("room_id"),
	}
	if raw := query.Get("from"); raw != "" {
		from, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		filter.DateFrom = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		filter.DateTo = &to
	}

	reservations, err := h.service.AdminList(r.Context(), principal, filter)
	if err != nil {
		h.log(r.Context(), "AdminList", "actor_id", principal.ActorID).ErrorContext(r.Context(), "admin listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"reservations": toReservationDTOs(reservations)})
}

// Calendar returns confirmed reservations and maintenance windows in a date
// range. The default range is the current week starting Monday.
func (h *ReservationHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	from := booking.StartOfWeek(booking.DateOf(h.now()))
	to := from.AddDate(0, 0, 6)

	if raw := query.Get("from"); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		to = parsed
	}

	events, err := h.service.CalendarEvents(r.Context(), from, to, query.Get("room_id"))
	if err != nil {
		h.log(r.Context(), "Calendar").ErrorContext(r.Context(), "calendar failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]calendarEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toCalendarEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"from":   from.Format(booking.DateLayout),
		"to":     to.Format(booking.DateLayout),
		"events": out,
	})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
