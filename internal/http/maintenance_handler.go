package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

type maintenanceService interface {
	CreateWindow(ctx context.Context, params application.MaintenanceParams) (persistence.MaintenanceWindow, error)
	UpdateWindow(ctx context.Context, windowID string, params application.MaintenanceParams) (persistence.MaintenanceWindow, error)
	DeleteWindow(ctx context.Context, principal application.Principal, windowID string) error
	ListWindows(ctx context.Context, roomID string) ([]persistence.MaintenanceWindow, error)
}

type MaintenanceHandler struct {
	service   maintenanceService
	responder responder
	logger    *slog.Logger
}

func NewMaintenanceHandler(service maintenanceService, logger *slog.Logger) *MaintenanceHandler {
	base := defaultLogger(logger)
	return &MaintenanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MaintenanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MaintenanceHandler", operation, attrs...)
}

type maintenanceRequest struct {
	RoomID    string `json:"room_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (h *MaintenanceHandler) decodeParams(r *http.Request, principal application.Principal) (application.MaintenanceParams, error) {
	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return application.MaintenanceParams{}, errBadRequestBody
	}

	params := application.MaintenanceParams{
		Principal: principal,
		RoomID:    req.RoomID,
		Reason:    req.Reason,
	}
	if req.StartDate != "" {
		start, err := booking.ParseDate(req.StartDate)
		if err != nil {
			return application.MaintenanceParams{}, errInvalidDate
		}
		params.StartDate = start
	}
	if req.EndDate != "" {
		end, err := booking.ParseDate(req.EndDate)
		if err != nil {
			return application.MaintenanceParams{}, errInvalidDate
		}
		params.EndDate = end
	}
	return params, nil
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, err := h.decodeParams(r, principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", principal.ActorID, "room_id", params.RoomID)

	window, err := h.service.CreateWindow(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "window creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("window_id", window.ID).InfoContext(r.Context(), "maintenance window created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toWindowDTO(window))
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	windowID, ok := WindowIDFromContext(r.Context())
	if !ok || strings.TrimSpace(windowID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWindowID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, err := h.decodeParams(r, principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", principal.ActorID, "window_id", windowID)

	window, err := h.service.UpdateWindow(r.Context(), windowID, params)
	if err != nil {
		logger.ErrorContext(r.Context(), "window update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "maintenance window updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWindowDTO(window))
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	windowID, ok := WindowIDFromContext(r.Context())
	if !ok || strings.TrimSpace(windowID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWindowID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "actor_id", principal.ActorID, "window_id", windowID)

	if err := h.service.DeleteWindow(r.Context(), principal, windowID); err != nil {
		logger.ErrorContext(r.Context(), "window deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "maintenance window deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	windows, err := h.service.ListWindows(r.Context(), r.URL.Query().Get("room_id"))
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "window listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"maintenance_windows": toWindowDTOs(windows)})
}
