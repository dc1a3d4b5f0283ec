package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

var (
	errBadRequestBody       = errors.New("invalid request body")
	errInvalidRoomID        = errors.New("invalid room id")
	errInvalidReservationID = errors.New("invalid reservation id")
	errInvalidWindowID      = errors.New("invalid maintenance window id")
	errInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	errMissingActor         = errors.New("missing X-Actor-ID header")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors into HTTP responses.
// Conflict responses carry a machine-readable reason and the records the
// request collided with.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "you are not allowed to perform this operation",
		})
		return
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource does not exist"})
		return
	case errors.Is(err, application.ErrAlreadyCanceled):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "already_canceled",
			Message:   "the reservation is already canceled",
		})
		return
	case errors.Is(err, application.ErrAlreadyStarted):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "already_started",
			Message:   "the reservation has already started and can no longer be canceled",
		})
		return
	}

	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		resp := errorResponse{
			ErrorCode: string(cErr.Reason),
			Message:   cErr.Error(),
		}
		for _, conflict := range cErr.Reservations {
			resp.Conflicts = append(resp.Conflicts, toReservationDTO(conflict))
		}
		if cErr.Window != nil {
			dto := toWindowDTO(*cErr.Window)
			resp.MaintenanceWindow = &dto
		}
		r.writeJSON(ctx, w, http.StatusConflict, resp)
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid fields",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode         string            `json:"error_code,omitempty"`
	Message           string            `json:"message"`
	Errors            map[string]string `json:"errors,omitempty"`
	Conflicts         []reservationDTO  `json:"conflicts,omitempty"`
	MaintenanceWindow *windowDTO        `json:"maintenance_window,omitempty"`
}