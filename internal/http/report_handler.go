package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/reporting"
)

type reportService interface {
	RoomUsageReport(ctx context.Context, params application.ReportParams) ([]application.RoomUsageRow, application.ReportRange, error)
	RequesterActivityReport(ctx context.Context, params application.ReportParams) ([]reporting.RequesterActivity, application.ReportRange, error)
	TimeDistributionReport(ctx context.Context, params application.ReportParams) (reporting.TimeDistribution, application.ReportRange, error)
	DashboardSummary(ctx context.Context, principal application.Principal) (application.DashboardSummary, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) reportParams(r *http.Request) (application.ReportParams, error) {
	principal, _ := PrincipalFromContext(r.Context())
	params := application.ReportParams{
		Principal: principal,
		RoomID:    r.URL.Query().Get("room_id"),
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := booking.ParseDate(raw)
		if err != nil {
			return application.ReportParams{}, errInvalidDate
		}
		params.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := booking.ParseDate(raw)
		if err != nil {
			return application.ReportParams{}, errInvalidDate
		}
		params.To = &to
	}
	return params, nil
}

type usageRowDTO struct {
	RoomID       string  `json:"room_id"`
	RoomName     string  `json:"room_name"`
	Reservations int     `json:"reservations"`
	// TotalHours is rounded to one decimal at the presentation boundary.
	TotalHours   float64 `json:"total_hours"`
}

func toUsageRowDTOs(rows []application.RoomUsageRow) []usageRowDTO {
	out := make([]usageRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, usageRowDTO{
			RoomID:       row.RoomID,
			RoomName:     row.RoomName,
			Reservations: row.Reservations,
			TotalHours:   roundHours(row.TotalHours),
		})
	}
	return out
}

func roundHours(hours float64) float64 {
	return math.Round(hours*10) / 10
}

func rangeDTO(r application.ReportRange) map[string]string {
	return map[string]string{
		"from": r.From.Format(booking.DateLayout),
		"to":   r.To.Format(booking.DateLayout),
	}
}

func (h *ReportHandler) RoomUsage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.reportParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rows, reportRange, err := h.service.RoomUsageReport(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "RoomUsage", "actor_id", params.Principal.ActorID).ErrorContext(r.Context(), "room usage report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"range": rangeDTO(reportRange),
		"rooms": toUsageRowDTOs(rows),
	})
}

func (h *ReportHandler) RequesterActivity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.reportParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	activity, reportRange, err := h.service.RequesterActivityReport(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "RequesterActivity", "actor_id", params.Principal.ActorID).ErrorContext(r.Context(), "requester activity report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	type activityDTO struct {
		Requester    string `json:"requester"`
		Reservations int    `json:"reservations"`
		Canceled     int    `json:"canceled"`
	}
	out := make([]activityDTO, 0, len(activity))
	for _, a := range activity {
		out = append(out, activityDTO{Requester: a.Requester, Reservations: a.Reservations, Canceled: a.Canceled})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"range":      rangeDTO(reportRange),
		"requesters": out,
	})
}

func (h *ReportHandler) TimeDistribution(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.reportParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	dist, reportRange, err := h.service.TimeDistributionReport(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "TimeDistribution", "actor_id", params.Principal.ActorID).ErrorContext(r.Context(), "time distribution report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	type hourDTO struct {
		Hour  int `json:"hour"`
		Count int `json:"count"`
	}
	type weekdayDTO struct {
		Weekday int `json:"weekday"`
		Count   int `json:"count"`
	}
	hours := make([]hourDTO, 0, len(dist.Hours))
	for _, b := range dist.Hours {
		hours = append(hours, hourDTO{Hour: b.Hour, Count: b.Count})
	}
	weekdays := make([]weekdayDTO, 0, len(dist.Weekdays))
	for _, b := range dist.Weekdays {
		weekdays = append(weekdays, weekdayDTO{Weekday: b.Weekday, Count: b.Count})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"range":    rangeDTO(reportRange),
		"hours":    hours,
		"weekdays": weekdays,
	})
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	summary, err := h.service.DashboardSummary(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Dashboard", "actor_id", principal.ActorID).ErrorContext(r.Context(), "dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"today_reservations": summary.TodayReservations,
		"week_reservations":  summary.WeekReservations,
		"room_usage":         toUsageRowDTOs(summary.RoomUsage),
	})
}
