package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/reporting"
)

// DefaultReportWindowDays is the lookback applied when a report request
// leaves both range bounds unset.
const DefaultReportWindowDays = 30

// ReportService assembles the administrative reports. It fetches ledger
// records for the resolved date range and delegates the aggregation to the
// pure functions in the reporting package.
type ReportService struct {
	reservations ReservationStore
	rooms        RoomStore
	hours        WorkingHours
	windowDays   int
	now          func() time.Time
	logger       *slog.Logger
}

// NewReportService wires dependencies for report generation. windowDays is
// the default lookback when a request omits its range; zero falls back to
// DefaultReportWindowDays.
func NewReportService(reservations ReservationStore, rooms RoomStore, hours WorkingHours, windowDays int, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(reservations, rooms, hours, windowDays, now, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified
// logger.
func NewReportServiceWithLogger(reservations ReservationStore, rooms RoomStore, hours WorkingHours, windowDays int, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	if windowDays <= 0 {
		windowDays = DefaultReportWindowDays
	}
	if hours == (WorkingHours{}) {
		hours = DefaultWorkingHours()
	}
	return &ReportService{
		reservations: reservations,
		rooms:        rooms,
		hours:        hours,
		windowDays:   windowDays,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// ResolveRange fills missing report bounds: an absent To defaults to today,
// an absent From defaults to the configured lookback before To. Both bounds
// are inclusive dates.
func (s *ReportService) ResolveRange(params ReportParams) (ReportRange, error) {
	to := booking.DateOf(s.now())
	if params.To != nil {
		to = booking.DateOf(*params.To)
	}
	from := to.AddDate(0, 0, -s.windowDays)
	if params.From != nil {
		from = booking.DateOf(*params.From)
	}
	if from.After(to) {
		return ReportRange{}, conflictErr(ReasonInvalidDateRange, "report range end must not precede its start")
	}
	return ReportRange{From: from, To: to}, nil
}

// RoomUsageReport returns per-room confirmed usage over the range, joined
// with catalog names. Every known room appears, zero rows included, so a
// dormant room is visible in the report.
func (s *ReportService) RoomUsageReport(ctx context.Context, params ReportParams) (rows []RoomUsageRow, reportRange ReportRange, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RoomUsageReport", "actor_id", params.Principal.ActorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build room usage report", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	reportRange, err = s.ResolveRange(params)
	if err != nil {
		return
	}

	records, ferr := s.fetch(ctx, params.RoomID, reportRange)
	if ferr != nil {
		err = ferr
		return
	}
	usage := reporting.RoomUsageReport(records)
	byRoom := make(map[string]reporting.RoomUsage, len(usage))
	for _, u := range usage {
		byRoom[u.RoomID] = u
	}

	rooms, lerr := s.rooms.ListRooms(ctx, false)
	if lerr != nil {
		err = mapRepoError(lerr)
		return
	}

	rows = make([]RoomUsageRow, 0, len(rooms))
	for _, room := range rooms {
		if params.RoomID != "" && room.ID != params.RoomID {
			continue
		}
		row := RoomUsageRow{RoomID: room.ID, RoomName: room.Name}
		if u, ok := byRoom[room.ID]; ok {
			row.Reservations = u.Reservations
			row.TotalHours = u.TotalHours
		}
		rows = append(rows, row)
	}
	return rows, reportRange, nil
}

// RequesterActivityReport returns per-requester booking counts over the
// range. Requesters with no activity in range are omitted.
func (s *ReportService) RequesterActivityReport(ctx context.Context, params ReportParams) (activity []reporting.RequesterActivity, reportRange ReportRange, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RequesterActivityReport", "actor_id", params.Principal.ActorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build requester activity report", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	reportRange, err = s.ResolveRange(params)
	if err != nil {
		return
	}

	records, ferr := s.fetch(ctx, params.RoomID, reportRange)
	if ferr != nil {
		err = ferr
		return
	}
	return reporting.RequesterActivityReport(records), reportRange, nil
}

// TimeDistributionReport returns the hour-of-day and weekday histograms over
// the range. The hour axis spans the working window inclusive of both ends.
func (s *ReportService) TimeDistributionReport(ctx context.Context, params ReportParams) (dist reporting.TimeDistribution, reportRange ReportRange, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "TimeDistributionReport", "actor_id", params.Principal.ActorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build time distribution report", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	reportRange, err = s.ResolveRange(params)
	if err != nil {
		return
	}

	records, ferr := s.fetch(ctx, params.RoomID, reportRange)
	if ferr != nil {
		err = ferr
		return
	}
	return reporting.TimeDistributionReport(records, s.hours.Start.Hour(), s.hours.End.Hour()), reportRange, nil
}

// DashboardSummary returns today's confirmed count, the running week's
// confirmed count, and per-room usage for the week starting Monday.
func (s *ReportService) DashboardSummary(ctx context.Context, principal Principal) (summary DashboardSummary, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DashboardSummary", "actor_id", principal.ActorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build dashboard summary", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	today := booking.DateOf(s.now())
	weekStart := booking.StartOfWeek(today)
	weekEnd := weekStart.AddDate(0, 0, 6)

	todays, terr := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Status: booking.StatusConfirmed,
		Date:   &today,
	})
	if terr != nil {
		err = mapRepoError(terr)
		return
	}

	week, werr := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Status:   booking.StatusConfirmed,
		DateFrom: &weekStart,
		DateTo:   &weekEnd,
	})
	if werr != nil {
		err = mapRepoError(werr)
		return
	}

	usage := reporting.RoomUsageReport(toReportRecords(week))
	byRoom := make(map[string]reporting.RoomUsage, len(usage))
	for _, u := range usage {
		byRoom[u.RoomID] = u
	}

	rooms, lerr := s.rooms.ListRooms(ctx, false)
	if lerr != nil {
		err = mapRepoError(lerr)
		return
	}

	summary = DashboardSummary{
		TodayReservations: len(todays),
		WeekReservations:  len(week),
		RoomUsage:         make([]RoomUsageRow, 0, len(rooms)),
	}
	for _, room := range rooms {
		row := RoomUsageRow{RoomID: room.ID, RoomName: room.Name}
		if u, ok := byRoom[room.ID]; ok {
			row.Reservations = u.Reservations
			row.TotalHours = u.TotalHours
		}
		summary.RoomUsage = append(summary.RoomUsage, row)
	}
	return summary, nil
}

func (s *ReportService) fetch(ctx context.Context, roomID string, r ReportRange) ([]reporting.Reservation, error) {
	reservations, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		RoomID:   roomID,
		DateFrom: &r.From,
		DateTo:   &r.To,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toReportRecords(reservations), nil
}

func toReportRecords(reservations []persistence.Reservation) []reporting.Reservation {
	records := make([]reporting.Reservation, 0, len(reservations))
	for _, r := range reservations {
		records = append(records, reporting.Reservation{
			RoomID:    r.RoomID,
			Requester: r.Requester,
			Date:      r.Date,
			Start:     r.Start,
			End:       r.End,
			Status:    r.Status,
		})
	}
	return records
}
