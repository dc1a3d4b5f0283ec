package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Dates are stored as ISO calendar dates and times as HH:MM text, so
// lexicographic comparison matches chronological order.
type ReservationRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateReservation inserts a new reservation into the database.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO reservations (id, room_id, requester, date, start_time, end_time, attendees, title, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.RoomID,
		reservation.Requester,
		reservation.Date.Format(booking.DateLayout),
		reservation.Start.String(),
		reservation.End.String(),
		reservation.Attendees,
		reservation.Title,
		reservation.Description,
		string(reservation.Status),
		reservation.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetReservation retrieves a reservation by ID from the database.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, room_id, requester, date, start_time, end_time, attendees, title, description, status, created_at
		FROM reservations
		WHERE id = ?
	`
	reservation, err := scanReservation(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return persistence.Reservation{}, r.mapper.MapError(err)
	}
	return reservation, nil
}

// UpdateReservationStatus sets the stored status of a reservation.
func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, id string, status booking.Status) error {
	result, err := r.helper.Exec(ctx, "UPDATE reservations SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListReservations returns reservations matching the filter ordered by
// (date, start time) ascending, or date descending when requested.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := `
		SELECT id, room_id, requester, date, start_time, end_time, attendees, title, description, status, created_at
		FROM reservations
	`
	var clauses []string
	var args []any

	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Requester != "" {
		clauses = append(clauses, "requester = ?")
		args = append(args, filter.Requester)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, filter.Date.Format(booking.DateLayout))
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.DateFrom.Format(booking.DateLayout))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.DateTo.Format(booking.DateLayout))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	switch filter.Order {
	case persistence.OrderDateDesc:
		query += " ORDER BY date DESC, start_time ASC"
	case persistence.OrderRecentFirst:
		query += " ORDER BY date DESC, start_time DESC"
	default:
		query += " ORDER BY date ASC, start_time ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var date, startTime, endTime, status, createdAt string

	if err := row.Scan(
		&reservation.ID,
		&reservation.RoomID,
		&reservation.Requester,
		&date,
		&startTime,
		&endTime,
		&reservation.Attendees,
		&reservation.Title,
		&reservation.Description,
		&status,
		&createdAt,
	); err != nil {
		return persistence.Reservation{}, err
	}

	var err error
	if reservation.Date, err = booking.ParseDate(date); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if reservation.Start, err = booking.ParseTimeOfDay(startTime); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if reservation.End, err = booking.ParseTimeOfDay(endTime); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	reservation.Status = booking.Status(status)
	return reservation, nil
}
