package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// MaintenanceRepository implements persistence.MaintenanceRepository using
// SQLite.
type MaintenanceRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMaintenanceRepository creates a new SQLite maintenance repository.
func NewMaintenanceRepository(pool *ConnectionPool) *MaintenanceRepository {
	return &MaintenanceRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateWindow inserts a new maintenance window into the database.
func (r *MaintenanceRepository) CreateWindow(ctx context.Context, window persistence.MaintenanceWindow) error {
	if window.ID == "" || window.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO maintenance_windows (id, room_id, start_date, end_date, reason, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		window.ID,
		window.RoomID,
		window.StartDate.Format(booking.DateLayout),
		window.EndDate.Format(booking.DateLayout),
		window.Reason,
		window.CreatedBy,
		window.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateWindow updates an existing maintenance window in the database.
func (r *MaintenanceRepository) UpdateWindow(ctx context.Context, window persistence.MaintenanceWindow) error {
	query := `
		UPDATE maintenance_windows
		SET room_id = ?, start_date = ?, end_date = ?, reason = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		window.RoomID,
		window.StartDate.Format(booking.DateLayout),
		window.EndDate.Format(booking.DateLayout),
		window.Reason,
		window.ID,
	)
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

// GetWindow retrieves a maintenance window by ID from the database.
func (r *MaintenanceRepository) GetWindow(ctx context.Context, id string) (persistence.MaintenanceWindow, error) {
	if id == "" {
		return persistence.MaintenanceWindow{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, room_id, start_date, end_date, reason, created_by, created_at
		FROM maintenance_windows
		WHERE id = ?
	`
	window, err := scanWindow(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return persistence.MaintenanceWindow{}, r.mapper.MapError(err)
	}
	return window, nil
}

// DeleteWindow removes a maintenance window from the database.
func (r *MaintenanceRepository) DeleteWindow(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM maintenance_windows WHERE id = ?", id)
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

// ListWindows returns maintenance windows matching the filter ordered by
// start date ascending.
func (r *MaintenanceRepository) ListWindows(ctx context.Context, filter persistence.MaintenanceFilter) ([]persistence.MaintenanceWindow, error) {
	query := `
		SELECT id, room_id, start_date, end_date, reason, created_by, created_at
		FROM maintenance_windows
	`
	var clauses []string
	var args []any

	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.CoversDate != nil {
		date := filter.CoversDate.Format(booking.DateLayout)
		clauses = append(clauses, "start_date <= ? AND end_date >= ?")
		args = append(args, date, date)
	}
	if filter.From != nil {
		clauses = append(clauses, "end_date >= ?")
		args = append(args, filter.From.Format(booking.DateLayout))
	}
	if filter.To != nil {
		clauses = append(clauses, "start_date <= ?")
		args = append(args, filter.To.Format(booking.DateLayout))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_date ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var windows []persistence.MaintenanceWindow
	for rows.Next() {
		window, err := scanWindow(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return windows, nil
}

func scanWindow(row rowScanner) (persistence.MaintenanceWindow, error) {
	var window persistence.MaintenanceWindow
	var startDate, endDate, createdAt string

	if err := row.Scan(
		&window.ID,
		&window.RoomID,
		&startDate,
		&endDate,
		&window.Reason,
		&window.CreatedBy,
		&createdAt,
	); err != nil {
		return persistence.MaintenanceWindow{}, err
	}

	var err error
	if window.StartDate, err = booking.ParseDate(startDate); err != nil {
		return persistence.MaintenanceWindow{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if window.EndDate, err = booking.ParseDate(endDate); err != nil {
		return persistence.MaintenanceWindow{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if window.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.MaintenanceWindow{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return window, nil
}
