package application

import (
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks ownership or
	// the privileged capability for a mutating operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the referenced room, reservation, or
	// maintenance window does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyCanceled is returned when canceling a reservation that is
	// already canceled.
	ErrAlreadyCanceled = errors.New("application: reservation already canceled")
	// ErrAlreadyStarted is returned when canceling a reservation whose start
	// time has elapsed.
	ErrAlreadyStarted = errors.New("application: reservation already started")
)

// ConflictReason identifies why a reservation or maintenance window was
// rejected.
type ConflictReason string

const (
	// ReasonTimeConflict indicates an overlapping confirmed reservation.
	ReasonTimeConflict ConflictReason = "time_conflict"
	// ReasonMaintenanceConflict indicates the target date falls inside a
	// blackout window.
	ReasonMaintenanceConflict ConflictReason = "maintenance_conflict"
	// ReasonCapacityExceeded indicates more attendees than the room holds.
	ReasonCapacityExceeded ConflictReason = "capacity_exceeded"
	// ReasonRoomInactive indicates the target room is disabled.
	ReasonRoomInactive ConflictReason = "room_inactive"
	// ReasonInvalidTimeRange indicates start >= end.
	ReasonInvalidTimeRange ConflictReason = "invalid_time_range"
	// ReasonOutsideWorkingHours indicates a time outside the working window.
	ReasonOutsideWorkingHours ConflictReason = "outside_working_hours"
	// ReasonInvalidDateRange indicates a maintenance window with start > end.
	ReasonInvalidDateRange ConflictReason = "invalid_date_range"
	// ReasonBookingConflict indicates confirmed reservations inside a
	// proposed maintenance window.
	ReasonBookingConflict ConflictReason = "booking_conflict"
)

// ConflictError reports a rejected reservation or maintenance operation with
// enough detail for the caller to render a precise message. Reservations
// carries the offending records for time and booking conflicts; Window carries
// the covering blackout for maintenance conflicts.
type ConflictError struct {
	Reason       ConflictReason
	Message      string
	Reservations []persistence.Reservation
	Window       *persistence.MaintenanceWindow
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

func conflictErr(reason ConflictReason, format string, args ...any) *ConflictError {
	return &ConflictError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// StorageError wraps an unexpected persistence failure. The engine does not
// retry; retry policy belongs to the caller.
type StorageError struct {
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

// Unwrap exposes the underlying persistence error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// mapRepoError translates persistence sentinels into application errors.
// Anything unexpected is surfaced as a StorageError.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Err: err}
}
