package http

import (
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// Request and response DTOs live alongside their handlers; the converters
// below are shared because conflict payloads embed reservation and window
// records regardless of which handler produced them.

type roomDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toRoomDTO(room persistence.Room) roomDTO {
	return roomDTO{
		ID:          room.ID,
		Name:        room.Name,
		Location:    room.Location,
		Capacity:    room.Capacity,
		Description: room.Description,
		Active:      room.Active,
		CreatedAt:   room.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   room.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type reservationDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	Requester   string `json:"requester"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Attendees   int    `json:"attendees"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toReservationDTO(reservation persistence.Reservation) reservationDTO {
	return reservationDTO{
		ID:          reservation.ID,
		RoomID:      reservation.RoomID,
		Requester:   reservation.Requester,
		Date:        reservation.Date.Format(booking.DateLayout),
		Start:       reservation.Start.String(),
		End:         reservation.End.String(),
		Attendees:   reservation.Attendees,
		Title:       reservation.Title,
		Description: reservation.Description,
		Status:      string(reservation.Status),
		CreatedAt:   reservation.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toReservationDTOs(reservations []persistence.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationDTO(r))
	}
	return out
}

type windowDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

func toWindowDTO(window persistence.MaintenanceWindow) windowDTO {
	return windowDTO{
		ID:        window.ID,
		RoomID:    window.RoomID,
		StartDate: window.StartDate.Format(booking.DateLayout),
		EndDate:   window.EndDate.Format(booking.DateLayout),
		Reason:    window.Reason,
		CreatedBy: window.CreatedBy,
		CreatedAt: window.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toWindowDTOs(windows []persistence.MaintenanceWindow) []windowDTO {
	out := make([]windowDTO, 0, len(windows))
	for _, w := range windows {
		out = append(out, toWindowDTO(w))
	}
	return out
}

type slotDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func toSlotDTOs(slots []booking.Interval) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDTO{Start: s.Start.String(), End: s.End.String()})
	}
	return out
}

type calendarEventDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	RoomID      string `json:"room_id"`
	Date        string `json:"date"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	EndDate     string `json:"end_date"`
	Maintenance bool   `json:"maintenance"`
}

func toCalendarEventDTO(event application.CalendarEvent) calendarEventDTO {
	dto := calendarEventDTO{
		ID:          event.ID,
		Title:       event.Title,
		RoomID:      event.RoomID,
		Date:        event.Date.Format(booking.DateLayout),
		EndDate:     event.EndDate.Format(booking.DateLayout),
		Maintenance: event.Maintenance,
	}
	if !event.Maintenance {
		dto.Start = event.Start.String()
		dto.End = event.End.String()
	}
	return dto
}
