package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func testWindow(id, roomID string, start, end time.Time) persistence.MaintenanceWindow {
	return persistence.MaintenanceWindow{
		ID:        id,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
		Reason:    "HVAC service",
		CreatedBy: "admin",
		CreatedAt: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMaintenanceRepository_CRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.CreateRoom(ctx, testRoom("room1")); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	start := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	window := testWindow("mw1", "room1", start, end)

	if err := store.CreateWindow(ctx, window); err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}

	retrieved, err := store.GetWindow(ctx, "mw1")
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if !retrieved.StartDate.Equal(start) || !retrieved.EndDate.Equal(end) {
		t.Fatalf("unexpected range: %v-%v", retrieved.StartDate, retrieved.EndDate)
	}
	if retrieved.Reason != "HVAC service" || retrieved.CreatedBy != "admin" {
		t.Fatalf("unexpected fields: %+v", retrieved)
	}

	retrieved.Reason = "Rescheduled"
	retrieved.EndDate = end.AddDate(0, 0, 1)
	if err := store.UpdateWindow(ctx, retrieved); err != nil {
		t.Fatalf("UpdateWindow failed: %v", err)
	}
	updated, err := store.GetWindow(ctx, "mw1")
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if updated.Reason != "Rescheduled" || !updated.EndDate.Equal(end.AddDate(0, 0, 1)) {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := store.DeleteWindow(ctx, "mw1"); err != nil {
		t.Fatalf("DeleteWindow failed: %v", err)
	}
	if _, err := store.GetWindow(ctx, "mw1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteWindow(ctx, "mw1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestMaintenanceRepository_ListWindows(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, id := range []string{"room1", "room2"} {
		if err := store.CreateRoom(ctx, testRoom(id)); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
	}

	june10 := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	june20 := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)

	first := testWindow("mw1", "room1", june10, june10.AddDate(0, 0, 2))
	second := testWindow("mw2", "room2", june20, june20.AddDate(0, 0, 1))
	for _, w := range []persistence.MaintenanceWindow{second, first} {
		if err := store.CreateWindow(ctx, w); err != nil {
			t.Fatalf("CreateWindow %s failed: %v", w.ID, err)
		}
	}

	t.Run("ordered by start date", func(t *testing.T) {
		out, err := store.ListWindows(ctx, persistence.MaintenanceFilter{})
		if err != nil {
			t.Fatalf("ListWindows failed: %v", err)
		}
		if len(out) != 2 || out[0].ID != "mw1" || out[1].ID != "mw2" {
			t.Fatalf("unexpected order: %+v", out)
		}
	})

	t.Run("covers date", func(t *testing.T) {
		inside := june10.AddDate(0, 0, 1)
		out, err := store.ListWindows(ctx, persistence.MaintenanceFilter{RoomID: "room1", CoversDate: &inside})
		if err != nil {
			t.Fatalf("ListWindows failed: %v", err)
		}
		if len(out) != 1 || out[0].ID != "mw1" {
			t.Fatalf("expected mw1, got %+v", out)
		}

		outside := june10.AddDate(0, 0, 3)
		out, err = store.ListWindows(ctx, persistence.MaintenanceFilter{RoomID: "room1", CoversDate: &outside})
		if err != nil {
			t.Fatalf("ListWindows failed: %v", err)
		}
		if len(out) != 0 {
			t.Fatalf("expected no windows, got %+v", out)
		}
	})

	t.Run("intersecting range", func(t *testing.T) {
		from := june10.AddDate(0, 0, 2)
		to := june20
		out, err := store.ListWindows(ctx, persistence.MaintenanceFilter{From: &from, To: &to})
		if err != nil {
			t.Fatalf("ListWindows failed: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected both windows intersecting, got %+v", out)
		}
	})
}
