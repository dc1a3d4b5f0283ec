package reporting

import (
	"math"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
)

func day(offset int) time.Time {
	// 2025-06-02 is a Monday.
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func confirmed(room, requester string, date time.Time, startH, startM, endH, endM int) Reservation {
	return Reservation{
		RoomID:    room,
		Requester: requester,
		Date:      date,
		Start:     booking.NewTimeOfDay(startH, startM),
		End:       booking.NewTimeOfDay(endH, endM),
		Status:    booking.StatusConfirmed,
	}
}

func TestRoomUsageReport(t *testing.T) {
	reservations := []Reservation{
		confirmed("room-a", "alice", day(0), 9, 0, 10, 30),
		confirmed("room-a", "bob", day(1), 13, 0, 14, 0),
		confirmed("room-b", "alice", day(0), 9, 15, 9, 45),
	}
	canceled := confirmed("room-a", "carol", day(0), 15, 0, 16, 0)
	canceled.Status = booking.StatusCanceled
	reservations = append(reservations, canceled)

	report := RoomUsageReport(reservations)

	if len(report) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(report))
	}
	if report[0].RoomID != "room-a" || report[0].Reservations != 2 {
		t.Fatalf("room-a usage = %+v, want 2 confirmed reservations", report[0])
	}
	if math.Abs(report[0].TotalHours-2.5) > 1e-9 {
		t.Fatalf("room-a hours = %v, want 2.5 unrounded", report[0].TotalHours)
	}
	if report[1].RoomID != "room-b" || math.Abs(report[1].TotalHours-0.5) > 1e-9 {
		t.Fatalf("room-b usage = %+v, want 0.5 hours", report[1])
	}
}

func TestRequesterActivityReport(t *testing.T) {
	canceled := confirmed("room-a", "bob", day(1), 10, 0, 11, 0)
	canceled.Status = booking.StatusCanceled

	report := RequesterActivityReport([]Reservation{
		confirmed("room-a", "alice", day(0), 9, 0, 10, 0),
		confirmed("room-b", "alice", day(2), 9, 0, 10, 0),
		canceled,
	})

	if len(report) != 2 {
		t.Fatalf("expected 2 requesters, got %d", len(report))
	}
	if report[0].Requester != "alice" || report[0].Reservations != 2 || report[0].Canceled != 0 {
		t.Fatalf("alice activity = %+v", report[0])
	}
	if report[1].Requester != "bob" || report[1].Reservations != 1 || report[1].Canceled != 1 {
		t.Fatalf("bob activity = %+v", report[1])
	}
}

func TestTimeDistributionReport(t *testing.T) {
	t.Run("partial hours increment whole-hour buckets only", func(t *testing.T) {
		dist := TimeDistributionReport([]Reservation{
			confirmed("room-a", "alice", day(0), 9, 30, 11, 15),
		}, 8, 20)

		counts := make(map[int]int, len(dist.Hours))
		for _, bucket := range dist.Hours {
			counts[bucket.Hour] = bucket.Count
		}
		if counts[9] != 1 || counts[10] != 1 {
			t.Fatalf("buckets 9 and 10 should each be 1, got %v", counts)
		}
		if counts[11] != 0 {
			t.Fatalf("bucket 11 must stay untouched, got %d", counts[11])
		}
	})

	t.Run("weekday buckets are Monday-based", func(t *testing.T) {
		dist := TimeDistributionReport([]Reservation{
			confirmed("room-a", "alice", day(0), 9, 0, 10, 0), // Monday
			confirmed("room-a", "bob", day(6), 9, 0, 10, 0),   // Sunday
		}, 8, 20)

		if dist.Weekdays[0].Count != 1 {
			t.Fatalf("Monday bucket = %d, want 1", dist.Weekdays[0].Count)
		}
		if dist.Weekdays[6].Count != 1 {
			t.Fatalf("Sunday bucket = %d, want 1", dist.Weekdays[6].Count)
		}
	})

	t.Run("canceled reservations are excluded", func(t *testing.T) {
		canceled := confirmed("room-a", "alice", day(0), 9, 0, 10, 0)
		canceled.Status = booking.StatusCanceled

		dist := TimeDistributionReport([]Reservation{canceled}, 8, 20)
		for _, bucket := range dist.Hours {
			if bucket.Count != 0 {
				t.Fatalf("hour %d counted a canceled reservation", bucket.Hour)
			}
		}
	})

	t.Run("hour axis spans the configured working window", func(t *testing.T) {
		dist := TimeDistributionReport(nil, 8, 20)
		if len(dist.Hours) != 13 {
			t.Fatalf("expected 13 hour buckets for 8..20, got %d", len(dist.Hours))
		}
		if dist.Hours[0].Hour != 8 || dist.Hours[12].Hour != 20 {
			t.Fatalf("hour axis = %v..%v, want 8..20", dist.Hours[0].Hour, dist.Hours[12].Hour)
		}
	})
}
