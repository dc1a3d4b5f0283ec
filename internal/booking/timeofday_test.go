package booking

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "08:00", want: NewTimeOfDay(8, 0)},
		{input: "20:00", want: NewTimeOfDay(20, 0)},
		{input: "09:45", want: NewTimeOfDay(9, 45)},
		{input: "00:00", want: NewTimeOfDay(0, 0)},
		{input: "24:60", wantErr: true},
		{input: "25:00", wantErr: true},
		{input: "nine", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := NewTimeOfDay(9, 5).String(); got != "09:05" {
		t.Fatalf("String() = %q, want %q", got, "09:05")
	}
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	got := NewTimeOfDay(14, 30).At(date)
	want := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("At() = %v, want %v", got, want)
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for offset, want := range []int{0, 1, 2, 3, 4, 5, 6} {
		date := monday.AddDate(0, 0, offset)
		if got := WeekdayIndex(date); got != want {
			t.Fatalf("WeekdayIndex(%s) = %d, want %d", date.Format(DateLayout), got, want)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	thursday := time.Date(2025, 6, 5, 15, 30, 0, 0, time.UTC)
	if got := StartOfWeek(thursday); !got.Equal(monday) {
		t.Fatalf("StartOfWeek = %v, want %v", got, monday)
	}
	if got := StartOfWeek(monday); !got.Equal(monday) {
		t.Fatalf("StartOfWeek of a Monday = %v, want itself", got)
	}
}

func TestStatusPredicates(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	start := NewTimeOfDay(10, 0)
	end := NewTimeOfDay(11, 0)

	t.Run("not past before the end time", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
		if IsPast(date, end, now) {
			t.Fatal("reservation still in progress must not be past")
		}
	})

	t.Run("past once the end has elapsed", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 11, 0, 1, 0, time.UTC)
		if !IsPast(date, end, now) {
			t.Fatal("reservation should be past after its end time")
		}
	})

	t.Run("cancel allowed strictly before start", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 9, 59, 0, 0, time.UTC)
		if !CanCancel(date, start, StatusConfirmed, now) {
			t.Fatal("expected cancel to be allowed before start")
		}
	})

	t.Run("cancel denied once start has elapsed", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		if CanCancel(date, start, StatusConfirmed, now) {
			t.Fatal("cancel must be denied at or after start")
		}
	})

	t.Run("cancel denied for canceled reservations", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if CanCancel(date, start, StatusCanceled, now) {
			t.Fatal("canceled reservation cannot be canceled again")
		}
	})

	t.Run("effective status derives completed without persisting it", func(t *testing.T) {
		now := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
		if got := EffectiveStatus(StatusConfirmed, date, end, now); got != StatusCompleted {
			t.Fatalf("EffectiveStatus = %v, want %v", got, StatusCompleted)
		}
		if got := EffectiveStatus(StatusCanceled, date, end, now); got != StatusCanceled {
			t.Fatalf("EffectiveStatus = %v, want %v", got, StatusCanceled)
		}
		if StatusCompleted.ValidStored() {
			t.Fatal("completed must never be a storable status")
		}
	})
}
