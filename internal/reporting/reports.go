// Package reporting aggregates booking history into usage, activity, and
// time-distribution statistics. All functions are pure: they operate on the
// records they are handed and never consult a clock or a store.
package reporting

import (
	"sort"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Reservation is the slice of a ledger record the aggregators need.
type Reservation struct {
	RoomID    string
	Requester string
	Date      time.Time
	Start     booking.TimeOfDay
	End       booking.TimeOfDay
	Status    booking.Status
}

// RoomUsage summarizes confirmed bookings for one room. TotalHours is the
// unrounded sum of (end - start) in fractional hours; rounding is left to the
// presentation layer.
type RoomUsage struct {
	RoomID       string
	Reservations int
	TotalHours   float64
}

// RoomUsageReport tallies confirmed reservations per room. Canceled records
// are skipped so callers may pass an unfiltered history.
func RoomUsageReport(reservations []Reservation) []RoomUsage {
	byRoom := make(map[string]*RoomUsage)
	for _, r := range reservations {
		if r.Status != booking.StatusConfirmed {
			continue
		}
		usage, ok := byRoom[r.RoomID]
		if !ok {
			usage = &RoomUsage{RoomID: r.RoomID}
			byRoom[r.RoomID] = usage
		}
		usage.Reservations++
		usage.TotalHours += r.End.Sub(r.Start).Hours()
	}

	out := make([]RoomUsage, 0, len(byRoom))
	for _, usage := range byRoom {
		out = append(out, *usage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// RequesterActivity summarizes one requester's bookings over a range.
type RequesterActivity struct {
	Requester    string
	Reservations int
	Canceled     int
}

// RequesterActivityReport counts reservations and cancellations per
// requester across all statuses. Requesters with no reservations in the input
// are naturally absent.
func RequesterActivityReport(reservations []Reservation) []RequesterActivity {
	byRequester := make(map[string]*RequesterActivity)
	for _, r := range reservations {
		activity, ok := byRequester[r.Requester]
		if !ok {
			activity = &RequesterActivity{Requester: r.Requester}
			byRequester[r.Requester] = activity
		}
		activity.Reservations++
		if r.Status == booking.StatusCanceled {
			activity.Canceled++
		}
	}

	out := make([]RequesterActivity, 0, len(byRequester))
	for _, activity := range byRequester {
		out = append(out, *activity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Requester < out[j].Requester })
	return out
}

// HourBucket is the confirmed-reservation count for one hour of the day.
type HourBucket struct {
	Hour  int
	Count int
}

// WeekdayBucket is the confirmed-reservation count for one weekday,
// Monday=0 through Sunday=6.
type WeekdayBucket struct {
	Weekday int
	Count   int
}

// TimeDistribution holds the two independent histograms of the
// time-distribution report.
type TimeDistribution struct {
	Hours    []HourBucket
	Weekdays []WeekdayBucket
}

// TimeDistributionReport builds per-hour and per-weekday histograms over the
// confirmed reservations. Hour buckets span [startHour, endHour] inclusive; a
// reservation increments every whole hour bucket in [start.Hour, end.Hour),
// so a 09:30-11:15 booking counts toward hours 9 and 10 only. Each
// reservation increments exactly one weekday bucket.
func TimeDistributionReport(reservations []Reservation, startHour, endHour int) TimeDistribution {
	hourCounts := make(map[int]int, endHour-startHour+1)
	for hour := startHour; hour <= endHour; hour++ {
		hourCounts[hour] = 0
	}
	weekdayCounts := [7]int{}

	for _, r := range reservations {
		if r.Status != booking.StatusConfirmed {
			continue
		}
		for hour := r.Start.Hour(); hour < r.End.Hour(); hour++ {
			if _, ok := hourCounts[hour]; ok {
				hourCounts[hour]++
			}
		}
		weekdayCounts[booking.WeekdayIndex(r.Date)]++
	}

	dist := TimeDistribution{
		Hours:    make([]HourBucket, 0, len(hourCounts)),
		Weekdays: make([]WeekdayBucket, 0, 7),
	}
	for hour := startHour; hour <= endHour; hour++ {
		dist.Hours = append(dist.Hours, HourBucket{Hour: hour, Count: hourCounts[hour]})
	}
	for weekday, count := range weekdayCounts {
		dist.Weekdays = append(dist.Weekdays, WeekdayBucket{Weekday: weekday, Count: count})
	}
	return dist
}
