// Package http provides HTTP handlers and middleware for the room booking API.
//
// Every endpoint expects the acting principal in the `X-Actor-ID` header with
// an optional `X-Actor-Admin: true` marker; authentication happens upstream.
// The router exposes the following endpoints:
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id}: room catalog
//     endpoints exchanging the `roomDTO` payload defined in dto.go. Listing and
//     detail are open to any actor while mutations require the admin marker.
//   - PUT /rooms/{id}/active: activates or deactivates a room. Deactivated
//     rooms stay listed but reject new reservations.
//   - GET /rooms/{id}/availability?date=YYYY-MM-DD: free-slot computation for
//     one room and date, returning the bookable intervals between confirmed
//     reservations inside working hours.
//   - GET /reservations, POST /reservations, GET /reservations/{id},
//     DELETE /reservations/{id}: the caller's reservation ledger. Listing with
//     `grouped=true` splits history into upcoming, past, and canceled buckets.
//     Rejected bookings answer 409 with a machine-readable `error_code` and the
//     conflicting records embedded in the payload.
//   - GET /reservations/upcoming, GET /reservations/recent: cross-requester
//     feeds; the recent feed requires the admin marker.
//   - GET /admin/reservations: all-status listing with `status`, `room_id`,
//     `from`, and `to` query filters. Admin only.
//   - GET /maintenance-windows, POST /maintenance-windows,
//     PUT /maintenance-windows/{id}, DELETE /maintenance-windows/{id}: blackout
//     window management exchanging the `windowDTO` payload. Mutations require
//     the admin marker and are rejected when confirmed bookings fall inside the
//     window.
//   - GET /calendar?from=&to=&room_id=: merged feed of confirmed reservations
//     and maintenance windows, defaulting to the current Monday-start week.
//   - GET /reports/room-usage, GET /reports/requester-activity,
//     GET /reports/time-distribution, GET /dashboard: admin reporting over an
//     inclusive date range that defaults to the configured lookback ending
//     today.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
