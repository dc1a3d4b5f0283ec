// Package sqlite implements the persistence repositories on a SQLite
// database through the pure-Go modernc.org driver.
package sqlite

import (
	"github.com/example/room-booking/internal/persistence"
)

// Store bundles the SQLite-backed repositories behind a single handle. It
// satisfies persistence.RoomRepository, persistence.ReservationRepository,
// and persistence.MaintenanceRepository.
type Store struct {
	*RoomRepository
	*ReservationRepository
	*MaintenanceRepository

	pool *ConnectionPool
}

var (
	_ persistence.RoomRepository        = (*Store)(nil)
	_ persistence.ReservationRepository = (*Store)(nil)
	_ persistence.MaintenanceRepository = (*Store)(nil)
)

// Open connects to the SQLite database named by dsn. Callers must run
// Migrate before using the repositories.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		RoomRepository:        NewRoomRepository(pool),
		ReservationRepository: NewReservationRepository(pool),
		MaintenanceRepository: NewMaintenanceRepository(pool),
		pool:                  pool,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
