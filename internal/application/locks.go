package application

import "sync"

// LockTable serializes conflict-check-and-commit sequences per room. Booking
// and maintenance-window creation acquire the target room's lock, so two
// writers can never both observe "no conflict" for the same room and commit.
// A room-grain lock strictly contains the (room, date) critical section the
// ledger requires.
type LockTable struct {
	mu    sync.Mutex
	rooms map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewLockTable constructs an empty lock table. The reservation and
// maintenance services touching the same rooms must share one instance.
func NewLockTable() *LockTable {
	return &LockTable{rooms: make(map[string]*roomLock)}
}

// Lock acquires the lock for the room, creating it on first use. Entries are
// reference counted so unused rooms do not accumulate.
func (l *LockTable) Lock(roomID string) {
	l.mu.Lock()
	entry, ok := l.rooms[roomID]
	if !ok {
		entry = &roomLock{}
		l.rooms[roomID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the room's lock and drops the entry once no caller holds
// or awaits it.
func (l *LockTable) Unlock(roomID string) {
	l.mu.Lock()
	entry, ok := l.rooms[roomID]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.rooms, roomID)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
