package booking

import "sync"

// showtimeLocks hands out one mutex per showtime id so that all writes
// touching a showtime's seat inventory serialize in-process before the
// database transaction even begins.  Row locks inside the transaction
// still protect against other processes; this keeps the common
// single-process deployment free of lock-wait churn.
//
// Mutexes are created lazily and never released: the map grows with the
// number of distinct showtimes, which is small and bounded.
type showtimeLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newShowtimeLocks() *showtimeLocks {
	return &showtimeLocks{m: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a showtime and returns its unlock func.
func (l *showtimeLocks) lock(showtimeID string) func() {
	l.mu.Lock()
	m, ok := l.m[showtimeID]
	if !ok {
		m = &sync.Mutex{}
		l.m[showtimeID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
