package state

import (
	"sync"
	"time"

	"github.com/nergy-se/wemportal/pkg/portal"
)

// Store holds the latest successful snapshot and the outcome of the last poll.
type Store struct {
	snapshot    *portal.Snapshot
	lastErr     error
	lastAttempt time.Time
	sync.RWMutex
}

func (s *Store) Get() *portal.Snapshot {
	s.RLock()
	defer s.RUnlock()
	return s.snapshot
}

func (s *Store) Set(snapshot *portal.Snapshot) {
	s.Lock()
	s.snapshot = snapshot
	s.lastErr = nil
	s.lastAttempt = snapshot.FetchedAt
	s.Unlock()
}

// SetError records a failed poll. The previous snapshot is kept.
func (s *Store) SetError(err error, at time.Time) {
	s.Lock()
	s.lastErr = err
	s.lastAttempt = at
	s.Unlock()
}

// Healthy is true when the last poll succeeded.
func (s *Store) Healthy() (bool, error) {
	s.RLock()
	defer s.RUnlock()
	if s.lastErr != nil {
		return false, s.lastErr
	}
	return s.snapshot != nil, nil
}

func (s *Store) LastAttempt() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.lastAttempt
}
