package service

import (
	"sync"

	"github.com/MKhiriev/go-fuel-sync/models"
)

// syncStatus holds the sync state and progress. Only the queue manager
// writes to it; readers get copies.
type syncStatus struct {
	mu       sync.RWMutex
	state    models.SyncState
	progress *models.SyncProgress

	subs   map[int]chan models.SyncState
	nextID int
}

func newSyncStatus(initial models.SyncState) *syncStatus {
	return &syncStatus{state: initial, subs: make(map[int]chan models.SyncState)}
}

func (s *syncStatus) Snapshot() models.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *syncStatus) Progress() (models.SyncProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.progress == nil {
		return models.SyncProgress{}, false
	}
	return *s.progress, true
}

func (s *syncStatus) Subscribe() (<-chan models.SyncState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.SyncState, 1)
	ch <- s.state

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// update mutates the state under the lock and publishes the result.
func (s *syncStatus) update(fn func(state *models.SyncState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	for _, ch := range s.subs {
		// replace a stale unread state with the latest one
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
}

func (s *syncStatus) setProgress(p *models.SyncProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

// clearProgressIf clears the progress only if it is still p, so a delayed
// clear never wipes the progress of a newer pass.
func (s *syncStatus) clearProgressIf(p *models.SyncProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == p {
		s.progress = nil
	}
}
