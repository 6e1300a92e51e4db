// Package network tracks connectivity to the remote document store.
//
// A [Monitor] exposes the current online state and notifies subscribers on
// every transition. [Prober] derives the state from periodic pings of the
// remote; [Switch] is set by hand and is used by tests and by embedders that
// have their own connectivity source.
package network

import "sync"

// Monitor is the connectivity source consumed by the sync core.
type Monitor interface {
	// IsOnline reports the current connectivity state.
	IsOnline() bool

	// Subscribe registers fn to be called with the new state on every
	// transition. The returned function removes the subscription.
	Subscribe(fn func(online bool)) (cancel func())
}

// broadcaster holds the state shared by every Monitor implementation.
// Subscribers run synchronously on the goroutine that changed the state,
// outside the lock.
type broadcaster struct {
	mu     sync.RWMutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

func (b *broadcaster) IsOnline() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.online
}

func (b *broadcaster) Subscribe(fn func(online bool)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(bool))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// set stores online and reports whether it was a transition.
func (b *broadcaster) set(online bool) bool {
	b.mu.Lock()
	if b.online == online {
		b.mu.Unlock()
		return false
	}
	b.online = online
	subs := make([]func(bool), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
	return true
}

// Switch is a Monitor whose state is set explicitly.
type Switch struct {
	broadcaster
}

// NewSwitch returns a Switch in the given initial state.
func NewSwitch(online bool) *Switch {
	s := &Switch{}
	s.online = online
	return s
}

// Set changes the state, notifying subscribers when it differs from the
// current one.
func (s *Switch) Set(online bool) {
	s.set(online)
}
