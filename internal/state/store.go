// Package state holds the observable view-model shared by the terminal UIs,
// the console server and the auth gate.
package state

import (
	"sync"

	"github.com/brizzai/realtor-cli/internal/auth/models"
	"go.uber.org/fx"
)

// Snapshot is a copy of the current view-model values
type Snapshot struct {
	IsAuthenticated  bool
	IsLoginModalOpen bool
	User             *models.UserInfo
}

// AppState is the observable view-model. Setters notify subscribers
// synchronously, in subscription order, and only when a value changes.
type AppState struct {
	mu     sync.RWMutex
	snap   Snapshot
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// NewAppState creates an unauthenticated view-model
func NewAppState() *AppState {
	return &AppState{}
}

// Snapshot returns the current values
func (s *AppState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

// IsAuthenticated reports the cached authentication flag
func (s *AppState) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.IsAuthenticated
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *AppState) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SetAuthenticated sets the authenticated flag
func (s *AppState) SetAuthenticated(value bool) {
	s.update(func(snap *Snapshot) bool {
		if snap.IsAuthenticated == value {
			return false
		}
		snap.IsAuthenticated = value
		return true
	})
}

// SetUser replaces the signed-in user; nil clears it
func (s *AppState) SetUser(user *models.UserInfo) {
	s.update(func(snap *Snapshot) bool {
		if sameUser(snap.User, user) {
			return false
		}
		if user == nil {
			snap.User = nil
			return true
		}
		u := *user
		snap.User = &u
		return true
	})
}

// ToggleLogin flips the login modal
func (s *AppState) ToggleLogin() {
	s.update(func(snap *Snapshot) bool {
		snap.IsLoginModalOpen = !snap.IsLoginModalOpen
		return true
	})
}

// SetLoginModalOpen opens or closes the login modal
func (s *AppState) SetLoginModalOpen(open bool) {
	s.update(func(snap *Snapshot) bool {
		if snap.IsLoginModalOpen == open {
			return false
		}
		snap.IsLoginModalOpen = open
		return true
	})
}

func (s *AppState) update(mutate func(*Snapshot) bool) {
	s.mu.Lock()
	if !mutate(&s.snap) {
		s.mu.Unlock()
		return
	}
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	snap := s.Snapshot()
	for _, sub := range subs {
		sub.fn(snap)
	}
}

func sameUser(a, b *models.UserInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Module provides the view-model
var Module = fx.Module("state",
	fx.Provide(NewAppState),
)
