// internal/game/presence.go
package game

import (
	"errors"
	"sync"
)

// ErrDuplicateUser is returned by Join when the username is already taken
// in the room.
var ErrDuplicateUser = errors.New("game: username already in room")

// PresenceEvent reports a user joining or leaving a room.
type PresenceEvent struct {
	Username string
	Joined   bool
}

// Users tracks the usernames joined to a room and reports membership
// changes on Events. The set is only ever mutated through Join and
// Presence.Leave, which keeps Count consistent with the set of live player
// sessions at all times.
type Users struct {
	mu     sync.Mutex
	names  map[string]struct{}
	events chan PresenceEvent
	done   <-chan struct{}
}

// NewUsers builds an empty registry. done releases blocked event emitters
// once the room shuts down.
func NewUsers(done <-chan struct{}) *Users {
	return &Users{
		names:  make(map[string]struct{}),
		events: make(chan PresenceEvent, presenceEventBuffer),
		done:   done,
	}
}

// Events delivers join/leave notifications in emission order.
func (u *Users) Events() <-chan PresenceEvent { return u.events }

// Count returns the current membership size.
func (u *Users) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.names)
}

// allAnswered reports whether every currently-present username appears in
// answered.
func (u *Users) allAnswered(answered map[string]bool) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for name := range u.names {
		if !answered[name] {
			return false
		}
	}
	return true
}

// Join adds username to the room and returns its Presence handle. The
// joined event is emitted after the set insert and outside the lock, so
// Count reflects the join before any consumer hears about it.
func (u *Users) Join(username string) (*Presence, error) {
	u.mu.Lock()
	if _, taken := u.names[username]; taken {
		u.mu.Unlock()
		return nil, ErrDuplicateUser
	}
	u.names[username] = struct{}{}
	u.mu.Unlock()

	u.emit(PresenceEvent{Username: username, Joined: true})

	p := &Presence{users: u, username: username, leaving: make(chan struct{})}
	go func() {
		<-p.leaving
		u.emit(PresenceEvent{Username: username})
	}()
	return p, nil
}

func (u *Users) emit(ev PresenceEvent) {
	select {
	case u.events <- ev:
	case <-u.done:
	}
}

// Presence is one player's membership record. The owning session must call
// Leave on every exit path; calling it more than once is safe but it takes
// effect exactly once.
type Presence struct {
	users    *Users
	username string
	leaving  chan struct{}
	once     sync.Once
}

// Leave removes the username from the set immediately and hands the left
// event off to the background emitter, so membership checks stay accurate
// even when the event consumer is slow or already gone.
func (p *Presence) Leave() {
	p.once.Do(func() {
		p.users.mu.Lock()
		delete(p.users.names, p.username)
		p.users.mu.Unlock()
		close(p.leaving)
	})
}
