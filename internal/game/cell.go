// internal/game/cell.go
package game

import (
	"context"
	"errors"
	"sync"
)

// Phase is the broadcast-visible stage of a room.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoundActive
	PhaseRoundResolved
	PhaseGameEnd
)

// RoomState is the value published through the state cell. Choices is set
// for PhaseRoundActive, Gains for PhaseRoundResolved; Gains is read-only
// once published.
type RoomState struct {
	Phase   Phase
	Choices []string
	Gains   map[string]int
}

// ErrCellClosed is returned by StateWatcher.Next once the cell has closed
// and its final value has been observed.
var ErrCellClosed = errors.New("game: state cell closed")

// StateCell is a single-slot, version-stamped broadcast cell. It is NOT a
// queue: Set replaces the slot, and a watcher that misses intermediate
// values only ever observes the latest one. That coalescing is intended;
// terminal states are always eventually the latest value.
type StateCell struct {
	mu      sync.Mutex
	state   RoomState
	version uint64
	closed  bool
	wake    chan struct{}
}

func NewStateCell() *StateCell {
	return &StateCell{wake: make(chan struct{})}
}

// Set publishes s as the latest state and wakes all waiting watchers. It
// never blocks. Calls after Close are ignored.
func (c *StateCell) Set(s RoomState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = s
	c.version++
	close(c.wake)
	c.wake = make(chan struct{})
}

// Close marks the cell dead and wakes all watchers. Watchers that have not
// yet seen the final value still receive it before ErrCellClosed.
func (c *StateCell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.wake)
}

// Watch returns a watcher positioned at the current version: Next only
// reports changes published after the Watch call.
func (c *StateCell) Watch() *StateWatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &StateWatcher{cell: c, seen: c.version}
}

// StateWatcher is one subscriber's cursor into a StateCell.
type StateWatcher struct {
	cell *StateCell
	seen uint64
}

// Next blocks until a version newer than the last one returned has been
// published, then returns the latest state. It returns ErrCellClosed after
// the cell closes and all published values have been seen, or ctx.Err()
// when the context ends first.
func (w *StateWatcher) Next(ctx context.Context) (RoomState, error) {
	for {
		w.cell.mu.Lock()
		if w.cell.version > w.seen {
			w.seen = w.cell.version
			s := w.cell.state
			w.cell.mu.Unlock()
			return s, nil
		}
		if w.cell.closed {
			w.cell.mu.Unlock()
			return RoomState{}, ErrCellClosed
		}
		wake := w.cell.wake
		w.cell.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return RoomState{}, ctx.Err()
		}
	}
}
