// internal/game/cell_test.go
package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortCtx(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestWatcherStartsAtCurrentVersion(t *testing.T) {
	c := NewStateCell()
	c.Set(RoomState{Phase: PhaseRoundActive, Choices: []string{"a"}})

	w := c.Watch()
	_, err := w.Next(shortCtx(t, 50*time.Millisecond))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatcherCoalescesToLatest(t *testing.T) {
	c := NewStateCell()
	w := c.Watch()

	c.Set(RoomState{Phase: PhaseRoundActive, Choices: []string{"a", "b"}})
	c.Set(RoomState{Phase: PhaseRoundResolved, Gains: map[string]int{"x": 1000}})

	// A slow watcher observes only the latest value, never a backlog.
	state, err := w.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseRoundResolved, state.Phase)
	assert.Equal(t, map[string]int{"x": 1000}, state.Gains)

	_, err = w.Next(shortCtx(t, 50*time.Millisecond))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNextWakesOnSet(t *testing.T) {
	c := NewStateCell()
	w := c.Watch()

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Set(RoomState{Phase: PhaseGameEnd})
	}()

	state, err := w.Next(shortCtx(t, 2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, PhaseGameEnd, state.Phase)
}

func TestCloseDeliversFinalValueFirst(t *testing.T) {
	c := NewStateCell()
	w := c.Watch()

	c.Set(RoomState{Phase: PhaseGameEnd})
	c.Close()

	state, err := w.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseGameEnd, state.Phase)

	_, err = w.Next(context.Background())
	assert.ErrorIs(t, err, ErrCellClosed)
}

func TestSetAfterCloseIgnored(t *testing.T) {
	c := NewStateCell()
	c.Close()
	c.Set(RoomState{Phase: PhaseRoundActive})

	w := c.Watch()
	_, err := w.Next(context.Background())
	assert.ErrorIs(t, err, ErrCellClosed)
}

func TestCloseWakesBlockedWatcher(t *testing.T) {
	c := NewStateCell()
	w := c.Watch()

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Close()
	}()

	_, err := w.Next(shortCtx(t, 2*time.Second))
	assert.ErrorIs(t, err, ErrCellClosed)
}
