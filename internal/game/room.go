// internal/game/room.go
package game

import (
	"context"

	"github.com/google/uuid"
)

const (
	// answerQueueBuffer bounds the inbound answer queue. A full queue makes
	// submitters wait; answers are never dropped or rejected.
	answerQueueBuffer = 20
	// presenceEventBuffer bounds the join/leave event queue consumed by the
	// host session.
	presenceEventBuffer = 30
)

// Answer is one player's submission for the active round.
type Answer struct {
	Username string
	Choice   int
}

// Room is one live quiz session. The RoomStore owns it from Add until
// Delete; player sessions hold shared references. All communication between
// the host loop and player sessions goes through the three channels here:
// the answer queue (players -> host), the state cell (host -> players) and
// the presence event queue (registry -> host).
type Room struct {
	ID      uuid.UUID
	Users   *Users
	Answers chan Answer
	State   *StateCell

	done chan struct{}
}

// NewRoom builds an empty lobby-phase room.
func NewRoom() *Room {
	done := make(chan struct{})
	return &Room{
		Users:   NewUsers(done),
		Answers: make(chan Answer, answerQueueBuffer),
		State:   NewStateCell(),
		done:    done,
	}
}

// Done is closed once the room's host loop has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// SubmitAnswer queues ans for the host loop, waiting for queue space if it
// has to. It gives up silently when ctx is cancelled or the room is gone.
func (r *Room) SubmitAnswer(ctx context.Context, ans Answer) {
	select {
	case r.Answers <- ans:
	case <-r.done:
	case <-ctx.Done():
	}
}

// drainAnswers discards whatever is sitting in the answer queue. Called at
// the start of every round so submissions that raced a previous round's
// resolution are never credited to the new one.
func (r *Room) drainAnswers() {
	for {
		select {
		case <-r.Answers:
		default:
			return
		}
	}
}

// close tears the room down: the state cell stops serving watchers and any
// blocked presence emitters are released.
func (r *Room) close() {
	r.State.Close()
	close(r.done)
}
