// internal/game/game.go
package game

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quizcast/quizcast/internal/protocol"
)

// Game drives one room's lifecycle on behalf of its host connection:
// lobby -> round loop -> game end. Exactly one goroutine runs Run for the
// life of the room. The transport is abstracted away behind the Actions
// channel and the Notify callback so the loop can be exercised directly in
// tests.
type Game struct {
	Log       *logrus.Logger
	Store     *RoomStore
	Room      *Room
	Questions []protocol.Question

	// Actions delivers decoded host actions and is closed when the host
	// disconnects.
	Actions <-chan protocol.Action

	// Notify sends an event to the host. Best effort: delivery failure is
	// the transport's problem, never the loop's.
	Notify func(protocol.HostEvent)

	// TimeUnit scales question time limits. Zero means one second per
	// unit; tests compress it.
	TimeUnit time.Duration
}

func (g *Game) unit() time.Duration {
	if g.TimeUnit > 0 {
		return g.TimeUnit
	}
	return time.Second
}

// Run executes the state machine until the game finishes or the host
// disconnects. Either way the room is removed from the directory and the
// state cell is closed, which is how player sessions learn to unwind;
// nothing cancels them explicitly.
func (g *Game) Run() {
	defer func() {
		g.Store.Delete(g.Room.ID)
		g.Room.close()
	}()

	// Lobby: a beginRound only counts once somebody is in the room. Every
	// other action is ignored without comment.
	for {
		act, ok := <-g.Actions
		if !ok {
			g.Log.Debugf("room %s: host disconnected in lobby", g.Room.ID)
			return
		}
		if act.Type == protocol.ActionBeginRound && g.Room.Users.Count() > 0 {
			break
		}
	}

	g.Log.Debugf("room %s: starting game", g.Room.ID)

	for i := range g.Questions {
		if !g.runRound(&g.Questions[i]) {
			return
		}
		// The host paces the game: the next round, or the game end after
		// the final question, waits on another beginRound. No player-count
		// gate applies here.
		if !g.awaitBeginRound() {
			return
		}
	}

	g.Log.Debugf("room %s: out of questions, game over", g.Room.ID)
	g.Notify(protocol.HostEvent{Type: protocol.HostGameEnd})
	g.Room.State.Set(RoomState{Phase: PhaseGameEnd})
}

// runRound plays one question to completion. It returns false when the
// host disconnected and the room must die.
func (g *Game) runRound(q *protocol.Question) bool {
	gains := map[string]int{}
	answered := map[string]bool{}
	ladder := newScoreLadder()

	// Answers still in flight from an earlier round must not leak into
	// this one.
	g.Room.drainAnswers()

	g.Notify(protocol.HostEvent{Type: protocol.HostRoundBegin, Question: q})
	g.Room.State.Set(RoomState{Phase: PhaseRoundActive, Choices: q.Choices})

	timer := time.NewTimer(time.Duration(q.Time) * g.unit())
	defer timer.Stop()

	// The round ends on whichever comes first: host endRound, the time
	// limit, or every present username having answered.
collect:
	for {
		select {
		case act, ok := <-g.Actions:
			if !ok {
				g.Log.Debugf("room %s: host disconnected mid-round", g.Room.ID)
				return false
			}
			if act.Type == protocol.ActionEndRound {
				g.Log.Debugf("room %s: host forced round end", g.Room.ID)
				break collect
			}

		case <-timer.C:
			g.Log.Debugf("room %s: question timed out", g.Room.ID)
			break collect

		case ans := <-g.Room.Answers:
			if answered[ans.Username] {
				continue
			}
			answered[ans.Username] = true

			g.Notify(protocol.HostEvent{Type: protocol.HostUserAnswered, Username: ans.Username})

			if ans.Choice == q.Answer {
				gains[ans.Username] = ladder.Take()
			}

			if g.Room.Users.allAnswered(answered) {
				break collect
			}
		}
	}

	g.Notify(protocol.HostEvent{Type: protocol.HostRoundEnd, PointGains: gains})
	g.Room.State.Set(RoomState{Phase: PhaseRoundResolved, Gains: gains})
	return true
}

// awaitBeginRound blocks until the host asks for the next round. It
// returns false on host disconnect.
func (g *Game) awaitBeginRound() bool {
	for {
		act, ok := <-g.Actions
		if !ok {
			g.Log.Debugf("room %s: host disconnected between rounds", g.Room.ID)
			return false
		}
		if act.Type == protocol.ActionBeginRound {
			return true
		}
	}
}
