// internal/handlers/player.go
package handlers

import (
	"context"
	"errors"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/quizcast/quizcast/internal/game"
	"github.com/quizcast/quizcast/internal/protocol"
)

// servePlayer joins the connection to an existing room as a player and
// relays traffic both ways until either direction ends. The presence is
// released on every exit path, which is what guarantees the host its
// userLeft notification.
func (s *Server) servePlayer(ctx context.Context, c *websocket.Conn, roomID, username string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := newConnWriter(s.Logger)
	go writer.run(ctx, c)

	room, found := s.findRoom(roomID)
	if !found {
		s.Logger.Warnf("join to unknown room %q by %q", roomID, username)
		writer.send(protocol.UserEvent{Type: protocol.UserJoinFailed, Reason: protocol.ReasonRoomNotFound})
		writer.flush()
		c.Close(websocket.StatusPolicyViolation, "room does not exist")
		return
	}

	presence, err := room.Users.Join(username)
	if err != nil {
		s.Logger.Warnf("room %s: duplicate join as %q", room.ID, username)
		writer.send(protocol.UserEvent{Type: protocol.UserJoinFailed, Reason: protocol.ReasonDuplicateUser})
		writer.flush()
		c.Close(websocket.StatusPolicyViolation, "duplicate user")
		return
	}
	defer presence.Leave()

	s.Logger.Infof("room %s: %q joined", room.ID, username)
	writer.send(protocol.UserEvent{Type: protocol.UserJoined})

	// Outbound and inbound relays race; the first to finish cancels the
	// other via the shared context.
	outDone := make(chan struct{})
	go func() {
		defer close(outDone)
		s.relayRoomState(ctx, c, room, username, writer)
	}()

	inDone := make(chan struct{})
	go func() {
		defer close(inDone)
		s.relayAnswers(ctx, c, room, username)
	}()

	select {
	case <-outDone:
	case <-inDone:
	}
	cancel()
	s.Logger.Infof("room %s: %q session ended", room.ID, username)
}

// findRoom resolves a wire-format room id to a live room.
func (s *Server) findRoom(roomID string) (*game.Room, bool) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, false
	}
	return s.Rooms.Get(id)
}

// relayRoomState forwards room state changes to the player, translated to
// the player-visible view: choices only on round begin, the player's own
// gain (or null) on round end. It also pings the connection whenever the
// room stays quiet for a full heartbeat interval, and closes the
// connection when the room disappears.
func (s *Server) relayRoomState(ctx context.Context, c *websocket.Conn, room *game.Room, username string, writer *connWriter) {
	watcher := room.State.Watch()
	for {
		hbCtx, hbCancel := context.WithTimeout(ctx, s.HeartbeatInterval)
		state, err := watcher.Next(hbCtx)
		hbCancel()
		if err != nil {
			switch {
			case errors.Is(err, game.ErrCellClosed):
				// Host is gone and the room has been torn down.
				c.Close(websocket.StatusGoingAway, "room closed")
				return
			case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
				writer.ping()
				continue
			default:
				return
			}
		}

		switch state.Phase {
		case game.PhaseRoundActive:
			writer.send(protocol.UserEvent{Type: protocol.UserRoundBegin, Choices: state.Choices})
		case game.PhaseRoundResolved:
			ev := protocol.UserEvent{Type: protocol.UserRoundEnd}
			if gain, ok := state.Gains[username]; ok {
				ev.PointGain = &gain
			}
			writer.send(ev)
		case game.PhaseGameEnd:
			writer.send(protocol.UserEvent{Type: protocol.UserGameEnd})
			writer.flush()
			c.Close(websocket.StatusNormalClosure, "game over")
			return
		}
	}
}

// relayAnswers forwards the player's answer actions into the room's answer
// queue. Every other action kind arriving here is ignored. It returns when
// the connection's read side ends.
func (s *Server) relayAnswers(ctx context.Context, c *websocket.Conn, room *game.Room, username string) {
	for {
		act, err := readAction(ctx, c)
		if err != nil {
			return
		}
		if act.Type != protocol.ActionAnswer {
			continue
		}
		room.SubmitAnswer(ctx, game.Answer{Username: username, Choice: *act.Choice})
	}
}
