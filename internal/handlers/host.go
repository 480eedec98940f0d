// internal/handlers/host.go
package handlers

import (
	"context"
	"time"

	"github.com/coder/websocket"

	"github.com/quizcast/quizcast/internal/game"
	"github.com/quizcast/quizcast/internal/protocol"
)

// serveHost creates a room for the connection and runs its game loop until
// the game ends or the host disconnects. The connection is the room's
// host from here on.
func (s *Server) serveHost(ctx context.Context, c *websocket.Conn, questions []protocol.Question) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	room := game.NewRoom()
	id := s.Rooms.Add(room)
	s.Logger.Infof("room %s created with %d questions", id, len(questions))

	writer := newConnWriter(s.Logger)
	go writer.run(ctx, c)

	writer.send(protocol.HostEvent{Type: protocol.HostRoomCreated, RoomID: id.String()})

	// Decoded host actions, closed when the host's read side ends. The
	// game loop treats the close as a fatal disconnect.
	actions := make(chan protocol.Action)
	go func() {
		defer close(actions)
		for {
			act, err := readAction(ctx, c)
			if err != nil {
				return
			}
			select {
			case actions <- act:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Relay join/leave notifications to the host.
	go func() {
		for {
			select {
			case ev := <-room.Users.Events():
				typ := protocol.HostUserJoined
				if !ev.Joined {
					typ = protocol.HostUserLeft
				}
				writer.send(protocol.HostEvent{Type: typ, Username: ev.Username})
			case <-ctx.Done():
				return
			}
		}
	}()

	// Keep the socket alive while the host idles in the lobby or between
	// rounds.
	go func() {
		ticker := time.NewTicker(s.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writer.ping()
			case <-ctx.Done():
				return
			}
		}
	}()

	g := &game.Game{
		Log:       s.Logger,
		Store:     s.Rooms,
		Room:      room,
		Questions: questions,
		Actions:   actions,
		Notify:    func(ev protocol.HostEvent) { writer.send(ev) },
		TimeUnit:  s.TimeUnit,
	}
	g.Run()

	// Let any queued events (gameEnd in particular) reach the wire before
	// the deferred teardown kills the pump.
	writer.flush()
	s.Logger.Infof("room %s closed", id)
	c.Close(websocket.StatusNormalClosure, "game over")
}
