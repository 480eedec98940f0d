// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/quizcast/quizcast/internal/game"
	"github.com/quizcast/quizcast/internal/protocol"
)

// Server owns the room directory and the timing knobs that tests compress.
type Server struct {
	Logger *logrus.Logger
	Rooms  *game.RoomStore

	// HeartbeatInterval is how long a connection may sit idle before a
	// liveness ping goes out.
	HeartbeatInterval time.Duration
	// TimeUnit scales question time limits (one unit = one second in
	// production).
	TimeUnit time.Duration
}

func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		Logger:            logger,
		Rooms:             game.NewRoomStore(),
		HeartbeatInterval: 25 * time.Second,
		TimeUnit:          time.Second,
	}
}

// WSHandler upgrades the connection and promotes it to host or player
// depending on its first message. Any other first message, or one that
// does not decode, drops the connection silently (logged, nothing sent
// back to the peer).
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx := r.Context()

		act, err := readFirstAction(ctx, c)
		if err != nil {
			s.Logger.Warnf("could not parse initial action from %s: %v", r.RemoteAddr, err)
			return
		}

		switch act.Type {
		case protocol.ActionCreateRoom:
			s.serveHost(ctx, c, act.Questions)
		case protocol.ActionJoinRoom:
			s.servePlayer(ctx, c, act.RoomID, act.Username)
		default:
			s.Logger.Warnf("invalid first action %q from %s", act.Type, r.RemoteAddr)
		}
	}
}

var errNonTextMessage = errors.New("handlers: non-text message")

// readFirstAction reads exactly one message and requires it to decode.
func readFirstAction(ctx context.Context, c *websocket.Conn) (protocol.Action, error) {
	typ, data, err := c.Read(ctx)
	if err != nil {
		return protocol.Action{}, err
	}
	if typ != websocket.MessageText {
		return protocol.Action{}, errNonTextMessage
	}
	return protocol.DecodeAction(data)
}

// readAction reads frames until one decodes as an action, skipping
// undecodable and non-text frames, and fails only when the connection
// ends.
func readAction(ctx context.Context, c *websocket.Conn) (protocol.Action, error) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return protocol.Action{}, err
		}
		if typ != websocket.MessageText {
			continue
		}
		act, err := protocol.DecodeAction(data)
		if err != nil {
			continue
		}
		return act, nil
	}
}
