// internal/protocol/protocol.go
package protocol

import (
	"encoding/json"
	"errors"
)

// Every message on the wire, in both directions, is a JSON object tagged
// with a "type" field:
//
//	{"type": "<kind>", "<field>": <value>, ...}
//
// Clients send actions; the server sends host events to the room creator
// and user events to joined players.

// Client action kinds.
const (
	ActionCreateRoom = "createRoom"
	ActionJoinRoom   = "joinRoom"
	ActionAnswer     = "answer"
	ActionBeginRound = "beginRound"
	ActionEndRound   = "endRound"
)

// Server->host event kinds.
const (
	HostRoomCreated  = "roomCreated"
	HostUserJoined   = "userJoined"
	HostUserLeft     = "userLeft"
	HostUserAnswered = "userAnswered"
	HostRoundBegin   = "roundBegin"
	HostRoundEnd     = "roundEnd"
	HostGameEnd      = "gameEnd"
)

// Server->player event kinds.
const (
	UserJoined     = "joined"
	UserJoinFailed = "joinFailed"
	UserRoundBegin = "roundBegin"
	UserRoundEnd   = "roundEnd"
	UserGameEnd    = "gameEnd"
)

// JoinFailed reasons surfaced to players.
const (
	ReasonRoomNotFound  = "Room does not exist"
	ReasonDuplicateUser = "Duplicate user"
)

// Question holds everything the host knows about one question. Players are
// only ever sent the choice list; the answer index stays server/host side.
type Question struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   int      `json:"answer"`
	// Time is the round limit in seconds.
	Time int `json:"time"`
}

// Action is a decoded client message. Only the fields relevant to Type are
// populated; Choice is a pointer so an answer of index 0 is distinguishable
// from a missing field.
type Action struct {
	Type      string     `json:"type"`
	Questions []Question `json:"questions,omitempty"`
	RoomID    string     `json:"roomId,omitempty"`
	Username  string     `json:"username,omitempty"`
	Choice    *int       `json:"choice,omitempty"`
}

var errMalformedAction = errors.New("protocol: malformed action")

// DecodeAction parses a client message and validates that the fields its
// kind requires are present. Unknown kinds and incomplete messages are
// rejected so read loops can skip them.
func DecodeAction(data []byte) (Action, error) {
	var act Action
	if err := json.Unmarshal(data, &act); err != nil {
		return Action{}, err
	}
	switch act.Type {
	case ActionCreateRoom:
		if act.Questions == nil {
			return Action{}, errMalformedAction
		}
	case ActionJoinRoom:
		if act.RoomID == "" || act.Username == "" {
			return Action{}, errMalformedAction
		}
	case ActionAnswer:
		if act.Choice == nil {
			return Action{}, errMalformedAction
		}
	case ActionBeginRound, ActionEndRound:
	default:
		return Action{}, errMalformedAction
	}
	return act, nil
}

// HostEvent is an outbound message for the room host.
type HostEvent struct {
	Type     string    `json:"type"`
	RoomID   string    `json:"roomId,omitempty"`
	Username string    `json:"username,omitempty"`
	Question *Question `json:"question,omitempty"`
	// PointGains is present on roundEnd only; usernames absent from the map
	// answered wrong or not at all.
	PointGains map[string]int `json:"pointGains,omitempty"`
}

// MarshalJSON keeps roundEnd's pointGains field present even when empty,
// which omitempty would otherwise drop.
func (ev HostEvent) MarshalJSON() ([]byte, error) {
	if ev.Type == HostRoundEnd {
		gains := ev.PointGains
		if gains == nil {
			gains = map[string]int{}
		}
		return json.Marshal(struct {
			Type       string         `json:"type"`
			PointGains map[string]int `json:"pointGains"`
		}{ev.Type, gains})
	}
	type alias HostEvent
	return json.Marshal(alias(ev))
}

// UserEvent is an outbound message for a joined player.
type UserEvent struct {
	Type    string   `json:"type"`
	Reason  string   `json:"reason,omitempty"`
	Choices []string `json:"choices,omitempty"`
	// PointGain is null when the player gained nothing this round.
	PointGain *int `json:"pointGain,omitempty"`
}

// MarshalJSON forces the pointGain key onto roundEnd messages so clients
// see an explicit null for a zero gain.
func (ev UserEvent) MarshalJSON() ([]byte, error) {
	if ev.Type == UserRoundEnd {
		return json.Marshal(struct {
			Type      string `json:"type"`
			PointGain *int   `json:"pointGain"`
		}{ev.Type, ev.PointGain})
	}
	type alias UserEvent
	return json.Marshal(alias(ev))
}
