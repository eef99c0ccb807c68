package model

import "encoding/json"

// MessageType identifies a relay or matchmaking message
type MessageType string

const (
	// Room relay messages
	MessageJoin               MessageType = "join"
	MessageWelcome            MessageType = "welcome"
	MessageRoster             MessageType = "roster"
	MessageRequestState       MessageType = "request_state"
	MessageFullState          MessageType = "full_state"
	MessageFullStateBroadcast MessageType = "full_state_broadcast"
	MessageAction             MessageType = "action"
	MessageHostPromoted       MessageType = "you_are_host_now"

	// Matchmaking messages
	MessageFindGame  MessageType = "findGame"
	MessageWaiting   MessageType = "waiting"
	MessageGameStart MessageType = "game:start"
	MessageDenied    MessageType = "auth:denied"
)

// DeniedReason explains a rejected matchmaking request
type DeniedReason string

const (
	DeniedMissingIdentity DeniedReason = "missing_identity"
	DeniedAlreadyActive   DeniedReason = "already_active"
)

// Message is the JSON envelope for every relay and matchmaking message.
// Only the fields relevant to Type are set. Payload and Action are carried
// through the relay verbatim.
type Message struct {
	Type MessageType `json:"type"`

	// Join
	RoomID      string `json:"roomId,omitempty"`
	Name        string `json:"name,omitempty"`
	PreferredID SeatID `json:"prefId,omitempty"`

	// Welcome / roster / targeting
	PlayerID       SeatID        `json:"playerId,omitempty"`
	IsHost         bool          `json:"isHost"`
	Players        []RosterEntry `json:"players,omitempty"`
	TargetPlayerID SeatID        `json:"targetPlayerId,omitempty"`
	SenderID       SeatID        `json:"senderId,omitempty"`

	// Opaque data
	Payload json.RawMessage `json:"payload,omitempty"`
	Action  json.RawMessage `json:"action,omitempty"`

	// Matchmaking
	Username string       `json:"username,omitempty"`
	Text     string       `json:"message,omitempty"`
	Player1  string       `json:"player1,omitempty"`
	Player2  string       `json:"player2,omitempty"`
	Reason   DeniedReason `json:"reason,omitempty"`
}

// WelcomeMessage tells a new member its seat and host flag
func WelcomeMessage(id SeatID, isHost bool) Message {
	return Message{Type: MessageWelcome, PlayerID: id, IsHost: isHost}
}

// RosterMessage lists the current room members
func RosterMessage(players []RosterEntry) Message {
	return Message{Type: MessageRoster, Players: players}
}

// RequestStateMessage asks the host for a snapshot targeted at a member
func RequestStateMessage(target SeatID) Message {
	return Message{Type: MessageRequestState, TargetPlayerID: target}
}

// FullStateMessage delivers a snapshot
func FullStateMessage(payload json.RawMessage) Message {
	return Message{Type: MessageFullState, Payload: payload}
}

// ActionMessage relays a committed action tagged with its sender
func ActionMessage(action json.RawMessage, sender SeatID) Message {
	return Message{Type: MessageAction, Action: action, SenderID: sender}
}

// HostPromotedMessage tells a member it is now the host
func HostPromotedMessage() Message {
	return Message{Type: MessageHostPromoted}
}

// WaitingMessage tells a matchmaking client it is queued
func WaitingMessage(text string) Message {
	return Message{Type: MessageWaiting, Text: text}
}

// GameStartMessage announces a pairing
func GameStartMessage(roomID, player1, player2 string) Message {
	return Message{Type: MessageGameStart, RoomID: roomID, Player1: player1, Player2: player2}
}

// DeniedMessage rejects a matchmaking request
func DeniedMessage(reason DeniedReason) Message {
	return Message{Type: MessageDenied, Reason: reason}
}

// JoinMessage asks the relay for a seat in a room
func JoinMessage(roomID, name string, preferred SeatID) Message {
	return Message{Type: MessageJoin, RoomID: roomID, Name: name, PreferredID: preferred}
}

// FindGameMessage asks matchmaking for an opponent
func FindGameMessage(username string) Message {
	return Message{Type: MessageFindGame, Username: username}
}
