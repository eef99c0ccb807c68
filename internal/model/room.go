package model

// RoomID identifies a relay room
type RoomID string

// RosterEntry is one room member as seen by the other members
type RosterEntry struct {
	ID   SeatID `json:"id"`
	Name string `json:"name"`
}

// RoomStats summarises a live room
type RoomStats struct {
	ID      RoomID        `json:"id"`
	HostID  SeatID        `json:"hostId"`
	Members []RosterEntry `json:"members"`
}

// RelayStats summarises every live room
type RelayStats struct {
	Rooms       []RoomStats `json:"rooms"`
	Connections int         `json:"connections"`
}
