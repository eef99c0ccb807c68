package model

// SeatID identifies a participant in a room: 1 and 2 play, 3+ spectate
type SeatID int

// Seats that take turns
const (
	SeatOne SeatID = 1
	SeatTwo SeatID = 2
)

// IsPlayingSeat returns true for seats that take turns
func (s SeatID) IsPlayingSeat() bool {
	return s == SeatOne || s == SeatTwo
}

// RackSize is the maximum number of tiles held by a player
const RackSize = 7

// Rack is a player's ordered hand of tiles
type Rack struct {
	Tiles []Tile `json:"tiles"`
}

// Len returns the number of tiles in the rack
func (r *Rack) Len() int {
	return len(r.Tiles)
}

// Missing returns how many tiles are needed to reach the cap
func (r *Rack) Missing() int {
	if n := RackSize - len(r.Tiles); n > 0 {
		return n
	}
	return 0
}

// String returns the rack letters in order
func (r *Rack) String() string {
	letters := make([]rune, len(r.Tiles))
	for i, t := range r.Tiles {
		letters[i] = t.Letter
	}
	return string(letters)
}

// Player is a seated participant
type Player struct {
	ID          SeatID `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Rack        Rack   `json:"rack"`
	RemainingMs int64  `json:"remainingMs"`
}

// HasTime returns true while the player's clock has not run out
func (p *Player) HasTime() bool {
	return p.RemainingMs > 0
}
