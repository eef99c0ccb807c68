package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus is the lifecycle stage of a game
type GameStatus string

const (
	GameStatusLobby    GameStatus = "lobby"    // Seats not yet filled
	GameStatusActive   GameStatus = "active"   // Turns being played
	GameStatusFinished GameStatus = "finished" // Bag and a rack exhausted, or too many scoreless turns
)

// TurnPhase is the sub-state of the current turn
type TurnPhase string

const (
	PhaseSelecting  TurnPhase = "selecting"  // No placements staged
	PhasePlacing    TurnPhase = "placing"    // One or more placements staged
	PhaseValidating TurnPhase = "validating" // Submit in progress
)

// Direction is the cursor direction used when typing placements
type Direction string

const (
	DirectionAcross Direction = "across"
	DirectionDown   Direction = "down"
)

// Horizontal returns true for the across direction
func (d Direction) Horizontal() bool {
	return d != DirectionDown
}

// Toggle returns the other direction
func (d Direction) Toggle() Direction {
	if d == DirectionDown {
		return DirectionAcross
	}
	return DirectionDown
}

// Default game configuration
const (
	DefaultTurnBudget = 600 * time.Second
	DefaultTickPeriod = time.Second
	// MaxScorelessTurns ends the game after this many consecutive passes/exchanges
	MaxScorelessTurns = 6
	// FullRackBonus is awarded for playing all seven rack tiles in one move
	FullRackBonus = 50
)

// GameState is the full, serializable state of one game.
// It doubles as the full-state snapshot exchanged between clients.
type GameState struct {
	ID              GameID     `json:"id"`
	Status          GameStatus `json:"status"`
	Board           Board      `json:"board"`
	Players         []Player   `json:"players"` // Ordered by seat
	CurrentPlayerID SeatID     `json:"currentPlayerId"`
	Bag             []Tile     `json:"bag"`
	TileBagCount    int        `json:"tileBagCount"`

	// Turn management
	Turn              int `json:"turn"`
	ConsecutivePasses int `json:"consecutivePasses"`

	// Timing
	TickPeriodMs int64     `json:"tickPeriodMs"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Player returns the player with the given seat, or nil
func (g *GameState) Player(id SeatID) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil
func (g *GameState) CurrentPlayer() *Player {
	return g.Player(g.CurrentPlayerID)
}

// IsActive returns true while turns are being played
func (g *GameState) IsActive() bool {
	return g.Status == GameStatusActive
}

// TileTotal counts every tile in the bag, the racks and on the board.
// It must always equal TotalTiles.
func (g *GameState) TileTotal() int {
	total := len(g.Bag) + g.Board.TileCount()
	for _, p := range g.Players {
		total += p.Rack.Len()
	}
	return total
}
