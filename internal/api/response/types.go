package response

import (
	"time"

	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/model"
)

// Placement represents a placed tile in API responses
type Placement struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Letter  string `json:"letter"`
	IsBlank bool   `json:"isBlank,omitempty"`
	Value   int    `json:"value"`
}

// PlacementFromModel converts a model.Placement
func PlacementFromModel(p model.Placement) Placement {
	return Placement{
		X:       p.X,
		Y:       p.Y,
		Letter:  string(p.Face()),
		IsBlank: p.IsBlank,
		Value:   p.Tile.Value,
	}
}

// MoveRecord represents a move log entry
type MoveRecord struct {
	GameID     string      `json:"gameId"`
	PlayerID   int         `json:"playerId"`
	Turn       int         `json:"turn"`
	Kind       string      `json:"kind"`
	Placements []Placement `json:"placements"`
	Words      []string    `json:"words"`
	Score      int         `json:"score"`
	Timestamp  time.Time   `json:"timestamp"`
}

// MoveRecordFromModel converts a model.MoveRecord
func MoveRecordFromModel(r *model.MoveRecord) MoveRecord {
	placements := make([]Placement, len(r.Placements))
	for i, p := range r.Placements {
		placements[i] = PlacementFromModel(p)
	}
	words := r.Words
	if words == nil {
		words = []string{}
	}
	return MoveRecord{
		GameID:     string(r.GameID),
		PlayerID:   int(r.PlayerID),
		Turn:       r.Turn,
		Kind:       string(r.Kind),
		Placements: placements,
		Words:      words,
		Score:      r.Score,
		Timestamp:  r.Timestamp,
	}
}

// SubmitMoveResponse is the response for a recorded move
type SubmitMoveResponse struct {
	Message string     `json:"message"`
	Move    MoveRecord `json:"move"`
}

// MoveListResponse lists the moves of one game
type MoveListResponse struct {
	GameID string       `json:"gameId"`
	Moves  []MoveRecord `json:"moves"`
}

// MoveListFromModel converts a game's move log
func MoveListFromModel(gameID model.GameID, records []*model.MoveRecord) MoveListResponse {
	moves := make([]MoveRecord, len(records))
	for i, r := range records {
		moves[i] = MoveRecordFromModel(r)
	}
	return MoveListResponse{GameID: string(gameID), Moves: moves}
}

// Member represents a room member
type Member struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Room represents a live relay room
type Room struct {
	ID      string   `json:"id"`
	HostID  int      `json:"hostId"`
	Members []Member `json:"members"`
}

// Matchmaking summarises the matchmaking pool
type Matchmaking struct {
	Connections int    `json:"connections"`
	Active      int    `json:"active"`
	Waiting     string `json:"waiting,omitempty"`
}

// RoomsResponse is the response for the rooms listing
type RoomsResponse struct {
	Rooms       []Room       `json:"rooms"`
	Connections int          `json:"connections"`
	Matchmaking *Matchmaking `json:"matchmaking,omitempty"`
}

// RoomsFromModel converts relay and optional matchmaking stats
func RoomsFromModel(stats model.RelayStats, mm *matchmaking.Stats) RoomsResponse {
	resp := RoomsResponse{
		Rooms:       make([]Room, 0, len(stats.Rooms)),
		Connections: stats.Connections,
	}
	for _, rs := range stats.Rooms {
		room := Room{
			ID:      string(rs.ID),
			HostID:  int(rs.HostID),
			Members: make([]Member, 0, len(rs.Members)),
		}
		for _, m := range rs.Members {
			room.Members = append(room.Members, Member{
				ID:     int(m.ID),
				Name:   m.Name,
				IsHost: m.ID == rs.HostID,
			})
		}
		resp.Rooms = append(resp.Rooms, room)
	}
	if mm != nil {
		resp.Matchmaking = &Matchmaking{
			Connections: mm.Connections,
			Active:      mm.Active,
			Waiting:     mm.Waiting,
		}
	}
	return resp
}

// WordCheck is the response for a dictionary lookup
type WordCheck struct {
	Word  string `json:"word"`
	Valid bool   `json:"valid"`
}
