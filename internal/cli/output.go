package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomsResult:
		o.printRooms(v)
	case MoveList:
		o.printMoveList(v)
	case RecordResult:
		o.printRecordResult(v)
	case MatchResult:
		o.printMatchResult(v)
	case BoardView:
		o.printBoard(v)
	case WordResult:
		o.printWordResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// RoomsResult response type (matches API)
type RoomsResult struct {
	Rooms       []Room       `json:"rooms"`
	Connections int          `json:"connections"`
	Matchmaking *Matchmaking `json:"matchmaking,omitempty"`
}

// Room response type
type Room struct {
	ID      string   `json:"id"`
	HostID  int      `json:"hostId"`
	Members []Member `json:"members"`
}

// Member response type
type Member struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Matchmaking response type
type Matchmaking struct {
	Connections int    `json:"connections"`
	Active      int    `json:"active"`
	Waiting     string `json:"waiting,omitempty"`
}

// Placement response type
type Placement struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Letter  string `json:"letter"`
	IsBlank bool   `json:"isBlank,omitempty"`
	Value   int    `json:"value,omitempty"`
}

// MoveRecord response type
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

// MoveList response type
type MoveList struct {
	GameID string       `json:"gameId"`
	Moves  []MoveRecord `json:"moves"`
}

// RecordResult response type
type RecordResult struct {
	Message string     `json:"message"`
	Move    MoveRecord `json:"move"`
}

// MatchResult is the pairing reported by matchmaking
type MatchResult struct {
	RoomID  string `json:"roomId"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Seat    int    `json:"seat"`
}

// BoardView is a board to render, with the premium layout under empty squares
type BoardView struct {
	Board model.Board `json:"board"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printWordResult(w WordResult) {
	if w.Valid {
		fmt.Printf("%s is a word\n", w.Word)
	} else {
		fmt.Printf("%s is not a word\n", w.Word)
	}
}

func (o *Output) printRooms(r RoomsResult) {
	fmt.Printf("Connections: %d\n", r.Connections)
	if r.Matchmaking != nil {
		fmt.Printf("Matchmaking: %d connected, %d active", r.Matchmaking.Connections, r.Matchmaking.Active)
		if r.Matchmaking.Waiting != "" {
			fmt.Printf(", %s waiting", r.Matchmaking.Waiting)
		}
		fmt.Println()
	}
	fmt.Printf("Rooms (%d):\n", len(r.Rooms))
	for _, room := range r.Rooms {
		fmt.Printf("  %s\n", room.ID)
		for _, m := range room.Members {
			hostStr := ""
			if m.IsHost {
				hostStr = " [host]"
			}
			fmt.Printf("    - %d: %s%s\n", m.ID, m.Name, hostStr)
		}
	}
}

func (o *Output) printMove(m MoveRecord) {
	fmt.Printf("Turn %d: seat %d %s", m.Turn, m.PlayerID, m.Kind)
	if len(m.Words) > 0 {
		fmt.Printf(" %s", strings.Join(m.Words, ", "))
	}
	fmt.Printf(" (%d pts)\n", m.Score)
}

func (o *Output) printMoveList(l MoveList) {
	fmt.Printf("Game: %s\n", l.GameID)
	if len(l.Moves) == 0 {
		fmt.Println("No moves recorded")
		return
	}
	for _, m := range l.Moves {
		fmt.Print("  ")
		o.printMove(m)
	}
}

func (o *Output) printRecordResult(r RecordResult) {
	fmt.Println(r.Message)
	o.printMove(r.Move)
}

func (o *Output) printMatchResult(m MatchResult) {
	fmt.Printf("Room: %s\n", m.RoomID)
	fmt.Printf("Players: %s vs %s\n", m.Player1, m.Player2)
	fmt.Printf("Your seat: %d\n", m.Seat)
}

// squareSymbol renders an empty square by its premium type
func squareSymbol(t model.SquareType) string {
	switch t {
	case model.SquareStart:
		return " * "
	case model.SquareDoubleLetter:
		return " d "
	case model.SquareTripleLetter:
		return " t "
	case model.SquareDoubleWord:
		return " D "
	case model.SquareTripleWord:
		return " T "
	default:
		return " . "
	}
}

func (o *Output) printBoard(v BoardView) {
	// Print column headers
	fmt.Print("    ")
	for x := 0; x < model.BoardSize; x++ {
		fmt.Printf("%2d ", x)
	}
	fmt.Println()

	for y := 0; y < model.BoardSize; y++ {
		fmt.Printf("%2d |", y)
		for x := 0; x < model.BoardSize; x++ {
			pos := model.Position{X: x, Y: y}
			if face := v.Board.Face(pos); face != 0 {
				fmt.Printf(" %c ", face)
			} else {
				fmt.Print(squareSymbol(v.Board.At(pos).Type))
			}
		}
		fmt.Println("|")
	}
	fmt.Println("\n* start  D/T double/triple word  d/t double/triple letter")
}
