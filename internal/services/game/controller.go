package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"unicode"

	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
	"github.com/mcoot/crosswordduel/internal/dependencies/random"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/bag"
	"github.com/mcoot/crosswordduel/internal/services/board"
	"github.com/mcoot/crosswordduel/internal/services/dictionary"
	"github.com/mcoot/crosswordduel/internal/services/rack"
	"github.com/mcoot/crosswordduel/internal/services/scoring"
	"github.com/mcoot/crosswordduel/internal/services/turnclock"
	"github.com/mcoot/crosswordduel/internal/services/validator"
)

// MoveSink receives every committed turn. The engine never reads it back.
type MoveSink interface {
	AppendMove(ctx context.Context, record *model.MoveRecord) error
}

// StateVerifier inspects a snapshot from another client before it replaces
// local state. Returning an error rejects the snapshot.
type StateVerifier func(state *model.GameState) error

// Publisher sends a committed action to the room instead of applying it
// locally. The action is applied when the relay echoes it back.
type Publisher func(action model.Action) error

// Services bundles the rule services the controller drives
type Services struct {
	Board     *board.Service
	Rack      *rack.Service
	Validator *validator.Service
	Scoring   *scoring.Service
	TurnClock *turnclock.Service
}

// Controller owns one client's copy of a game: the shared state plus the
// local player's staged placements
type Controller struct {
	services Services
	words    dictionary.WordChecker
	sink     MoveSink
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	mu        sync.Mutex
	state     *model.GameState
	bag       *bag.Bag
	seat      model.SeatID // 0 acts for whoever holds the turn
	verifier  StateVerifier
	publisher Publisher

	// Local staging, never part of the shared snapshot
	phase     model.TurnPhase
	cursor    *model.Position
	direction model.Direction
	pending   []model.Placement
}

// NewController creates a new GameController in the lobby state
func NewController(
	services Services,
	words dictionary.WordChecker,
	sink MoveSink,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		services:  services,
		words:     words,
		sink:      sink,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "game")),
		state:     &model.GameState{Status: model.GameStatusLobby},
		bag:       bag.FromTiles(nil),
		verifier:  VerifyInvariants,
		phase:     model.PhaseSelecting,
		direction: model.DirectionAcross,
	}
}

// SetSeat binds the controller to one seat. Staging and commits are then
// only allowed while that seat holds the turn.
func (c *Controller) SetSeat(seat model.SeatID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seat = seat
}

// Seat returns the bound seat, 0 when unbound
func (c *Controller) Seat() model.SeatID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seat
}

// SetVerifier replaces the snapshot verifier; nil accepts everything
func (c *Controller) SetVerifier(v StateVerifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifier = v
}

// SetPublisher routes committed actions through p instead of applying them
func (c *Controller) SetPublisher(p Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = p
}

// Start deals a new game for the named players, seated 1..n in order
func (c *Controller) Start(id model.GameID, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(names) == 0 {
		return model.ErrNoPlayers
	}

	now := c.clock.Now()
	c.bag = bag.Build(c.random)
	state := &model.GameState{
		ID:              id,
		Status:          model.GameStatusActive,
		Board:           c.services.Board.CreateBoard(),
		CurrentPlayerID: model.SeatOne,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, name := range names {
		p := model.Player{ID: model.SeatID(i + 1), Name: name}
		c.services.Rack.Refill(&p.Rack, c.bag)
		state.Players = append(state.Players, p)
	}
	c.services.TurnClock.Reset(state)
	c.state = state
	c.syncBag()
	c.resetStaging()

	c.logger.Info("game started",
		slog.String("game_id", string(id)),
		slog.Int("player_count", len(names)),
	)
	return nil
}

// State returns a copy of the shared game state
func (c *Controller) State() *model.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// Snapshot serializes the shared state for a full-state message
func (c *Controller) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(c.state)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the shared state with a snapshot after verification.
// Local staging is discarded.
func (c *Controller) Restore(data []byte) error {
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.verifier != nil {
		if err := c.verifier(&state); err != nil {
			c.logger.Warn("snapshot rejected",
				slog.String("game_id", string(state.ID)),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %w", model.ErrStateRejected, err)
		}
	}

	c.state = &state
	c.bag = bag.FromTiles(state.Bag)
	c.syncBag()
	c.resetStaging()
	c.logger.Info("state restored",
		slog.String("game_id", string(state.ID)),
		slog.Int("turn", state.Turn))
	return nil
}

// Local staging

// Phase returns the local turn phase
func (c *Controller) Phase() model.TurnPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Cursor returns the selected square, or nil
func (c *Controller) Cursor() *model.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor == nil {
		return nil
	}
	pos := *c.cursor
	return &pos
}

// Direction returns the typing direction
func (c *Controller) Direction() model.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

// Pending returns a copy of the staged placements
func (c *Controller) Pending() []model.Placement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Placement(nil), c.pending...)
}

// SelectSquare moves the cursor to an empty square
func (c *Controller) SelectSquare(pos model.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return err
	}
	if !pos.Valid() {
		return model.ErrInvalidPosition
	}
	if c.occupied(pos) {
		return model.ErrCellOccupied
	}
	c.cursor = &pos
	return nil
}

// ToggleDirection flips the typing direction between across and down
func (c *Controller) ToggleDirection() model.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direction = c.direction.Toggle()
	return c.direction
}

// StagePlacement places a rack tile at the cursor and advances the cursor
// in the typing direction past occupied squares
func (c *Controller) StagePlacement(letter rune, isBlank bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return err
	}
	if c.cursor == nil {
		return model.ErrNoCursor
	}

	letter = unicode.ToUpper(letter)
	p := model.NewPlacement(c.cursor.X, c.cursor.Y, letter)
	if isBlank {
		p = model.NewBlankPlacement(c.cursor.X, c.cursor.Y, letter)
	}
	if err := c.stage(p); err != nil {
		return err
	}

	next := c.cursor.Step(c.direction.Horizontal(), 1)
	for next.Valid() && c.occupied(next) {
		next = next.Step(c.direction.Horizontal(), 1)
	}
	if next.Valid() {
		c.cursor = &next
	} else {
		c.cursor = nil
	}
	return nil
}

// StageAt stages a placement at an explicit square without moving the cursor
func (c *Controller) StageAt(p model.Placement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return err
	}
	return c.stage(p.Normalize())
}

func (c *Controller) stage(p model.Placement) error {
	if !p.Pos().Valid() {
		return model.ErrInvalidPosition
	}
	if c.occupied(p.Pos()) {
		return model.ErrCellOccupied
	}
	if err := board.ValidateLetter(p.Face()); err != nil {
		return err
	}

	player := c.actingPlayer()
	if !c.services.Rack.Has(&player.Rack, append(c.pending, p)) {
		return model.ErrRackMismatch
	}

	c.pending = append(c.pending, p)
	c.phase = model.PhasePlacing
	return nil
}

// Backspace removes the most recent placement and puts the cursor back on it
func (c *Controller) Backspace() (model.Placement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return model.Placement{}, false
	}
	last := c.pending[len(c.pending)-1]
	c.pending = c.pending[:len(c.pending)-1]
	pos := last.Pos()
	c.cursor = &pos
	if len(c.pending) == 0 {
		c.phase = model.PhaseSelecting
	}
	return last, true
}

// ClearPending discards every staged placement
func (c *Controller) ClearPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.phase = model.PhaseSelecting
}

// Commits

// Submit validates the staged placements and commits them. On a validation
// failure the placements stay staged and the error is returned. With a
// publisher set the action is published and the record is nil.
func (c *Controller) Submit(ctx context.Context) (*model.MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return nil, err
	}

	c.phase = model.PhaseValidating
	if _, err := c.services.Validator.Validate(&c.state.Board, c.pending, c.words); err != nil {
		c.phase = c.stagedPhase()
		return nil, err
	}

	action := model.Action{
		Kind:       model.ActionSubmitMove,
		Placements: append([]model.Placement(nil), c.pending...),
	}
	return c.commit(ctx, action)
}

// Pass gives up the turn. Only allowed with nothing staged.
func (c *Controller) Pass(ctx context.Context) (*model.MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return nil, err
	}
	if len(c.pending) > 0 {
		return nil, model.ErrPendingPlacements
	}
	return c.commit(ctx, model.Action{Kind: model.ActionPass})
}

// Exchange swaps the rack tiles at the given indices and gives up the turn.
// Only allowed with nothing staged.
func (c *Controller) Exchange(ctx context.Context, indices []int) (*model.MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canAct(); err != nil {
		return nil, err
	}
	if len(c.pending) > 0 {
		return nil, model.ErrPendingPlacements
	}
	// Checked before publishing so an exchange every replica would refuse
	// never reaches the room
	player := c.actingPlayer()
	if err := c.services.Rack.CheckExchange(&player.Rack, indices, c.bag); err != nil {
		return nil, err
	}
	return c.commit(ctx, model.Action{Kind: model.ActionExchange, Indices: indices})
}

func (c *Controller) commit(ctx context.Context, action model.Action) (*model.MoveRecord, error) {
	if c.publisher != nil {
		if err := c.publisher(action); err != nil {
			c.phase = c.stagedPhase()
			return nil, fmt.Errorf("publishing action: %w", err)
		}
		c.phase = c.stagedPhase()
		return nil, nil
	}
	record, err := c.apply(ctx, c.state.CurrentPlayerID, action)
	if err != nil {
		c.phase = c.stagedPhase()
		return nil, err
	}
	return record, nil
}

// ApplyAction applies an action committed by a seat. It is the single path
// every relayed action takes, including the local player's own echo.
func (c *Controller) ApplyAction(ctx context.Context, seat model.SeatID, action model.Action) (*model.MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsActive() {
		return nil, model.ErrGameNotActive
	}
	if seat != c.state.CurrentPlayerID {
		return nil, model.ErrNotPlayerTurn
	}
	return c.apply(ctx, seat, action)
}

func (c *Controller) apply(ctx context.Context, seat model.SeatID, action model.Action) (*model.MoveRecord, error) {
	player := c.state.Player(seat)
	if player == nil {
		return nil, model.ErrNotPlayerTurn
	}

	placements := make([]model.Placement, len(action.Placements))
	for i, p := range action.Placements {
		placements[i] = p.Normalize()
	}

	record := &model.MoveRecord{
		GameID:     c.state.ID,
		PlayerID:   seat,
		Turn:       c.state.Turn,
		Kind:       action.Kind,
		Placements: placements,
		Timestamp:  c.clock.Now(),
	}

	switch action.Kind {
	case model.ActionSubmitMove:
		if err := c.applyMove(player, placements, record); err != nil {
			return nil, err
		}
	case model.ActionPass:
		c.state.ConsecutivePasses++
	case model.ActionExchange:
		if err := c.services.Rack.Exchange(&player.Rack, action.Indices, c.bag); err != nil {
			return nil, err
		}
		c.state.ConsecutivePasses++
	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}

	c.syncBag()
	c.state.UpdatedAt = record.Timestamp
	c.finishOrAdvance(player)
	c.resetStaging()

	if c.sink != nil {
		if err := c.sink.AppendMove(ctx, record); err != nil {
			c.logger.Error("failed to record move",
				slog.String("game_id", string(record.GameID)),
				slog.String("error", err.Error()))
		}
	}

	c.logger.Info("turn committed",
		slog.String("game_id", string(record.GameID)),
		slog.Int("seat", int(seat)),
		slog.String("kind", string(action.Kind)),
		slog.Int("score", record.Score),
		slog.Int("bag", c.state.TileBagCount),
	)
	return record, nil
}

func (c *Controller) applyMove(player *model.Player, placements []model.Placement, record *model.MoveRecord) error {
	result, err := c.services.Validator.Validate(&c.state.Board, placements, c.words)
	if err != nil {
		return err
	}
	if !c.services.Rack.Has(&player.Rack, placements) {
		return model.ErrRackMismatch
	}

	score, words := c.services.Scoring.ScoreMove(&c.state.Board, placements, result)

	saved := append([]model.Tile(nil), player.Rack.Tiles...)
	if err := c.services.Rack.RemoveForPlacement(&player.Rack, placements); err != nil {
		return err
	}
	if err := c.services.Board.Apply(&c.state.Board, placements); err != nil {
		player.Rack.Tiles = saved
		return err
	}
	c.services.Rack.Refill(&player.Rack, c.bag)

	player.Score += score
	c.state.ConsecutivePasses = 0
	record.Score = score
	for _, w := range words {
		record.Words = append(record.Words, w.Text)
	}
	return nil
}

// finishOrAdvance ends the game when the bag and the mover's rack are both
// empty, or after too many scoreless turns; otherwise the turn rotates
func (c *Controller) finishOrAdvance(mover *model.Player) {
	if (c.bag.IsEmpty() && mover.Rack.Len() == 0) || c.state.ConsecutivePasses >= model.MaxScorelessTurns {
		c.state.Status = model.GameStatusFinished
		c.logger.Info("game finished",
			slog.String("game_id", string(c.state.ID)),
			slog.Int("winner", int(c.services.Scoring.DetermineWinner(c.state.Players))),
		)
		return
	}
	c.services.TurnClock.Advance(c.state)
}

// Tick charges one clock tick to the turn holder. It returns true when the
// holder's time ran out and the turn was forced onward.
func (c *Controller) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsActive() {
		return false
	}
	advanced := c.services.TurnClock.Tick(c.state)
	if advanced {
		c.resetStaging()
	}
	return advanced
}

// Winner returns the winning seat of a finished game, 0 on a tie or while playing
func (c *Controller) Winner() model.SeatID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != model.GameStatusFinished {
		return 0
	}
	return c.services.Scoring.DetermineWinner(c.state.Players)
}

// canAct checks the game is active and the local seat holds the turn
func (c *Controller) canAct() error {
	if !c.state.IsActive() {
		return model.ErrGameNotActive
	}
	if c.seat != 0 && c.seat != c.state.CurrentPlayerID {
		return model.ErrNotPlayerTurn
	}
	return nil
}

func (c *Controller) actingPlayer() *model.Player {
	if c.seat != 0 {
		return c.state.Player(c.seat)
	}
	return c.state.CurrentPlayer()
}

func (c *Controller) occupied(pos model.Position) bool {
	if !c.state.Board.IsEmpty(pos) {
		return true
	}
	for _, p := range c.pending {
		if p.Pos() == pos {
			return true
		}
	}
	return false
}

func (c *Controller) stagedPhase() model.TurnPhase {
	if len(c.pending) > 0 {
		return model.PhasePlacing
	}
	return model.PhaseSelecting
}

func (c *Controller) resetStaging() {
	c.pending = nil
	c.cursor = nil
	c.phase = model.PhaseSelecting
}

func (c *Controller) syncBag() {
	c.state.Bag = c.bag.Tiles()
	c.state.TileBagCount = c.bag.Len()
}

func cloneState(s *model.GameState) *model.GameState {
	out := *s
	out.Players = make([]model.Player, len(s.Players))
	for i, p := range s.Players {
		p.Rack.Tiles = append([]model.Tile(nil), p.Rack.Tiles...)
		out.Players[i] = p
	}
	out.Bag = append([]model.Tile(nil), s.Bag...)
	return &out
}

// VerifyInvariants is the default snapshot verifier. It checks that the bag,
// racks and board together hold exactly the canonical tile set, that every
// board face matches its tile, and that the turn holder is seated.
func VerifyInvariants(state *model.GameState) error {
	if state.Status == model.GameStatusLobby {
		return nil
	}
	if state.TileBagCount != len(state.Bag) {
		return fmt.Errorf("bag count %d does not match %d bag tiles", state.TileBagCount, len(state.Bag))
	}
	if total := state.TileTotal(); total != model.TotalTiles {
		return fmt.Errorf("tile total %d, expected %d", total, model.TotalTiles)
	}

	counts := make(map[rune]int, len(model.Distribution))
	for _, t := range state.Bag {
		counts[t.Letter]++
	}
	for _, p := range state.Players {
		if p.Rack.Len() > model.RackSize {
			return fmt.Errorf("seat %d holds %d tiles", p.ID, p.Rack.Len())
		}
		for _, t := range p.Rack.Tiles {
			counts[t.Letter]++
		}
	}
	for y := range state.Board.Squares {
		for x := range state.Board.Squares[y] {
			tile := state.Board.Squares[y][x].Tile
			if tile == nil {
				continue
			}
			if !tile.IsBlank() && tile.Face != tile.Letter {
				return fmt.Errorf("square %d,%d shows %c on a %c tile", x, y, tile.Face, tile.Letter)
			}
			counts[tile.Letter]++
		}
	}
	expected := make(map[rune]int, len(model.Distribution))
	for _, spec := range model.Distribution {
		expected[spec.Letter] = spec.Count
	}
	for letter, n := range counts {
		want, ok := expected[letter]
		if !ok {
			return fmt.Errorf("unknown tile %q", letter)
		}
		if n != want {
			return fmt.Errorf("%d %c tiles in play, expected %d", n, letter, want)
		}
	}

	if state.IsActive() && state.CurrentPlayer() == nil {
		return fmt.Errorf("turn holder %d is not seated", state.CurrentPlayerID)
	}
	return nil
}

// Interface for dependency injection
type ControllerInterface interface {
	Start(id model.GameID, names []string) error
	State() *model.GameState
	Snapshot() ([]byte, error)
	Restore(data []byte) error
	SelectSquare(pos model.Position) error
	ToggleDirection() model.Direction
	StagePlacement(letter rune, isBlank bool) error
	StageAt(p model.Placement) error
	Backspace() (model.Placement, bool)
	ClearPending()
	Submit(ctx context.Context) (*model.MoveRecord, error)
	Pass(ctx context.Context) (*model.MoveRecord, error)
	Exchange(ctx context.Context, indices []int) (*model.MoveRecord, error)
	ApplyAction(ctx context.Context, seat model.SeatID, action model.Action) (*model.MoveRecord, error)
	Tick() bool
}

var _ ControllerInterface = (*Controller)(nil)
