package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/api/response"
	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/session"
)

const waitFor = 3 * time.Second

type IntegrationSuite struct {
	suite.Suite
	app     *TestApp
	server  *httptest.Server
	wsBase  string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.Require().NoError(s.app.LoadTestDictionary())

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.stopped = make(chan struct{})
	go func() {
		s.app.Run(s.ctx)
		close(s.stopped)
	}()

	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:     s.app.Logger,
		Storage:    s.app.Storage,
		Clock:      s.app.Clock,
		Dictionary: s.app.DictionaryService,
		Relay:      s.app.Relay,
		Matchmaker: s.app.Matchmaker,
	}))
	s.wsBase = "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	<-s.stopped
	s.server.Close()
}

func (s *IntegrationSuite) getJSON(path string, out any) {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

// matchPlayers pairs two identities through the matchmaking endpoint
func (s *IntegrationSuite) matchPlayers(first, second string) (model.Message, model.Message) {
	type result struct {
		msg model.Message
		err error
	}
	firstResult := make(chan result, 1)
	waiting := make(chan struct{})
	go func() {
		msg, err := session.FindGame(s.ctx, s.wsBase+api.MatchmakingPath, first,
			func(string) { close(waiting) }, s.app.Logger)
		firstResult <- result{msg, err}
	}()

	select {
	case <-waiting:
	case <-time.After(waitFor):
		s.FailNow("first player never started waiting")
	}

	secondMsg, err := session.FindGame(s.ctx, s.wsBase+api.MatchmakingPath, second, nil, s.app.Logger)
	s.Require().NoError(err)

	var got result
	select {
	case got = <-firstResult:
	case <-time.After(waitFor):
		s.FailNow("first player never matched")
	}
	s.Require().NoError(got.err)
	return got.msg, secondMsg
}

func (s *IntegrationSuite) join(start model.Message, identity string) *session.Session {
	sess := s.app.NewSession(start.RoomID)
	go func() {
		_ = sess.Dial(s.ctx, s.wsBase+api.RelayPath, identity, matchmaking.PreferredSeat(identity, start))
	}()
	return sess
}

func converged(a, b *session.Session) bool {
	left, err := a.Controller().Snapshot()
	if err != nil {
		return false
	}
	right, err := b.Controller().Snapshot()
	if err != nil {
		return false
	}
	return string(left) == string(right)
}

// Test: matchmaking through a first move, entirely over websockets
func (s *IntegrationSuite) TestMatchAndPlayFirstMove() {
	aliceStart, bobStart := s.matchPlayers("alice", "bob")
	s.Equal(model.MessageGameStart, aliceStart.Type)
	s.Equal(aliceStart.RoomID, bobStart.RoomID)
	s.Equal("alice", aliceStart.Player1)
	s.Equal("bob", aliceStart.Player2)

	// bob reaches the room first; seats still follow the match
	bob := s.join(bobStart, "bob")
	s.Eventually(func() bool { return bob.Seat() == model.SeatTwo }, waitFor, 10*time.Millisecond)
	alice := s.join(aliceStart, "alice")

	s.Eventually(func() bool {
		return alice.Controller().State().IsActive() && converged(alice, bob)
	}, waitFor, 10*time.Millisecond)
	s.True(bob.IsHost())
	s.Equal(model.SeatOne, alice.Seat())
	s.Equal("alice", bob.Controller().State().Player(model.SeatOne).Name)

	var rooms response.RoomsResponse
	s.getJSON("/api/v1/rooms", &rooms)
	s.Require().Len(rooms.Rooms, 1)
	s.Equal(aliceStart.RoomID, rooms.Rooms[0].ID)
	s.Len(rooms.Rooms[0].Members, 2)
	s.Equal(int(model.SeatTwo), rooms.Rooms[0].HostID)

	// Z plus a blank as A spells ZA across the start square
	s.Require().NoError(alice.Controller().StageAt(model.NewPlacement(7, 7, 'Z')))
	s.Require().NoError(alice.Controller().StageAt(model.NewBlankPlacement(8, 7, 'A')))
	_, err := alice.Controller().Submit(s.ctx)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return bob.Controller().State().Board.TileCount() == 2 && converged(alice, bob)
	}, waitFor, 10*time.Millisecond)
	state := bob.Controller().State()
	s.Equal(model.SeatTwo, state.CurrentPlayerID)
	s.Equal(20, state.Player(model.SeatOne).Score)
	s.Equal(100, state.TileTotal())

	// both clients log the move once they apply the echo
	s.Eventually(func() bool {
		records, err := s.app.Storage.ListMoves(s.ctx, model.GameID(aliceStart.RoomID))
		return err == nil && len(records) == 2
	}, waitFor, 10*time.Millisecond)

	var moves response.MoveListResponse
	s.getJSON("/api/v1/games/"+aliceStart.RoomID+"/moves", &moves)
	s.Require().Len(moves.Moves, 2)
	for _, m := range moves.Moves {
		s.Equal("submit_move", m.Kind)
		s.Equal([]string{"ZA"}, m.Words)
		s.Equal(1, m.PlayerID)
	}
}

// Test: an invalid word never leaves the local client
func (s *IntegrationSuite) TestInvalidWordStaysLocal() {
	aliceStart, bobStart := s.matchPlayers("alice", "bob")
	alice := s.join(aliceStart, "alice")
	bob := s.join(bobStart, "bob")
	s.Eventually(func() bool {
		return bob.Controller().State().IsActive() && converged(alice, bob)
	}, waitFor, 10*time.Millisecond)

	s.Require().NoError(alice.Controller().StageAt(model.NewPlacement(7, 7, 'X')))
	s.Require().NoError(alice.Controller().StageAt(model.NewPlacement(8, 7, 'Z')))
	_, err := alice.Controller().Submit(s.ctx)
	var ve *model.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("XZ", ve.Word)
	s.Len(alice.Controller().Pending(), 2)

	s.Never(func() bool {
		return bob.Controller().State().Board.HasTiles()
	}, 200*time.Millisecond, 20*time.Millisecond)
	s.Equal(model.SeatOne, bob.Controller().State().CurrentPlayerID)
}

// Test: the dictionary survives in storage for the next start
func (s *IntegrationSuite) TestDictionaryLoadedFromStorage() {
	s.Require().NoError(s.app.Storage.SaveDictionaryWords(s.ctx, []string{"za", "qi"}))

	other := newWithDependencies(s.app.Storage, s.app.Clock, s.app.Random, s.app.TurnClockService.Config(), s.app.Logger)
	s.Require().NoError(other.loadDictionary(s.ctx, ""))
	s.True(other.DictionaryService.IsValidWord("QI"))
	s.False(other.DictionaryService.IsValidWord("AX"))
}

func (s *IntegrationSuite) TestMissingDictionaryIsNotFatal() {
	other := NewTestApp()
	s.Require().NoError(other.loadDictionary(s.ctx, ""))
	s.False(other.DictionaryService.IsLoaded())
}

// Factory configuration tests

func TestNewRejectsBadStorageConfig(t *testing.T) {
	_, err := New(Config{StorageType: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
	_, err = New(Config{StorageType: StorageTypeRedis})
	if err == nil {
		t.Fatal("expected error without redis config")
	}
	_, err = New(Config{StorageType: StorageTypeSQLite})
	if err == nil {
		t.Fatal("expected error without sqlite path")
	}
}

func TestNewWithSQLite(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: t.TempDir() + "/moves.db"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()
	if app.Relay == nil || app.Matchmaker == nil {
		t.Fatal("realtime services not wired")
	}
}
