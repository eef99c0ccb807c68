package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/testutil"
)

type RelaySuite struct {
	suite.Suite
	relay   *Relay
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan error
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.relay = New(testutil.NopLogger())
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.stopped = make(chan error, 1)
	go func() {
		s.stopped <- s.relay.Run(s.ctx)
	}()
}

func (s *RelaySuite) TearDownTest() {
	s.cancel()
	<-s.stopped
}

func (s *RelaySuite) join(roomID, name string, preferred model.SeatID) *Client {
	c := s.relay.Connect()
	s.relay.Receive(c, model.JoinMessage(roomID, name, preferred))
	return c
}

func (s *RelaySuite) next(c *Client) model.Message {
	select {
	case msg, ok := <-c.Send():
		s.Require().True(ok, "client queue closed")
		return msg
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for message")
		return model.Message{}
	}
}

// stats round-trips through Run, so everything submitted before it has
// been processed when it returns
func (s *RelaySuite) stats() model.RelayStats {
	stats, err := s.relay.Stats(s.ctx)
	s.Require().NoError(err)
	return stats
}

func (s *RelaySuite) assertQuiet(clients ...*Client) {
	s.stats()
	for _, c := range clients {
		s.Len(c.Send(), 0)
	}
}

func (s *RelaySuite) assertClosed(c *Client) {
	s.stats()
	for range c.Send() {
	}
}

// Join tests

func (s *RelaySuite) TestJoinHostMigrationAndRoomLifecycle() {
	a := s.join("r1", "alice", 0)
	s.Equal(model.WelcomeMessage(1, true), s.next(a))
	s.Len(s.next(a).Players, 1)

	b := s.join("r1", "bob", 0)
	s.Equal(model.WelcomeMessage(2, false), s.next(b))
	s.Equal(model.RosterMessage([]model.RosterEntry{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}}), s.next(b))

	s.Len(s.next(a).Players, 2)
	s.Equal(model.RequestStateMessage(2), s.next(a))
	s.assertQuiet(a, b)

	s.relay.Disconnect(a)
	s.Equal(model.HostPromotedMessage(), s.next(b))
	roster := s.next(b)
	s.Equal(model.MessageRoster, roster.Type)
	s.Equal([]model.RosterEntry{{ID: 2, Name: "bob"}}, roster.Players)
	s.assertClosed(a)

	stats := s.stats()
	s.Require().Len(stats.Rooms, 1)
	s.Equal(model.SeatID(2), stats.Rooms[0].HostID)

	s.relay.Disconnect(b)
	s.assertClosed(b)
	s.Empty(s.stats().Rooms)

	c := s.join("r1", "carol", 0)
	s.Equal(model.WelcomeMessage(1, true), s.next(c))
	s.Len(s.next(c).Players, 1)
	s.assertQuiet(c)
}

func (s *RelaySuite) TestPreferredSeatHonouredWhenFree() {
	a := s.join("r1", "alice", 2)
	s.Equal(model.WelcomeMessage(2, true), s.next(a))

	b := s.join("r1", "bob", 2)
	s.Equal(model.WelcomeMessage(1, false), s.next(b))

	c := s.join("r1", "carol", 1)
	s.Equal(model.WelcomeMessage(3, false), s.next(c))
}

func (s *RelaySuite) TestPreferredSpectatorSeatIgnored() {
	a := s.join("r1", "alice", 5)
	s.Equal(model.WelcomeMessage(1, true), s.next(a))
}

func (s *RelaySuite) TestLowestFreeSeatReused() {
	a := s.join("r1", "alice", 0)
	b := s.join("r1", "bob", 0)
	s.relay.Disconnect(a)
	s.assertClosed(a)

	c := s.join("r1", "carol", 0)
	s.Equal(model.WelcomeMessage(1, false), s.next(c))

	stats := s.stats()
	s.Require().Len(stats.Rooms, 1)
	s.Equal(model.SeatID(2), stats.Rooms[0].HostID)
	s.Equal([]model.RosterEntry{{ID: 2, Name: "bob"}, {ID: 1, Name: "carol"}}, stats.Rooms[0].Members)
	_ = b
}

func (s *RelaySuite) TestJoinWithoutRoomOrNameDropped() {
	noName := s.join("r1", "", 0)
	noRoom := s.join("", "alice", 0)

	s.assertQuiet(noName, noRoom)
	stats := s.stats()
	s.Empty(stats.Rooms)
	s.Equal(2, stats.Connections)
}

func (s *RelaySuite) TestSecondJoinDropped() {
	a := s.join("r1", "alice", 0)
	s.next(a)
	s.next(a)

	s.relay.Receive(a, model.JoinMessage("r2", "alice", 0))
	s.assertQuiet(a)
	s.Len(s.stats().Rooms, 1)
}

// Routing tests

func (s *RelaySuite) TestActionEchoedToAllMembersWithSender() {
	a := s.join("r1", "alice", 0)
	b := s.join("r1", "bob", 0)
	spectator := s.join("r1", "sam", 0)
	other := s.join("r2", "olive", 0)
	s.stats()
	for _, c := range []*Client{a, b, spectator, other} {
		for len(c.Send()) > 0 {
			<-c.Send()
		}
	}

	action := json.RawMessage(`{"kind":"pass"}`)
	s.relay.Receive(b, model.Message{Type: model.MessageAction, Action: action})

	for _, c := range []*Client{a, b, spectator} {
		msg := s.next(c)
		s.Equal(model.MessageAction, msg.Type)
		s.Equal(model.SeatID(2), msg.SenderID)
		s.JSONEq(string(action), string(msg.Action))
	}
	s.assertQuiet(other)
}

func (s *RelaySuite) TestActionsFromOneSenderKeepOrder() {
	a := s.join("r1", "alice", 0)
	s.next(a)
	s.next(a)

	for i := 0; i < 20; i++ {
		raw, _ := json.Marshal(map[string]int{"n": i})
		s.relay.Receive(a, model.Message{Type: model.MessageAction, Action: raw})
	}
	for i := 0; i < 20; i++ {
		var body map[string]int
		s.Require().NoError(json.Unmarshal(s.next(a).Action, &body))
		s.Equal(i, body["n"])
	}
}

func (s *RelaySuite) TestFullStateDeliveredToTargetOnly() {
	a := s.join("r1", "alice", 0)
	b := s.join("r1", "bob", 0)
	c := s.join("r1", "carol", 0)
	s.stats()
	for _, cl := range []*Client{a, b, c} {
		for len(cl.Send()) > 0 {
			<-cl.Send()
		}
	}

	payload := json.RawMessage(`{"turn":3}`)
	s.relay.Receive(a, model.Message{Type: model.MessageFullState, TargetPlayerID: 3, Payload: payload})

	msg := s.next(c)
	s.Equal(model.MessageFullState, msg.Type)
	s.Zero(msg.TargetPlayerID)
	s.JSONEq(string(payload), string(msg.Payload))
	s.assertQuiet(a, b)
}

func (s *RelaySuite) TestFullStateBroadcastReachesEveryone() {
	a := s.join("r1", "alice", 0)
	b := s.join("r1", "bob", 0)
	s.stats()
	for _, cl := range []*Client{a, b} {
		for len(cl.Send()) > 0 {
			<-cl.Send()
		}
	}

	payload := json.RawMessage(`{"turn":1}`)
	s.relay.Receive(a, model.Message{Type: model.MessageFullStateBroadcast, Payload: payload})

	for _, cl := range []*Client{a, b} {
		msg := s.next(cl)
		s.Equal(model.MessageFullState, msg.Type)
		s.JSONEq(string(payload), string(msg.Payload))
	}
}

func (s *RelaySuite) TestMalformedAndUnknownMessagesDropped() {
	a := s.join("r1", "alice", 0)
	s.next(a)
	s.next(a)

	s.relay.Receive(a, model.Message{Type: "shout"})
	s.relay.Receive(a, model.Message{Type: model.MessageAction})
	s.relay.Receive(a, model.Message{Type: model.MessageFullState, TargetPlayerID: 1})
	s.relay.Receive(a, model.Message{Type: model.MessageFullState, TargetPlayerID: 9, Payload: json.RawMessage(`{}`)})
	s.relay.Receive(a, model.Message{Type: model.MessageFullStateBroadcast})
	s.assertQuiet(a)
}

func (s *RelaySuite) TestMessagesBeforeJoinDropped() {
	a := s.join("r1", "alice", 0)
	s.next(a)
	s.next(a)

	lurker := s.relay.Connect()
	s.relay.Receive(lurker, model.Message{Type: model.MessageAction, Action: json.RawMessage(`{}`)})
	s.assertQuiet(a, lurker)
}

// Lifecycle tests

func (s *RelaySuite) TestDisconnectUnjoinedClient() {
	c := s.relay.Connect()
	s.relay.Disconnect(c)
	s.assertClosed(c)
	s.Zero(s.stats().Connections)
}

func (s *RelaySuite) TestStopClosesClientsAndRejectsCalls() {
	a := s.join("r1", "alice", 0)
	s.stats()

	s.cancel()
	s.ErrorIs(<-s.stopped, context.Canceled)
	s.stopped <- nil

	for range a.Send() {
	}
	_, err := s.relay.Stats(context.Background())
	s.ErrorIs(err, ErrStopped)

	late := s.relay.Connect()
	_, ok := <-late.Send()
	s.False(ok)
}
