package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/crosswordduel/internal/factory"
	"github.com/mcoot/crosswordduel/internal/model"
)

func TestParsePlayCommand(t *testing.T) {
	tests := []struct {
		line string
		want playCommand
	}{
		{"place 7 7 c", playCommand{Kind: playPlace, Placement: model.NewPlacement(7, 7, 'C')}},
		{"  PLACE 8 7 s blank ", playCommand{Kind: playPlace, Placement: model.NewBlankPlacement(8, 7, 'S')}},
		{"exchange 0 3 6", playCommand{Kind: playExchange, Indices: []int{0, 3, 6}}},
		{"submit", playCommand{Kind: playSubmit}},
		{"pass", playCommand{Kind: playPass}},
		{"undo", playCommand{Kind: playUndo}},
		{"clear", playCommand{Kind: playClear}},
		{"board", playCommand{Kind: playBoard}},
		{"quit", playCommand{Kind: playQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parsePlayCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePlayCommandErrors(t *testing.T) {
	tests := []struct {
		line    string
		wantErr string
	}{
		{"", "empty command"},
		{"shuffle", "unknown command"},
		{"place 7 7", "usage: place"},
		{"place 7 7 c wild", "usage: place"},
		{"place x 7 c", "invalid x"},
		{"place 7 y c", "invalid y"},
		{"place 7 7 cat", "invalid letter"},
		{"exchange", "usage: exchange"},
		{"exchange 1 two", "invalid rack index"},
		{"pass now", "takes no arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := parsePlayCommand(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func newTestPlayer(t *testing.T) (*player, *bytes.Buffer) {
	t.Helper()
	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestDictionary())

	controller := app.NewGameController()
	require.NoError(t, controller.Start("g1", []string{"alice", "bob"}))

	var out bytes.Buffer
	return &player{controller: controller, out: &out}, &out
}

func TestPlayerStagesAndClears(t *testing.T) {
	p, _ := newTestPlayer(t)
	ctx := context.Background()
	var first rune
	for _, tile := range p.controller.State().Player(model.SeatOne).Rack.Tiles {
		if !tile.IsBlank() {
			first = tile.Letter
			break
		}
	}
	require.NotZero(t, first)

	cmd, err := parsePlayCommand("place 7 7 " + string(first))
	require.NoError(t, err)
	require.NoError(t, p.execute(ctx, cmd))
	assert.Len(t, p.controller.Pending(), 1)

	require.NoError(t, p.execute(ctx, playCommand{Kind: playUndo}))
	assert.Empty(t, p.controller.Pending())
	assert.ErrorIs(t, p.execute(ctx, playCommand{Kind: playUndo}), model.ErrNoPlacements)

	require.NoError(t, p.execute(ctx, cmd))
	require.NoError(t, p.execute(ctx, playCommand{Kind: playClear}))
	assert.Empty(t, p.controller.Pending())
	assert.Equal(t, model.PhaseSelecting, p.controller.Phase())
}

func TestPlayerCommitsTurns(t *testing.T) {
	p, _ := newTestPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.execute(ctx, playCommand{Kind: playPass}))
	assert.Equal(t, model.SeatTwo, p.controller.State().CurrentPlayerID)

	require.NoError(t, p.execute(ctx, playCommand{Kind: playExchange, Indices: []int{0}}))
	assert.Equal(t, model.SeatOne, p.controller.State().CurrentPlayerID)

	err := p.execute(ctx, playCommand{Kind: playExchange, Indices: []int{7}})
	assert.ErrorIs(t, err, model.ErrInvalidRackIndex)
	assert.ErrorIs(t, p.execute(ctx, playCommand{Kind: playSubmit}), model.ErrNoPlacements)
}

func TestPlayerLoopReportsErrorsAndQuits(t *testing.T) {
	p, out := newTestPlayer(t)
	in := strings.NewReader("status\nshuffle\n\nquit\npass\n")

	p.loop(context.Background(), in)

	text := out.String()
	assert.Contains(t, text, "seat 1 alice")
	assert.Contains(t, text, `error: unknown command "shuffle"`)
	// Nothing after quit is executed
	assert.Equal(t, model.SeatOne, p.controller.State().CurrentPlayerID)
}
