package usi_test

import (
	"context"
	"testing"
	"time"

	"github.com/herohde/banzuke/pkg/game"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/herohde/banzuke/pkg/usi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S4: go token order, timed+inc, white to move.
func TestBuildGoLineTimedIncrement(t *testing.T) {
	our := timecontrol.New(timecontrol.Limits{Time: 60 * time.Second, Increment: time.Second})
	their := timecontrol.New(timecontrol.Limits{Time: 60 * time.Second, Increment: time.Second})

	line := usi.BuildGoLine(usi.ResourceLimit{}, our, their, game.White)
	assert.Equal(t, "go wtime 60000 btime 60000 winc 1000 binc 1000", line)
}

// S5: go token order, fixed-time.
func TestBuildGoLineFixedTime(t *testing.T) {
	our := timecontrol.New(timecontrol.Limits{FixedTime: 500 * time.Millisecond})
	their := timecontrol.New(timecontrol.Limits{FixedTime: 500 * time.Millisecond})

	line := usi.BuildGoLine(usi.ResourceLimit{}, our, their, game.White)
	assert.Equal(t, "go movetime 500", line)
}

func TestBuildGoLineBlackToMove(t *testing.T) {
	our := timecontrol.New(timecontrol.Limits{Time: 30 * time.Second})  // black
	their := timecontrol.New(timecontrol.Limits{Time: 45 * time.Second}) // white
	line := usi.BuildGoLine(usi.ResourceLimit{}, our, their, game.Black)
	assert.Equal(t, "go wtime 45000 btime 30000", line)
}

func TestBuildGoLineNodesAndDepth(t *testing.T) {
	our := timecontrol.New(timecontrol.Limits{})
	their := timecontrol.New(timecontrol.Limits{})
	line := usi.BuildGoLine(usi.ResourceLimit{Nodes: 100000, Depth: 12}, our, their, game.White)
	assert.Equal(t, "go nodes 100000 depth 12", line)
}

// S6: option ordering before a game.
func TestOrderedOptionsThreadsFirst(t *testing.T) {
	cfg := usi.EngineConfig{
		Options: []usi.OptionOverride{
			{Name: "Hash", Value: "1600"},
			{Name: "MultiPV", Value: "3"},
			{Name: "Threads", Value: "4"},
		},
	}
	got := cfg.OrderedOptions()
	require.Len(t, got, 3)
	assert.Equal(t, "Threads", got[0].Name)
	assert.Equal(t, "4", got[0].Value)
	assert.Equal(t, "Hash", got[1].Name)
	assert.Equal(t, "MultiPV", got[2].Name)
}

func TestOrderedOptionsNoThreads(t *testing.T) {
	cfg := usi.EngineConfig{
		Options: []usi.OptionOverride{
			{Name: "Hash", Value: "256"},
			{Name: "MultiPV", Value: "1"},
		},
	}
	got := cfg.OrderedOptions()
	require.Len(t, got, 2)
	assert.Equal(t, "Hash", got[0].Name)
	assert.Equal(t, "MultiPV", got[1].Name)
}

func TestSessionHandshake(t *testing.T) {
	script := `#!/bin/sh
read -r _
echo "id name FakeEngine"
echo "id author Tester"
echo "option name Hash type spin default 16 min 1 max 1024"
echo "usiok"
while read -r line; do
  case "$line" in
    isready) echo "readyok" ;;
    usinewgame) : ;;
    quit) exit 0 ;;
  esac
done
`
	path := writeScript(t, script)

	cfg := usi.EngineConfig{Name: "fake", Path: path}
	s := usi.NewSession(cfg)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, 2*time.Second))
	assert.True(t, s.Initialized())
	assert.Equal(t, "FakeEngine", s.Name())

	opt, ok := s.Registry().Get("Hash")
	require.True(t, ok)
	assert.Equal(t, usi.Spin, opt.Type)

	require.NoError(t, s.IsReady(ctx, 2*time.Second))

	s.Quit(ctx)
	s.Kill()
}
