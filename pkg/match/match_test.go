package match_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/herohde/banzuke/pkg/usi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeEngine(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake-engine harness assumes a POSIX shell")
	}
	script := `#!/bin/sh
read -r _
echo "usiok"
while read -r line; do
  case "$line" in
    isready) echo "readyok" ;;
    go*) echo "info depth 1 score cp 0"; echo "bestmove 1a1b" ;;
    quit) exit 0 ;;
  esac
done
`
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

type fakeRules struct {
	terminalAfter int
	illegalMove   string
}

func (f *fakeRules) IsLegal(startFEN string, applied []string, move string) bool {
	return move != f.illegalMove
}

func (f *fakeRules) Apply(startFEN string, applied []string, move string) (string, error) {
	return startFEN, nil
}

func (f *fakeRules) Terminal(startFEN string, applied []string) (match.Outcome, bool) {
	if f.terminalAfter > 0 && len(applied) >= f.terminalAfter {
		return match.WhiteWin, true
	}
	return match.None, false
}

func newSessions(t *testing.T) (*usi.Session, *usi.Session) {
	path := writeFakeEngine(t)
	white := usi.NewSession(usi.EngineConfig{Name: "white", Path: path})
	black := usi.NewSession(usi.EngineConfig{Name: "black", Path: path})
	return white, black
}

func TestMatchEngineNormalTermination(t *testing.T) {
	white, black := newSessions(t)
	defer white.Kill()
	defer black.Kill()

	rules := &fakeRules{terminalAfter: 1}
	me := match.NewMatchEngine(rules, match.AdjudicationConfig{}, 2*time.Second, 2*time.Second)

	whiteTC := timecontrol.New(timecontrol.Limits{})
	blackTC := timecontrol.New(timecontrol.Limits{})

	result := me.Play(context.Background(), match.Opening{StartFEN: "startpos"}, white, black, whiteTC, blackTC)

	require.NotNil(t, result)
	assert.Equal(t, match.Normal, result.Termination)
	assert.Equal(t, match.WhiteWin, result.WhiteOutcome)
	require.Len(t, result.Moves, 1)
	assert.Equal(t, "1a1b", result.Moves[0].USIText)
	assert.True(t, result.Moves[0].Legal)
}

func TestMatchEngineIllegalMove(t *testing.T) {
	white, black := newSessions(t)
	defer white.Kill()
	defer black.Kill()

	rules := &fakeRules{illegalMove: "1a1b"}
	me := match.NewMatchEngine(rules, match.AdjudicationConfig{}, 2*time.Second, 2*time.Second)

	whiteTC := timecontrol.New(timecontrol.Limits{})
	blackTC := timecontrol.New(timecontrol.Limits{})

	result := me.Play(context.Background(), match.Opening{StartFEN: "startpos"}, white, black, whiteTC, blackTC)

	require.NotNil(t, result)
	assert.Equal(t, match.IllegalMove, result.Termination)
	assert.Equal(t, match.BlackWin, result.WhiteOutcome)
	require.Len(t, result.Moves, 1)
	assert.False(t, result.Moves[0].Legal)
}

func TestMatchEngineMaxMovesAdjudication(t *testing.T) {
	white, black := newSessions(t)
	defer white.Kill()
	defer black.Kill()

	rules := &fakeRules{}
	adj := match.AdjudicationConfig{MaxMoves: match.MaxMovesConfig{Enabled: true, MoveCount: 2}}
	me := match.NewMatchEngine(rules, adj, 2*time.Second, 2*time.Second)

	whiteTC := timecontrol.New(timecontrol.Limits{})
	blackTC := timecontrol.New(timecontrol.Limits{})

	result := me.Play(context.Background(), match.Opening{StartFEN: "startpos"}, white, black, whiteTC, blackTC)

	require.NotNil(t, result)
	assert.Equal(t, match.Adjudication, result.Termination)
	assert.Equal(t, match.Draw, result.WhiteOutcome)
	assert.Len(t, result.Moves, 2)
}
