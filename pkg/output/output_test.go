package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/output"
	"github.com/herohde/banzuke/pkg/stats"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestReportGameFastShogiFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(&buf, output.FastShogi, zerolog.Nop())

	sink.Report(output.Event{
		Kind:      output.GameFinished,
		GameIndex: 3,
		White:     "A", Black: "B",
		Result: &match.MatchResult{WhiteOutcome: match.WhiteWin, Termination: match.Normal, Moves: []match.MoveRecord{{}, {}}},
	})

	assert.Contains(t, buf.String(), "game 3:")
	assert.Contains(t, buf.String(), "result=1-0")
}

func TestReportGameCuteChessFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(&buf, output.CuteChess, zerolog.Nop())

	sink.Report(output.Event{
		Kind:      output.GameFinished,
		GameIndex: 1,
		White:     "A", Black: "B",
		Result: &match.MatchResult{WhiteOutcome: match.Draw, Termination: match.Adjudication},
	})

	assert.Contains(t, buf.String(), "Finished game 1")
	assert.Contains(t, buf.String(), "1/2-1/2")
}

func TestReportSPRTUpdate(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(&buf, output.FastShogi, zerolog.Nop())

	est := stats.TrinomialElo(55, 40, 5)
	sink.Report(output.Event{Kind: output.SPRTUpdate, Elo: &est, LLR: 1.2, Decision: stats.Continue})

	assert.Contains(t, buf.String(), "elo=")
	assert.Contains(t, buf.String(), "decision=continue")
}

func TestReportConcurrentSafe(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(&buf, output.FastShogi, zerolog.Nop())
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			sink.Report(output.Event{Kind: output.ConfigLoaded, Message: "ok"})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	assert.Equal(t, 20, len(strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")))
}
