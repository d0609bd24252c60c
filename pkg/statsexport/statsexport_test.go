package statsexport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/herohde/banzuke/pkg/game"
	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/statsexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *match.MatchResult {
	return &match.MatchResult{
		WhiteOutcome: match.WhiteWin,
		Termination:  match.Adjudication,
		Moves: []match.MoveRecord{
			{Side: game.White, USIText: "7g7f", ScoreKind: "cp", Score: 34},
			{Side: game.Black, USIText: "3c3d", ScoreKind: "cp", Score: -900},
		},
	}
}

func TestToGameRecordFlattensMoves(t *testing.T) {
	rec := statsexport.ToGameRecord("g1", "EngineA", "EngineB", sampleResult())

	assert.Equal(t, "g1", rec.GameID)
	assert.Equal(t, "EngineA", rec.WhiteName)
	assert.Equal(t, "EngineB", rec.BlackName)
	assert.Equal(t, "1-0", rec.Result)
	assert.Equal(t, int32(2), rec.PlyCount)
	require.Len(t, rec.MoveEvals, 2)
	assert.Equal(t, int32(1), rec.MoveEvals[0].Ply)
	assert.Equal(t, int32(34), rec.MoveEvals[0].ScoreValue)
	assert.Equal(t, int32(-900), rec.MoveEvals[1].ScoreValue)
}

func TestWriteParquetRoundTripsEmptyStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.parquet")
	records := make(chan statsexport.GameRecord)
	close(records)

	require.NoError(t, statsexport.WriteParquet(path, records, 1))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteParquetWritesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.parquet")
	records := make(chan statsexport.GameRecord, 1)
	records <- statsexport.ToGameRecord("g1", "EngineA", "EngineB", sampleResult())
	close(records)

	require.NoError(t, statsexport.WriteParquet(path, records, 1))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
