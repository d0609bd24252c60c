// Package statsexport flattens finished games into columnar Parquet
// records for offline analytics (SPEC_FULL.md §4.14, §3 GameRecord).
// Write-only and best-effort: a failure here is logged, not fatal, since
// it is not in spec.md §7's fatal-error set.
//
// Grounded directly on nomaddo-cute/pkg/cute/db.go's WriteParquet: a
// channel of records feeds writer.NewParquetWriter, SNAPPY-compressed.
package statsexport

import (
	"fmt"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// MoveEval is one ply's evaluation, flattened for columnar storage.
type MoveEval struct {
	Ply        int32  `parquet:"name=ply, type=INT32"`
	ScoreType  string `parquet:"name=score_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	ScoreValue int32  `parquet:"name=score_value, type=INT32"`
}

// GameRecord is the flattened, columnar-friendly projection of one
// finished match.MatchResult (SPEC_FULL.md §3).
type GameRecord struct {
	GameID      string     `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	WhiteName   string     `parquet:"name=white_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	BlackName   string     `parquet:"name=black_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Result      string     `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
	Termination string     `parquet:"name=termination, type=BYTE_ARRAY, convertedtype=UTF8"`
	PlyCount    int32      `parquet:"name=ply_count, type=INT32"`
	MoveEvals   []MoveEval `parquet:"name=move_evals, type=LIST"`
}

// ToGameRecord flattens a finished MatchResult into a GameRecord.
func ToGameRecord(gameID, white, black string, result *match.MatchResult) GameRecord {
	evals := make([]MoveEval, len(result.Moves))
	for i, m := range result.Moves {
		evals[i] = MoveEval{Ply: int32(i + 1), ScoreType: m.ScoreKind, ScoreValue: int32(m.Score)}
	}
	return GameRecord{
		GameID:      gameID,
		WhiteName:   white,
		BlackName:   black,
		Result:      result.WhiteOutcome.String(),
		Termination: result.Termination.String(),
		PlyCount:    int32(len(result.Moves)),
		MoveEvals:   evals,
	}
}

// WriteParquet drains records into a SNAPPY-compressed Parquet file at
// path. parallel controls the writer's internal row-group goroutine count.
func WriteParquet(path string, records <-chan GameRecord, parallel int64) error {
	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("statsexport: %w", err)
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRecord), parallel)
	if err != nil {
		return fmt.Errorf("statsexport: %w", err)
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return fmt.Errorf("statsexport: write: %w", err)
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return fmt.Errorf("statsexport: %w", err)
	}
	return fileWriter.Close()
}
