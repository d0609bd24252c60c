package pgn

import (
	"fmt"
	"io"

	"github.com/herohde/banzuke/pkg/match"
)

// WriteEPD appends one line containing the final position's EPD to w
// (spec.md §6.3). The "EPD" here is whatever FEN-like string the rules
// oracle reported as MatchResult.FinalFEN; this package does not interpret
// board state.
func WriteEPD(w io.Writer, result *match.MatchResult) error {
	if result.FinalFEN == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s c9 \"%s\";\n", result.FinalFEN, result.Termination)
	return err
}
