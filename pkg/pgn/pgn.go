// Package pgn appends finished games to PGN and EPD text streams (spec.md
// §6.3). Explicitly called out as out of core scope ("trivial text
// emitters") but still implemented since it is the only persistence path
// the protocol names.
package pgn

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/herohde/banzuke/pkg/match"
	"golang.org/x/text/width"
)

// GameMeta carries the PGN tag-pair values that MatchResult does not
// itself know (tournament identity, player names, time control string).
type GameMeta struct {
	Event, Site, Round string
	White, Black       string
	TimeControl        string
	Date               time.Time
}

const wrapColumn = 80

// WriteGame appends one game in PGN form to w.
func WriteGame(w io.Writer, meta GameMeta, result *match.MatchResult) error {
	_, err := io.WriteString(w, Format(meta, result))
	return err
}

// Format renders one game as a PGN text block, tags followed by movetext
// wrapped at 80 display columns with per-move comments.
func Format(meta GameMeta, result *match.MatchResult) string {
	var b strings.Builder

	tag := func(name, value string) {
		fmt.Fprintf(&b, "[%s \"%s\"]\n", name, value)
	}
	tag("Event", orDefault(meta.Event, "?"))
	tag("Site", orDefault(meta.Site, "?"))
	tag("Date", meta.Date.Format("2006.01.02"))
	tag("Round", orDefault(meta.Round, "1"))
	tag("White", orDefault(meta.White, "?"))
	tag("Black", orDefault(meta.Black, "?"))
	tag("Result", resultTag(result.WhiteOutcome))
	tag("PlyCount", fmt.Sprintf("%d", len(result.Moves)))
	tag("TimeControl", orDefault(meta.TimeControl, "-"))
	tag("Termination", result.Termination.String())
	b.WriteByte('\n')

	b.WriteString(wrapMovetext(movetext(result)))
	b.WriteByte('\n')
	b.WriteByte('\n')
	return b.String()
}

func resultTag(o match.Outcome) string {
	switch o {
	case match.WhiteWin:
		return "1-0"
	case match.BlackWin:
		return "0-1"
	case match.Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// movetext renders "N. move {comment} move {comment} ..." tokens for the
// full move list, comments per spec.md §6.3:
// "{score/depth elapsed[, tl=…, n=…, sd=…, nps=…]}".
func movetext(result *match.MatchResult) []string {
	var tokens []string
	moveNum := 1
	for i, m := range result.Moves {
		if i%2 == 0 {
			tokens = append(tokens, fmt.Sprintf("%d.", moveNum))
			moveNum++
		}
		tokens = append(tokens, m.USIText)
		tokens = append(tokens, moveComment(m))
	}
	tokens = append(tokens, resultTag(result.WhiteOutcome))
	return tokens
}

func moveComment(m match.MoveRecord) string {
	var b strings.Builder
	b.WriteByte('{')
	if m.ScoreKind != "" {
		fmt.Fprintf(&b, "%s%+d", m.ScoreKind, m.Score)
	} else {
		b.WriteString("?")
	}
	fmt.Fprintf(&b, "/%d %.1fs", m.Depth, float64(m.ElapsedMillis)/1000)
	if m.TimeLeftAfterMillis != 0 {
		fmt.Fprintf(&b, ", tl=%.1fs", float64(m.TimeLeftAfterMillis)/1000)
	}
	if m.Nodes != 0 {
		fmt.Fprintf(&b, ", n=%d", m.Nodes)
	}
	if m.SelDepth != 0 {
		fmt.Fprintf(&b, ", sd=%d", m.SelDepth)
	}
	if m.NPS != 0 {
		fmt.Fprintf(&b, ", nps=%d", m.NPS)
	}
	b.WriteByte('}')
	return b.String()
}

// wrapMovetext joins tokens with spaces, breaking lines at wrapColumn
// display-width columns without splitting a token (spec.md §6.3). Display
// width, not byte or rune count, is measured via golang.org/x/text/width
// so non-ASCII player/engine names embedded in comments wrap correctly.
func wrapMovetext(tokens []string) string {
	var b strings.Builder
	lineWidth := 0
	for i, tok := range tokens {
		tokWidth := displayWidth(tok)
		sep := 1
		if i == 0 {
			sep = 0
		}
		if lineWidth > 0 && lineWidth+sep+tokWidth > wrapColumn {
			b.WriteByte('\n')
			lineWidth = 0
			sep = 0
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		lineWidth += sep + tokWidth
	}
	return b.String()
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
