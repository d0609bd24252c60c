package usi

import (
	"strconv"
	"strings"

	"github.com/herohde/banzuke/pkg/process"
)

// InfoLine is the decoded content of one "info ..." line (spec.md §4.2).
// Fields not present in the source line are zero.
type InfoLine struct {
	Raw string

	ScoreKind string // "cp" or "mate"
	Score     int
	Bounded   bool // lowerbound or upperbound present

	Depth, SelDepth int
	Time            int
	Nodes, NPS      int
	HashFull        int
	MultiPV         int
}

// LastInfoLine scans lines in reverse for the most recent usable "info"
// line, per spec.md §4.2: it must contain "info" and " score ", and must
// either lack multipv or be multipv 1. Lines without lowerbound/upperbound
// are preferred; a bounded line is returned only if no unbounded candidate
// exists.
func LastInfoLine(lines []process.Line) (InfoLine, bool) {
	var fallback *InfoLine

	for i := len(lines) - 1; i >= 0; i-- {
		text := lines[i].Text
		if !strings.Contains(text, "info") || !strings.Contains(text, " score ") {
			continue
		}

		fields := strings.Fields(text)
		if hasMultiPV(fields) && !isMultiPVOne(fields) {
			continue
		}

		line := parseInfoLine(text, fields)
		if !line.Bounded {
			return line, true
		}
		if fallback == nil {
			fallback = &line
		}
	}

	if fallback != nil {
		return *fallback, true
	}
	return InfoLine{}, false
}

func hasMultiPV(fields []string) bool {
	for _, f := range fields {
		if f == "multipv" {
			return true
		}
	}
	return false
}

func isMultiPVOne(fields []string) bool {
	for i, f := range fields {
		if f == "multipv" && i+1 < len(fields) {
			return fields[i+1] == "1"
		}
	}
	return false
}

func parseInfoLine(raw string, fields []string) InfoLine {
	line := InfoLine{Raw: raw}
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "score":
			if i+2 < len(fields) {
				line.ScoreKind = fields[i+1]
				line.Score, _ = strconv.Atoi(fields[i+2])
			}
		case "lowerbound", "upperbound":
			line.Bounded = true
		case "depth":
			if i+1 < len(fields) {
				line.Depth, _ = strconv.Atoi(fields[i+1])
			}
		case "seldepth":
			if i+1 < len(fields) {
				line.SelDepth, _ = strconv.Atoi(fields[i+1])
			}
		case "time":
			if i+1 < len(fields) {
				line.Time, _ = strconv.Atoi(fields[i+1])
			}
		case "nodes":
			if i+1 < len(fields) {
				line.Nodes, _ = strconv.Atoi(fields[i+1])
			}
		case "nps":
			if i+1 < len(fields) {
				line.NPS, _ = strconv.Atoi(fields[i+1])
			}
		case "hashfull":
			if i+1 < len(fields) {
				line.HashFull, _ = strconv.Atoi(fields[i+1])
			}
		case "multipv":
			if i+1 < len(fields) {
				line.MultiPV, _ = strconv.Atoi(fields[i+1])
			}
		}
	}
	return line
}

// BestMove extracts the move (and ponder move, if present) from a
// "bestmove <m> [ponder <m>]" line.
func BestMove(line string) (move, ponder string, ok bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "bestmove" && i+1 < len(fields) {
			move = fields[i+1]
			ok = true
			for j := i + 2; j < len(fields)-1; j++ {
				if fields[j] == "ponder" {
					ponder = fields[j+1]
				}
			}
			return
		}
	}
	return "", "", false
}
