// Package book loads an opening book and supplies Opening values to the
// Scheduler (SPEC_FULL.md §4.12). Books are line-oriented USI move-sequence
// files, one opening per line: optionally "sfen <fen> moves m1 m2 ..." or
// bare "m1 m2 ..." (implying the default starting position).
package book

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/herohde/banzuke/pkg/match"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Book is an ordered, cyclable list of openings.
type Book struct {
	openings []match.Opening
}

// Len returns the number of openings.
func (b *Book) Len() int { return len(b.openings) }

// At returns the opening at index i, cycling if i >= Len().
func (b *Book) At(i int) match.Opening {
	if len(b.openings) == 0 {
		return match.Opening{StartFEN: "startpos"}
	}
	return b.openings[i%len(b.openings)]
}

// Openings returns the full underlying slice.
func (b *Book) Openings() []match.Opening { return b.openings }

// Shuffle randomly permutes the book's openings with a seeded RNG, grounded
// on the teacher's own rand.New(rand.NewSource(seed)) idiom (used for
// Zobrist keys in herohde-morlock/pkg/board/zobrist.go and for UCI option
// randomization in herohde-morlock/pkg/engine/uci/uci.go), so a fixed
// tournament seed (spec.md §6.2 "seed") reproduces the same opening order
// across runs instead of always cycling the book file's own line order.
func (b *Book) Shuffle(seed int64) {
	if len(b.openings) < 2 {
		return
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(b.openings), func(i, j int) {
		b.openings[i], b.openings[j] = b.openings[j], b.openings[i]
	})
}

// Load reads an opening book file, decoding legacy Shift-JIS shogi book
// distributions transparently (SPEC_FULL.md §4.12; grounded on
// nomaddo-cute/pkg/cute/kif.go's decodeKIF).
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeBookText(data)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	return parseBookText(text)
}

func decodeBookText(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode opening book (not UTF-8 or Shift-JIS)")
	}
	return string(decoded), nil
}

func parseBookText(text string) (*Book, error) {
	var openings []match.Opening
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		opening, err := parseBookLine(line)
		if err != nil {
			return nil, err
		}
		openings = append(openings, opening)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Book{openings: openings}, nil
}

func parseBookLine(line string) (match.Opening, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return match.Opening{}, errors.New("book: empty line")
	}

	if fields[0] == "sfen" || fields[0] == "fen" {
		movesIdx := -1
		for i, f := range fields {
			if f == "moves" {
				movesIdx = i
				break
			}
		}
		if movesIdx < 0 {
			return match.Opening{StartFEN: strings.Join(fields[1:], " ")}, nil
		}
		return match.Opening{
			StartFEN: strings.Join(fields[1:movesIdx], " "),
			Premoves: fields[movesIdx+1:],
		}, nil
	}

	return match.Opening{StartFEN: "startpos", Premoves: fields}, nil
}
