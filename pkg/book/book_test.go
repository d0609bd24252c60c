package book_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/herohde/banzuke/pkg/book"
	"github.com/herohde/banzuke/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBook(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openings.book")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBareMoveLines(t *testing.T) {
	path := writeBook(t, "7g7f 3c3d\n2g2f 8c8d\n")
	b, err := book.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	assert.Equal(t, "startpos", b.At(0).StartFEN)
	assert.Equal(t, []string{"7g7f", "3c3d"}, b.At(0).Premoves)
}

func TestLoadSfenLines(t *testing.T) {
	path := writeBook(t, "sfen lnsgkgsnl/9/ppppppppp/9/9/9/PPPPPPPPP/9/LNSGKGSNL b - 1 moves 7g7f 3c3d\n")
	b, err := book.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
	assert.Contains(t, b.At(0).StartFEN, "LNSGKGSNL")
	assert.Equal(t, []string{"7g7f", "3c3d"}, b.At(0).Premoves)
}

func TestLoadSkipsBlankAndCommentLines(t *testing.T) {
	path := writeBook(t, "# comment\n\n7g7f\n")
	b, err := book.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
}

func TestBookAtCycles(t *testing.T) {
	path := writeBook(t, "7g7f\n2g2f\n")
	b, err := book.Load(path)
	require.NoError(t, err)
	assert.Equal(t, b.At(0), b.At(2))
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	path := writeBook(t, "7g7f\n2g2f\n8c8d\n3c3d\n1g1f\n")
	a, err := book.Load(path)
	require.NoError(t, err)
	b, err := book.Load(path)
	require.NoError(t, err)

	a.Shuffle(42)
	b.Shuffle(42)
	assert.Equal(t, a.Openings(), b.Openings())
}

func TestShuffleIsAPermutation(t *testing.T) {
	path := writeBook(t, "7g7f\n2g2f\n8c8d\n3c3d\n1g1f\n")
	b, err := book.Load(path)
	require.NoError(t, err)
	before := append([]match.Opening(nil), b.Openings()...)

	b.Shuffle(7)

	require.Len(t, b.Openings(), len(before))
	assert.ElementsMatch(t, before, b.Openings())
}

func TestShuffleEmptyBookIsNoop(t *testing.T) {
	b := &book.Book{}
	assert.NotPanics(t, func() { b.Shuffle(1) })
}
