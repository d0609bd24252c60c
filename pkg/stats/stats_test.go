package stats_test

import (
	"sync"
	"testing"

	"github.com/herohde/banzuke/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreboardMergeCommutative(t *testing.T) {
	a := stats.NewScoreboard()
	b := stats.NewScoreboard()

	games := []stats.GameResult{stats.Win, stats.Loss, stats.DrawResult, stats.Win, stats.Win}
	for _, g := range games {
		a.MergeGame("engineA", "engineB", g)
	}
	for i := len(games) - 1; i >= 0; i-- {
		b.MergeGame("engineA", "engineB", games[i])
	}

	assert.Equal(t, a.Snapshot("engineA", "engineB"), b.Snapshot("engineA", "engineB"))
}

func TestScoreboardConcurrentMerge(t *testing.T) {
	sb := stats.NewScoreboard()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := stats.Win
			if i%3 == 0 {
				r = stats.DrawResult
			} else if i%5 == 0 {
				r = stats.Loss
			}
			sb.MergeGame("engineA", "engineB", r)
		}(i)
	}
	wg.Wait()

	c := sb.Snapshot("engineA", "engineB")
	assert.Equal(t, 100, c.Games())
}

// Invariant 5: pentanomial total equals floor(games/2).
func TestPentanomialTotalMatchesFloorHalf(t *testing.T) {
	sb := stats.NewScoreboard()
	pairs := [][2]stats.GameResult{
		{stats.Win, stats.Loss},
		{stats.DrawResult, stats.DrawResult},
		{stats.Win, stats.DrawResult},
		{stats.Loss, stats.Loss},
	}
	for _, p := range pairs {
		sb.MergeGame("engineA", "engineB", p[0])
		sb.MergeGame("engineA", "engineB", p[1])
		sb.MergePair("engineA", "engineB", p[0], p[1])
	}

	c := sb.Snapshot("engineA", "engineB")
	require.Equal(t, 8, c.Games())
	assert.Equal(t, 4, c.Pairs())
	assert.Equal(t, c.Games()/2, c.Pairs())
}

func TestPentanomialBucketing(t *testing.T) {
	sb := stats.NewScoreboard()
	sb.MergePair("e", "o", stats.Loss, stats.Loss)
	sb.MergePair("e", "o", stats.Loss, stats.DrawResult)
	sb.MergePair("e", "o", stats.Win, stats.Loss)
	sb.MergePair("e", "o", stats.DrawResult, stats.DrawResult)
	sb.MergePair("e", "o", stats.Win, stats.DrawResult)
	sb.MergePair("e", "o", stats.Win, stats.Win)

	c := sb.Snapshot("e", "o")
	assert.Equal(t, 1, c.LL)
	assert.Equal(t, 1, c.LD)
	assert.Equal(t, 2, c.WLDD)
	assert.Equal(t, 1, c.WD)
	assert.Equal(t, 1, c.WW)
}

func TestTrinomialEloBasic(t *testing.T) {
	est := stats.TrinomialElo(55, 40, 5)
	assert.Greater(t, est.Diff, 0.0)
	assert.Greater(t, est.CIHigh, est.Diff)
	assert.Less(t, est.CILow, est.Diff)
}

func TestTrinomialEloAllDraws(t *testing.T) {
	est := stats.TrinomialElo(0, 100, 0)
	assert.InDelta(t, 0, est.Diff, 1e-9)
}

// S8: elo0=0, elo1=5, alpha=0.05, beta=0.05, trinomial, (W,D,L)=(520,460,20)
// -> LLR exceeds ln(0.95/0.05)=2.944 and reports accept H1.
func TestSPRTAcceptH1(t *testing.T) {
	s := stats.NewSPRT(0, 5, 0.05, 0.05, stats.TrinomialModel)
	a, b := s.Bounds()
	assert.InDelta(t, -2.944, a, 1e-3)
	assert.InDelta(t, 2.944, b, 1e-3)

	llr, decision := s.Evaluate(stats.Counts{Wins: 520, Draws: 460, Losses: 20})
	assert.Greater(t, llr, b)
	assert.Equal(t, stats.AcceptH1, decision)
}

func TestSPRTContinuesWithInsufficientData(t *testing.T) {
	s := stats.NewSPRT(0, 5, 0.05, 0.05, stats.TrinomialModel)
	_, decision := s.Evaluate(stats.Counts{Wins: 5, Draws: 4, Losses: 4})
	assert.Equal(t, stats.Continue, decision)
}

// Invariant 6: SPRT is monotone once it crosses a bound with growing,
// consistent evidence.
func TestSPRTMonotoneOnceDecided(t *testing.T) {
	s := stats.NewSPRT(0, 5, 0.05, 0.05, stats.TrinomialModel)
	_, d1 := s.Evaluate(stats.Counts{Wins: 520, Draws: 460, Losses: 20})
	_, d2 := s.Evaluate(stats.Counts{Wins: 1040, Draws: 920, Losses: 40})
	require.Equal(t, stats.AcceptH1, d1)
	assert.Equal(t, stats.AcceptH1, d2)
}

func TestNEloZeroSigmaIsZero(t *testing.T) {
	assert.Equal(t, 0.0, stats.TrinomialElo(0, 0, 0).NElo)
}
