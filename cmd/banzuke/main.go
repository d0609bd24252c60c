// Command banzuke runs a round-robin or gauntlet tournament between USI
// (or UCI) engine subprocesses, adjudicating, scoring and reporting
// results as it goes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/herohde/banzuke/pkg/book"
	"github.com/herohde/banzuke/pkg/config"
	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/output"
	"github.com/herohde/banzuke/pkg/pgn"
	"github.com/herohde/banzuke/pkg/rules"
	"github.com/herohde/banzuke/pkg/stats"
	"github.com/herohde/banzuke/pkg/statsexport"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/herohde/banzuke/pkg/tourney"
	"github.com/herohde/banzuke/pkg/usi"
	"github.com/rs/zerolog"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

var version = build.NewVersion(0, 1, 0)

var (
	configPath     = flag.String("config", "config.json", "Tournament configuration file")
	startupTimeout = flag.Duration("startup_timeout", 0, "Engine handshake timeout (0 = no timeout)")
	newGameTimeout = flag.Duration("newgame_timeout", 0, "usinewgame readiness timeout (0 = no timeout)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: banzuke [options]

BANZUKE runs a tournament between USI/UCI engine subprocesses.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logw.Infof(ctx, "banzuke %v", version)

	path := *configPath
	if _, err := os.Stat(path); err != nil {
		found, _, ferr := config.FindConfigPath(filepath.Base(path))
		if ferr != nil {
			logw.Exitf(ctx, "config: %v", err)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		logw.Exitf(ctx, "config: %v", err)
	}
	logw.Infof(ctx, "loaded config %v: %v engines, %v rounds, games=%v", path, len(cfg.Engines), cfg.Rounds, cfg.Games)

	stop := atomic.NewBool(false)
	installInterruptHandler(ctx, stop)

	b, err := loadBook(cfg.BookPath)
	if err != nil {
		logw.Exitf(ctx, "book: %v", err)
	}
	b.Shuffle(cfg.Seed)

	pairings := tourney.GeneratePairings(cfg.Mode(), len(cfg.Engines), cfg.Rounds, cfg.Games, b.Len())
	logw.Infof(ctx, "generated %v pairings", len(pairings))

	sessions := make([]*usi.Session, len(cfg.Engines))
	for i, ec := range cfg.EngineConfigs() {
		sessions[i] = usi.NewSession(ec)
	}
	defer func() {
		for _, s := range sessions {
			s.Quit(ctx)
			s.Kill()
		}
	}()

	engine := match.NewMatchEngine(rules.Permissive{}, cfg.AdjudicationConfig(), *startupTimeout, *newGameTimeout)
	scoreboard := stats.NewScoreboard()
	sprt := stats.NewSPRT(cfg.SPRT.Elo0, cfg.SPRT.Elo1, cfg.SPRT.Alpha, cfg.SPRT.Beta, cfg.SPRTModel())

	sink := output.NewSink(os.Stdout, outputFormat(cfg.Output), zerolog.New(os.Stderr).With().Timestamp().Logger())
	sink.Report(output.Event{Kind: output.ConfigLoaded, Message: fmt.Sprintf("%v engines, %v pairings", len(cfg.Engines), len(pairings))})

	pgnWriter, closePGN := openAppend(cfg.PGNPath)
	defer closePGN()
	epdWriter, closeEPD := openAppend(cfg.EPDPath)
	defer closeEPD()

	exportCh, exportDone := startStatsExport(cfg.StatsExportPath)

	pool := tourney.NewWorkerPool(cfg.Concurrency, stop)
	sched := tourney.NewScheduler(pairings, stop)

	gameCounter := atomic.NewInt64(0)
	pairs := newPairTracker()

	// spec.md's "games between per-game result prints" / "default every
	// ratinginterval games" cadences (§6.2); 0 (unset) means every game.
	scoreInterval := cfg.ScoreInterval
	if scoreInterval <= 0 {
		scoreInterval = 1
	}
	ratingInterval := cfg.RatingInterval
	if ratingInterval <= 0 {
		ratingInterval = 1
	}

	pool.Run(ctx, sched, func(ctx context.Context, p tourney.Pairing) {
		whiteIdx, blackIdx := p.EngineAIdx, p.EngineBIdx
		if p.SwapColours {
			whiteIdx, blackIdx = blackIdx, whiteIdx
		}
		white, black := sessions[whiteIdx], sessions[blackIdx]

		if err := pool.AcquireSpawnSlot(ctx); err != nil {
			return
		}
		whiteTC := timecontrol.New(cfg.Engines[whiteIdx].TimeLimits())
		blackTC := timecontrol.New(cfg.Engines[blackIdx].TimeLimits())
		pool.ReleaseSpawnSlot()

		opening := b.At(p.OpeningIdx)
		result := engine.Play(ctx, opening, white, black, whiteTC, blackTC)

		idx := gameCounter.Inc()
		whiteName, blackName := white.Name(), black.Name()
		engineAName, engineBName := sessions[p.EngineAIdx].Name(), sessions[p.EngineBIdx].Name()

		recordResult(scoreboard, pairs, cfg.Games == 2, p, engineAName, engineBName, whiteName, blackName, result)

		isLast := int(idx) == len(pairings)
		if int(idx)%scoreInterval == 0 || isLast {
			sink.Report(output.Event{
				Kind: output.GameFinished, GameIndex: int(idx),
				White: whiteName, Black: blackName, Result: result,
			})
		}

		if pgnWriter != nil {
			meta := pgn.GameMeta{Event: "banzuke tournament", Round: fmt.Sprintf("%v.%v", p.RoundID+1, p.GameInRound+1), White: whiteName, Black: blackName}
			if err := pgn.WriteGame(pgnWriter, meta, result); err != nil {
				logw.Infof(ctx, "pgn: write failed: %v", err)
			}
		}
		if epdWriter != nil {
			if err := pgn.WriteEPD(epdWriter, result); err != nil {
				logw.Infof(ctx, "epd: write failed: %v", err)
			}
		}
		if exportCh != nil && (int(idx)%ratingInterval == 0 || isLast) {
			exportCh <- statsexport.ToGameRecord(fmt.Sprintf("g%d", idx), whiteName, blackName, result)
		}

		if cfg.SPRT.Enabled {
			total := aggregatePair(scoreboard, whiteName, blackName)
			llr, decision := sprt.Evaluate(total)
			elo := eloEstimate(cfg.SPRTModel(), total)
			sink.Report(output.Event{Kind: output.SPRTUpdate, Elo: &elo, LLR: llr, Decision: decision})
			if decision != stats.Continue {
				stop.Store(true)
			}
		}
	})

	if exportCh != nil {
		close(exportCh)
		<-exportDone
	}

	logw.Infof(ctx, "tournament finished: %v/%v games played", gameCounter.Load(), len(pairings))
}

func installInterruptHandler(ctx context.Context, stop *atomic.Bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logw.Infof(ctx, "interrupt received, finishing in-flight games")
		stop.Store(true)
	}()
}

func loadBook(path string) (*book.Book, error) {
	if path == "" {
		return &book.Book{}, nil
	}
	return book.Load(path)
}

func outputFormat(name string) output.Format {
	if name == "cutechess" {
		return output.CuteChess
	}
	return output.FastShogi
}

func openAppend(path string) (*os.File, func()) {
	if path == "" {
		return nil, func() {}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, func() {}
	}
	return f, func() { f.Close() }
}

func startStatsExport(path string) (chan statsexport.GameRecord, chan struct{}) {
	if path == "" {
		return nil, nil
	}
	ch := make(chan statsexport.GameRecord, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := statsexport.WriteParquet(path, ch, 4); err != nil {
			logw.Infof(context.Background(), "statsexport: %v", err)
		}
	}()
	return ch, done
}

// pairKey identifies a colour-swapped game pair: the two games sharing one
// round, engine slot and opening that games=2 produces (spec.md's "Pair
// symmetry" invariant).
type pairKey struct {
	round, a, b, opening int
}

// pendingGame is one finished game's result, held until its colour-swapped
// partner also finishes.
type pendingGame struct {
	whiteName, blackName     string
	whiteResult, blackResult stats.GameResult
}

// pairTracker buffers the first-finished game of a colour-swapped pair
// until its partner completes, since the worker pool may finish the two
// games of a pair in either order.
type pairTracker struct {
	mu      sync.Mutex
	pending map[pairKey]pendingGame
}

func newPairTracker() *pairTracker {
	return &pairTracker{pending: make(map[pairKey]pendingGame)}
}

// recordResult folds one game's outcome into the scoreboard from both
// engines' perspectives (spec.md §4.8: the scoreboard is keyed by
// engine_name -> opponent_name), and, once both games of a colour-swapped
// pair have completed, also folds the pentanomial category for that pair
// (spec.md §4.8's pentanomial model otherwise never accumulates anything).
func recordResult(sb *stats.Scoreboard, tracker *pairTracker, twoGame bool, p tourney.Pairing, engineAName, engineBName, white, black string, result *match.MatchResult) {
	wr, br := resultFor(result.WhiteOutcome)
	sb.MergeGame(white, black, wr)
	sb.MergeGame(black, white, br)

	if !twoGame {
		return
	}

	key := pairKey{round: p.RoundID, a: p.EngineAIdx, b: p.EngineBIdx, opening: p.OpeningIdx}
	g := pendingGame{whiteName: white, blackName: black, whiteResult: wr, blackResult: br}

	tracker.mu.Lock()
	prev, ok := tracker.pending[key]
	if !ok {
		tracker.pending[key] = g
		tracker.mu.Unlock()
		return
	}
	delete(tracker.pending, key)
	tracker.mu.Unlock()

	sb.MergePair(engineAName, engineBName, resultForEngine(prev, engineAName), resultForEngine(g, engineAName))
	sb.MergePair(engineBName, engineAName, resultForEngine(prev, engineBName), resultForEngine(g, engineBName))
}

// resultForEngine returns engine's own result from g, whichever colour it
// played.
func resultForEngine(g pendingGame, engine string) stats.GameResult {
	if g.whiteName == engine {
		return g.whiteResult
	}
	return g.blackResult
}

func resultFor(outcome match.Outcome) (white, black stats.GameResult) {
	switch outcome {
	case match.WhiteWin:
		return stats.Win, stats.Loss
	case match.BlackWin:
		return stats.Loss, stats.Win
	default:
		return stats.DrawResult, stats.DrawResult
	}
}

// aggregatePair sums white's accumulated trinomial/pentanomial counts
// against black across the tournament so far.
func aggregatePair(sb *stats.Scoreboard, white, black string) stats.Counts {
	return sb.Snapshot(white, black)
}

func eloEstimate(model stats.Model, c stats.Counts) stats.EloEstimate {
	if model == stats.PentanomialModel {
		return stats.PentanomialElo(c.LL, c.LD, c.WLDD, c.WD, c.WW)
	}
	return stats.TrinomialElo(c.Wins, c.Draws, c.Losses)
}
