// Package config loads the tournament and engine configuration that
// drives a banzuke run (spec.md §6.2), as JSON matching the original
// fastshogi implementation's nlohmann::json wire format.
//
// Grounded on nomaddo-cute/pkg/cute/config.go's FindConfigPath-then-
// LoadConfig pair.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/stats"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/herohde/banzuke/pkg/tourney"
	"github.com/herohde/banzuke/pkg/usi"
)

// ResignConfig mirrors match.ResignConfig's JSON shape (spec.md §6.2
// "resign").
type ResignConfig struct {
	Enabled   bool `json:"enabled"`
	Score     int  `json:"score"`
	MoveCount int  `json:"move_count"`
	TwoSided  bool `json:"twosided"`
}

func (c ResignConfig) toMatch() match.ResignConfig {
	return match.ResignConfig{Enabled: c.Enabled, Score: c.Score, MoveCount: c.MoveCount, TwoSided: c.TwoSided}
}

// DrawConfig mirrors match.DrawConfig's JSON shape (spec.md §6.2 "draw").
type DrawConfig struct {
	Enabled   bool `json:"enabled"`
	Score     int  `json:"score"`
	MoveCount int  `json:"move_count"`
	MinMoves  int  `json:"min_moves"`
}

func (c DrawConfig) toMatch() match.DrawConfig {
	return match.DrawConfig{Enabled: c.Enabled, Score: c.Score, MoveCount: c.MoveCount, MinMoves: c.MinMoves}
}

// MaxMovesConfig mirrors match.MaxMovesConfig's JSON shape (spec.md §6.2
// "maxmoves").
type MaxMovesConfig struct {
	Enabled   bool `json:"enabled"`
	MoveCount int  `json:"move_count"`
}

func (c MaxMovesConfig) toMatch() match.MaxMovesConfig {
	return match.MaxMovesConfig{Enabled: c.Enabled, MoveCount: c.MoveCount}
}

// SPRTConfig mirrors the spec.md §6.2 "sprt" object.
type SPRTConfig struct {
	Enabled bool    `json:"enabled"`
	Elo0    float64 `json:"elo0"`
	Elo1    float64 `json:"elo1"`
	Alpha   float64 `json:"alpha"`
	Beta    float64 `json:"beta"`
	Model   string  `json:"model"` // "trinomial" or "pentanomial"
}

func (c SPRTConfig) toModel() stats.Model {
	if c.Model == "pentanomial" {
		return stats.PentanomialModel
	}
	return stats.TrinomialModel
}

// TablebaseConfig mirrors spec.md §6.2's "tb" / "tb_pieces" / "tb_ignore50"
// keys, folded into one object for ergonomics.
type TablebaseConfig struct {
	Path       string `json:"path"`
	Pieces     int    `json:"pieces"`
	Ignore50   bool   `json:"ignore50"`
}

// EngineOption is a (name, value) override applied before each game
// (spec.md §3 EngineConfig.options).
type EngineOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EngineEntry describes one competing engine (spec.md §3 EngineConfig).
type EngineEntry struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	WorkingDir string         `json:"working_dir"`
	Args       []string       `json:"args"`
	Options    []EngineOption `json:"options"`

	// Resource limit: at most one of Nodes/Depth/MoveTimeMillis should be
	// set alongside TimeMillis/IncrementMillis (spec.md §6.1).
	Nodes           uint64 `json:"nodes"`
	Depth           uint   `json:"depth"`
	MoveTimeMillis  int64  `json:"movetime"`
	TimeMillis      int64  `json:"time"`
	IncrementMillis int64  `json:"increment"`

	// TimeoutMarginMillis is the safety margin folded into every
	// timecontrol.Budget derived from this engine's limits (spec.md §3
	// TimeBudget.margin). spec.md §6.2 does not name a config key for it;
	// this is the implementation's choice of where that value lives.
	TimeoutMarginMillis int64 `json:"timeout_margin"`

	AffinityMask uint64 `json:"affinity_mask"`
}

// TimeLimits projects this entry's time-related fields into a
// timecontrol.Limits (spec.md §4.3).
func (e EngineEntry) TimeLimits() timecontrol.Limits {
	return timecontrol.Limits{
		Time:      time.Duration(e.TimeMillis) * time.Millisecond,
		Increment: time.Duration(e.IncrementMillis) * time.Millisecond,
		FixedTime: time.Duration(e.MoveTimeMillis) * time.Millisecond,
		Margin:    time.Duration(e.TimeoutMarginMillis) * time.Millisecond,
	}
}

func (e EngineEntry) toUSIConfig() usi.EngineConfig {
	opts := make([]usi.OptionOverride, len(e.Options))
	for i, o := range e.Options {
		opts[i] = usi.OptionOverride{Name: o.Name, Value: o.Value}
	}
	return usi.EngineConfig{
		Name:       e.Name,
		Path:       e.Path,
		WorkingDir: e.WorkingDir,
		Args:       e.Args,
		Options:    opts,
		Limit: usi.ResourceLimit{
			Nodes:           e.Nodes,
			Depth:           e.Depth,
			MoveTimeMillis:  e.MoveTimeMillis,
			TimeMillis:      e.TimeMillis,
			IncrementMillis: e.IncrementMillis,
		},
		AffinityMask: e.AffinityMask,
	}
}

// Tournament is the top-level configuration document (spec.md §6.2).
type Tournament struct {
	Type           string          `json:"type"` // "roundrobin" or "gauntlet"
	Concurrency    int             `json:"concurrency"`
	Games          int             `json:"games"`
	Rounds         int             `json:"rounds"`
	RatingInterval int             `json:"ratinginterval"`
	ScoreInterval  int             `json:"scoreinterval"`
	Seed           int64           `json:"seed"`
	BookPath       string          `json:"book"`
	Resign         ResignConfig    `json:"resign"`
	Draw           DrawConfig      `json:"draw"`
	MaxMoves       MaxMovesConfig  `json:"maxmoves"`
	SPRT           SPRTConfig      `json:"sprt"`
	Tablebase      TablebaseConfig `json:"tb"`
	Output         string          `json:"output"` // "fastshogi" or "cutechess"
	PGNPath        string          `json:"pgn"`
	EPDPath        string          `json:"epd"`
	StatsExportPath string         `json:"stats_export"`
	Engines        []EngineEntry   `json:"engines"`
}

// Mode maps the "type" key to a tourney.Mode.
func (t Tournament) Mode() tourney.Mode {
	if t.Type == "gauntlet" {
		return tourney.Gauntlet
	}
	return tourney.RoundRobin
}

// AdjudicationConfig projects the resign/draw/maxmoves keys into a
// match.AdjudicationConfig. tb is not projected: it needs a concrete
// TablebaseProbe implementation, not just data, so the returned config's
// Tablebase is always nil.
func (t Tournament) AdjudicationConfig() match.AdjudicationConfig {
	return match.AdjudicationConfig{
		Resign:   t.Resign.toMatch(),
		Draw:     t.Draw.toMatch(),
		MaxMoves: t.MaxMoves.toMatch(),
	}
}

// SPRTModel maps the "sprt.model" key to a stats.Model.
func (t Tournament) SPRTModel() stats.Model { return t.SPRT.toModel() }

// EngineConfigs returns the configured engines as usi.EngineConfig values,
// in file order.
func (t Tournament) EngineConfigs() []usi.EngineConfig {
	out := make([]usi.EngineConfig, len(t.Engines))
	for i, e := range t.Engines {
		out[i] = e.toUSIConfig()
	}
	return out
}

// ConfigError wraps any failure to locate, read, or parse a config
// document. It is fatal at startup per spec.md §7.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %v", e.Path, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// FindConfigPath walks up from the current working directory looking for
// a file named name, returning its full path and containing directory.
func FindConfigPath(name string) (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", &ConfigError{Path: name, Err: err}
	}
	dir := cwd
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, filepath.Dir(path), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", &ConfigError{Path: name, Err: fmt.Errorf("not found from %s", cwd)}
}

// Load reads and parses the tournament configuration at path.
func Load(path string) (Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tournament{}, &ConfigError{Path: path, Err: err}
	}
	var cfg Tournament
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Tournament{}, &ConfigError{Path: path, Err: err}
	}
	if err := cfg.validate(); err != nil {
		return Tournament{}, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

func (t Tournament) validate() error {
	if len(t.Engines) < 2 {
		return fmt.Errorf("at least two engines required, got %d", len(t.Engines))
	}
	if t.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", t.Concurrency)
	}
	if t.Games != 1 && t.Games != 2 {
		return fmt.Errorf("games must be 1 or 2, got %d", t.Games)
	}
	if t.Rounds < 1 {
		return fmt.Errorf("rounds must be >= 1, got %d", t.Rounds)
	}
	return nil
}
