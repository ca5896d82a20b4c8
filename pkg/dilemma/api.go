// Package dilemma is the public facade of the simulation engine. Presentation
// layers construct a Client, run tournaments and evolutionary simulations,
// and read back the resulting standings and generation snapshots. Returned
// records are read-only snapshots; callers must not mutate them in place.
package dilemma

import (
	"context"
	"fmt"
	"math/rand"

	"dilemma/internal/evolution"
	"dilemma/internal/game"
	"dilemma/internal/model"
	"dilemma/internal/platform"
	"dilemma/internal/stats"
	"dilemma/internal/storage"
	"dilemma/internal/strategy"
	"dilemma/internal/tournament"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "dilemma.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	arena      *platform.Arena
	exportsDir string
}

// PayoffMatrix re-exports the engine's matrix type so external callers can
// supply custom games.
type PayoffMatrix = game.PayoffMatrix

// Canonical returns the canonical prisoner's dilemma payoffs.
func Canonical() PayoffMatrix {
	return game.Canonical()
}

// ValidateMatrix reports whether a matrix is a proper prisoner's dilemma.
func ValidateMatrix(matrix PayoffMatrix) error {
	return matrix.Validate()
}

func New(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	arena := platform.NewArena(platform.Config{Store: store})
	if err := arena.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}

	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	return &Client{store: store, arena: arena, exportsDir: exportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Strategies lists the catalog's identities and classification tags.
func (c *Client) Strategies() []model.StrategyRecord {
	rng := rand.New(rand.NewSource(0))
	records := make([]model.StrategyRecord, 0)
	for _, id := range strategy.IDs() {
		s, err := strategy.Resolve(id, rng)
		if err != nil {
			continue
		}
		info := s.Info()
		records = append(records, model.StrategyRecord{
			ID:          info.ID,
			Name:        info.Name,
			Description: info.Description,
			Nice:        info.Nice,
			Forgiving:   info.Forgiving,
			Provokable:  info.Provokable,
			Clear:       info.Clear,
		})
	}
	return records
}

type TournamentRequest = platform.TournamentRequest

type EvolutionRequest = platform.EvolutionRequest

type HeadToHeadRequest = platform.HeadToHeadRequest

func (c *Client) RunTournament(ctx context.Context, req TournamentRequest) (platform.TournamentRun, error) {
	return c.arena.RunTournament(ctx, req)
}

func (c *Client) RunBracket(ctx context.Context, req TournamentRequest) (platform.BracketRun, error) {
	return c.arena.RunBracket(ctx, req)
}

func (c *Client) RunEvolution(ctx context.Context, req EvolutionRequest) (platform.EvolutionRun, error) {
	return c.arena.RunEvolution(ctx, req)
}

func (c *Client) HeadToHead(req HeadToHeadRequest) (tournament.HeadToHead, error) {
	return c.arena.HeadToHead(req)
}

// PlayMatch runs one match between two catalog strategies and returns its
// full history; nothing is persisted.
func (c *Client) PlayMatch(strategy1, strategy2 string, matrix *PayoffMatrix, rounds int, noise float64, seed int64) (game.MatchHistory, error) {
	rng := strategy.NewLockedRand(seed)
	s1, err := strategy.Resolve(strategy1, rng)
	if err != nil {
		return nil, err
	}
	s2, err := strategy.Resolve(strategy2, rng)
	if err != nil {
		return nil, err
	}
	m := game.Canonical()
	if matrix != nil {
		m = *matrix
	}
	sim := game.NewMatchSimulator(m, seed)
	return sim.PlayMatch(s1, s2, rounds, noise)
}

func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.arena.Runs(ctx)
}

func (c *Client) Standings(ctx context.Context, runID string) ([]model.StandingRecord, bool, error) {
	return c.arena.Standings(ctx, runID)
}

func (c *Client) Generations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	return c.arena.Generations(ctx, runID)
}

type ExportSummary struct {
	RunID     string
	Directory string
}

// Export writes a run's persisted artifacts as JSON and CSV files under the
// exports directory (or outDir when non-empty).
func (c *Client) Export(ctx context.Context, runID, outDir string) (ExportSummary, error) {
	run, ok, err := c.arena.Run(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}
	standings, _, err := c.arena.Standings(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	generations, _, err := c.arena.Generations(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	dir := outDir
	if dir == "" {
		dir = c.exportsDir
	}
	runDir, err := stats.WriteRunArtifacts(dir, stats.RunArtifacts{
		Run:         run,
		Standings:   standings,
		Generations: generations,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: runDir}, nil
}

// Reset clears all persisted runs.
func (c *Client) Reset(ctx context.Context) error {
	return c.arena.Reset(ctx)
}

// Engine result types re-exported for callers rendering output.
type (
	Tournament = tournament.Tournament
	Standing   = tournament.Standing
	Bracket    = tournament.Bracket
	HeadToHead = tournament.HeadToHead
	Generation = evolution.Generation
	Config     = evolution.Config
)
