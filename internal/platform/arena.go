package platform

import (
	"context"
	"fmt"
	"time"

	"dilemma/internal/evolution"
	"dilemma/internal/game"
	"dilemma/internal/model"
	"dilemma/internal/storage"
	"dilemma/internal/strategy"
	"dilemma/internal/tournament"
)

// Config wires an Arena.
type Config struct {
	Store storage.Store
}

// Arena owns the store and the lifecycle of simulation runs: it resolves
// strategies, runs the engines, and persists their outputs under run ids.
type Arena struct {
	store storage.Store
}

func NewArena(cfg Config) *Arena {
	return &Arena{store: cfg.Store}
}

func (a *Arena) Init(ctx context.Context) error {
	return a.store.Init(ctx)
}

func (a *Arena) Reset(ctx context.Context) error {
	return a.store.Reset(ctx)
}

// TournamentRequest configures a round-robin or bracket run. An empty
// StrategyIDs selects the full catalog; a nil Matrix selects the canonical
// dilemma payoffs.
type TournamentRequest struct {
	StrategyIDs []string
	Matrix      *game.PayoffMatrix
	Rounds      int
	NoiseLevel  float64
	Seed        int64
}

type TournamentRun struct {
	RunID  string
	Result tournament.Tournament
}

type BracketRun struct {
	RunID  string
	Result tournament.Bracket
}

// EvolutionRequest configures an evolutionary run.
type EvolutionRequest struct {
	StrategyIDs []string
	Matrix      *game.PayoffMatrix
	Config      evolution.Config
	Initial     map[string]int
}

type EvolutionRun struct {
	RunID  string
	Result evolution.Result
}

// HeadToHeadRequest configures a diagnostic pairwise comparison; it is not
// persisted.
type HeadToHeadRequest struct {
	Strategy1  string
	Strategy2  string
	Matrix     *game.PayoffMatrix
	Rounds     int
	NoiseLevel float64
	Matches    int
	Seed       int64
}

// RunTournament executes a round-robin tournament and persists the run record
// and standings.
func (a *Arena) RunTournament(ctx context.Context, req TournamentRequest) (TournamentRun, error) {
	strategies, ids, err := resolveStrategies(req.StrategyIDs, req.Seed)
	if err != nil {
		return TournamentRun{}, err
	}
	engine, err := tournament.NewEngine(matrixOrCanonical(req.Matrix), req.Rounds, req.NoiseLevel, req.Seed)
	if err != nil {
		return TournamentRun{}, err
	}
	result, err := engine.Run(strategies)
	if err != nil {
		return TournamentRun{}, err
	}

	runID := newRunID(model.RunKindTournament, req.Seed)
	run := storage.Stamp(model.RunRecord{
		RunID:        runID,
		Kind:         model.RunKindTournament,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Seed:         req.Seed,
		Rounds:       req.Rounds,
		NoiseLevel:   req.NoiseLevel,
		Strategies:   ids,
		Winner:       result.Winner,
	})
	if err := a.store.SaveRun(ctx, run); err != nil {
		return TournamentRun{}, err
	}
	if err := a.store.SaveStandings(ctx, runID, standingRecords(result.Standings)); err != nil {
		return TournamentRun{}, err
	}
	return TournamentRun{RunID: runID, Result: result}, nil
}

// RunBracket executes a single-elimination bracket and persists the run
// record.
func (a *Arena) RunBracket(ctx context.Context, req TournamentRequest) (BracketRun, error) {
	strategies, ids, err := resolveStrategies(req.StrategyIDs, req.Seed)
	if err != nil {
		return BracketRun{}, err
	}
	engine, err := tournament.NewEngine(matrixOrCanonical(req.Matrix), req.Rounds, req.NoiseLevel, req.Seed)
	if err != nil {
		return BracketRun{}, err
	}
	result, err := engine.RunBracket(strategies)
	if err != nil {
		return BracketRun{}, err
	}

	runID := newRunID(model.RunKindBracket, req.Seed)
	run := storage.Stamp(model.RunRecord{
		RunID:        runID,
		Kind:         model.RunKindBracket,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Seed:         req.Seed,
		Rounds:       req.Rounds,
		NoiseLevel:   req.NoiseLevel,
		Strategies:   ids,
		Winner:       result.Winner,
	})
	if err := a.store.SaveRun(ctx, run); err != nil {
		return BracketRun{}, err
	}
	return BracketRun{RunID: runID, Result: result}, nil
}

// RunEvolution executes an evolutionary run and persists the run record and
// generation snapshots.
func (a *Arena) RunEvolution(ctx context.Context, req EvolutionRequest) (EvolutionRun, error) {
	strategies, ids, err := resolveStrategies(req.StrategyIDs, req.Config.Seed)
	if err != nil {
		return EvolutionRun{}, err
	}
	engine, err := evolution.NewEngine(strategies, req.Config, matrixOrCanonical(req.Matrix))
	if err != nil {
		return EvolutionRun{}, err
	}
	result, err := engine.Run(ctx, req.Initial)
	if err != nil {
		return EvolutionRun{}, err
	}

	runID := newRunID(model.RunKindEvolution, req.Config.Seed)
	last := result.Generations[len(result.Generations)-1]
	run := storage.Stamp(model.RunRecord{
		RunID:               runID,
		Kind:                model.RunKindEvolution,
		CreatedAtUTC:        time.Now().UTC().Format(time.RFC3339),
		Seed:                req.Config.Seed,
		Rounds:              req.Config.RoundsPerGeneration,
		Strategies:          ids,
		PopulationSize:      req.Config.PopulationSize,
		MutationRate:        req.Config.MutationRate,
		SelectionPressure:   req.Config.SelectionPressure,
		RoundsPerGeneration: req.Config.RoundsPerGeneration,
		MaxGenerations:      req.Config.MaxGenerations,
		Winner:              last.Dominant,
		Termination:         string(result.Reason),
		Generations:         len(result.Generations),
	})
	if err := a.store.SaveRun(ctx, run); err != nil {
		return EvolutionRun{}, err
	}
	if err := a.store.SaveGenerations(ctx, runID, generationRecords(result.Generations)); err != nil {
		return EvolutionRun{}, err
	}
	return EvolutionRun{RunID: runID, Result: result}, nil
}

// HeadToHead runs a diagnostic comparison between two strategies.
func (a *Arena) HeadToHead(req HeadToHeadRequest) (tournament.HeadToHead, error) {
	rng := strategy.NewLockedRand(req.Seed)
	s1, err := strategy.Resolve(req.Strategy1, rng)
	if err != nil {
		return tournament.HeadToHead{}, err
	}
	s2, err := strategy.Resolve(req.Strategy2, rng)
	if err != nil {
		return tournament.HeadToHead{}, err
	}
	engine, err := tournament.NewEngine(matrixOrCanonical(req.Matrix), req.Rounds, req.NoiseLevel, req.Seed)
	if err != nil {
		return tournament.HeadToHead{}, err
	}
	return engine.RunHeadToHead(s1, s2, req.Matches)
}

func (a *Arena) Run(ctx context.Context, runID string) (model.RunRecord, bool, error) {
	return a.store.GetRun(ctx, runID)
}

func (a *Arena) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return a.store.ListRuns(ctx)
}

func (a *Arena) Standings(ctx context.Context, runID string) ([]model.StandingRecord, bool, error) {
	return a.store.GetStandings(ctx, runID)
}

func (a *Arena) Generations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	return a.store.GetGenerations(ctx, runID)
}

func newRunID(kind string, seed int64) string {
	return fmt.Sprintf("%s-%d-%d", kind, seed, time.Now().UnixNano())
}

func matrixOrCanonical(matrix *game.PayoffMatrix) game.PayoffMatrix {
	if matrix == nil {
		return game.Canonical()
	}
	return *matrix
}

func resolveStrategies(ids []string, seed int64) ([]strategy.Strategy, []string, error) {
	if len(ids) == 0 {
		ids = strategy.IDs()
	}
	rng := strategy.NewLockedRand(seed)
	strategies, err := strategy.ResolveAll(ids, rng)
	if err != nil {
		return nil, nil, err
	}
	return strategies, ids, nil
}

func standingRecords(standings []tournament.Standing) []model.StandingRecord {
	records := make([]model.StandingRecord, 0, len(standings))
	for i, s := range standings {
		records = append(records, model.StandingRecord{
			Rank:            i + 1,
			StrategyID:      s.StrategyID,
			TotalScore:      s.TotalScore,
			Matches:         s.Matches,
			Wins:            s.Wins,
			Losses:          s.Losses,
			Ties:            s.Ties,
			CooperationRate: s.CooperationRate,
			AverageScore:    s.AverageScore,
		})
	}
	return records
}

func generationRecords(generations []evolution.Generation) []model.GenerationRecord {
	records := make([]model.GenerationRecord, 0, len(generations))
	for _, g := range generations {
		records = append(records, model.GenerationRecord{
			Index:           g.Index,
			Counts:          g.Counts,
			AverageFitness:  g.AverageFitness,
			CooperationRate: g.CooperationRate,
			Dominant:        g.Dominant,
		})
	}
	return records
}
