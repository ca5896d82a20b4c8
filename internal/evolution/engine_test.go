package evolution

import (
	"context"
	"reflect"
	"testing"

	"dilemma/internal/game"
	"dilemma/internal/strategy"
)

func baseConfig() Config {
	return Config{
		PopulationSize:      100,
		MutationRate:        0,
		SelectionPressure:   1,
		RoundsPerGeneration: 20,
		MaxGenerations:      50,
		Workers:             1,
		Seed:                42,
	}
}

func newTestEngine(t *testing.T, cfg Config, strategies ...strategy.Strategy) *Engine {
	t.Helper()
	engine, err := NewEngine(strategies, cfg, game.Canonical())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func populationTotal(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(nil, baseConfig(), game.Canonical()); err == nil {
		t.Fatal("expected error for empty strategy set")
	}

	cfg := baseConfig()
	cfg.PopulationSize = 0
	if _, err := NewEngine([]strategy.Strategy{strategy.TitForTat{}}, cfg, game.Canonical()); err == nil {
		t.Fatal("expected error for zero population")
	}

	cfg = baseConfig()
	cfg.MutationRate = 1.5
	if _, err := NewEngine([]strategy.Strategy{strategy.TitForTat{}}, cfg, game.Canonical()); err == nil {
		t.Fatal("expected error for mutation rate > 1")
	}

	duplicates := []strategy.Strategy{strategy.TitForTat{}, strategy.TitForTat{}}
	if _, err := NewEngine(duplicates, baseConfig(), game.Canonical()); err == nil {
		t.Fatal("expected error for duplicate strategy ids")
	}
}

func TestInitialPopulationEqualSplitWithRemainder(t *testing.T) {
	cfg := baseConfig()
	cfg.PopulationSize = 10
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{}, strategy.TitForTat{})

	counts := engine.InitialPopulation()
	if populationTotal(counts) != 10 {
		t.Fatalf("initial total %d, want 10", populationTotal(counts))
	}
	// Remainder goes to the first ids in lexicographic order.
	if counts["always_cooperate"] != 4 || counts["always_defect"] != 3 || counts["tit_for_tat"] != 3 {
		t.Fatalf("unexpected split: %v", counts)
	}
}

func TestPopulationTotalConservedAcrossGenerations(t *testing.T) {
	cfg := baseConfig()
	cfg.MutationRate = 0.05
	cfg.MaxGenerations = 15
	engine := newTestEngine(t, cfg,
		strategy.AlwaysCooperate{}, strategy.AlwaysDefect{}, strategy.TitForTat{}, strategy.GrimTrigger{})

	result, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, gen := range result.Generations {
		if total := populationTotal(gen.Counts); total != cfg.PopulationSize {
			t.Fatalf("generation %d total %d, want %d", gen.Index, total, cfg.PopulationSize)
		}
	}
}

func TestDefectorsTakeOverCooperators(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 200
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	result, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Reason != StopConvergence {
		t.Fatalf("expected convergence, got %s after %d generations", result.Reason, len(result.Generations))
	}
	last := result.Generations[len(result.Generations)-1]
	if last.Dominant != "always_defect" {
		t.Fatalf("expected always_defect to dominate, got %s", last.Dominant)
	}
	if len(result.Generations) > cfg.MaxGenerations {
		t.Fatalf("convergence should beat the generation cap, took %d generations", len(result.Generations))
	}
}

func TestMaxGenerationsStopsStablePopulation(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 5
	// Mutual cooperators score identically, so frequencies drift only by
	// sampling and the run hits the cap.
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.TitForTat{})

	result, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Reason == StopConvergence && len(result.Generations) > cfg.MaxGenerations+1 {
		t.Fatalf("too many generations: %d", len(result.Generations))
	}
	if len(result.Generations) > cfg.MaxGenerations+1 {
		t.Fatalf("cap not honored: %d generations", len(result.Generations))
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	run := func() Result {
		cfg := baseConfig()
		cfg.MutationRate = 0.02
		cfg.MaxGenerations = 10
		cfg.Workers = 4
		engine := newTestEngine(t, cfg,
			strategy.AlwaysCooperate{}, strategy.AlwaysDefect{}, strategy.TitForTat{}, strategy.Pavlov{})
		result, err := engine.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different generation sequences")
	}
}

func TestResetReproducesRun(t *testing.T) {
	cfg := baseConfig()
	cfg.MutationRate = 0.03
	cfg.MaxGenerations = 8
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{}, strategy.TitForTat{})

	first, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	engine.Reset()
	second, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("reset did not reproduce the run")
	}
}

func TestInitialPopulationValidation(t *testing.T) {
	engine := newTestEngine(t, baseConfig(), strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	_, err := engine.Run(context.Background(), map[string]int{"always_cooperate": 50, "unknown": 50})
	if err == nil {
		t.Fatal("expected error for unknown strategy id")
	}
	_, err = engine.Run(context.Background(), map[string]int{"always_cooperate": 10, "always_defect": 10})
	if err == nil {
		t.Fatal("expected error for population size mismatch")
	}
	_, err = engine.Run(context.Background(), map[string]int{"always_cooperate": 110, "always_defect": -10})
	if err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestExtinctStrategyNeverReturnsWithoutMutation(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 10
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{}, strategy.TitForTat{})

	initial := map[string]int{"always_cooperate": 50, "always_defect": 50, "tit_for_tat": 0}
	result, err := engine.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, gen := range result.Generations {
		if gen.Counts["tit_for_tat"] != 0 {
			t.Fatalf("generation %d resurrected an extinct strategy: %v", gen.Index, gen.Counts)
		}
	}
}

func TestMutationCanReintroduceExtinctStrategy(t *testing.T) {
	cfg := baseConfig()
	cfg.MutationRate = 0.1
	cfg.MaxGenerations = 30
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.TitForTat{}, strategy.Pavlov{})

	initial := map[string]int{"always_cooperate": 50, "tit_for_tat": 50, "pavlov": 0}
	result, err := engine.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	reintroduced := false
	for _, gen := range result.Generations {
		if gen.Counts["pavlov"] > 0 {
			reintroduced = true
			break
		}
	}
	if !reintroduced {
		t.Fatal("expected mutation to reintroduce an extinct strategy")
	}
}

func TestCooperationRateTracksNiceShare(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 1
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	initial := map[string]int{"always_cooperate": 75, "always_defect": 25}
	result, err := engine.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Generations[0].CooperationRate; got != 0.75 {
		t.Fatalf("generation 0 cooperation rate %g, want 0.75", got)
	}
}

func TestDominantTieBreaksLexicographically(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 1
	engine := newTestEngine(t, cfg, strategy.TitForTat{}, strategy.AlwaysCooperate{})

	initial := map[string]int{"always_cooperate": 50, "tit_for_tat": 50}
	result, err := engine.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Generations[0].Dominant; got != "always_cooperate" {
		t.Fatalf("expected lexicographic tie-break, got %s", got)
	}
}

func TestUpdateConfigBetweenRuns(t *testing.T) {
	engine := newTestEngine(t, baseConfig(), strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	newPop := 60
	if err := engine.UpdateConfig(ConfigPatch{PopulationSize: &newPop}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	if total := populationTotal(engine.InitialPopulation()); total != 60 {
		t.Fatalf("initial total %d after update, want 60", total)
	}

	badRate := 2.0
	if err := engine.UpdateConfig(ConfigPatch{MutationRate: &badRate}); err == nil {
		t.Fatal("expected validation error for mutation rate 2")
	}
}

func TestAddRemoveStrategy(t *testing.T) {
	engine := newTestEngine(t, baseConfig(), strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	if err := engine.AddStrategy(strategy.TitForTat{}); err != nil {
		t.Fatalf("add strategy: %v", err)
	}
	if err := engine.AddStrategy(strategy.TitForTat{}); err == nil {
		t.Fatal("expected duplicate error")
	}
	ids := engine.StrategyIDs()
	if len(ids) != 3 || ids[2] != "tit_for_tat" {
		t.Fatalf("unexpected ids after add: %v", ids)
	}

	if err := engine.RemoveStrategy("tit_for_tat"); err != nil {
		t.Fatalf("remove strategy: %v", err)
	}
	if err := engine.RemoveStrategy("tit_for_tat"); err == nil {
		t.Fatal("expected unknown id error")
	}
	if err := engine.RemoveStrategy("always_cooperate"); err != nil {
		t.Fatalf("remove strategy: %v", err)
	}
	if err := engine.RemoveStrategy("always_defect"); err == nil {
		t.Fatal("expected error removing the last strategy")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 100000
	cfg.RoundsPerGeneration = 50
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.TitForTat{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Run(ctx, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestTerminationReasonOrdering(t *testing.T) {
	if reason, done := terminationReason(map[string]int{"a": 96, "b": 4}, 0, 100); !done || reason != StopConvergence {
		t.Fatalf("expected convergence, got %s/%v", reason, done)
	}
	if reason, done := terminationReason(map[string]int{"a": 0, "b": 0}, 0, 100); !done || reason != StopExtinction {
		t.Fatalf("expected extinction, got %s/%v", reason, done)
	}
	if reason, done := terminationReason(map[string]int{"a": 50, "b": 50}, 100, 100); !done || reason != StopMaxGenerations {
		t.Fatalf("expected generation cap, got %s/%v", reason, done)
	}
	if _, done := terminationReason(map[string]int{"a": 50, "b": 50}, 10, 100); done {
		t.Fatal("expected the run to continue")
	}
}

func TestZeroSelectionPressureFlattensSelection(t *testing.T) {
	cfg := baseConfig()
	cfg.SelectionPressure = 0
	cfg.MaxGenerations = 20
	engine := newTestEngine(t, cfg, strategy.AlwaysCooperate{}, strategy.AlwaysDefect{})

	result, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// With pressure 0 every alive strategy draws uniformly, so defectors get
	// no advantage and both sides should stay alive for a while.
	if result.Reason == StopConvergence && len(result.Generations) < 5 {
		t.Fatalf("uniform selection converged suspiciously fast: %d generations", len(result.Generations))
	}
}
