package dilemma

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), Options{StoreKind: "memory", ExportsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientStrategies(t *testing.T) {
	client := newTestClient(t)
	records := client.Strategies()
	if len(records) != 11 {
		t.Fatalf("expected 11 strategies, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].ID >= records[i].ID {
			t.Fatalf("strategies not sorted: %s before %s", records[i-1].ID, records[i].ID)
		}
	}
}

func TestClientPlayMatch(t *testing.T) {
	client := newTestClient(t)
	history, err := client.PlayMatch("tit_for_tat", "always_defect", nil, 10, 0, 1)
	if err != nil {
		t.Fatalf("play match: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected 10 rounds, got %d", len(history))
	}
	score1, score2 := history.TotalScores()
	if score1 != 9 || score2 != 14 {
		t.Fatalf("expected 9/14, got %d/%d", score1, score2)
	}
}

func TestClientPlayMatchUnknownStrategy(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.PlayMatch("tit_for_tat", "nope", nil, 10, 0, 1); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestClientTournamentRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	result, err := client.RunTournament(ctx, TournamentRequest{
		StrategyIDs: []string{"always_cooperate", "always_defect", "tit_for_tat"},
		Rounds:      20,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("run tournament: %v", err)
	}

	runs, err := client.Runs(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != result.RunID {
		t.Fatalf("unexpected run listing: %+v", runs)
	}

	standings, ok, err := client.Standings(ctx, result.RunID)
	if err != nil {
		t.Fatalf("get standings: %v", err)
	}
	if !ok || len(standings) != 3 {
		t.Fatalf("expected 3 standings, got ok=%v %d", ok, len(standings))
	}
}

func TestClientExportWritesArtifacts(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	result, err := client.RunEvolution(ctx, EvolutionRequest{
		StrategyIDs: []string{"always_cooperate", "always_defect"},
		Config: Config{
			PopulationSize:      40,
			SelectionPressure:   1,
			RoundsPerGeneration: 10,
			MaxGenerations:      10,
			Workers:             1,
			Seed:                5,
		},
	})
	if err != nil {
		t.Fatalf("run evolution: %v", err)
	}

	summary, err := client.Export(ctx, result.RunID, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if summary.RunID != result.RunID {
		t.Fatalf("summary run id %s, want %s", summary.RunID, result.RunID)
	}
	if _, err := os.Stat(filepath.Join(summary.Directory, "run.json")); err != nil {
		t.Fatalf("expected run.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(summary.Directory, "generations.csv")); err != nil {
		t.Fatalf("expected generations.csv: %v", err)
	}
}

func TestClientExportUnknownRun(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Export(context.Background(), "missing", ""); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestClientValidateMatrix(t *testing.T) {
	if err := ValidateMatrix(Canonical()); err != nil {
		t.Fatalf("canonical matrix: %v", err)
	}
	broken := Canonical()
	broken.CC.Own = 10
	if err := ValidateMatrix(broken); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestClientReset(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.RunTournament(ctx, TournamentRequest{Rounds: 5, Seed: 1}); err != nil {
		t.Fatalf("run tournament: %v", err)
	}
	if err := client.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err := client.Runs(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs after reset, got %d", len(runs))
	}
}
