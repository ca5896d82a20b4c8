package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"dilemma/internal/model"
)

func testRun(id, createdAt string) model.RunRecord {
	return Stamp(model.RunRecord{
		RunID:        id,
		Kind:         model.RunKindTournament,
		CreatedAtUTC: createdAt,
		Seed:         7,
		Rounds:       100,
		Strategies:   []string{"tit_for_tat", "always_defect"},
		Winner:       "tit_for_tat",
	})
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := testRun("run-1", "2026-01-01T00:00:00Z")
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected run to exist")
	}
	if !reflect.DeepEqual(got, run) {
		t.Fatalf("run mismatch:\ngot  %+v\nwant %+v", got, run)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run to report absent")
	}
}

func TestMemoryStoreListRunsOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		testRun("run-b", "2026-01-01T00:00:00Z"),
		testRun("run-a", "2026-01-01T00:00:00Z"),
		testRun("run-c", "2026-01-02T00:00:00Z"),
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	got := []string{runs[0].RunID, runs[1].RunID, runs[2].RunID}
	want := []string{"run-c", "run-a", "run-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order %v, want %v", got, want)
	}
}

func TestMemoryStoreStandingsAndGenerations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	standings := []model.StandingRecord{
		{Rank: 1, StrategyID: "tit_for_tat", TotalScore: 300},
		{Rank: 2, StrategyID: "always_defect", TotalScore: 250},
	}
	if err := store.SaveStandings(ctx, "run-1", standings); err != nil {
		t.Fatalf("save standings: %v", err)
	}
	got, ok, err := store.GetStandings(ctx, "run-1")
	if err != nil {
		t.Fatalf("get standings: %v", err)
	}
	if !ok || !reflect.DeepEqual(got, standings) {
		t.Fatalf("standings mismatch: ok=%v got=%+v", ok, got)
	}

	// The store hands back copies; mutating the result must not leak.
	got[0].TotalScore = 0
	again, _, err := store.GetStandings(ctx, "run-1")
	if err != nil {
		t.Fatalf("get standings again: %v", err)
	}
	if again[0].TotalScore != 300 {
		t.Fatal("standings mutated through a returned slice")
	}

	generations := []model.GenerationRecord{
		{Index: 0, Counts: map[string]int{"tit_for_tat": 50}, Dominant: "tit_for_tat"},
		{Index: 1, Counts: map[string]int{"tit_for_tat": 52}, Dominant: "tit_for_tat"},
	}
	if err := store.SaveGenerations(ctx, "run-1", generations); err != nil {
		t.Fatalf("save generations: %v", err)
	}
	gotGens, ok, err := store.GetGenerations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if !ok || !reflect.DeepEqual(gotGens, generations) {
		t.Fatalf("generations mismatch: ok=%v got=%+v", ok, gotGens)
	}

	if _, ok, _ := store.GetGenerations(ctx, "missing"); ok {
		t.Fatal("expected absent generations for unknown run")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, testRun("run-1", "2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store after reset, got %d runs", len(runs))
	}
}

func TestCodecRoundTripAndVersionCheck(t *testing.T) {
	run := testRun("run-1", "2026-01-01T00:00:00Z")
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, run) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}

	stale := run
	stale.SchemaVersion = CurrentSchemaVersion + 1
	data, err = EncodeRun(stale)
	if err != nil {
		t.Fatalf("encode stale: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestNewStoreFactory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}

	store, err = NewStore("", "")
	if err != nil {
		t.Fatalf("default store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore for empty kind, got %T", store)
	}

	if _, err := NewStore("bolt", ""); err == nil {
		t.Fatal("expected error for unsupported backend")
	}

	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}
