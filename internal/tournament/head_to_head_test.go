package tournament

import (
	"testing"

	"dilemma/internal/game"
)

func TestHeadToHeadDefectorDominatesCooperator(t *testing.T) {
	engine, err := NewEngine(game.Canonical(), 50, 0, 1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	strategies := testStrategies(t, "always_cooperate", "always_defect")
	stats, err := engine.RunHeadToHead(strategies[0], strategies[1], 5)
	if err != nil {
		t.Fatalf("head to head: %v", err)
	}
	if stats.Wins2 != 5 || stats.Wins1 != 0 || stats.Ties != 0 {
		t.Fatalf("expected 0/5/0, got %d/%d/%d", stats.Wins1, stats.Wins2, stats.Ties)
	}
	if stats.AverageScore1 != 0 || stats.AverageScore2 != 250 {
		t.Fatalf("expected averages 0/250, got %g/%g", stats.AverageScore1, stats.AverageScore2)
	}
	if stats.CooperationRate1 != 1 || stats.CooperationRate2 != 0 {
		t.Fatalf("expected cooperation 1/0, got %g/%g", stats.CooperationRate1, stats.CooperationRate2)
	}
}

func TestHeadToHeadMirrorMatchTies(t *testing.T) {
	engine, err := NewEngine(game.Canonical(), 40, 0, 3)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	strategies := testStrategies(t, "tit_for_tat", "pavlov")
	stats, err := engine.RunHeadToHead(strategies[0], strategies[1], 4)
	if err != nil {
		t.Fatalf("head to head: %v", err)
	}
	if stats.Ties != 4 {
		t.Fatalf("expected all ties between mutual cooperators, got %d", stats.Ties)
	}
}

func TestHeadToHeadValidatesArguments(t *testing.T) {
	engine, err := NewEngine(game.Canonical(), 10, 0, 1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	strategies := testStrategies(t, "tit_for_tat", "pavlov")
	if _, err := engine.RunHeadToHead(nil, strategies[1], 3); err == nil {
		t.Fatal("expected error for nil strategy")
	}
	if _, err := engine.RunHeadToHead(strategies[0], strategies[1], 0); err == nil {
		t.Fatal("expected error for zero matches")
	}
}
