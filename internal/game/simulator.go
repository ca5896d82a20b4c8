package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// MatchSimulator plays rounds between two players under one payoff matrix.
// It owns the running history of the current match; parallel matches need one
// simulator each. Given the same seed and players it is fully deterministic.
type MatchSimulator struct {
	matrix PayoffMatrix
	rng    *rand.Rand

	history MatchHistory
	moves1  []Move
	moves2  []Move
}

// NewMatchSimulator builds a simulator with a seeded random source for the
// noise channel.
func NewMatchSimulator(matrix PayoffMatrix, seed int64) *MatchSimulator {
	return &MatchSimulator{
		matrix: matrix,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// PlayRound plays one round. Each player decides from its own realized history
// and the opponent's realized moves so far. With noise > 0 each intended move
// is flipped independently with that probability before payoffs are computed
// and before the round is appended to history, so a player never observes its
// own noise as distinct from an intentional move.
func (s *MatchSimulator) PlayRound(player1, player2 Player, noise float64) (RoundResult, error) {
	if player1 == nil || player2 == nil {
		return RoundResult{}, errors.New("both players are required")
	}
	if noise < 0 || noise > 1 {
		return RoundResult{}, fmt.Errorf("noise level must be in [0, 1]: %g", noise)
	}

	move1 := player1.Decide(s.moves1, s.moves2)
	move2 := player2.Decide(s.moves2, s.moves1)

	if noise > 0 {
		if s.rng.Float64() < noise {
			move1 = move1.Flip()
		}
		if s.rng.Float64() < noise {
			move2 = move2.Flip()
		}
	}

	payoff1 := s.matrix.Lookup(move1, move2)
	payoff2 := s.matrix.Lookup(move2, move1)

	result := RoundResult{
		Round:  len(s.history) + 1,
		Move1:  move1,
		Move2:  move2,
		Score1: payoff1.Own,
		Score2: payoff2.Own,
	}
	s.history = append(s.history, result)
	s.moves1 = append(s.moves1, move1)
	s.moves2 = append(s.moves2, move2)
	return result, nil
}

// PlayMatch resets the simulator and plays exactly rounds rounds. The returned
// history is a copy owned by the caller.
func (s *MatchSimulator) PlayMatch(player1, player2 Player, rounds int, noise float64) (MatchHistory, error) {
	if rounds < 0 {
		return nil, fmt.Errorf("rounds must be >= 0: %d", rounds)
	}
	if noise < 0 || noise > 1 {
		return nil, fmt.Errorf("noise level must be in [0, 1]: %g", noise)
	}

	s.Reset()
	for i := 0; i < rounds; i++ {
		if _, err := s.PlayRound(player1, player2, noise); err != nil {
			return nil, err
		}
	}
	return s.History(), nil
}

// TotalScores sums payoffs over the current history.
func (s *MatchSimulator) TotalScores() (int, int) {
	return s.history.TotalScores()
}

// CooperationRates returns each side's cooperation fraction over the current
// history, (0, 0) when no rounds have been played.
func (s *MatchSimulator) CooperationRates() (float64, float64) {
	return s.history.CooperationRates()
}

// History returns a copy of the current match history.
func (s *MatchSimulator) History() MatchHistory {
	out := make(MatchHistory, len(s.history))
	copy(out, s.history)
	return out
}

// Rounds reports how many rounds the current match has played.
func (s *MatchSimulator) Rounds() int {
	return len(s.history)
}

// Reset clears history and the round counter; the payoff matrix and random
// source are untouched.
func (s *MatchSimulator) Reset() {
	s.history = s.history[:0]
	s.moves1 = s.moves1[:0]
	s.moves2 = s.moves2[:0]
}
