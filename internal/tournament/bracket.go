package tournament

import (
	"fmt"
	"math/rand"

	"dilemma/internal/game"
	"dilemma/internal/strategy"
)

// BracketPairing is one played (or bye) pairing within a bracket round.
// Strategy2 is empty for a bye.
type BracketPairing struct {
	Strategy1 string `json:"strategy_1"`
	Strategy2 string `json:"strategy_2,omitempty"`
	Score1    int    `json:"score_1"`
	Score2    int    `json:"score_2"`
	Winner    string `json:"winner"`
}

// BracketRound preserves every pairing of one elimination round for audit.
type BracketRound struct {
	Round    int              `json:"round"`
	Pairings []BracketPairing `json:"pairings"`
}

// Bracket is a finished single-elimination run.
type Bracket struct {
	Rounds []BracketRound `json:"rounds"`
	Winner string         `json:"winner"`
}

// RunBracket pairs adjacent strategies, advances the higher scorer of each
// pairing (the first on a tie), and repeats until one strategy remains. With
// an odd field the trailing strategy advances on a bye.
func (e *Engine) RunBracket(strategies []strategy.Strategy) (Bracket, error) {
	if len(strategies) < 2 {
		return Bracket{}, fmt.Errorf("at least 2 strategies are required: %d", len(strategies))
	}
	if err := checkDistinctIDs(strategies); err != nil {
		return Bracket{}, err
	}

	seeds := rand.New(rand.NewSource(e.seed))
	remaining := append([]strategy.Strategy(nil), strategies...)
	var rounds []BracketRound

	for len(remaining) > 1 {
		round := BracketRound{Round: len(rounds) + 1}
		var advancing []strategy.Strategy

		for i := 0; i+1 < len(remaining); i += 2 {
			s1, s2 := remaining[i], remaining[i+1]
			sim := game.NewMatchSimulator(e.matrix, seeds.Int63())
			history, err := sim.PlayMatch(s1, s2, e.rounds, e.noise)
			if err != nil {
				return Bracket{}, fmt.Errorf("bracket match %s vs %s: %w", s1.Info().ID, s2.Info().ID, err)
			}
			score1, score2 := history.TotalScores()
			winner := s1
			if score2 > score1 {
				winner = s2
			}
			round.Pairings = append(round.Pairings, BracketPairing{
				Strategy1: s1.Info().ID,
				Strategy2: s2.Info().ID,
				Score1:    score1,
				Score2:    score2,
				Winner:    winner.Info().ID,
			})
			advancing = append(advancing, winner)
		}
		if len(remaining)%2 == 1 {
			bye := remaining[len(remaining)-1]
			round.Pairings = append(round.Pairings, BracketPairing{
				Strategy1: bye.Info().ID,
				Winner:    bye.Info().ID,
			})
			advancing = append(advancing, bye)
		}

		rounds = append(rounds, round)
		remaining = advancing
	}

	return Bracket{
		Rounds: rounds,
		Winner: remaining[0].Info().ID,
	}, nil
}
