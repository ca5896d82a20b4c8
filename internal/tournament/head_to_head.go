package tournament

import (
	"fmt"
	"math/rand"

	"dilemma/internal/game"
	"dilemma/internal/strategy"
)

// HeadToHead summarizes repeated independent matches between two strategies.
type HeadToHead struct {
	Strategy1        string  `json:"strategy_1"`
	Strategy2        string  `json:"strategy_2"`
	Matches          int     `json:"matches"`
	Wins1            int     `json:"wins_1"`
	Wins2            int     `json:"wins_2"`
	Ties             int     `json:"ties"`
	AverageScore1    float64 `json:"average_score_1"`
	AverageScore2    float64 `json:"average_score_2"`
	CooperationRate1 float64 `json:"cooperation_rate_1"`
	CooperationRate2 float64 `json:"cooperation_rate_2"`
}

// RunHeadToHead plays numMatches independent matches between exactly two
// strategies, each on a fresh simulator, for diagnostic comparison outside the
// round-robin.
func (e *Engine) RunHeadToHead(s1, s2 strategy.Strategy, numMatches int) (HeadToHead, error) {
	if s1 == nil || s2 == nil {
		return HeadToHead{}, fmt.Errorf("both strategies are required")
	}
	if numMatches <= 0 {
		return HeadToHead{}, fmt.Errorf("match count must be > 0: %d", numMatches)
	}

	stats := HeadToHead{
		Strategy1: s1.Info().ID,
		Strategy2: s2.Info().ID,
		Matches:   numMatches,
	}
	totalScore1, totalScore2 := 0, 0
	totalCoop1, totalCoop2 := 0.0, 0.0

	seeds := rand.New(rand.NewSource(e.seed))
	for i := 0; i < numMatches; i++ {
		sim := game.NewMatchSimulator(e.matrix, seeds.Int63())
		history, err := sim.PlayMatch(s1, s2, e.rounds, e.noise)
		if err != nil {
			return HeadToHead{}, err
		}
		score1, score2 := history.TotalScores()
		coop1, coop2 := history.CooperationRates()
		totalScore1 += score1
		totalScore2 += score2
		totalCoop1 += coop1
		totalCoop2 += coop2
		switch {
		case score1 > score2:
			stats.Wins1++
		case score2 > score1:
			stats.Wins2++
		default:
			stats.Ties++
		}
	}

	n := float64(numMatches)
	stats.AverageScore1 = float64(totalScore1) / n
	stats.AverageScore2 = float64(totalScore2) / n
	stats.CooperationRate1 = totalCoop1 / n
	stats.CooperationRate2 = totalCoop2 / n
	return stats, nil
}
