package tournament

import (
	"fmt"
	"math/rand"
	"sort"

	"dilemma/internal/game"
	"dilemma/internal/strategy"
)

// Engine runs round-robin tournaments over a fixed strategy set. Matches are
// seeded from the engine seed in pair order, so two engines with the same
// configuration and strategy set produce identical standings.
type Engine struct {
	matrix game.PayoffMatrix
	rounds int
	noise  float64
	seed   int64
}

// Standing aggregates one strategy's results across all of its matches.
type Standing struct {
	StrategyID      string  `json:"strategy_id"`
	TotalScore      int     `json:"total_score"`
	Matches         int     `json:"matches"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Ties            int     `json:"ties"`
	CooperationRate float64 `json:"cooperation_rate"`
	AverageScore    float64 `json:"average_score"`
}

// Match is one played pairing with its full history.
type Match struct {
	Strategy1 string            `json:"strategy_1"`
	Strategy2 string            `json:"strategy_2"`
	Score1    int               `json:"score_1"`
	Score2    int               `json:"score_2"`
	History   game.MatchHistory `json:"history"`
}

// Tournament is a finished round-robin run. Standings are sorted descending
// by total score; equal scores break lexicographically by strategy id.
type Tournament struct {
	Standings []Standing `json:"standings"`
	Matches   []Match    `json:"matches"`
	Winner    string     `json:"winner"`
}

// NewEngine validates the tournament configuration. Rounds must be positive
// and the noise level must lie in [0, 1].
func NewEngine(matrix game.PayoffMatrix, rounds int, noise float64, seed int64) (*Engine, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("rounds per match must be > 0: %d", rounds)
	}
	if noise < 0 || noise > 1 {
		return nil, fmt.Errorf("noise level must be in [0, 1]: %g", noise)
	}
	return &Engine{matrix: matrix, rounds: rounds, noise: noise, seed: seed}, nil
}

// Run plays every unordered pair of distinct strategies exactly once and
// ranks the accumulated standings. A strategy never plays itself. Fewer than
// two strategies is an invalid-argument error, not an empty result.
func (e *Engine) Run(strategies []strategy.Strategy) (Tournament, error) {
	if len(strategies) < 2 {
		return Tournament{}, fmt.Errorf("at least 2 strategies are required: %d", len(strategies))
	}
	if err := checkDistinctIDs(strategies); err != nil {
		return Tournament{}, err
	}

	type tally struct {
		score   int
		matches int
		wins    int
		losses  int
		ties    int
		coops   int
		rounds  int
	}
	tallies := make(map[string]*tally, len(strategies))
	for _, s := range strategies {
		tallies[s.Info().ID] = &tally{}
	}

	seeds := rand.New(rand.NewSource(e.seed))
	matches := make([]Match, 0, len(strategies)*(len(strategies)-1)/2)
	for i := 0; i < len(strategies); i++ {
		for j := i + 1; j < len(strategies); j++ {
			s1, s2 := strategies[i], strategies[j]
			sim := game.NewMatchSimulator(e.matrix, seeds.Int63())
			history, err := sim.PlayMatch(s1, s2, e.rounds, e.noise)
			if err != nil {
				return Tournament{}, fmt.Errorf("match %s vs %s: %w", s1.Info().ID, s2.Info().ID, err)
			}
			score1, score2 := history.TotalScores()
			matches = append(matches, Match{
				Strategy1: s1.Info().ID,
				Strategy2: s2.Info().ID,
				Score1:    score1,
				Score2:    score2,
				History:   history,
			})

			t1 := tallies[s1.Info().ID]
			t2 := tallies[s2.Info().ID]
			t1.score += score1
			t2.score += score2
			t1.matches++
			t2.matches++
			t1.rounds += len(history)
			t2.rounds += len(history)
			for _, round := range history {
				if round.Move1 == game.Cooperate {
					t1.coops++
				}
				if round.Move2 == game.Cooperate {
					t2.coops++
				}
			}
			switch {
			case score1 > score2:
				t1.wins++
				t2.losses++
			case score2 > score1:
				t2.wins++
				t1.losses++
			default:
				t1.ties++
				t2.ties++
			}
		}
	}

	standings := make([]Standing, 0, len(strategies))
	for _, s := range strategies {
		id := s.Info().ID
		t := tallies[id]
		standing := Standing{
			StrategyID: id,
			TotalScore: t.score,
			Matches:    t.matches,
			Wins:       t.wins,
			Losses:     t.losses,
			Ties:       t.ties,
		}
		if t.rounds > 0 {
			standing.CooperationRate = float64(t.coops) / float64(t.rounds)
		}
		if t.matches > 0 {
			standing.AverageScore = float64(t.score) / float64(t.matches)
		}
		standings = append(standings, standing)
	}
	sortStandings(standings)

	return Tournament{
		Standings: standings,
		Matches:   matches,
		Winner:    standings[0].StrategyID,
	}, nil
}

// sortStandings orders descending by total score, breaking ties
// lexicographically by strategy id.
func sortStandings(standings []Standing) {
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].TotalScore == standings[j].TotalScore {
			return standings[i].StrategyID < standings[j].StrategyID
		}
		return standings[i].TotalScore > standings[j].TotalScore
	})
}

func checkDistinctIDs(strategies []strategy.Strategy) error {
	seen := make(map[string]struct{}, len(strategies))
	for _, s := range strategies {
		id := s.Info().ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate strategy id: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
