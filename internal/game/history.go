package game

// RoundResult records one played round. Moves are the realized moves after
// the noise channel, never the intended ones.
type RoundResult struct {
	Round  int  `json:"round"`
	Move1  Move `json:"move_1"`
	Move2  Move `json:"move_2"`
	Score1 int  `json:"score_1"`
	Score2 int  `json:"score_2"`
}

// MatchHistory is the ordered sequence of rounds for one match.
type MatchHistory []RoundResult

// TotalScores sums per-round payoffs for both sides.
func (h MatchHistory) TotalScores() (int, int) {
	score1, score2 := 0, 0
	for _, round := range h {
		score1 += round.Score1
		score2 += round.Score2
	}
	return score1, score2
}

// CooperationRates returns each side's fraction of cooperating rounds.
// An empty history yields (0, 0).
func (h MatchHistory) CooperationRates() (float64, float64) {
	if len(h) == 0 {
		return 0, 0
	}
	coop1, coop2 := 0, 0
	for _, round := range h {
		if round.Move1 == Cooperate {
			coop1++
		}
		if round.Move2 == Cooperate {
			coop2++
		}
	}
	total := float64(len(h))
	return float64(coop1) / total, float64(coop2) / total
}
