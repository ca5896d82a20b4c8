package game

import "fmt"

// Payoff is one cell of the payoff matrix: what each side receives when the
// cell's move pair is played.
type Payoff struct {
	Own      int `json:"own"`
	Opponent int `json:"opponent"`
}

// PayoffMatrix maps an (own move, opponent move) pair to a payoff pair.
// Construction does not enforce the prisoner's dilemma ordering so callers can
// explore arbitrary symmetric 2x2 games; Validate reports whether the matrix
// is a proper dilemma.
type PayoffMatrix struct {
	CC Payoff `json:"cc"`
	CD Payoff `json:"cd"`
	DC Payoff `json:"dc"`
	DD Payoff `json:"dd"`
}

// Canonical returns the payoff matrix used throughout the dilemma literature:
// R=3, S=0, T=5, P=1.
func Canonical() PayoffMatrix {
	return PayoffMatrix{
		CC: Payoff{Own: 3, Opponent: 3},
		CD: Payoff{Own: 0, Opponent: 5},
		DC: Payoff{Own: 5, Opponent: 0},
		DD: Payoff{Own: 1, Opponent: 1},
	}
}

// Lookup returns the payoff pair for an (own, opponent) move combination.
func (m PayoffMatrix) Lookup(own, opponent Move) Payoff {
	switch {
	case own == Cooperate && opponent == Cooperate:
		return m.CC
	case own == Cooperate && opponent == Defect:
		return m.CD
	case own == Defect && opponent == Cooperate:
		return m.DC
	default:
		return m.DD
	}
}

// Validate checks the canonical dilemma ordering T > R > P > S together with
// 2R > T + S, which makes mutual cooperation beat alternating exploitation.
func (m PayoffMatrix) Validate() error {
	t := m.DC.Own
	r := m.CC.Own
	p := m.DD.Own
	s := m.CD.Own
	if !(t > r && r > p && p > s) {
		return fmt.Errorf("payoff ordering must satisfy T > R > P > S: T=%d R=%d P=%d S=%d", t, r, p, s)
	}
	if 2*r <= t+s {
		return fmt.Errorf("payoffs must satisfy 2R > T+S: R=%d T=%d S=%d", r, t, s)
	}
	return nil
}
