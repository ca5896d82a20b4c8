package strategy

import (
	"math/rand"

	"dilemma/internal/game"
)

// AlwaysCooperate cooperates unconditionally.
type AlwaysCooperate struct{}

func (AlwaysCooperate) Info() Info {
	return Info{
		ID:          "always_cooperate",
		Name:        "Always Cooperate",
		Description: "Cooperates on every round regardless of history.",
		Nice:        true,
		Forgiving:   true,
		Clear:       true,
	}
}

func (AlwaysCooperate) Decide(_, _ []game.Move) game.Move {
	return game.Cooperate
}

// AlwaysDefect defects unconditionally.
type AlwaysDefect struct{}

func (AlwaysDefect) Info() Info {
	return Info{
		ID:          "always_defect",
		Name:        "Always Defect",
		Description: "Defects on every round regardless of history.",
		Clear:       true,
	}
}

func (AlwaysDefect) Decide(_, _ []game.Move) game.Move {
	return game.Defect
}

// TitForTat cooperates first, then mirrors the opponent's previous move.
type TitForTat struct{}

func (TitForTat) Info() Info {
	return Info{
		ID:          "tit_for_tat",
		Name:        "Tit for Tat",
		Description: "Cooperates on the first round, then repeats the opponent's last move.",
		Nice:        true,
		Forgiving:   true,
		Provokable:  true,
		Clear:       true,
	}
}

func (TitForTat) Decide(_, opponent []game.Move) game.Move {
	if len(opponent) == 0 {
		return game.Cooperate
	}
	return opponent[len(opponent)-1]
}

// SuspiciousTitForTat defects first, then mirrors the opponent's previous move.
type SuspiciousTitForTat struct{}

func (SuspiciousTitForTat) Info() Info {
	return Info{
		ID:          "suspicious_tit_for_tat",
		Name:        "Suspicious Tit for Tat",
		Description: "Defects on the first round, then repeats the opponent's last move.",
		Forgiving:   true,
		Provokable:  true,
		Clear:       true,
	}
}

func (SuspiciousTitForTat) Decide(_, opponent []game.Move) game.Move {
	if len(opponent) == 0 {
		return game.Defect
	}
	return opponent[len(opponent)-1]
}

// TitForTwoTats defects only after two consecutive opponent defections.
type TitForTwoTats struct{}

func (TitForTwoTats) Info() Info {
	return Info{
		ID:          "tit_for_two_tats",
		Name:        "Tit for Two Tats",
		Description: "Defects only when the opponent defected on both of the last two rounds.",
		Nice:        true,
		Forgiving:   true,
		Provokable:  true,
		Clear:       true,
	}
}

func (TitForTwoTats) Decide(_, opponent []game.Move) game.Move {
	n := len(opponent)
	if n < 2 {
		return game.Cooperate
	}
	if opponent[n-1] == game.Defect && opponent[n-2] == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}

// GenerousTitForTat mirrors the opponent but forgives a defection with a fixed
// probability, which breaks retaliation loops under noise.
type GenerousTitForTat struct {
	Rand        *rand.Rand
	Forgiveness float64
}

func (GenerousTitForTat) Info() Info {
	return Info{
		ID:          "generous_tit_for_tat",
		Name:        "Generous Tit for Tat",
		Description: "Tit for Tat that forgives a defection with a fixed probability.",
		Nice:        true,
		Forgiving:   true,
		Provokable:  true,
	}
}

func (s GenerousTitForTat) Decide(_, opponent []game.Move) game.Move {
	if len(opponent) == 0 {
		return game.Cooperate
	}
	last := opponent[len(opponent)-1]
	if last == game.Defect && s.Rand != nil && s.Rand.Float64() < s.Forgiveness {
		return game.Cooperate
	}
	return last
}

// GrimTrigger cooperates until the opponent defects once, then defects forever.
type GrimTrigger struct{}

func (GrimTrigger) Info() Info {
	return Info{
		ID:          "grim_trigger",
		Name:        "Grim Trigger",
		Description: "Cooperates until the first opponent defection, then defects forever.",
		Nice:        true,
		Provokable:  true,
		Clear:       true,
	}
}

func (GrimTrigger) Decide(_, opponent []game.Move) game.Move {
	for _, move := range opponent {
		if move == game.Defect {
			return game.Defect
		}
	}
	return game.Cooperate
}

// Pavlov plays win-stay lose-shift: cooperate after rounds where both sides
// played the same move, defect after mismatched rounds.
type Pavlov struct{}

func (Pavlov) Info() Info {
	return Info{
		ID:          "pavlov",
		Name:        "Pavlov",
		Description: "Win-stay lose-shift: cooperates when the last round's moves matched.",
		Nice:        true,
		Forgiving:   true,
		Provokable:  true,
		Clear:       true,
	}
}

func (Pavlov) Decide(self, opponent []game.Move) game.Move {
	n := len(self)
	if n == 0 || len(opponent) == 0 {
		return game.Cooperate
	}
	if self[n-1] == opponent[len(opponent)-1] {
		return game.Cooperate
	}
	return game.Defect
}

// Random cooperates with a fixed probability each round.
type Random struct {
	Rand *rand.Rand
	Bias float64
}

func (Random) Info() Info {
	return Info{
		ID:          "random",
		Name:        "Random",
		Description: "Cooperates with a fixed probability, independent of history.",
	}
}

func (s Random) Decide(_, _ []game.Move) game.Move {
	bias := s.Bias
	if bias <= 0 {
		bias = 0.5
	}
	if s.Rand != nil && s.Rand.Float64() < bias {
		return game.Cooperate
	}
	return game.Defect
}

// Alternator cooperates on odd rounds and defects on even rounds.
type Alternator struct{}

func (Alternator) Info() Info {
	return Info{
		ID:          "alternator",
		Name:        "Alternator",
		Description: "Alternates between cooperation and defection, starting with cooperation.",
		Nice:        true,
		Forgiving:   true,
		Clear:       true,
	}
}

func (Alternator) Decide(self, _ []game.Move) game.Move {
	if len(self)%2 == 0 {
		return game.Cooperate
	}
	return game.Defect
}

// Majority cooperates while the opponent has cooperated at least as often as
// it has defected.
type Majority struct{}

func (Majority) Info() Info {
	return Info{
		ID:          "majority",
		Name:        "Soft Majority",
		Description: "Cooperates when the opponent's cooperations are at least its defections.",
		Nice:        true,
		Forgiving:   true,
		Provokable:  true,
		Clear:       true,
	}
}

func (Majority) Decide(_, opponent []game.Move) game.Move {
	coops := 0
	for _, move := range opponent {
		if move == game.Cooperate {
			coops++
		}
	}
	if 2*coops >= len(opponent) {
		return game.Cooperate
	}
	return game.Defect
}

const defaultForgiveness = 0.1

// Catalog returns the canonical built-in strategy set. Stochastic members
// share the supplied random source; a nil source makes them degrade to their
// deterministic baseline (GTFT plays plain Tit for Tat, Random always
// defects).
func Catalog(rng *rand.Rand) []Strategy {
	return []Strategy{
		AlwaysCooperate{},
		AlwaysDefect{},
		TitForTat{},
		SuspiciousTitForTat{},
		TitForTwoTats{},
		GenerousTitForTat{Rand: rng, Forgiveness: defaultForgiveness},
		GrimTrigger{},
		Pavlov{},
		Random{Rand: rng, Bias: 0.5},
		Alternator{},
		Majority{},
	}
}
