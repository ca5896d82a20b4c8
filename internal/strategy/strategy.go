package strategy

import "dilemma/internal/game"

// Info is static descriptive metadata for a strategy. The classification tags
// are unenforced labels for categorization and reporting; they never alter
// how a match is played.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Nice strategies never defect on the first round.
	Nice bool `json:"nice"`
	// Forgiving strategies can return to cooperation after a defection.
	Forgiving bool `json:"forgiving"`
	// Provokable strategies retaliate against defection.
	Provokable bool `json:"provokable"`
	// Clear strategies are deterministic and easy to read.
	Clear bool `json:"clear"`
}

// Strategy is a decision function over realized match history plus identity
// metadata. Decide is called once per round with the strategy's own realized
// moves and the opponent's realized moves so far; it must not mutate either
// slice.
type Strategy interface {
	game.Player
	Info() Info
}
