package game

import "fmt"

// Move is one side's action in a single round.
type Move int

const (
	Cooperate Move = iota
	Defect
)

func (m Move) String() string {
	switch m {
	case Cooperate:
		return "cooperate"
	case Defect:
		return "defect"
	default:
		return fmt.Sprintf("move(%d)", int(m))
	}
}

// Flip returns the opposite move. The noise channel uses it to corrupt an
// intended move before it is recorded.
func (m Move) Flip() Move {
	if m == Cooperate {
		return Defect
	}
	return Cooperate
}

// Player decides one move from the realized history of a match. Histories
// contain what actually happened on the wire: a noise-flipped move is
// indistinguishable from an intended one.
type Player interface {
	Decide(self, opponent []Move) Move
}
