package players

import (
	"github.com/minaorangina/thegame/game"
)

// Choice is what a seat decides to do on its turn: play Move, or end the turn
type Choice struct {
	EndTurn bool
	Move    game.Move
}

// Seat decides the actions of one player
type Seat interface {
	Name() string
	Choose(g *game.Game, self game.Player) Choice
	// Rejected is called when the game refused the last choice
	Rejected(err error)
}

// HintSeat plays the cheapest legal move until it has met the turn's minimum,
// then only takes backwards jumps
type HintSeat struct {
	name string
}

func NewHintSeat(name string) HintSeat {
	return HintSeat{name: name}
}

func (s HintSeat) Name() string {
	return s.name
}

func (s HintSeat) Choose(g *game.Game, self game.Player) Choice {
	move, ok := game.SuggestMove(self.Hand, g.Piles)
	if !ok {
		return Choice{EndTurn: true}
	}
	if g.CurrentTurnPlays < g.MinCardsPerTurn() || isJump(move, g.Piles) {
		return Choice{Move: move}
	}
	return Choice{EndTurn: true}
}

func (s HintSeat) Rejected(error) {}

func isJump(m game.Move, piles game.Piles) bool {
	top, ok := piles.Top(m.Pile)
	if !ok {
		return false
	}
	kind, _ := m.Pile.Kind()
	if kind == game.Ascending {
		return m.Card == top-10
	}
	return m.Card == top+10
}
