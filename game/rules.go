package game

import (
	"sort"

	"github.com/minaorangina/thegame/deck"
)

const (
	ascendingStart  deck.Card = 1
	descendingStart deck.Card = 100
	backwardsJump   deck.Card = 10
)

// Kind is the direction a pile is built in
type Kind int

const (
	Ascending Kind = iota
	Descending
)

func (k Kind) String() string {
	if k == Descending {
		return "desc"
	}
	return "asc"
}

// PileID names one of the four piles
type PileID string

const (
	Asc1  PileID = "asc1"
	Asc2  PileID = "asc2"
	Desc1 PileID = "desc1"
	Desc2 PileID = "desc2"
)

// PileIDs lists the piles in display order
var PileIDs = []PileID{Asc1, Asc2, Desc1, Desc2}

// Kind returns the direction of the pile. ok is false for unknown piles.
func (id PileID) Kind() (kind Kind, ok bool) {
	switch id {
	case Asc1, Asc2:
		return Ascending, true
	case Desc1, Desc2:
		return Descending, true
	}
	return Ascending, false
}

// Piles maps each pile to its cards, oldest first. Piles only ever grow.
type Piles map[PileID][]deck.Card

// NewPiles returns the four piles holding only their starting sentinels
func NewPiles() Piles {
	return Piles{
		Asc1:  {ascendingStart},
		Asc2:  {ascendingStart},
		Desc1: {descendingStart},
		Desc2: {descendingStart},
	}
}

// Top returns the most recently played card on a pile
func (p Piles) Top(id PileID) (deck.Card, bool) {
	cards, ok := p[id]
	if !ok || len(cards) == 0 {
		return 0, false
	}
	return cards[len(cards)-1], true
}

// AllPlayed reports whether every pile has received at least one real card
func (p Piles) AllPlayed() bool {
	for _, id := range PileIDs {
		if len(p[id]) < 2 {
			return false
		}
	}
	return true
}

func (p Piles) clone() Piles {
	c := make(Piles, len(p))
	for id, cards := range p {
		c[id] = append([]deck.Card{}, cards...)
	}
	return c
}

// IsLegal reports whether card may be placed on a pile of the given kind
// showing top. A card exactly ten behind the top is always allowed.
func IsLegal(kind Kind, top, card deck.Card) bool {
	switch kind {
	case Ascending:
		return card > top || card == top-backwardsJump
	case Descending:
		return card < top || card == top+backwardsJump
	}
	return false
}

// MoveOracle decides whether a hand has any legal move on the piles
type MoveOracle func(hand []deck.Card, piles Piles) bool

// CanMove reports whether at least one card in hand can be played on any pile
func CanMove(hand []deck.Card, piles Piles) bool {
	for _, card := range hand {
		for _, id := range PileIDs {
			if canPlay(piles, id, card) {
				return true
			}
		}
	}
	return false
}

func canPlay(piles Piles, id PileID, card deck.Card) bool {
	kind, ok := id.Kind()
	if !ok {
		return false
	}
	top, ok := piles.Top(id)
	if !ok {
		return false
	}
	return IsLegal(kind, top, card)
}

// Move is a single card placement
type Move struct {
	Card deck.Card `json:"card"`
	Pile PileID    `json:"pile"`
}

// gap is how much of a pile's range the move uses up. Backwards jumps win back
// range and so have negative gaps.
func (m Move) gap(piles Piles) int {
	top, _ := piles.Top(m.Pile)
	if kind, _ := m.Pile.Kind(); kind == Descending {
		return int(top - m.Card)
	}
	return int(m.Card - top)
}

// LegalMoves lists every legal placement for the hand, cheapest first
func LegalMoves(hand []deck.Card, piles Piles) []Move {
	moves := []Move{}
	for _, card := range hand {
		for _, id := range PileIDs {
			if canPlay(piles, id, card) {
				moves = append(moves, Move{Card: card, Pile: id})
			}
		}
	}

	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].gap(piles) < moves[j].gap(piles)
	})
	return moves
}

// SuggestMove returns the legal move that wastes the least of a pile's range
func SuggestMove(hand []deck.Card, piles Piles) (Move, bool) {
	moves := LegalMoves(hand, piles)
	if len(moves) == 0 {
		return Move{}, false
	}
	return moves[0], true
}
