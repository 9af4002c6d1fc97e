package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/minaorangina/thegame/deck"
)

// The functions in this file never modify the game they are given. On success
// they return a new snapshot with its status re-evaluated.

// SetPlayerName claims a seat. Names are trimmed and must be unique ignoring case.
// The status is left alone; follow up with CheckAutoStart.
func SetPlayerName(g *Game, playerID, name string) (*Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	if _, ok := g.Player(playerID); !ok {
		return nil, ErrUnknownPlayerID
	}
	for _, p := range g.Players {
		if p.ID != playerID && strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
	}

	next := g.Clone()
	next.player(playerID).Name = name
	return next, nil
}

// CheckAutoStart deals a fresh game once every seat has a unique name. A game
// missing names is put back into waiting_players.
func CheckAutoStart(g *Game, rng deck.RNG) *Game {
	next := g.Clone()

	if len(next.Players) == 0 {
		return next
	}
	if !next.NamesComplete() {
		if next.Status != StatusWaiting {
			next.restamp()
		}
		return next
	}
	if next.Status != StatusWaiting {
		return next
	}

	deal(next, rng)
	next.AutoStarted = true
	next.restamp()
	return next
}

// Restart reshuffles and deals again to the same players, and restarts the
// game's expiry clock.
func Restart(g *Game, rng deck.RNG, now time.Time) (*Game, error) {
	if len(g.Players) == 0 {
		return nil, ErrTooFewPlayers
	}
	if !g.NamesComplete() {
		return nil, ErrWaitingForPlayers
	}

	next := g.Clone()
	deal(next, rng)
	next.CreatedAt = now
	next.restamp()
	return next, nil
}

// deal resets piles, deck, hands and turn bookkeeping
func deal(g *Game, rng deck.RNG) {
	ids := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		ids = append(ids, p.ID)
	}

	hands, rest := deck.Deal(deck.Shuffle(deck.New(), rng), ids, HandSize)
	for i, h := range hands {
		g.Players[i].Hand = h.Cards
	}

	g.Piles = NewPiles()
	g.Deck = rest
	g.TurnOrder = ids
	g.CurrentPlayer = ids[0]
	g.CurrentTurnPlays = 0
	g.CompletedRounds = 0
}

// SubmitPlay places card from the player's hand onto pile
func SubmitPlay(g *Game, playerID string, card deck.Card, pile PileID) (*Game, error) {
	p, err := checkTurn(g, playerID)
	if err != nil {
		return nil, err
	}

	kind, ok := pile.Kind()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPile, pile)
	}
	if !holds(p.Hand, card) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}
	top, _ := g.Piles.Top(pile)
	if !IsLegal(kind, top, card) {
		return nil, fmt.Errorf("%w: cannot play %s on %s showing %s", ErrIllegalMove, card, pile, top)
	}

	next := g.Clone()
	np := next.player(playerID)
	np.Hand = without(np.Hand, card)
	next.Piles[pile] = append(next.Piles[pile], card)
	next.CurrentTurnPlays++
	next.restamp()

	return next, nil
}

// SubmitEndTurn finishes the player's turn: their hand is topped up from the
// deck and play passes on. Players who cannot move are passed over while
// anyone else still can.
func SubmitEndTurn(g *Game, playerID string) (*Game, error) {
	p, err := checkTurn(g, playerID)
	if err != nil {
		return nil, err
	}

	required := g.MinCardsPerTurn()
	if g.CurrentTurnPlays < required && CanMove(p.Hand, g.Piles) {
		return nil, &MinimumPlaysError{Required: required, Played: g.CurrentTurnPlays}
	}

	next := g.Clone()
	np := next.player(playerID)
	np.Hand, next.Deck = deck.Replenish(np.Hand, next.Deck, HandSize)

	nextID, wrapped := next.rotate(playerID)
	next.CurrentPlayer = nextID
	next.CurrentTurnPlays = 0
	if wrapped {
		next.CompletedRounds++
	}
	next.restamp()

	return next, nil
}

// rotate picks who plays after current, and whether the turn passed the
// first seat on the way
func (g *Game) rotate(current string) (string, bool) {
	target, ok := NextWhoCanMove(g.TurnOrder, current, g.Players, g.Piles, CanMove, len(g.TurnOrder))
	if !ok {
		target = NextPlayer(g.TurnOrder, current)
	}
	if target == "" || len(g.TurnOrder) == 0 {
		return current, false
	}

	wrapped := false
	id := current
	for step := 0; step < len(g.TurnOrder); step++ {
		id = NextPlayer(g.TurnOrder, id)
		if id == g.TurnOrder[0] {
			wrapped = true
		}
		if id == target {
			break
		}
	}
	return target, wrapped
}

func checkTurn(g *Game, playerID string) (Player, error) {
	p, ok := g.Player(playerID)
	if !ok {
		return Player{}, ErrUnknownPlayerID
	}
	if g.Status != StatusInProgress {
		return Player{}, fmt.Errorf("%w (status %s)", ErrGameNotInProgress, g.Status)
	}
	if g.CurrentPlayer != playerID {
		return Player{}, ErrNotYourTurn
	}
	return p, nil
}

func holds(hand []deck.Card, card deck.Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

func without(hand []deck.Card, card deck.Card) []deck.Card {
	out := make([]deck.Card, 0, len(hand))
	for _, c := range hand {
		if c != card {
			out = append(out, c)
		}
	}
	return out
}
