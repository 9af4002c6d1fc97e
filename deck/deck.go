package deck

import "math/rand/v2"

// Deck represents the ordered cards remaining to be drawn.
// Cards are always drawn from the front.
type Deck []Card

// RNG is the source of randomness used for shuffling
type RNG interface {
	Intn(n int) int
}

type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

// DefaultRNG delegates to math/rand/v2, which is auto-seeded and safe for concurrent use
var DefaultRNG RNG = stdRNG{}

type seededRNG struct {
	r *rand.Rand
}

func (s seededRNG) Intn(n int) int { return s.r.IntN(n) }

// NewSeededRNG returns a repeatable RNG. It is not safe for concurrent use.
func NewSeededRNG(seed uint64) RNG {
	return seededRNG{rand.New(rand.NewPCG(seed, seed))}
}

// Hand is a set of cards dealt to a player
type Hand struct {
	PlayerID string
	Cards    []Card
}

// New creates an unshuffled deck of every card from LowestCard to HighestCard
func New() Deck {
	cards := make(Deck, 0, Size)
	for c := LowestCard; c <= HighestCard; c++ {
		cards = append(cards, c)
	}
	return cards
}

// Shuffle returns a shuffled copy of cards. The input is not modified.
func Shuffle(cards []Card, rng RNG) Deck {
	if rng == nil {
		rng = DefaultRNG
	}
	shuffled := make(Deck, len(cards))
	copy(shuffled, cards)

	// Fisher-Yates: j is drawn from [0, i] inclusive
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Deal hands out up to handSize cards to each player in order, drawing from the
// front of d. Players late in the order get fewer cards (possibly none) when the
// deck runs out. d is not modified; the undealt cards are returned.
func Deal(d []Card, playerIDs []string, handSize int) ([]Hand, Deck) {
	remaining := make(Deck, len(d))
	copy(remaining, d)

	hands := make([]Hand, 0, len(playerIDs))
	for _, id := range playerIDs {
		var cards []Card
		cards, remaining = remaining.take(handSize)
		hands = append(hands, Hand{PlayerID: id, Cards: cards})
	}
	return hands, remaining
}

// Replenish draws from the front of d until hand holds target cards or the deck
// is empty. Neither input is modified.
func Replenish(hand []Card, d []Card, target int) ([]Card, Deck) {
	newHand := make([]Card, len(hand), max(target, len(hand)))
	copy(newHand, hand)

	drawn, remaining := Deck(d).take(target - len(hand))
	newHand = append(newHand, drawn...)

	rest := make(Deck, len(remaining))
	copy(rest, remaining)
	return newHand, rest
}

// take returns a copy of at most n cards from the front, and the rest
func (d Deck) take(n int) ([]Card, Deck) {
	if n < 0 {
		n = 0
	}
	if n > len(d) {
		n = len(d)
	}
	taken := make([]Card, n)
	copy(taken, d[:n])
	return taken, d[n:]
}
