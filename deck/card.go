package deck

import "strconv"

const (
	// LowestCard and HighestCard bound the playable cards
	LowestCard  Card = 2
	HighestCard Card = 99
	// Size is the number of cards in a full deck
	Size = int(HighestCard-LowestCard) + 1
)

// Card represents a numbered playing card.
// Cards have no identity beyond their value; a deck never holds duplicates.
type Card int

// Valid reports whether the card is within the playable range
func (c Card) Valid() bool {
	return c >= LowestCard && c <= HighestCard
}

func (c Card) String() string {
	return strconv.Itoa(int(c))
}
