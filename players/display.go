package players

import (
	"fmt"
	"io"
	"strings"

	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/game"
)

const (
	upperCaseA     = 'A'
	endTurnKey     = "0"
	timeoutText    = "\nTimed out: I will choose for you.\n"
	maxRetriesText = "\nMax retries exceeded: I will choose for you.\n"
	retryMoveText  = "Invalid choice %q. Enter a letter from the list, or 0 to end your turn.\n"
	promptText     = "\nWhat would you like to do? "
)

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

func buildTableText(g *game.Game) string {
	text := fmt.Sprintf("\nThe deck has %d card(s) left.\n", len(g.Deck))
	for _, id := range game.PileIDs {
		top, _ := g.Piles.Top(id)
		kind, _ := id.Kind()
		arrow := "up"
		if kind == game.Descending {
			arrow = "down"
		}
		text += fmt.Sprintf("- %-5s (%s) %s\n", id, arrow, top)
	}
	return text
}

func buildHandText(p game.Player) string {
	return fmt.Sprintf("\n%s, in your hand you have: %s\n", p.Name, joinCards(p.Hand))
}

func buildMovesText(moves []game.Move, plays, required int) string {
	text := fmt.Sprintf("You have played %d of the %d card(s) needed this turn.\n\n", plays, required)
	if len(moves) == 0 {
		text += "None of your cards fit anywhere.\n"
	}
	for i, m := range moves {
		text += fmt.Sprintf("%c - play %s on %s\n", rune(upperCaseA+i), m.Card, m.Pile)
	}
	return text + endTurnKey + " - end your turn\n"
}

func buildOutcomeText(g *game.Game) string {
	s := g.Stats()
	var text string
	switch g.Status {
	case game.StatusVictory:
		text = "\nEvery card has been played. You won!\n"
	case game.StatusDefeat:
		text = "\nNobody can play another card. The game is lost.\n"
	default:
		text = fmt.Sprintf("\nThe game stopped while %s.\n", g.Status)
	}
	return text + fmt.Sprintf("Cards played: %d, left in the deck: %d, players holding cards: %d, rounds: %d\n",
		s.CardsPlayed, s.CardsLeft, s.PlayersWithCards, s.Rounds)
}

func joinCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
