package players

import (
	"bytes"
	"strings"
	"testing"

	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/game"
	utils "github.com/minaorangina/thegame/internal"
	"github.com/stretchr/testify/assert"
)

func TestSendText(t *testing.T) {
	t.Run("send simple text", func(t *testing.T) {
		buffer := &bytes.Buffer{}
		want := "Hello"
		SendText(buffer, want)

		utils.AssertEqual(t, buffer.String(), want)
	})

	t.Run("send formatted text", func(t *testing.T) {
		buffer := &bytes.Buffer{}
		want := "Hello, human"
		format := "Hello, %s"
		SendText(buffer, format, "human")

		utils.AssertEqual(t, buffer.String(), want)
	})
}

func TestBuildTableText(t *testing.T) {
	piles := game.NewPiles()
	piles[game.Asc2] = []deck.Card{1, 17}
	g := tableWith(0, []deck.Card{50, 51, 52}, piles)

	got := buildTableText(g)

	assert.Contains(t, got, "The deck has 3 card(s) left.")
	assert.Contains(t, got, "- asc1  (up) 1\n")
	assert.Contains(t, got, "- asc2  (up) 17\n")
	assert.Contains(t, got, "- desc1 (down) 100\n")
}

func TestBuildMovesText(t *testing.T) {
	t.Run("no moves", func(t *testing.T) {
		got := buildMovesText(nil, 1, 2)

		assert.Contains(t, got, "You have played 1 of the 2 card(s)")
		assert.Contains(t, got, "None of your cards fit anywhere.")
		assert.Contains(t, got, "0 - end your turn")
	})

	t.Run("lettered moves", func(t *testing.T) {
		got := buildMovesText([]game.Move{{Card: 5, Pile: game.Asc1}, {Card: 95, Pile: game.Desc1}}, 0, 2)

		assert.Contains(t, got, "A - play 5 on asc1\n")
		assert.Contains(t, got, "B - play 95 on desc1\n")
	})

	t.Run("the end turn key is not a move letter", func(t *testing.T) {
		moves := game.LegalMoves([]deck.Card{10, 20}, game.NewPiles())

		got := buildMovesText(moves, 0, 2)

		assert.Equal(t, 1, strings.Count(got, "\nE - "))
		assert.Contains(t, got, "E - play 20 on desc1\n")
		assert.Contains(t, got, "0 - end your turn\n")
	})
}

func TestBuildOutcomeText(t *testing.T) {
	g := tableWith(0, nil, nil)
	g.Status = game.StatusVictory
	assert.Contains(t, buildOutcomeText(g), "You won!")

	g.Status = game.StatusDefeat
	assert.Contains(t, buildOutcomeText(g), "The game is lost.")
}
