package players

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minaorangina/thegame"
	"github.com/minaorangina/thegame/game"
)

const maxRejections = 10

var (
	ErrNoSeat = errors.New("no seat for player")
	ErrStuck  = errors.New("seat keeps making choices the game refuses")
)

// Table seats players at one game and plays it to the end
type Table struct {
	Engine *thegame.GameEngine
	GameID string
	Seats  map[string]Seat
	// Out receives the outcome when the game ends. Optional.
	Out io.Writer
}

// Play asks the current player's seat what to do until the game is over.
// maxActions bounds the number of actions taken, when positive.
func (t Table) Play(ctx context.Context, maxActions int) (*game.Game, error) {
	g, err := t.Engine.Game(ctx, t.GameID)
	if err != nil {
		return nil, err
	}
	if g.Status == game.StatusWaiting {
		return g, game.ErrWaitingForPlayers
	}

	rejections := 0
	for actions := 0; g.Status == game.StatusInProgress; actions++ {
		if err := ctx.Err(); err != nil {
			return g, err
		}
		if maxActions > 0 && actions >= maxActions {
			return g, fmt.Errorf("game %s still running after %d actions", g.ID, actions)
		}

		seat, ok := t.Seats[g.CurrentPlayer]
		if !ok {
			return g, fmt.Errorf("%w %s", ErrNoSeat, g.CurrentPlayer)
		}
		self, _ := g.Player(g.CurrentPlayer)

		var next *game.Game
		choice := seat.Choose(g, self)
		if choice.EndTurn {
			next, err = t.Engine.EndTurn(ctx, g.ID, self.ID, g.Version)
		} else {
			next, err = t.Engine.PlayCard(ctx, g.ID, self.ID, choice.Move.Card, choice.Move.Pile, g.Version)
		}

		if err != nil {
			if !game.IsRejection(err) {
				return g, err
			}
			seat.Rejected(err)
			if rejections++; rejections >= maxRejections {
				return g, fmt.Errorf("%w: %s", ErrStuck, seat.Name())
			}
			continue
		}
		rejections = 0
		g = next
	}

	if t.Out != nil {
		SendText(t.Out, buildOutcomeText(g))
	}
	return g, nil
}
