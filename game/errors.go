package game

import (
	"errors"
	"fmt"
)

var (
	ErrTooFewPlayers     = fmt.Errorf("minimum of %d player required", MinPlayers)
	ErrTooManyPlayers    = fmt.Errorf("maximum of %d players allowed", MaxPlayers)
	ErrUnknownPlayerID   = errors.New("unknown player ID")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrWaitingForPlayers = errors.New("game is waiting for players")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrUnknownPile       = errors.New("unknown pile")
	ErrIllegalMove       = errors.New("invalid move for this pile")
	ErrMinimumNotMet     = errors.New("minimum plays not met")
	ErrBlankName         = errors.New("player name must not be blank")
	ErrNameTaken         = errors.New("player name already taken")
)

// rejections are caused by the player's input and never change the game
var rejections = []error{
	ErrGameNotInProgress,
	ErrWaitingForPlayers,
	ErrNotYourTurn,
	ErrCardNotInHand,
	ErrUnknownPile,
	ErrIllegalMove,
	ErrMinimumNotMet,
	ErrBlankName,
	ErrNameTaken,
	ErrTooFewPlayers,
	ErrTooManyPlayers,
}

// IsRejection reports whether err is a recoverable input rejection
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// MinimumPlaysError is returned when a player tries to end their turn
// before playing enough cards while a legal move is still available.
type MinimumPlaysError struct {
	Required int
	Played   int
}

func (e *MinimumPlaysError) Error() string {
	return fmt.Sprintf("you must play at least %d card(s) or have no possible moves (played %d)", e.Required, e.Played)
}

func (e *MinimumPlaysError) Unwrap() error {
	return ErrMinimumNotMet
}
