package game

import (
	"strings"

	"github.com/minaorangina/thegame/deck"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusWaiting    Status = "waiting_players"
	StatusInProgress Status = "in_progress"
	StatusVictory    Status = "victory"
	StatusDefeat     Status = "defeat"
)

// Over reports whether the status is terminal
func (s Status) Over() bool {
	return s == StatusVictory || s == StatusDefeat
}

// DefeatRule chooses when a stuck current player loses the game
type DefeatRule int

const (
	// GlobalStalemate only declares defeat when nobody in the rotation can move
	GlobalStalemate DefeatRule = iota
	// LocalDefeat declares defeat as soon as the current player is stuck
	LocalDefeat
)

// TurnInfo is the bookkeeping for the turn in progress
type TurnInfo struct {
	CurrentIndex int
	MinCards     int
	Plays        int
}

// StatusInput is everything the status of a game depends on.
// A nil Turn skips the defeat check.
type StatusInput struct {
	Deck    []deck.Card
	Players []Player
	Piles   Piles
	Oracle  MoveOracle
	Turn    *TurnInfo
	Rule    DefeatRule
}

// EvaluateStatus computes the status of a game. The first matching rule wins:
// unnamed seats wait, empty deck and hands win, an untouched pile keeps the
// game going, and a current player below the minimum with no move loses.
func EvaluateStatus(in StatusInput) Status {
	oracle := in.Oracle
	if oracle == nil {
		oracle = CanMove
	}

	if !allNamed(in.Players) {
		return StatusWaiting
	}

	if len(in.Deck) == 0 && allHandsEmpty(in.Players) {
		return StatusVictory
	}

	if !in.Piles.AllPlayed() {
		return StatusInProgress
	}

	if in.Turn != nil && stuck(in, oracle) {
		return StatusDefeat
	}

	return StatusInProgress
}

func stuck(in StatusInput, oracle MoveOracle) bool {
	idx := in.Turn.CurrentIndex
	if idx < 0 || idx >= len(in.Players) {
		return false
	}

	current := in.Players[idx]
	if in.Turn.Plays >= in.Turn.MinCards || oracle(current.Hand, in.Piles) {
		return false
	}
	if in.Rule == LocalDefeat {
		return true
	}

	for i, p := range in.Players {
		if i != idx && oracle(p.Hand, in.Piles) {
			return false
		}
	}
	return true
}

func allNamed(players []Player) bool {
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return false
		}
	}
	return true
}

func allHandsEmpty(players []Player) bool {
	for _, p := range players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}
