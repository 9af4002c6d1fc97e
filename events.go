package thegame

import "github.com/minaorangina/thegame/game"

// EventType describes what happened to a game
type EventType string

const (
	GameUpdated EventType = "game.updated"
	GameExpired EventType = "game.expired"
)

// Event announces a new snapshot of a game. Game is nil for expired games.
type Event struct {
	Type    EventType  `json:"type"`
	GameID  string     `json:"gameId"`
	Version int64      `json:"version"`
	Game    *game.Game `json:"game,omitempty"`
}

// Publisher is told about every persisted change to a game
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
