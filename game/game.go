package game

import (
	"strings"
	"time"

	"github.com/minaorangina/thegame/deck"
	uuid "github.com/satori/go.uuid"
)

const (
	MinPlayers = 1
	MaxPlayers = 5
	// HandSize is the number of cards dealt to, and replenished for, each player
	HandSize = 6
	// DefaultTTL is how long a game lives after it was created or restarted
	DefaultTTL = 24 * time.Hour
)

// NewID returns a new opaque identifier
func NewID() string {
	return uuid.NewV4().String()
}

// Player is a seat at the table. ID is the only valid key for a player;
// Name is empty until the seat is claimed.
type Player struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Hand []deck.Card `json:"cards"`
}

// Game is a snapshot of a whole game
type Game struct {
	ID               string    `json:"id"`
	Players          []Player  `json:"players"`
	Piles            Piles     `json:"piles"`
	Deck             deck.Deck `json:"deck"`
	TurnOrder        []string  `json:"playerOrder"`
	CurrentPlayer    string    `json:"currentPlayer"`
	Status           Status    `json:"status"`
	CurrentTurnPlays int       `json:"currentTurnPlays"`
	CompletedRounds  int       `json:"completedRounds"`
	AutoStarted      bool      `json:"autoStarted"`
	CreatedAt        time.Time `json:"createdAt"`
	Version          int64     `json:"version"`
}

// NewGame constructs a game waiting for numPlayers seats to be named.
// The deck is full and unshuffled until the game starts.
func NewGame(gameID string, numPlayers int, now time.Time) (*Game, error) {
	if numPlayers < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	if numPlayers > MaxPlayers {
		return nil, ErrTooManyPlayers
	}

	g := &Game{
		ID:        gameID,
		Players:   make([]Player, 0, numPlayers),
		Piles:     NewPiles(),
		Deck:      deck.New(),
		TurnOrder: make([]string, 0, numPlayers),
		CreatedAt: now,
	}
	for i := 0; i < numPlayers; i++ {
		id := NewID()
		g.Players = append(g.Players, Player{ID: id, Hand: []deck.Card{}})
		g.TurnOrder = append(g.TurnOrder, id)
	}
	g.CurrentPlayer = g.TurnOrder[0]
	g.restamp()

	return g, nil
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.Hand = append([]deck.Card{}, p.Hand...)
		c.Players[i] = p
	}
	c.Piles = g.Piles.clone()
	c.Deck = append(deck.Deck{}, g.Deck...)
	c.TurnOrder = append([]string{}, g.TurnOrder...)
	return &c
}

// Player returns the player with the given id
func (g *Game) Player(playerID string) (Player, bool) {
	return findPlayer(g.Players, playerID)
}

func (g *Game) player(playerID string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}

// MinCardsPerTurn is how many cards the current player must play before they
// may end their turn while moves remain
func (g *Game) MinCardsPerTurn() int {
	if len(g.Deck) == 0 {
		return 1
	}
	return 2
}

// CanPlayerMove reports whether the player holds a card that fits any pile
func (g *Game) CanPlayerMove(playerID string) (bool, error) {
	p, ok := g.Player(playerID)
	if !ok {
		return false, ErrUnknownPlayerID
	}
	return CanMove(p.Hand, g.Piles), nil
}

// NamesComplete reports whether every seat has a unique, non-blank name
func (g *Game) NamesComplete() bool {
	if !allNamed(g.Players) {
		return false
	}
	seen := map[string]struct{}{}
	for _, p := range g.Players {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Expired reports whether the game is older than ttl
func (g *Game) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(g.CreatedAt) > ttl
}

// restamp is the only place a game's status is written
func (g *Game) restamp() {
	in := StatusInput{
		Deck:    g.Deck,
		Players: g.Players,
		Piles:   g.Piles,
		Oracle:  CanMove,
		Rule:    GlobalStalemate,
	}
	for i, p := range g.Players {
		if p.ID == g.CurrentPlayer {
			in.Turn = &TurnInfo{
				CurrentIndex: i,
				MinCards:     g.MinCardsPerTurn(),
				Plays:        g.CurrentTurnPlays,
			}
			break
		}
	}
	g.Status = EvaluateStatus(in)
}

// Stats summarises a game's progress
type Stats struct {
	CardsPlayed      int `json:"totalCardsPlayed"`
	CardsLeft        int `json:"cardsLeft"`
	PlayersWithCards int `json:"playersLeft"`
	Rounds           int `json:"rounds"`
}

// Stats returns a summary of the game's progress
func (g *Game) Stats() Stats {
	s := Stats{
		CardsLeft: len(g.Deck),
		Rounds:    g.CompletedRounds,
	}
	for _, cards := range g.Piles {
		if len(cards) > 1 {
			s.CardsPlayed += len(cards) - 1
		}
	}
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			s.PlayersWithCards++
		}
	}
	return s
}
