package thegame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/game"
	"github.com/minaorangina/thegame/store"
	"go.uber.org/zap"
)

// AnyVersion skips the check that the caller saw the latest snapshot
const AnyVersion int64 = -1

var ErrNilStore = errors.New("game engine needs a store")

// GameEngineOpts configures a GameEngine. Only Store is required.
type GameEngineOpts struct {
	Store     store.GameStore
	Publisher Publisher
	RNG       deck.RNG
	Now       func() time.Time
	Logger    *zap.Logger
}

// GameEngine loads, changes and saves games on behalf of players.
// Each change starts from the latest stored snapshot and is saved only if
// nobody else saved in between.
type GameEngine struct {
	store     store.GameStore
	publisher Publisher
	rng       deck.RNG
	now       func() time.Time
	log       *zap.Logger
}

// NewGameEngine constructs a GameEngine
func NewGameEngine(opts GameEngineOpts) (*GameEngine, error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}
	e := &GameEngine{
		store:     opts.Store,
		publisher: opts.Publisher,
		rng:       opts.RNG,
		now:       opts.Now,
		log:       opts.Logger,
	}
	if e.publisher == nil {
		e.publisher = nopPublisher{}
	}
	if e.rng == nil {
		e.rng = deck.DefaultRNG
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e, nil
}

// CreateGame stores a new game with numPlayers unnamed seats
func (e *GameEngine) CreateGame(ctx context.Context, numPlayers int) (*game.Game, error) {
	g, err := game.NewGame(game.NewID(), numPlayers, e.now())
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	e.log.Info("game created", zap.String("game_id", g.ID), zap.Int("players", numPlayers))
	e.publish(g)
	return g, nil
}

// Game returns the latest snapshot of a game
func (e *GameEngine) Game(ctx context.Context, gameID string) (*game.Game, error) {
	return e.store.Find(ctx, gameID)
}

// SetPlayerName claims a seat, and starts the game if it was the last one
func (e *GameEngine) SetPlayerName(ctx context.Context, gameID, playerID, name string, version int64) (*game.Game, error) {
	return e.mutate(ctx, gameID, version, "set name", func(g *game.Game) (*game.Game, error) {
		named, err := game.SetPlayerName(g, playerID, name)
		if err != nil {
			return nil, err
		}
		return game.CheckAutoStart(named, e.rng), nil
	}, zap.String("player_id", playerID))
}

// PlayCard places a card from the player's hand on a pile
func (e *GameEngine) PlayCard(ctx context.Context, gameID, playerID string, card deck.Card, pile game.PileID, version int64) (*game.Game, error) {
	return e.mutate(ctx, gameID, version, "play card", func(g *game.Game) (*game.Game, error) {
		return game.SubmitPlay(g, playerID, card, pile)
	}, zap.String("player_id", playerID), zap.Int("card", int(card)), zap.String("pile", string(pile)))
}

// EndTurn finishes the player's turn
func (e *GameEngine) EndTurn(ctx context.Context, gameID, playerID string, version int64) (*game.Game, error) {
	return e.mutate(ctx, gameID, version, "end turn", func(g *game.Game) (*game.Game, error) {
		return game.SubmitEndTurn(g, playerID)
	}, zap.String("player_id", playerID))
}

// Restart deals a fresh game to the same players
func (e *GameEngine) Restart(ctx context.Context, gameID string, version int64) (*game.Game, error) {
	return e.mutate(ctx, gameID, version, "restart", func(g *game.Game) (*game.Game, error) {
		return game.Restart(g, e.rng, e.now())
	})
}

// Moves describes what a player can do right now
type Moves struct {
	CanMove   bool        `json:"canMove"`
	Moves     []game.Move `json:"moves"`
	Suggested *game.Move  `json:"suggested,omitempty"`
	MinCards  int         `json:"minCardsPerTurn"`
	Played    int         `json:"currentTurnPlays"`
	MyTurn    bool        `json:"myTurn"`
}

// Moves lists the legal moves for a player's hand on the latest snapshot
func (e *GameEngine) Moves(ctx context.Context, gameID, playerID string) (Moves, error) {
	g, err := e.store.Find(ctx, gameID)
	if err != nil {
		return Moves{}, err
	}
	p, ok := g.Player(playerID)
	if !ok {
		return Moves{}, game.ErrUnknownPlayerID
	}

	m := Moves{
		Moves:    game.LegalMoves(p.Hand, g.Piles),
		MinCards: g.MinCardsPerTurn(),
		MyTurn:   g.CurrentPlayer == playerID && g.Status == game.StatusInProgress,
	}
	m.CanMove = len(m.Moves) > 0
	if m.MyTurn {
		m.Played = g.CurrentTurnPlays
	}
	if m.CanMove {
		m.Suggested = &m.Moves[0]
	}
	return m, nil
}

// Sweep removes expired games
func (e *GameEngine) Sweep(ctx context.Context) ([]string, error) {
	removed, err := e.store.SweepExpired(ctx)
	if err != nil {
		return removed, fmt.Errorf("sweep games: %w", err)
	}
	for _, id := range removed {
		e.publisher.Publish(Event{Type: GameExpired, GameID: id})
	}
	if len(removed) > 0 {
		e.log.Info("expired games removed", zap.Strings("game_ids", removed))
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done
func (e *GameEngine) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Sweep(ctx); err != nil {
				e.log.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

func (e *GameEngine) mutate(
	ctx context.Context,
	gameID string,
	version int64,
	action string,
	fn func(*game.Game) (*game.Game, error),
	fields ...zap.Field,
) (*game.Game, error) {
	log := e.log.With(append(fields, zap.String("game_id", gameID), zap.String("action", action))...)

	latest, err := e.store.Find(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if version != AnyVersion && version != latest.Version {
		log.Debug("stale version", zap.Int64("version", version), zap.Int64("latest", latest.Version))
		return nil, fmt.Errorf("%w (have version %d, latest %d)", store.ErrVersionConflict, version, latest.Version)
	}

	next, err := fn(latest)
	if err != nil {
		log.Debug("rejected", zap.Error(err))
		return nil, err
	}

	saved, err := e.store.Save(ctx, next)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			log.Info("lost a race to save", zap.Error(err))
		} else {
			log.Error("could not save game", zap.Error(err))
		}
		return nil, fmt.Errorf("save game %s: %w", gameID, err)
	}

	log.Info("game updated",
		zap.Int64("version", saved.Version),
		zap.String("status", string(saved.Status)),
		zap.String("current_player", saved.CurrentPlayer),
	)
	e.publish(saved)
	return saved, nil
}

func (e *GameEngine) publish(g *game.Game) {
	e.publisher.Publish(Event{Type: GameUpdated, GameID: g.ID, Version: g.Version, Game: g.Clone()})
}
