package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/minaorangina/thegame/game"
)

var (
	ErrUnknownGameID   = errors.New("unknown game ID")
	ErrGameExpired     = errors.New("game has expired")
	ErrEmptyStore      = errors.New("store holds no games")
	ErrGameExists      = errors.New("game already exists")
	ErrVersionConflict = errors.New("game was changed by someone else, fetch it and try again")
)

// GameStore persists whole game snapshots.
// Save only succeeds when the snapshot's Version matches the stored one; the
// stored copy's Version is then incremented.
type GameStore interface {
	Find(ctx context.Context, gameID string) (*game.Game, error)
	Create(ctx context.Context, g *game.Game) error
	Save(ctx context.Context, g *game.Game) (*game.Game, error)
	Delete(ctx context.Context, gameID string) error
	SweepExpired(ctx context.Context) ([]string, error)
}

// Opts configures a store's expiry
type Opts struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Opts) withDefaults() Opts {
	if o.TTL <= 0 {
		o.TTL = game.DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// InMemoryGameStore maps game id to game snapshot
type InMemoryGameStore struct {
	mu    sync.RWMutex
	games map[string]*game.Game
	opts  Opts
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore(opts Opts) *InMemoryGameStore {
	return &InMemoryGameStore{
		games: map[string]*game.Game{},
		opts:  opts.withDefaults(),
	}
}

func (s *InMemoryGameStore) Find(_ context.Context, gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.games) == 0 {
		return nil, ErrEmptyStore
	}
	g, ok := s.games[gameID]
	if !ok {
		return nil, ErrUnknownGameID
	}
	if g.Expired(s.opts.Now(), s.opts.TTL) {
		return nil, ErrGameExpired
	}
	return g.Clone(), nil
}

func (s *InMemoryGameStore) Create(_ context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID)
	}
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *InMemoryGameStore) Save(_ context.Context, g *game.Game) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[g.ID]
	if !ok {
		return nil, ErrUnknownGameID
	}
	if current.Version != g.Version {
		return nil, fmt.Errorf("%w (have version %d, stored %d)", ErrVersionConflict, g.Version, current.Version)
	}

	saved := g.Clone()
	saved.Version++
	s.games[g.ID] = saved
	return saved.Clone(), nil
}

func (s *InMemoryGameStore) Delete(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return ErrUnknownGameID
	}
	delete(s.games, gameID)
	return nil
}

// SweepExpired removes games past their TTL and returns their ids
func (s *InMemoryGameStore) SweepExpired(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := []string{}
	now := s.opts.Now()
	for id, g := range s.games {
		if g.Expired(now, s.opts.TTL) {
			delete(s.games, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}
