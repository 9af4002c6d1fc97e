package thegame

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/game"
	utils "github.com/minaorangina/thegame/internal"
	"github.com/minaorangina/thegame/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *spyPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *spyPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event{}, p.events...)
}

type failingStore struct {
	store.GameStore
}

func (failingStore) Save(context.Context, *game.Game) (*game.Game, error) {
	return nil, errors.New("disk on fire")
}

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*GameEngine, *spyPublisher, *time.Time) {
	t.Helper()

	clock := now
	nowFn := func() time.Time { return clock }
	pub := &spyPublisher{}
	e, err := NewGameEngine(GameEngineOpts{
		Store:     store.NewInMemoryGameStore(store.Opts{Now: nowFn}),
		Publisher: pub,
		Now:       nowFn,
	})
	require.NoError(t, err)
	return e, pub, &clock
}

// startedGame creates a game and names every seat
func startedGame(t *testing.T, e *GameEngine, names ...string) *game.Game {
	t.Helper()
	ctx := context.Background()

	g, err := e.CreateGame(ctx, len(names))
	require.NoError(t, err)
	for i, name := range names {
		g, err = e.SetPlayerName(ctx, g.ID, g.Players[i].ID, name, g.Version)
		require.NoError(t, err)
	}
	return g
}

func TestNewGameEngine(t *testing.T) {
	_, err := NewGameEngine(GameEngineOpts{})
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestGameEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("players naming themselves start the game", func(t *testing.T) {
		e, pub, _ := newTestEngine(t)

		t.Log("Given a new game for two")
		g, err := e.CreateGame(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, game.StatusWaiting, g.Status)

		t.Log("When one player names themselves")
		g, err = e.SetPlayerName(ctx, g.ID, g.Players[0].ID, "Ana", g.Version)
		require.NoError(t, err)
		assert.Equal(t, game.StatusWaiting, g.Status)

		t.Log("And the other does too")
		g, err = e.SetPlayerName(ctx, g.ID, g.Players[1].ID, "Bo", g.Version)
		require.NoError(t, err)

		t.Log("Then the game has been dealt")
		assert.Equal(t, game.StatusInProgress, g.Status)
		assert.True(t, g.AutoStarted)
		assert.Len(t, g.Deck, 86)
		for _, p := range g.Players {
			assert.Len(t, p.Hand, game.HandSize)
		}
		for _, id := range game.PileIDs {
			assert.Len(t, g.Piles[id], 1)
		}
		assert.Equal(t, int64(2), g.Version)

		t.Log("And every change was published")
		events := pub.Events()
		require.Len(t, events, 3)
		assert.Equal(t, GameUpdated, events[2].Type)
		assert.Equal(t, int64(2), events[2].Version)
		assert.Equal(t, game.StatusInProgress, events[2].Game.Status)
	})

	t.Run("a play and an end of turn", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		g := startedGame(t, e, "Ana", "Bo")
		first := g.CurrentPlayer

		for i := 0; i < 2; i++ {
			p, _ := g.Player(first)
			move, ok := game.SuggestMove(p.Hand, g.Piles)
			require.True(t, ok)

			var err error
			g, err = e.PlayCard(ctx, g.ID, first, move.Card, move.Pile, g.Version)
			require.NoError(t, err)
			assert.Equal(t, i+1, g.CurrentTurnPlays)
		}

		g, err := e.EndTurn(ctx, g.ID, first, g.Version)
		require.NoError(t, err)
		p, _ := g.Player(first)
		assert.Len(t, p.Hand, game.HandSize)
		assert.Equal(t, g.Players[1].ID, g.CurrentPlayer)

		latest, err := e.Game(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g, latest)
	})

	t.Run("stale versions are rejected", func(t *testing.T) {
		e, pub, _ := newTestEngine(t)
		g := startedGame(t, e, "Ana", "Bo")
		published := len(pub.Events())

		p, _ := g.Player(g.CurrentPlayer)
		_, err := e.PlayCard(ctx, g.ID, p.ID, p.Hand[0], game.Asc1, g.Version-1)
		assert.ErrorIs(t, err, store.ErrVersionConflict)
		assert.Len(t, pub.Events(), published)

		latest, err := e.Game(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.Version, latest.Version)

		_, err = e.PlayCard(ctx, g.ID, p.ID, p.Hand[0], game.Asc1, AnyVersion)
		assert.NoError(t, err)
	})

	t.Run("rejections are passed through untouched", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		g := startedGame(t, e, "Ana", "Bo")

		other := g.Players[1]
		_, err := e.PlayCard(ctx, g.ID, other.ID, other.Hand[0], game.Asc1, g.Version)
		assert.ErrorIs(t, err, game.ErrNotYourTurn)

		_, err = e.EndTurn(ctx, g.ID, g.CurrentPlayer, g.Version)
		var minErr *game.MinimumPlaysError
		require.True(t, errors.As(err, &minErr))
		assert.Equal(t, 2, minErr.Required)
		assert.Equal(t, 0, minErr.Played)

		_, err = e.SetPlayerName(ctx, g.ID, other.ID, "ANA", g.Version)
		assert.ErrorIs(t, err, game.ErrNameTaken)
	})

	t.Run("unknown and expired games", func(t *testing.T) {
		e, _, clock := newTestEngine(t)

		_, err := e.Game(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrEmptyStore)

		g := startedGame(t, e, "Ana")
		_, err = e.EndTurn(ctx, "nope", g.CurrentPlayer, AnyVersion)
		assert.ErrorIs(t, err, store.ErrUnknownGameID)

		*clock = clock.Add(game.DefaultTTL + time.Second)
		_, err = e.Game(ctx, g.ID)
		assert.ErrorIs(t, err, store.ErrGameExpired)
	})

	t.Run("restart resets the expiry clock", func(t *testing.T) {
		e, _, clock := newTestEngine(t)
		g := startedGame(t, e, "Ana", "Bo")

		*clock = clock.Add(20 * time.Hour)
		g, err := e.Restart(ctx, g.ID, g.Version)
		require.NoError(t, err)
		assert.Equal(t, now.Add(20*time.Hour), g.CreatedAt)

		*clock = clock.Add(10 * time.Hour)
		_, err = e.Game(ctx, g.ID)
		assert.NoError(t, err)
	})

	t.Run("failed saves are reported and not published", func(t *testing.T) {
		pub := &spyPublisher{}
		mem := store.NewInMemoryGameStore(store.Opts{})
		e, err := NewGameEngine(GameEngineOpts{Store: failingStore{mem}, Publisher: pub})
		require.NoError(t, err)

		g, err := e.CreateGame(ctx, 1)
		require.NoError(t, err)

		_, err = e.SetPlayerName(ctx, g.ID, g.Players[0].ID, "Ana", g.Version)
		utils.AssertErrored(t, err)
		assert.False(t, game.IsRejection(err))
		assert.Len(t, pub.Events(), 1)

		latest, err := e.Game(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, game.StatusWaiting, latest.Status)
	})
}

func TestMoves(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	g := startedGame(t, e, "Ana", "Bo")

	m, err := e.Moves(ctx, g.ID, g.CurrentPlayer)
	require.NoError(t, err)
	assert.True(t, m.CanMove)
	assert.True(t, m.MyTurn)
	assert.Equal(t, 2, m.MinCards)
	assert.Len(t, m.Moves, game.HandSize*len(game.PileIDs))
	require.NotNil(t, m.Suggested)
	assert.Equal(t, m.Moves[0], *m.Suggested)

	m, err = e.Moves(ctx, g.ID, g.Players[1].ID)
	require.NoError(t, err)
	assert.False(t, m.MyTurn)

	_, err = e.Moves(ctx, g.ID, "nobody")
	assert.ErrorIs(t, err, game.ErrUnknownPlayerID)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	e, pub, clock := newTestEngine(t)
	g, err := e.CreateGame(ctx, 2)
	require.NoError(t, err)

	*clock = clock.Add(game.DefaultTTL + time.Hour)
	removed, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, removed)

	events := pub.Events()
	assert.Equal(t, Event{Type: GameExpired, GameID: g.ID}, events[len(events)-1])
}

func TestRunSweeper(t *testing.T) {
	e, pub, clock := newTestEngine(t)
	_, err := e.CreateGame(context.Background(), 2)
	require.NoError(t, err)
	*clock = clock.Add(game.DefaultTTL + time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	utils.Within(t, time.Second, func() {
		for {
			events := pub.Events()
			if events[len(events)-1].Type == GameExpired {
				return
			}
			time.Sleep(time.Millisecond)
		}
	})
	cancel()
	<-done
}

func TestDeckSizeIsConserved(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	g := startedGame(t, e, "Ana", "Bo", "Cy", "Di")

	count := len(g.Deck)
	for _, p := range g.Players {
		count += len(p.Hand)
	}
	assert.Equal(t, deck.Size, count)

	_, err := e.Game(ctx, g.ID)
	assert.NoError(t, err)
}
