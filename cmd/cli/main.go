package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/minaorangina/thegame"
	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/players"
	"github.com/minaorangina/thegame/store"
	"go.uber.org/zap"
)

func main() {
	numPlayers := flag.Int("players", 2, "number of seats")
	humans := flag.Int("humans", 1, "how many of the seats are played at this terminal")
	seed := flag.Uint64("seed", 0, "shuffle seed, random when 0")
	timeout := flag.Duration("timeout", 2*time.Minute, "how long to wait for a move before choosing one")
	verbose := flag.Bool("v", false, "log every change to the game")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(*numPlayers, *humans, *seed, *timeout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(numPlayers, humans int, seed uint64, timeout time.Duration, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := thegame.GameEngineOpts{
		Store:  store.NewInMemoryGameStore(store.Opts{}),
		Logger: logger,
	}
	if seed != 0 {
		opts.RNG = deck.NewSeededRNG(seed)
	}
	engine, err := thegame.NewGameEngine(opts)
	if err != nil {
		return err
	}

	g, err := engine.CreateGame(ctx, numPlayers)
	if err != nil {
		return fmt.Errorf("could not create a game: %w", err)
	}

	terminal := players.NewLineReader(os.Stdin)
	seats := map[string]players.Seat{}
	for i, p := range g.Players {
		var seat players.Seat
		if i < humans {
			seat = players.NewCLISeat(fmt.Sprintf("Player %d", i+1), terminal, os.Stdout, timeout)
		} else {
			seat = players.NewHintSeat(fmt.Sprintf("Bot %d", i+1-humans))
		}
		seats[p.ID] = seat

		if _, err := engine.SetPlayerName(ctx, g.ID, p.ID, seat.Name(), thegame.AnyVersion); err != nil {
			return fmt.Errorf("could not seat %s: %w", seat.Name(), err)
		}
	}

	table := players.Table{Engine: engine, GameID: g.ID, Seats: seats, Out: os.Stdout}
	_, err = table.Play(ctx, 0)
	return err
}
