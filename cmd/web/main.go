package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/thegame"
	"github.com/minaorangina/thegame/internal/config"
	"github.com/minaorangina/thegame/server"
	"github.com/minaorangina/thegame/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newStore(cfg config.Config) (store.GameStore, error) {
	opts := store.Opts{TTL: cfg.GameTTL}
	if cfg.DataDir == "" {
		return store.NewInMemoryGameStore(opts), nil
	}
	return store.NewFileGameStore(cfg.DataDir, opts)
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameStore, err := newStore(cfg)
	if err != nil {
		return err
	}

	hub := server.NewHub(logger.Named("hub"))
	go hub.Run(ctx)

	engine, err := thegame.NewGameEngine(thegame.GameEngineOpts{
		Store:     gameStore,
		Publisher: hub,
		Logger:    logger.Named("engine"),
	})
	if err != nil {
		return err
	}
	go engine.RunSweeper(ctx, cfg.SweepInterval)

	s := server.NewServer(engine, hub, server.ServerOpts{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxPlayers:     cfg.NumPlayersMax,
		Logger:         logger.Named("http"),
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("data_dir", cfg.DataDir))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
