package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/minaorangina/thegame/game"
	"go.uber.org/zap/zapcore"
)

// Config is read from THEGAME_* environment variables
type Config struct {
	Addr string `env:"THEGAME_ADDR,default=:8000"`
	// DataDir holds one JSON file per game. Games are kept in memory when empty.
	DataDir        string        `env:"THEGAME_DATA_DIR"`
	GameTTL        time.Duration `env:"THEGAME_GAME_TTL,default=24h"`
	SweepInterval  time.Duration `env:"THEGAME_SWEEP_INTERVAL,default=10m"`
	RawLogLevel    string        `env:"THEGAME_LOG_LEVEL,default=info"`
	RawOrigins     string        `env:"THEGAME_ALLOWED_ORIGINS,default=*"`
	NumPlayersMax  int           `env:"THEGAME_NUM_PLAYERS_MAX,default=5"`
	LogLevel       zapcore.Level
	AllowedOrigins []string
}

// Load reads the environment
func Load() (Config, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	level, err := zapcore.ParseLevel(c.RawLogLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid THEGAME_LOG_LEVEL %q: %w", c.RawLogLevel, err)
	}
	c.LogLevel = level
	c.AllowedOrigins = splitList(c.RawOrigins)

	switch {
	case c.GameTTL <= 0:
		return Config{}, fmt.Errorf("THEGAME_GAME_TTL must be positive, got %s", c.GameTTL)
	case c.SweepInterval <= 0:
		return Config{}, fmt.Errorf("THEGAME_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	case c.NumPlayersMax < game.MinPlayers || c.NumPlayersMax > game.MaxPlayers:
		return Config{}, fmt.Errorf("THEGAME_NUM_PLAYERS_MAX must be between %d and %d, got %d",
			game.MinPlayers, game.MaxPlayers, c.NumPlayersMax)
	}

	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
