package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/minaorangina/thegame/game"
)

var validGameID = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// FileGameStore keeps one JSON document per game in a directory
type FileGameStore struct {
	mu   sync.Mutex
	dir  string
	opts Opts
}

// NewFileGameStore constructs a FileGameStore, creating dir if needed
func NewFileGameStore(dir string, opts Opts) (*FileGameStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create game directory: %w", err)
	}
	return &FileGameStore{dir: dir, opts: opts.withDefaults()}, nil
}

func (s *FileGameStore) path(gameID string) (string, error) {
	if !validGameID.MatchString(gameID) {
		return "", ErrUnknownGameID
	}
	return filepath.Join(s.dir, gameID+".json"), nil
}

func (s *FileGameStore) read(gameID string) (*game.Game, error) {
	path, err := s.path(gameID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if empty, _ := s.empty(); empty {
			return nil, ErrEmptyStore
		}
		return nil, ErrUnknownGameID
	}
	if err != nil {
		return nil, fmt.Errorf("read game %s: %w", gameID, err)
	}

	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return &g, nil
}

func (s *FileGameStore) write(g *game.Game) error {
	path, err := s.path(g.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}

	// write then rename so readers never see a partial document
	tmp, err := os.CreateTemp(s.dir, g.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("write game %s: %w", g.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write game %s: %w", g.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write game %s: %w", g.ID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write game %s: %w", g.ID, err)
	}
	return nil
}

func (s *FileGameStore) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (s *FileGameStore) empty() (bool, error) {
	ids, err := s.ids()
	return len(ids) == 0, err
}

func (s *FileGameStore) Find(_ context.Context, gameID string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.read(gameID)
	if err != nil {
		return nil, err
	}
	if g.Expired(s.opts.Now(), s.opts.TTL) {
		return nil, ErrGameExpired
	}
	return g, nil
}

func (s *FileGameStore) Create(_ context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(g.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID)
	}
	return s.write(g)
}

func (s *FileGameStore) Save(_ context.Context, g *game.Game) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(g.ID)
	if errors.Is(err, ErrEmptyStore) {
		return nil, ErrUnknownGameID
	}
	if err != nil {
		return nil, err
	}
	if current.Version != g.Version {
		return nil, fmt.Errorf("%w (have version %d, stored %d)", ErrVersionConflict, g.Version, current.Version)
	}

	saved := g.Clone()
	saved.Version++
	if err := s.write(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *FileGameStore) Delete(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(gameID)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrUnknownGameID
	}
	return err
}

// SweepExpired removes games past their TTL and returns their ids.
// Unreadable documents are left in place.
func (s *FileGameStore) SweepExpired(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ids()
	if err != nil {
		return nil, err
	}

	removed := []string{}
	now := s.opts.Now()
	for _, id := range ids {
		g, err := s.read(id)
		if err != nil {
			continue
		}
		if !g.Expired(now, s.opts.TTL) {
			continue
		}
		path, _ := s.path(id)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove game %s: %w", id, err)
		}
		removed = append(removed, id)
	}
	return removed, nil
}
