package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/thegame"
	"github.com/minaorangina/thegame/deck"
	"github.com/minaorangina/thegame/game"
	"go.uber.org/zap"
)

type NewGameReq struct {
	NumPlayers int `json:"numPlayers"`
}

type SetNameReq struct {
	Name    string `json:"name"`
	Version *int64 `json:"version"`
}

type PlayReq struct {
	Card    deck.Card   `json:"card"`
	Pile    game.PileID `json:"pile"`
	Version *int64      `json:"version"`
}

type VersionReq struct {
	Version *int64 `json:"version"`
}

// GameRes is a game snapshot with its progress summary
type GameRes struct {
	*game.Game
	Summary game.Stats `json:"stats"`
}

// ServerOpts configures a GameServer
type ServerOpts struct {
	// AllowedOrigins lists the origins browsers may call from. "*" allows any.
	AllowedOrigins []string
	// MaxPlayers caps the seats a new game may have
	MaxPlayers int
	Logger     *zap.Logger
}

// GameServer is a game server
type GameServer struct {
	engine     *thegame.GameEngine
	hub        *Hub
	upgrader   websocket.Upgrader
	maxPlayers int
	log        *zap.Logger
	http.Handler
}

// NewServer creates a new GameServer. The hub should be the engine's publisher.
func NewServer(engine *thegame.GameEngine, hub *Hub, opts ServerOpts) *GameServer {
	s := &GameServer{
		engine:     engine,
		hub:        hub,
		maxPlayers: opts.MaxPlayers,
		log:        opts.Logger,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.maxPlayers <= 0 || s.maxPlayers > game.MaxPlayers {
		s.maxPlayers = game.MaxPlayers
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", s.HandlePing)
	router.HandleFunc("POST /games", s.HandleNewGame)
	router.HandleFunc("GET /games/{gameID}", s.HandleFindGame)
	router.HandleFunc("POST /games/{gameID}/restart", s.HandleRestart)
	router.HandleFunc("PUT /games/{gameID}/players/{playerID}/name", s.HandleSetName)
	router.HandleFunc("POST /games/{gameID}/players/{playerID}/play", s.HandlePlay)
	router.HandleFunc("POST /games/{gameID}/players/{playerID}/end-turn", s.HandleEndTurn)
	router.HandleFunc("GET /games/{gameID}/players/{playerID}/moves", s.HandleMoves)
	router.HandleFunc("GET /ws", s.HandleWS)

	stdLog := zap.NewStdLog(s.log)
	var h http.Handler = router
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(stdLog), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(stdLog.Writer(), h)
	s.Handler = h

	return s
}

// HandlePing answers health checks
func (s *GameServer) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// HandleNewGame handles a request to create a new game
func (s *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var data NewGameReq
	if !decodeBody(w, r, &data) {
		return
	}
	if data.NumPlayers > s.maxPlayers {
		s.writeError(w, game.ErrTooManyPlayers)
		return
	}

	g, err := s.engine.CreateGame(r.Context(), data.NumPlayers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGameRes(g))
}

func (s *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.Game(r.Context(), r.PathValue("gameID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameRes(g))
}

func (s *GameServer) HandleSetName(w http.ResponseWriter, r *http.Request) {
	var data SetNameReq
	if !decodeBody(w, r, &data) || !requireVersion(w, data.Version) {
		return
	}

	g, err := s.engine.SetPlayerName(r.Context(), r.PathValue("gameID"), r.PathValue("playerID"), data.Name, *data.Version)
	s.writeGame(w, g, err)
}

func (s *GameServer) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var data PlayReq
	if !decodeBody(w, r, &data) || !requireVersion(w, data.Version) {
		return
	}
	if !data.Card.Valid() {
		writeMessage(w, http.StatusBadRequest, "card must be between "+deck.LowestCard.String()+" and "+deck.HighestCard.String())
		return
	}

	g, err := s.engine.PlayCard(r.Context(), r.PathValue("gameID"), r.PathValue("playerID"), data.Card, data.Pile, *data.Version)
	s.writeGame(w, g, err)
}

func (s *GameServer) HandleEndTurn(w http.ResponseWriter, r *http.Request) {
	var data VersionReq
	if !decodeBody(w, r, &data) || !requireVersion(w, data.Version) {
		return
	}

	g, err := s.engine.EndTurn(r.Context(), r.PathValue("gameID"), r.PathValue("playerID"), *data.Version)
	s.writeGame(w, g, err)
}

func (s *GameServer) HandleRestart(w http.ResponseWriter, r *http.Request) {
	var data VersionReq
	if !decodeBody(w, r, &data) || !requireVersion(w, data.Version) {
		return
	}

	g, err := s.engine.Restart(r.Context(), r.PathValue("gameID"), *data.Version)
	s.writeGame(w, g, err)
}

func (s *GameServer) HandleMoves(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.Moves(r.Context(), r.PathValue("gameID"), r.PathValue("playerID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleWS streams a game's events to the caller, starting with the
// current snapshot
func (s *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		writeMessage(w, http.StatusBadRequest, "missing game ID")
		return
	}

	if _, err := s.engine.Game(r.Context(), gameID); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		s.log.Info("could not upgrade to websocket", zap.String("game_id", gameID), zap.Error(err))
		return
	}

	c := newClient(s.hub, conn, gameID)
	if !s.hub.register(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()

	// read after registering so no update falls between the snapshot and the feed
	g, err := s.engine.Game(r.Context(), gameID)
	if err != nil {
		s.log.Info("game went away while connecting", zap.String("game_id", gameID), zap.Error(err))
		s.hub.unregister(c)
		return
	}
	s.hub.deliver(c, thegame.Event{Type: thegame.GameUpdated, GameID: g.ID, Version: g.Version, Game: g})
}

func (s *GameServer) writeGame(w http.ResponseWriter, g *game.Game, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameRes(g))
}

func newGameRes(g *game.Game) GameRes {
	return GameRes{Game: g, Summary: g.Stats()}
}
