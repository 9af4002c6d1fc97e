package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/thegame"
	"github.com/minaorangina/thegame/game"
	utils "github.com/minaorangina/thegame/internal"
	"github.com/minaorangina/thegame/store"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

type testEnv struct {
	server *GameServer
	engine *thegame.GameEngine
	clock  *testClock
}

func newTestEnv(t *testing.T, opts ServerOpts) *testEnv {
	t.Helper()

	clock := &testClock{at: now}
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	engine, err := thegame.NewGameEngine(thegame.GameEngineOpts{
		Store:     store.NewInMemoryGameStore(store.Opts{Now: clock.Now}),
		Publisher: hub,
		Now:       clock.Now,
	})
	require.NoError(t, err)

	return &testEnv{
		server: NewServer(engine, hub, opts),
		engine: engine,
		clock:  clock,
	}
}

func (e *testEnv) do(t *testing.T, request *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	response := httptest.NewRecorder()
	e.server.ServeHTTP(response, request)
	return response
}

// startedGame creates a game over http and names every seat
func (e *testEnv) startedGame(t *testing.T, names ...string) *game.Game {
	t.Helper()

	response := e.do(t, newCreateGameRequest(mustMakeJson(t, NewGameReq{len(names)})))
	assertStatus(t, response.Code, http.StatusCreated)
	g := decodeGame(t, response.Body)

	for i, name := range names {
		version := g.Version
		response = e.do(t, newSetNameRequest(g.ID, g.Players[i].ID, mustMakeJson(t, SetNameReq{name, &version})))
		assertStatus(t, response.Code, http.StatusOK)
		g = decodeGame(t, response.Body)
	}
	return g
}

func mustMakeJson(t *testing.T, input interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(input)
	utils.AssertNoError(t, err)

	return data
}

func newCreateGameRequest(data []byte) *http.Request {
	request, _ := http.NewRequest(http.MethodPost, "/games", bytes.NewBuffer(data))
	return request
}

func newGetGameRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodGet, "/games/"+gameID, nil)
	return request
}

func newSetNameRequest(gameID, playerID string, data []byte) *http.Request {
	request, _ := http.NewRequest(http.MethodPut, "/games/"+gameID+"/players/"+playerID+"/name", bytes.NewBuffer(data))
	return request
}

func newPlayerRequest(method, gameID, playerID, action string, data []byte) *http.Request {
	request, _ := http.NewRequest(method, "/games/"+gameID+"/players/"+playerID+"/"+action, bytes.NewBuffer(data))
	return request
}

func versionBody(t *testing.T, version int64) []byte {
	return mustMakeJson(t, VersionReq{&version})
}

func decodeGame(t *testing.T, body *bytes.Buffer) *game.Game {
	t.Helper()

	var got GameRes
	err := json.Unmarshal(body.Bytes(), &got)
	if err != nil {
		t.Fatalf("could not unmarshal json: %s", err.Error())
	}
	if got.Game == nil {
		t.Fatal("expected a game")
	}
	return got.Game
}

func decodeError(t *testing.T, body *bytes.Buffer) ErrorRes {
	t.Helper()

	var got ErrorRes
	err := json.Unmarshal(body.Bytes(), &got)
	if err != nil {
		t.Fatalf("could not unmarshal json: %s", err.Error())
	}
	return got
}

// ASSERTIONS

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)

	if err != nil {
		var code int
		var body []byte
		if resp != nil {
			code = resp.StatusCode
			body, _ = ioutil.ReadAll(resp.Body)
		}
		t.Fatalf("could not open a ws connection on %s, code %d: %s, %v", url, code, body, err)
	}
	if ws == nil {
		t.Fatal("unexpected nil websocket conn")
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func mustReadEvent(t *testing.T, ws *websocket.Conn) thegame.Event {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e thegame.Event
	if err := ws.ReadJSON(&e); err != nil {
		t.Fatalf("could not read an event: %v", err)
	}
	return e
}

func makeWSUrl(serverURL, gameID string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws?game_id=" + gameID
}
