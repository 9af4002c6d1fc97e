package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/thegame"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Hub pushes game events to the websocket clients watching each game.
// It implements thegame.Publisher. Run must be running for Publish to return.
// A client is never sent a snapshot older than one it already has.
type Hub struct {
	registerCh   chan *client
	unregisterCh chan *client
	broadcastCh  chan thegame.Event
	deliverCh    chan delivery
	done         chan struct{}
	watchers     map[string]map[*client]struct{}
	log          *zap.Logger
}

// NewHub constructs a Hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		registerCh:   make(chan *client),
		unregisterCh: make(chan *client),
		broadcastCh:  make(chan thegame.Event, 64),
		deliverCh:    make(chan delivery),
		done:         make(chan struct{}),
		watchers:     map[string]map[*client]struct{}{},
		log:          log,
	}
}

// Publish queues an event for every client watching its game
func (h *Hub) Publish(e thegame.Event) {
	select {
	case h.broadcastCh <- e:
	case <-h.done:
	}
}

// Run forwards events to clients until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, clients := range h.watchers {
			for c := range clients {
				close(c.send)
			}
		}
		h.watchers = map[string]map[*client]struct{}{}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.registerCh:
			if h.watchers[c.gameID] == nil {
				h.watchers[c.gameID] = map[*client]struct{}{}
			}
			h.watchers[c.gameID][c] = struct{}{}
			h.log.Debug("watcher joined", zap.String("game_id", c.gameID), zap.Int("watchers", len(h.watchers[c.gameID])))

		case c := <-h.unregisterCh:
			h.drop(c)

		case e := <-h.broadcastCh:
			h.broadcast(e)

		case d := <-h.deliverCh:
			if _, ok := h.watchers[d.client.gameID][d.client]; ok {
				h.send(d.client, d.event)
			}
		}
	}
}

// register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) register(c *client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// deliver sends an event to one registered client
func (h *Hub) deliver(c *client, e thegame.Event) {
	select {
	case h.deliverCh <- delivery{client: c, event: e}:
	case <-h.done:
	}
}

func (h *Hub) unregister(c *client) {
	select {
	case h.unregisterCh <- c:
	case <-h.done:
	}
}

func (h *Hub) broadcast(e thegame.Event) {
	clients := h.watchers[e.GameID]
	for c := range clients {
		h.send(c, e)
	}

	if e.Type == thegame.GameExpired {
		for c := range clients {
			h.drop(c)
		}
	}
}

// send queues e for c unless c already has a newer snapshot. Clients that
// fall too far behind are dropped.
func (h *Hub) send(c *client, e thegame.Event) {
	if e.Type == thegame.GameUpdated {
		if e.Version <= c.version {
			return
		}
		c.version = e.Version
	}

	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("could not encode event", zap.String("game_id", e.GameID), zap.Error(err))
		return
	}

	select {
	case c.send <- msg:
	default:
		h.log.Info("dropping slow watcher", zap.String("game_id", c.gameID))
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	clients, ok := h.watchers[c.gameID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.watchers, c.gameID)
	}
}

type delivery struct {
	client *client
	event  thegame.Event
}

// client is one websocket connection watching a game
type client struct {
	gameID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	// version of the newest snapshot queued, only touched by the hub
	version int64
}

func newClient(hub *Hub, conn *websocket.Conn, gameID string) *client {
	return &client{
		gameID:  gameID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		version: -1,
	}
}

// readPump discards anything the client sends and notices when it goes away
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
