/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Seednode/codenames/games/codenames"
	"github.com/Seednode/codenames/games/deck"
	"github.com/Seednode/codenames/storage"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

type Client struct {
	conn   *websocket.Conn
	send   chan any
	cookie codenames.ViewerID

	// viewer is only read and written by the hub goroutine.
	viewer codenames.ViewerID
}

type inbound struct {
	client *Client
	data   []byte
}

// Hub owns one room. Every mutation of the room and its game happens on the
// goroutine running run, so the engine needs no locking of its own.
type Hub struct {
	id        string
	slug      string
	createdAt time.Time

	cfg      *Config
	pool     *deck.Pool
	rng      *rand.Rand
	recorder *storage.Recorder

	clients map[*Client]bool
	names   map[codenames.ViewerID]string
	order   []codenames.ViewerID

	game      *codenames.Game
	gameID    string
	startedAt time.Time
	recorded  bool

	register chan *Client
	unreg    chan *Client
	messages chan inbound
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	lastActive time.Time
}

func newHub(cfg *Config, id, slug string, pool *deck.Pool, recorder *storage.Recorder) *Hub {
	now := time.Now()

	return &Hub{
		id:         id,
		slug:       slug,
		createdAt:  now,
		cfg:        cfg,
		pool:       pool,
		rng:        deck.NewRand(),
		recorder:   recorder,
		clients:    make(map[*Client]bool),
		names:      make(map[codenames.ViewerID]string),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		messages:   make(chan inbound),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		lastActive: now,
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// stop disconnects every client and ends run. Safe to call more than once.
func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.touch()

		case c := <-h.unreg:
			h.drop(c)

		case msg := <-h.messages:
			h.touch()
			h.handle(msg.client, msg.data)

		case <-h.quit:
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}

	delete(h.clients, c)
	close(c.send)
}

// push queues a message for one client. A client whose queue is full is
// disconnected rather than allowed to stall the room.
func (h *Hub) push(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		logf(h.cfg, "ROOMS: Dropping slow client of room %s", h.slug)
		h.drop(c)
		_ = c.conn.Close()
	}
}

func (h *Hub) reject(c *Client, method string, err error) {
	logf(h.cfg, "GAMES: Rejected %s from %q in room %s: %v", method, c.viewer, h.slug, err)
}

func (h *Hub) handle(c *Client, data []byte) {
	if !h.clients[c] {
		return
	}

	cmd, err := codenames.Decode(data)
	if err != nil {
		h.reject(c, "message", err)
		return
	}

	switch cmd := cmd.(type) {
	case codenames.Join:
		h.join(c, cmd)

	case codenames.Rename:
		if !h.authorized(c, cmd.PlayerID) {
			h.reject(c, cmd.Method(), codenames.ErrNotAuthorized)
			return
		}
		h.names[cmd.PlayerID] = cmd.Name
		h.broadcastRoomInfo()

	case codenames.StartGame:
		if !h.authorized(c, cmd.PlayerID) {
			h.reject(c, cmd.Method(), codenames.ErrNotAuthorized)
			return
		}
		h.startGame(c, cmd.Rules)

	case codenames.CloseGame:
		if c.viewer == "" {
			h.reject(c, cmd.Method(), codenames.ErrNotAuthorized)
			return
		}
		h.game = nil
		logf(h.cfg, "GAMES: Closed game in room %s", h.slug)
		h.broadcastGame()

	case codenames.Update:
		if !h.authorized(c, cmd.Actor()) {
			h.reject(c, cmd.Method(), codenames.ErrNotAuthorized)
			return
		}
		if h.game == nil {
			h.reject(c, cmd.Method(), codenames.ErrNoGame)
			return
		}
		if err := cmd.Apply(h.game); err != nil {
			h.reject(c, cmd.Method(), err)
			return
		}
		h.broadcastGame()
		h.recordIfEnded()
	}
}

func (h *Hub) authorized(c *Client, id codenames.ViewerID) bool {
	return c.viewer != "" && c.viewer == id
}

func (h *Hub) join(c *Client, cmd codenames.Join) {
	id := cmd.PlayerID
	if id == "" {
		id = c.cookie
	}
	if id == "" {
		id = codenames.ViewerID(uuid.NewString())
	}

	c.viewer = id

	if _, ok := h.names[id]; !ok {
		h.names[id] = displayName(h.rng, h.pool)
		h.order = append(h.order, id)
		logf(h.cfg, "ROOMS: %s (%s) joined room %s", h.names[id], id, h.slug)
	}

	h.broadcastRoomInfo()
	h.push(c, h.snapshot(id))
}

func (h *Hub) startGame(c *Client, rules codenames.Rules) {
	if h.game != nil && !h.game.Ended() {
		h.reject(c, codenames.MethodStartGame, codenames.ErrGameInProgress)
		return
	}

	if rules.WordsCount > h.cfg.maxCards || rules.Teams() > h.cfg.maxTeams {
		h.reject(c, codenames.MethodStartGame, codenames.ErrInvalidRules)
		return
	}

	g, err := codenames.Deal(h.rng, h.pool.Words, rules)
	if err != nil {
		h.reject(c, codenames.MethodStartGame, err)
		return
	}

	h.game = g
	h.gameID = uuid.NewString()
	h.startedAt = time.Now()
	h.recorded = false

	logf(h.cfg, "GAMES: Started %d-card game for %d teams in room %s", g.Size(), g.TeamsCount(), h.slug)

	h.broadcastGame()
}

func (h *Hub) recordIfEnded() {
	if h.game == nil || !h.game.Ended() || h.recorded {
		return
	}
	h.recorded = true

	ranking := h.game.Ranking()
	teams := make([]int, len(ranking))
	for i, team := range ranking {
		teams[i] = int(team)
	}

	logf(h.cfg, "GAMES: Game %s in room %s finished, ranking %v", h.gameID, h.slug, teams)

	h.recorder.GameFinished(storage.Game{
		ID:        h.gameID,
		RoomID:    h.id,
		Teams:     h.game.TeamsCount(),
		Cards:     h.game.Size(),
		StartedAt: h.startedAt,
		EndedAt:   time.Now(),
		Ranking:   teams,
	})
}

func (h *Hub) snapshot(viewer codenames.ViewerID) codenames.Message {
	if h.game == nil {
		return codenames.NoGame()
	}

	return codenames.SyncGame(codenames.Project(h.game, viewer))
}

// broadcastGame projects the game once per distinct viewer and queues the
// result for each of that viewer's connections.
func (h *Hub) broadcastGame() {
	views := make(map[codenames.ViewerID]codenames.Message)

	for c := range h.clients {
		if c.viewer == "" {
			continue
		}
		msg, ok := views[c.viewer]
		if !ok {
			msg = h.snapshot(c.viewer)
			views[c.viewer] = msg
		}
		h.push(c, msg)
	}
}

func (h *Hub) broadcastRoomInfo() {
	for c := range h.clients {
		if c.viewer == "" {
			continue
		}

		players := make([]codenames.RoomPlayer, 0, len(h.order))
		for _, id := range h.order {
			players = append(players, codenames.RoomPlayer{
				ID:    id,
				Name:  h.names[id],
				IsYou: id == c.viewer,
			})
		}
		h.push(c, codenames.RoomInfo(players))
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case h.messages <- inbound{client: c, data: data}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
