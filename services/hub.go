package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SnapshotFunc loads the current document of a game for state-sync requests.
// Wired in main to the per-kind service Get.
type SnapshotFunc func(ctx context.Context, kind, gameID string) (any, error)

// Hub fans game updates out to websocket clients. Clients are grouped by
// "<kind>/<gameID>"; handlers broadcast after every successful mutation.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	snapshot   SnapshotFunc
}

type Client struct {
	hub     *Hub
	id      string
	socket  *websocket.Conn
	send    chan []byte
	gameKey string
}

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshot:   snapshot,
	}
}

func GameKey(kind, gameID string) string {
	return kind + "/" + gameID
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Debug().Str("client", client.id).Str("game", client.gameKey).Msg("ws client registered")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Debug().Str("client", client.id).Str("game", client.gameKey).Msg("ws client unregistered")

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastToGame sends one typed message to every client of a game.
func (h *Hub) BroadcastToGame(kind, gameID, messageType string, payload any) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Warn().Err(err).Str("type", messageType).Msg("ws marshal failed")
		return
	}
	key := GameKey(kind, gameID)

	h.mutex.RLock()
	for client := range h.clients {
		if client.gameKey != key {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.RUnlock()
}

func (h *Hub) RegisterClient(conn *websocket.Conn, kind, gameID string) *Client {
	client := &Client{
		hub:     h,
		id:      uuid.NewString(),
		socket:  conn,
		send:    make(chan []byte, 256),
		gameKey: GameKey(kind, gameID),
	}

	h.register <- client

	go client.writePump()
	go client.readPump(kind, gameID)

	return client
}

func (c *Client) readPump(kind, gameID string) {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", c.id).Msg("ws read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			c.reply(Message{Type: "pong", Payload: "pong"})
		case "request_game_state":
			if c.hub.snapshot == nil {
				continue
			}
			doc, err := c.hub.snapshot(context.Background(), kind, gameID)
			if err != nil {
				log.Warn().Err(err).Str("game", c.gameKey).Msg("ws state sync failed")
				continue
			}
			c.reply(Message{Type: "game_update", Payload: doc})
		}
	}
}

func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}
