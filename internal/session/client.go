package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PrajwalNP160/major-project-sub001/internal/models"
)

// Client is one live collaboration socket. The hub owns it for its
// whole lifetime; nothing outside keeps a reference after detach.
type Client struct {
	ID   string
	Conn *websocket.Conn

	// UserRef is the durable user reference carried by the auth token,
	// if any. Used as a fallback author reference for chat mirroring.
	UserRef string

	mu    sync.Mutex
	hook  func(models.Frame)
	rooms map[string]struct{}
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:    uuid.New().String(),
		Conn:  conn,
		rooms: make(map[string]struct{}),
	}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.Frame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}

func (c *Client) trackRoom(id string) {
	c.mu.Lock()
	c.rooms[id] = struct{}{}
	c.mu.Unlock()
}

// RoomIDs returns every room this client has joined.
func (c *Client) RoomIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}
