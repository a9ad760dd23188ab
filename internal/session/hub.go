package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PrajwalNP160/major-project-sub001/internal/models"
)

// durableGroupPrefix marks room ids whose chat is mirrored to the
// durable store. Everything after the prefix is the group id.
const durableGroupPrefix = "group-"

// ChatStore is the durable chat-persistence collaborator.
type ChatStore interface {
	AppendMessage(ctx context.Context, groupID string, msg models.ChatMessage) error
}

// Directory resolves an external author reference to a durable user
// reference.
type Directory interface {
	ResolveUser(ctx context.Context, externalID string) (string, error)
}

// Executor is the code-execution collaborator.
type Executor interface {
	Run(ctx context.Context, req models.ExecuteRequest) (models.ExecutionResult, error)
}

// Collaborators bundles the external systems the hub calls outward.
// ChatStore and Directory may be nil; Exec must be set (the runner
// provides a stub mode when no endpoint is configured).
type Collaborators struct {
	Exec        Executor
	ChatStore   ChatStore
	Directory   Directory
	ExecTimeout time.Duration
}

// Hub manages all active collaboration rooms and routes typed frames
// between the connections joined to them. All room state lives here;
// nothing is ambient, so multiple hubs can run side by side in tests.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	clients map[*Client]struct{}

	log  *zap.Logger
	deps Collaborators
}

func NewHub(log *zap.Logger, deps Collaborators) *Hub {
	if deps.ExecTimeout <= 0 {
		deps.ExecTimeout = 15 * time.Second
	}
	return &Hub{
		rooms:   make(map[string]*Room),
		clients: make(map[*Client]struct{}),
		log:     log,
		deps:    deps,
	}
}

func (h *Hub) GetOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

func (h *Hub) Get(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// Attach registers a freshly upgraded connection with the hub.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Detach removes the connection from every room it joined, notifying
// the remaining members. Safe even when the client never joined a room.
func (h *Hub) Detach(c *Client) {
	for _, id := range c.RoomIDs() {
		room, ok := h.Get(id)
		if !ok {
			continue
		}
		presenceChanged, _ := room.Leave(c)
		room.BroadcastAll(models.Frame{
			Type: models.TypeUserLeft,
			Data: models.UserJoined{ConnectionID: c.ID},
		})
		if presenceChanged {
			room.BroadcastAll(models.Frame{
				Type: models.TypePresenceUpdate,
				Data: models.PresenceSnapshot{Users: room.PresenceNames()},
			})
		}
	}
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// JoinRoom adds the client to the room, creating it if needed, and
// runs the call-initiation protocol: the joiner is told to initiate a
// call toward each existing member, and each existing member is told
// the newcomer is ready to be called.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	room := h.GetOrCreate(roomID)
	others := room.Join(c)
	c.trackRoom(roomID)

	c.Send(models.Frame{Type: models.TypeChatHistory, Data: room.ChatHistory()})
	c.Send(models.Frame{Type: models.TypeRoomParticipants, Data: models.RoomParticipants{
		Participants: others,
		TotalCount:   len(others) + 1,
	}})

	room.Broadcast(c, models.Frame{
		Type: models.TypeUserJoined,
		Data: models.UserJoined{ConnectionID: c.ID},
	})

	if len(others) > 0 {
		c.Send(models.Frame{Type: models.TypeInitiateCalls, Data: others})
		room.Broadcast(c, models.Frame{
			Type: models.TypeNewParticipantReady,
			Data: models.UserJoined{ConnectionID: c.ID},
		})
	}
}

// Identify sets the client's display name in the room's presence map
// and rebroadcasts the full snapshot. Ignored without a prior join.
func (h *Hub) Identify(c *Client, req models.Identify) {
	if req.RoomID == "" {
		return
	}
	room, ok := h.Get(req.RoomID)
	if !ok || !room.Identify(c, req.Username) {
		return
	}
	room.BroadcastAll(models.Frame{
		Type: models.TypePresenceUpdate,
		Data: models.PresenceSnapshot{Users: room.PresenceNames()},
	})
}

// RelaySignal forwards an opaque signaling payload, either to the one
// targeted connection or to every other room member. A stale target is
// dropped silently.
func (h *Hub) RelaySignal(c *Client, outType string, sig models.Signal) {
	if sig.RoomID == "" {
		return
	}
	room, ok := h.Get(sig.RoomID)
	if !ok {
		return
	}
	frame := models.Frame{
		Type: outType,
		Data: models.ReceiveSignal{From: c.ID, Payload: sig.Payload},
	}
	if sig.Target != "" {
		room.SendTo(sig.Target, frame)
		return
	}
	room.Broadcast(c, frame)
}

// ToggleMedia relays a video/audio mute state change.
func (h *Hub) ToggleMedia(c *Client, outType string, msg models.MediaToggle) {
	if msg.RoomID == "" {
		return
	}
	room, ok := h.Get(msg.RoomID)
	if !ok {
		return
	}
	frame := models.Frame{
		Type: outType,
		Data: models.UserMediaToggle{From: c.ID, Flag: msg.Flag},
	}
	if msg.Target != "" {
		room.SendTo(msg.Target, frame)
		return
	}
	room.Broadcast(c, frame)
}

// RelayConnectionState forwards a peer-connection state change.
func (h *Hub) RelayConnectionState(c *Client, msg models.ConnectionState) {
	if msg.RoomID == "" {
		return
	}
	room, ok := h.Get(msg.RoomID)
	if !ok {
		return
	}
	frame := models.Frame{
		Type: models.TypePeerConnectionState,
		Data: models.PeerConnectionState{From: c.ID, State: msg.State},
	}
	if msg.Target != "" {
		room.SendTo(msg.Target, frame)
		return
	}
	room.Broadcast(c, frame)
}

// MediaReady announces that the sender's media stream is up.
func (h *Hub) MediaReady(c *Client, roomID string) {
	h.relayFrom(c, roomID, models.TypeUserMediaReady)
}

// RequestMediaStatus asks the other members to re-announce their media
// state.
func (h *Hub) RequestMediaStatus(c *Client, roomID string) {
	h.relayFrom(c, roomID, models.TypeMediaStatusRequest)
}

func (h *Hub) relayFrom(c *Client, roomID, outType string) {
	if roomID == "" {
		return
	}
	room, ok := h.Get(roomID)
	if !ok {
		return
	}
	room.Broadcast(c, models.Frame{Type: outType, Data: models.FromRef{From: c.ID}})
}

// Chat appends the message to the room buffer and broadcasts it to all
// members including the sender. Rooms with the durable-group prefix
// are additionally mirrored to the chat store, asynchronously; a
// mirror failure never affects the broadcast or the buffer.
func (h *Hub) Chat(c *Client, msg models.ChatSend) {
	if msg.RoomID == "" || msg.Text == "" {
		return
	}
	room := h.GetOrCreate(msg.RoomID)
	cm := models.ChatMessage{
		ID:            uuid.New().String(),
		Author:        msg.Author,
		AuthorUserRef: msg.AuthorUserRef,
		ConnectionID:  c.ID,
		Text:          msg.Text,
		SentAt:        time.Now(),
	}
	if cm.AuthorUserRef == "" {
		cm.AuthorUserRef = c.UserRef
	}
	cm = room.AppendChat(cm)
	room.BroadcastAll(models.Frame{Type: models.TypeChatMessage, Data: cm})

	if h.deps.ChatStore != nil && strings.HasPrefix(msg.RoomID, durableGroupPrefix) {
		go h.mirrorChat(strings.TrimPrefix(msg.RoomID, durableGroupPrefix), cm)
	}
}

func (h *Hub) mirrorChat(groupID string, cm models.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if h.deps.Directory != nil && cm.AuthorUserRef != "" {
		ref, err := h.deps.Directory.ResolveUser(ctx, cm.AuthorUserRef)
		if err != nil {
			h.log.Warn("user directory lookup failed",
				zap.String("group", groupID),
				zap.String("externalId", cm.AuthorUserRef),
				zap.Error(err))
		} else {
			cm.AuthorUserRef = ref
		}
	}

	if err := h.deps.ChatStore.AppendMessage(ctx, groupID, cm); err != nil {
		h.log.Warn("durable chat mirror failed",
			zap.String("group", groupID),
			zap.String("messageId", cm.ID),
			zap.Error(err))
	}
}

// Typing is a stateless relay to every other member.
func (h *Hub) Typing(c *Client, msg models.Typing) {
	if msg.RoomID == "" {
		return
	}
	room, ok := h.Get(msg.RoomID)
	if !ok {
		return
	}
	room.Broadcast(c, models.Frame{
		Type: models.TypeTyping,
		Data: models.TypingNotice{Author: msg.Author, IsTyping: msg.IsTyping},
	})
}

// WhiteboardJoin returns the room's current whiteboard snapshot to the
// requester only, creating the room if absent. No generic room join is
// required first.
func (h *Hub) WhiteboardJoin(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	room := h.GetOrCreate(roomID)
	c.Send(models.Frame{Type: models.TypeWhiteboardHistory, Data: room.Board()})
}

// WhiteboardChange overwrites the room's snapshot and broadcasts the
// new document to every other member. Last write wins.
func (h *Hub) WhiteboardChange(c *Client, msg models.WhiteboardChange) {
	if msg.RoomID == "" {
		return
	}
	room := h.GetOrCreate(msg.RoomID)
	doc := room.SetBoard(msg.Elements, msg.AppState)
	room.Broadcast(c, models.Frame{Type: models.TypeWhiteboardUpdate, Data: doc})
}

// RelayCode rebroadcasts editor text, stdin or language selection to
// every other member. The hub keeps no copy, so late joiners receive
// nothing retroactively.
func (h *Hub) RelayCode(c *Client, frameType string, msg models.CodeValue) {
	if msg.RoomID == "" {
		return
	}
	room, ok := h.Get(msg.RoomID)
	if !ok {
		return
	}
	room.Broadcast(c, models.Frame{
		Type: frameType,
		Data: models.CodeRelay{From: c.ID, Value: msg.Value},
	})
}

// ExecuteCode brokers an execution request to the collaborator and
// replies to the requesting connection only. Callers run it on its own
// goroutine so a slow execution never blocks the room.
func (h *Hub) ExecuteCode(ctx context.Context, c *Client, req models.ExecuteRequest) {
	ctx, cancel := context.WithTimeout(ctx, h.deps.ExecTimeout)
	defer cancel()

	res, err := h.deps.Exec.Run(ctx, req)
	if err != nil {
		h.log.Warn("code execution failed",
			zap.String("room", req.RoomID),
			zap.String("language", req.LanguageID),
			zap.Error(err))
		res = models.ExecutionResult{Stderr: "execution failed: " + err.Error()}
	}
	c.Send(models.Frame{Type: models.TypeExecutionResult, Data: res})
}

// Summaries reports the diagnostic snapshot of every live room.
func (h *Hub) Summaries() []models.RoomSummary {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	out := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

// RoomChat returns the room's recent chat buffer.
func (h *Hub) RoomChat(roomID string) ([]models.ChatMessage, bool) {
	room, ok := h.Get(roomID)
	if !ok {
		return nil, false
	}
	return room.ChatHistory(), true
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartReaper evicts rooms that have been empty and idle longer than
// ttl. The reference system never evicts; this only runs when the
// operator opts in with a positive ttl.
func (h *Hub) StartReaper(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := h.reapIdle(ttl); n > 0 {
					h.log.Info("reaped idle rooms", zap.Int("count", n))
				}
			}
		}
	}()
}

func (h *Hub) reapIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, room := range h.rooms {
		if room.idleSince(cutoff) {
			delete(h.rooms, id)
			n++
		}
	}
	return n
}
