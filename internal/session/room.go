package session

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/PrajwalNP160/major-project-sub001/internal/models"
)

// chatBufferCap bounds the per-room chat log; the oldest entry is
// evicted once the cap is exceeded.
const chatBufferCap = 100

// Room holds the shared state for one caller-named session: member
// set, presence map, chat buffer and whiteboard snapshot. All fields
// are guarded by a single room mutex; handlers never hold it across a
// collaborator call, so cross-sender interleaving stays possible.
type Room struct {
	ID string

	mu       sync.Mutex
	members  map[*Client]struct{}
	presence map[*Client]string
	chat     []models.ChatMessage
	seq      int64
	board    models.WhiteboardDocument
	hasBoard bool
	lastUsed time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:       id,
		members:  make(map[*Client]struct{}),
		presence: make(map[*Client]string),
		lastUsed: time.Now(),
	}
}

// Join adds the client and returns the ids of the members that were
// already present, in sorted order.
func (r *Room) Join(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed = time.Now()
	others := make([]string, 0, len(r.members))
	for m := range r.members {
		others = append(others, m.ID)
	}
	sort.Strings(others)
	r.members[c] = struct{}{}
	return others
}

// Leave removes the client from the member set and presence map.
// It reports whether the presence map changed and how many members
// remain. Safe to call for clients that never joined.
func (r *Room) Leave(c *Client) (presenceChanged bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[c]; !ok {
		return false, len(r.members)
	}
	delete(r.members, c)
	if _, ok := r.presence[c]; ok {
		delete(r.presence, c)
		presenceChanged = true
	}
	r.lastUsed = time.Now()
	return presenceChanged, len(r.members)
}

// Identify records the client's display name. It fails when the
// client has not joined this room.
func (r *Room) Identify(c *Client, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[c]; !ok {
		return false
	}
	r.presence[c] = name
	r.lastUsed = time.Now()
	return true
}

// PresenceNames returns the display names currently identified in the
// room, sorted for stable snapshots.
func (r *Room) PresenceNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.presence))
	for _, n := range r.presence {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Room) HasMember(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[c]
	return ok
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// AppendChat stamps the message with the room's arrival-order sequence,
// appends it and evicts the oldest entries past the buffer cap.
func (r *Room) AppendChat(msg models.ChatMessage) models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.Seq = r.seq
	r.chat = append(r.chat, msg)
	if len(r.chat) > chatBufferCap {
		r.chat = r.chat[len(r.chat)-chatBufferCap:]
	}
	r.lastUsed = time.Now()
	return msg
}

func (r *Room) ChatHistory() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChatMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

// SetBoard replaces the whiteboard snapshot. Last write wins; there is
// no merge and concurrent writers deliberately race.
func (r *Room) SetBoard(elements, appState json.RawMessage) models.WhiteboardDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = models.WhiteboardDocument{Elements: elements, AppState: appState}
	r.hasBoard = true
	r.lastUsed = time.Now()
	return r.board
}

func (r *Room) Board() models.WhiteboardDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasBoard {
		return models.WhiteboardDocument{
			Elements: json.RawMessage(`[]`),
			AppState: json.RawMessage(`{}`),
		}
	}
	return r.board
}

// Broadcast fans the frame out to every member except the sender.
func (r *Room) Broadcast(sender *Client, frame models.Frame) {
	for _, c := range r.memberList() {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll fans the frame out to every member including the sender.
func (r *Room) BroadcastAll(frame models.Frame) {
	for _, c := range r.memberList() {
		c.Send(frame)
	}
}

// SendTo delivers the frame to the member with the given connection id.
// A missing target is dropped silently and reported as false.
func (r *Room) SendTo(targetID string, frame models.Frame) bool {
	for _, c := range r.memberList() {
		if c.ID == targetID {
			c.Send(frame)
			return true
		}
	}
	return false
}

// memberList snapshots the member set so sends happen outside the room
// lock.
func (r *Room) memberList() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.members))
	for c := range r.members {
		out = append(out, c)
	}
	return out
}

// Summary reports the diagnostic view of the room.
func (r *Room) Summary() models.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomSummary{
		ID:            r.ID,
		MemberCount:   len(r.members),
		PresenceCount: len(r.presence),
		ChatBufferLen: len(r.chat),
		HasWhiteboard: r.hasBoard,
	}
}

// idleSince reports whether the room is empty and untouched since the
// given cutoff.
func (r *Room) idleSince(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && r.lastUsed.Before(cutoff)
}
