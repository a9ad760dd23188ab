package models

import (
	"encoding/json"
	"time"
)

// Frame is the envelope for every message crossing a collaboration
// socket, in either direction. Data carries the payload for the given
// Type; signaling and whiteboard bodies stay opaque to the hub.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Inbound frame types.
const (
	TypeJoinRoom           = "join_room"
	TypePresenceIdentify   = "presence_identify"
	TypeOffer              = "offer"
	TypeAnswer             = "answer"
	TypeICECandidate       = "ice-candidate"
	TypeToggleVideo        = "toggle_video"
	TypeToggleAudio        = "toggle_audio"
	TypeConnectionState    = "webrtc_connection_state"
	TypeMediaStreamReady   = "media_stream_ready"
	TypeRequestMediaStatus = "request_media_status"
	TypeCodeChange         = "code_change"
	TypeStdinChange        = "stdin_change"
	TypeLanguageChange     = "language_change"
	TypeExecuteCode        = "execute_code_event"
	TypeChatSend           = "chat_send"
	TypeTyping             = "typing"
	TypeWhiteboardJoin     = "whiteboard_join"
	TypeWhiteboardChange   = "whiteboard_change"
)

// Outbound frame types.
const (
	TypeUserJoined          = "user_joined"
	TypeRoomParticipants    = "room_participants"
	TypeInitiateCalls       = "initiate_calls"
	TypeNewParticipantReady = "new_participant_ready"
	TypeReceiveOffer        = "receive_offer"
	TypeReceiveAnswer       = "receive_answer"
	TypeReceiveCandidate    = "receive_candidate"
	TypeUserVideoToggle     = "user_video_toggle"
	TypeUserAudioToggle     = "user_audio_toggle"
	TypePeerConnectionState = "peer_connection_state"
	TypeUserMediaReady      = "user_media_ready"
	TypeMediaStatusRequest  = "media_status_request"
	TypeChatHistory         = "chat_history"
	TypeChatMessage         = "chat_message"
	TypePresenceUpdate      = "presence_update"
	TypeUserLeft            = "user_left"
	TypeWhiteboardHistory   = "whiteboard_history"
	TypeWhiteboardUpdate    = "whiteboard_update"
	TypeExecutionResult     = "executionResult"
)

type JoinRoom struct {
	RoomID string `json:"roomId"`
}

type Identify struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// Signal carries an opaque WebRTC payload. An empty target means
// broadcast to every other room member.
type Signal struct {
	RoomID  string          `json:"roomId"`
	Target  string          `json:"targetConnectionId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MediaToggle struct {
	RoomID string `json:"roomId"`
	Target string `json:"targetConnectionId,omitempty"`
	Flag   bool   `json:"flag"`
}

type ConnectionState struct {
	RoomID string `json:"roomId"`
	Target string `json:"targetConnectionId,omitempty"`
	State  string `json:"state"`
}

type RoomRef struct {
	RoomID string `json:"roomId"`
}

type CodeValue struct {
	RoomID string `json:"roomId"`
	Value  string `json:"value"`
}

type ExecuteRequest struct {
	RoomID     string `json:"roomId"`
	SourceCode string `json:"sourceCode"`
	LanguageID string `json:"languageId"`
	Stdin      string `json:"stdin,omitempty"`
}

type ExecutionResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

type ChatSend struct {
	RoomID        string `json:"roomId"`
	Author        string `json:"author"`
	Text          string `json:"text"`
	AuthorUserRef string `json:"authorUserRef,omitempty"`
}

type ChatMessage struct {
	ID            string    `json:"id"`
	Author        string    `json:"author"`
	AuthorUserRef string    `json:"authorUserRef,omitempty"`
	ConnectionID  string    `json:"connectionId"`
	Text          string    `json:"text"`
	Seq           int64     `json:"seq"`
	SentAt        time.Time `json:"sentAt"`
}

type Typing struct {
	RoomID   string `json:"roomId"`
	Author   string `json:"author"`
	IsTyping bool   `json:"isTyping"`
}

type TypingNotice struct {
	Author   string `json:"author"`
	IsTyping bool   `json:"isTyping"`
}

type WhiteboardChange struct {
	RoomID   string          `json:"roomId"`
	Elements json.RawMessage `json:"elements"`
	AppState json.RawMessage `json:"appState"`
}

// WhiteboardDocument is the room's last-writer-wins snapshot; the hub
// never inspects its contents.
type WhiteboardDocument struct {
	Elements json.RawMessage `json:"elements"`
	AppState json.RawMessage `json:"appState"`
}

type UserJoined struct {
	ConnectionID string `json:"connectionId"`
}

type RoomParticipants struct {
	Participants []string `json:"participants"`
	TotalCount   int      `json:"totalCount"`
}

type ReceiveSignal struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type UserMediaToggle struct {
	From string `json:"from"`
	Flag bool   `json:"flag"`
}

type PeerConnectionState struct {
	From  string `json:"from"`
	State string `json:"state"`
}

type FromRef struct {
	From string `json:"from"`
}

type CodeRelay struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

type PresenceSnapshot struct {
	Users []string `json:"users"`
}

// RoomSummary is the diagnostic view of a live room.
type RoomSummary struct {
	ID            string `json:"id"`
	MemberCount   int    `json:"memberCount"`
	PresenceCount int    `json:"presenceCount"`
	ChatBufferLen int    `json:"chatBufferLen"`
	HasWhiteboard bool   `json:"hasWhiteboard"`
}
