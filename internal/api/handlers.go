package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/PrajwalNP160/major-project-sub001/internal/metrics"
	"github.com/PrajwalNP160/major-project-sub001/internal/models"
	"github.com/PrajwalNP160/major-project-sub001/internal/session"
	"github.com/PrajwalNP160/major-project-sub001/internal/utils"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Handlers struct {
	log       *zap.Logger
	hub       *session.Hub
	jwtSecret string
}

func NewHandlers(log *zap.Logger, hub *session.Hub, jwtSecret string) *Handlers {
	return &Handlers{log: log, hub: hub, jwtSecret: jwtSecret}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// ListRooms is a diagnostic snapshot of current rooms.
func (h *Handlers) ListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.hub.Summaries())
}

// RoomChat returns a room's recent chat buffer.
func (h *Handlers) RoomChat(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	history, ok := h.hub.RoomChat(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, history)
}

/*** Collaboration WebSocket: one socket per peer, typed frames in both directions ***/

func (h *Handlers) HubWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(conn)
	if token := r.URL.Query().Get("token"); token != "" && h.jwtSecret != "" {
		ref, err := utils.UserRefFromToken(token, h.jwtSecret)
		if err != nil {
			// An anonymous socket is fine; there is no room access control.
			h.log.Debug("ignoring invalid token", zap.Error(err))
		} else {
			client.UserRef = ref
		}
	}

	h.hub.Attach(client)
	defer func() {
		h.hub.Detach(client)
		metrics.SetHubSize(h.hub.ClientCount(), h.hub.RoomCount())
	}()
	metrics.SetHubSize(h.hub.ClientCount(), h.hub.RoomCount())

	// Event loop: frames from one socket are handled in arrival order,
	// so per-sender FIFO holds. Execution requests run on their own
	// goroutine and may interleave with later frames.
	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		h.dispatch(r.Context(), client, frame)
	}
}

func (h *Handlers) dispatch(ctx context.Context, client *session.Client, frame models.Frame) {
	metrics.ObserveMessage(frame.Type)

	switch frame.Type {
	case models.TypeJoinRoom:
		var req models.JoinRoom
		marshal(frame.Data, &req)
		h.hub.JoinRoom(client, req.RoomID)
		metrics.SetHubSize(h.hub.ClientCount(), h.hub.RoomCount())

	case models.TypePresenceIdentify:
		var req models.Identify
		marshal(frame.Data, &req)
		h.hub.Identify(client, req)

	case models.TypeOffer:
		var sig models.Signal
		marshal(frame.Data, &sig)
		h.hub.RelaySignal(client, models.TypeReceiveOffer, sig)

	case models.TypeAnswer:
		var sig models.Signal
		marshal(frame.Data, &sig)
		h.hub.RelaySignal(client, models.TypeReceiveAnswer, sig)

	case models.TypeICECandidate:
		var sig models.Signal
		marshal(frame.Data, &sig)
		h.hub.RelaySignal(client, models.TypeReceiveCandidate, sig)

	case models.TypeToggleVideo:
		var msg models.MediaToggle
		marshal(frame.Data, &msg)
		h.hub.ToggleMedia(client, models.TypeUserVideoToggle, msg)

	case models.TypeToggleAudio:
		var msg models.MediaToggle
		marshal(frame.Data, &msg)
		h.hub.ToggleMedia(client, models.TypeUserAudioToggle, msg)

	case models.TypeConnectionState:
		var msg models.ConnectionState
		marshal(frame.Data, &msg)
		h.hub.RelayConnectionState(client, msg)

	case models.TypeMediaStreamReady:
		var ref models.RoomRef
		marshal(frame.Data, &ref)
		h.hub.MediaReady(client, ref.RoomID)

	case models.TypeRequestMediaStatus:
		var ref models.RoomRef
		marshal(frame.Data, &ref)
		h.hub.RequestMediaStatus(client, ref.RoomID)

	case models.TypeCodeChange, models.TypeStdinChange, models.TypeLanguageChange:
		var msg models.CodeValue
		marshal(frame.Data, &msg)
		h.hub.RelayCode(client, frame.Type, msg)

	case models.TypeExecuteCode:
		var req models.ExecuteRequest
		marshal(frame.Data, &req)
		go h.hub.ExecuteCode(context.WithoutCancel(ctx), client, req)

	case models.TypeChatSend:
		var msg models.ChatSend
		marshal(frame.Data, &msg)
		h.hub.Chat(client, msg)
		metrics.SetHubSize(h.hub.ClientCount(), h.hub.RoomCount())

	case models.TypeTyping:
		var msg models.Typing
		marshal(frame.Data, &msg)
		h.hub.Typing(client, msg)

	case models.TypeWhiteboardJoin:
		var ref models.RoomRef
		marshal(frame.Data, &ref)
		h.hub.WhiteboardJoin(client, ref.RoomID)

	case models.TypeWhiteboardChange:
		var msg models.WhiteboardChange
		marshal(frame.Data, &msg)
		h.hub.WhiteboardChange(client, msg)

	default:
		client.Send(errFrame("unknown_type"))
	}
}

func marshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

func errFrame(msg string) models.Frame { return models.Frame{Type: "error", Data: msg} }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
