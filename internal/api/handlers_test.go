package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/PrajwalNP160/major-project-sub001/internal/exec"
	"github.com/PrajwalNP160/major-project-sub001/internal/models"
	"github.com/PrajwalNP160/major-project-sub001/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := session.NewHub(zap.NewNop(), session.Collaborators{
		Exec:        exec.NewRunner(""),
		ExecTimeout: time.Second,
	})
	h := NewHandlers(zap.NewNop(), hub, "")

	r := chi.NewRouter()
	r.Get("/ws/hub", h.HubWS)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/hub"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frameType string, data any) {
	t.Helper()
	if err := conn.WriteJSON(models.Frame{Type: frameType, Data: data}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) models.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame models.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestJoinOverWebSocket(t *testing.T) {
	server := newTestServer(t)
	conn := dialHub(t, server)

	sendFrame(t, conn, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})

	history := readFrame(t, conn)
	if history.Type != models.TypeChatHistory {
		t.Fatalf("expected chat_history first, got %#v", history)
	}
	parts := readFrame(t, conn)
	if parts.Type != models.TypeRoomParticipants {
		t.Fatalf("expected room_participants, got %#v", parts)
	}
	data := parts.Data.(map[string]interface{})
	if count, _ := data["totalCount"].(float64); count != 1 {
		t.Fatalf("expected total count 1, got %#v", data)
	}
}

func TestSecondJoinerTriggersCallProtocol(t *testing.T) {
	server := newTestServer(t)
	first := dialHub(t, server)
	sendFrame(t, first, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})
	readFrame(t, first) // chat_history
	readFrame(t, first) // room_participants

	second := dialHub(t, server)
	sendFrame(t, second, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})

	if f := readFrame(t, second); f.Type != models.TypeChatHistory {
		t.Fatalf("expected chat_history, got %#v", f)
	}
	if f := readFrame(t, second); f.Type != models.TypeRoomParticipants {
		t.Fatalf("expected room_participants, got %#v", f)
	}
	initiate := readFrame(t, second)
	if initiate.Type != models.TypeInitiateCalls {
		t.Fatalf("expected initiate_calls, got %#v", initiate)
	}
	if peers := initiate.Data.([]interface{}); len(peers) != 1 {
		t.Fatalf("expected one peer to call, got %#v", peers)
	}

	joined := readFrame(t, first)
	if joined.Type != models.TypeUserJoined {
		t.Fatalf("expected user_joined, got %#v", joined)
	}
	ready := readFrame(t, first)
	if ready.Type != models.TypeNewParticipantReady {
		t.Fatalf("expected new_participant_ready, got %#v", ready)
	}
}

func TestChatRoundTrip(t *testing.T) {
	server := newTestServer(t)
	conn := dialHub(t, server)
	sendFrame(t, conn, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})
	readFrame(t, conn) // chat_history
	readFrame(t, conn) // room_participants

	sendFrame(t, conn, models.TypeChatSend, models.ChatSend{RoomID: "r1", Author: "alice", Text: "hello"})

	msg := readFrame(t, conn)
	if msg.Type != models.TypeChatMessage {
		t.Fatalf("expected chat_message, got %#v", msg)
	}
	data := msg.Data.(map[string]interface{})
	if data["text"] != "hello" || data["author"] != "alice" {
		t.Fatalf("unexpected chat payload: %#v", data)
	}
}

func TestExecuteCodeStubOverWebSocket(t *testing.T) {
	server := newTestServer(t)
	conn := dialHub(t, server)
	sendFrame(t, conn, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})
	readFrame(t, conn) // chat_history
	readFrame(t, conn) // room_participants

	sendFrame(t, conn, models.TypeExecuteCode, models.ExecuteRequest{
		RoomID:     "r1",
		SourceCode: "print(1)",
		LanguageID: "python",
		Stdin:      "7",
	})

	result := readFrame(t, conn)
	if result.Type != models.TypeExecutionResult {
		t.Fatalf("expected executionResult, got %#v", result)
	}
	data := result.Data.(map[string]interface{})
	stdout, _ := data["stdout"].(string)
	if !strings.Contains(stdout, "python") || !strings.Contains(stdout, "7") {
		t.Fatalf("stub result must name language and stdin, got %q", stdout)
	}
}

func TestUnknownFrameTypeAnswered(t *testing.T) {
	server := newTestServer(t)
	conn := dialHub(t, server)

	sendFrame(t, conn, "bogus", nil)

	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("expected error frame, got %#v", frame)
	}
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	server := newTestServer(t)
	first := dialHub(t, server)
	sendFrame(t, first, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})
	readFrame(t, first)
	readFrame(t, first)

	second := dialHub(t, server)
	sendFrame(t, second, models.TypeJoinRoom, models.JoinRoom{RoomID: "r1"})
	readFrame(t, first) // user_joined
	readFrame(t, first) // new_participant_ready

	second.Close()

	left := readFrame(t, first)
	if left.Type != models.TypeUserLeft {
		t.Fatalf("expected user_left after disconnect, got %#v", left)
	}
}
