package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsPrediction(t *testing.T) {
	hub := NewWebSocketHub(nil)
	go hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	err = hub.PublishPrediction(PredictionMessage{
		DispatchID: "d-1",
		Source:     "form",
		Rows:       1,
		Models:     []ModelVerdict{{Model: "Decision Tree", Positives: 0}},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if msg.Type != PredictionEvent || msg.ID == "" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	var payload PredictionMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.DispatchID != "d-1" || len(payload.Models) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
