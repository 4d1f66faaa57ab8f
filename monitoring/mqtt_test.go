package monitoring

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	mqtt.Token
	err error
}

func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakeMQTTClient struct {
	mqtt.Client
	messages []published
	err      error
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic: topic, payload: payload.([]byte)})
	return fakeToken{err: c.err}
}

func TestMQTTSinkReceivesHubMessages(t *testing.T) {
	client := &fakeMQTTClient{}
	sink := newMQTTSink(client, MQTTConfig{TopicPrefix: "clinic/heart"})

	hub := NewWebSocketHub(nil)
	hub.AddSink(sink)

	if err := hub.PublishPrediction(PredictionMessage{DispatchID: "d-1", Source: "upload", Rows: 3}); err != nil {
		t.Fatalf("publish prediction: %v", err)
	}
	if err := hub.PublishError(ErrorMessage{Kind: "schema_mismatch", Source: "upload", Message: "missing ST_Slope"}); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	if len(client.messages) != 2 {
		t.Fatalf("expected 2 published messages, got %d", len(client.messages))
	}
	if client.messages[0].topic != "clinic/heart/prediction" || client.messages[1].topic != "clinic/heart/error" {
		t.Fatalf("unexpected topics: %q, %q", client.messages[0].topic, client.messages[1].topic)
	}
	var msg Message
	if err := json.Unmarshal(client.messages[1].payload, &msg); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if msg.Type != ErrorEvent {
		t.Fatalf("unexpected message type %q", msg.Type)
	}
}

func TestMQTTSinkPublishError(t *testing.T) {
	client := &fakeMQTTClient{err: errors.New("not connected")}
	sink := newMQTTSink(client, MQTTConfig{})

	if got := sink.Topic(PredictionEvent); got != "heartpredict/prediction" {
		t.Fatalf("default topic = %q", got)
	}
	if err := sink.Send(PredictionEvent, []byte("{}")); err == nil {
		t.Fatal("expected publish error to surface")
	}

	// the hub logs sink failures and still succeeds
	hub := NewWebSocketHub(nil)
	hub.AddSink(sink)
	if err := hub.PublishPrediction(PredictionMessage{DispatchID: "d-2"}); err != nil {
		t.Fatalf("hub publish: %v", err)
	}
}
