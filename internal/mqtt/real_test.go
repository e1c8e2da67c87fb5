package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// stubToken resolves immediately.
type stubToken struct{ err error }

func (t stubToken) Wait() bool                     { return true }
func (t stubToken) WaitTimeout(time.Duration) bool { return true }
func (t stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t stubToken) Error() error { return t.err }

type publishedMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// stubClient records publishes and lets tests toggle the connection.
type stubClient struct {
	open      bool
	published []publishedMsg
	calls     int
	failFrom  int // 1-based publish call that starts failing; 0 never fails
}

func (c *stubClient) IsConnected() bool      { return c.open }
func (c *stubClient) IsConnectionOpen() bool { return c.open }
func (c *stubClient) Connect() paho.Token    { return stubToken{} }
func (c *stubClient) Disconnect(uint)        {}

func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.calls++
	if c.failFrom != 0 && c.calls >= c.failFrom {
		return stubToken{err: errors.New("publish refused")}
	}
	c.published = append(c.published, publishedMsg{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	return stubToken{}
}

func (c *stubClient) Subscribe(string, byte, paho.MessageHandler) paho.Token { return stubToken{} }
func (c *stubClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return stubToken{}
}
func (c *stubClient) Unsubscribe(...string) paho.Token        { return stubToken{} }
func (c *stubClient) AddRoute(string, paho.MessageHandler)    {}
func (c *stubClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func stubPublisher(client *stubClient, capacity int) *RealPublisher {
	return &RealPublisher{client: client, buffer: newRingBuffer(capacity)}
}

func ledEvent(output string) Event {
	return Event{Timestamp: time.Now(), Output: output, Effect: "blink", State: 1}
}

func TestPublishConnectedGoesDirect(t *testing.T) {
	client := &stubClient{open: true}
	p := stubPublisher(client, 8)

	if err := p.Publish(ledEvent("front")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.published) != 1 {
		t.Fatalf("published = %d, want 1", len(client.published))
	}
	if client.published[0].topic != Topic || client.published[0].qos != 0 {
		t.Errorf("published to %s qos %d, want %s qos 0",
			client.published[0].topic, client.published[0].qos, Topic)
	}
	if p.buffer.len() != 0 {
		t.Errorf("buffered = %d, want 0", p.buffer.len())
	}
}

func TestPublishDisconnectedBuffers(t *testing.T) {
	client := &stubClient{}
	p := stubPublisher(client, 8)

	if err := p.Publish(ledEvent("front")); err != nil {
		t.Fatalf("buffering should not surface an error: %v", err)
	}

	if len(client.published) != 0 {
		t.Errorf("published = %d, want 0 while disconnected", len(client.published))
	}
	if p.buffer.len() != 1 {
		t.Errorf("buffered = %d, want 1", p.buffer.len())
	}
}

func TestReconnectReplaysOldestFirst(t *testing.T) {
	client := &stubClient{}
	p := stubPublisher(client, 8)

	outputs := []string{"front", "rear", "power"}
	for _, output := range outputs {
		if err := p.Publish(ledEvent(output)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	client.open = true
	p.onConnect(client)

	if len(client.published) != len(outputs) {
		t.Fatalf("replayed = %d, want %d", len(client.published), len(outputs))
	}
	for i, want := range outputs {
		var decoded Payload
		if err := json.Unmarshal(client.published[i].payload, &decoded); err != nil {
			t.Fatalf("replayed payload %d is not valid JSON: %v", i, err)
		}
		if decoded.LED.Output != want {
			t.Errorf("replay %d = %q, want %q", i, decoded.LED.Output, want)
		}
	}
	if p.buffer.len() != 0 {
		t.Errorf("buffered after replay = %d, want 0", p.buffer.len())
	}
}

func TestReconnectReplayKeepsQoSAndRetained(t *testing.T) {
	client := &stubClient{}
	p := stubPublisher(client, 8)

	err := p.PublishSystem(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
		Retained:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.open = true
	p.onConnect(client)

	if len(client.published) != 1 {
		t.Fatalf("replayed = %d, want 1", len(client.published))
	}
	got := client.published[0]
	if got.topic != TopicSystem {
		t.Errorf("topic = %s, want %s", got.topic, TopicSystem)
	}
	if got.qos != 1 || !got.retained {
		t.Errorf("qos = %d retained = %v, want 1 and true", got.qos, got.retained)
	}
}

func TestReconnectReplayDropsOldestOnOverflow(t *testing.T) {
	client := &stubClient{}
	p := stubPublisher(client, 2)

	for _, output := range []string{"front", "rear", "power"} {
		if err := p.Publish(ledEvent(output)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	client.open = true
	p.onConnect(client)

	if len(client.published) != 2 {
		t.Fatalf("replayed = %d, want 2", len(client.published))
	}
	for i, want := range []string{"rear", "power"} {
		var decoded Payload
		if err := json.Unmarshal(client.published[i].payload, &decoded); err != nil {
			t.Fatal(err)
		}
		if decoded.LED.Output != want {
			t.Errorf("replay %d = %q, want %q (oldest dropped)", i, decoded.LED.Output, want)
		}
	}
}

func TestReconnectReplayStopsOnBrokerError(t *testing.T) {
	client := &stubClient{failFrom: 2}
	p := stubPublisher(client, 8)

	for _, output := range []string{"front", "rear", "power"} {
		if err := p.Publish(ledEvent(output)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	client.open = true
	p.onConnect(client)

	if len(client.published) != 1 {
		t.Errorf("replayed = %d, want 1 before the failure", len(client.published))
	}
	// The remainder is dropped rather than retried forever.
	if p.buffer.len() != 0 {
		t.Errorf("buffered after failed replay = %d, want 0", p.buffer.len())
	}
}
