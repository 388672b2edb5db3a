package nats

import (
	"sync/atomic"
	"testing"
	"time"

	"prompt-builder-bot/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.prompt.saved", Subject(events.PromptSaved))
	assert.Equal(t, "events.outbound.42", Subject("outbound.42"))
}

func TestToEvent_Envelope(t *testing.T) {
	raw, err := events.Encode(events.New(events.PromptExported, map[string]interface{}{"filename": "p.txt"}))
	require.NoError(t, err)

	evt, err := ToEvent("events.prompt.exported", raw)

	require.NoError(t, err)
	assert.Equal(t, events.PromptExported, evt.EventType())
	assert.Equal(t, "p.txt", evt.Payload()["filename"])
}

func TestToEvent_BarePayload(t *testing.T) {
	evt, err := ToEvent("events.inbound.42", []byte(`{"user_id": "42", "text": "Build a todo API"}`))

	require.NoError(t, err)
	assert.Equal(t, "inbound.42", evt.EventType())
	assert.Equal(t, "Build a todo API", evt.Payload()["text"])
	assert.False(t, evt.Timestamp().IsZero())
}

func TestToEvent_Garbage(t *testing.T) {
	_, err := ToEvent("events.inbound.42", []byte("hello"))
	assert.Error(t, err)
}

func TestConsumerConfig(t *testing.T) {
	cfg := ConsumerConfig("events.inbound.>", "inbound", ConsumerOptions{AckWait: 3 * time.Minute, MaxDeliver: 1})

	assert.Equal(t, "inbound", cfg.Durable)
	assert.Equal(t, "events.inbound.>", cfg.FilterSubject)
	assert.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
	assert.Equal(t, 3*time.Minute, cfg.AckWait)
	assert.Equal(t, 1, cfg.MaxDeliver)
}

func TestConsumerConfig_ServerDefaults(t *testing.T) {
	cfg := ConsumerConfig("events.>", "relay", ConsumerOptions{})

	assert.Zero(t, cfg.AckWait)
	assert.Zero(t, cfg.MaxDeliver)
}

type progressMsg struct {
	jetstream.Msg
	progress atomic.Int32
}

func (m *progressMsg) InProgress() error {
	m.progress.Add(1)
	return nil
}

func TestKeepAlive_ExtendsDeadlineUntilDone(t *testing.T) {
	msg := &progressMsg{}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		keepAlive(msg, 5*time.Millisecond, done)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return msg.progress.Load() >= 2 }, time.Second, time.Millisecond)

	close(done)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not stop")
	}
}
