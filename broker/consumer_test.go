package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stoic-notes/notes/models"
)

func TestConsume(t *testing.T) {
	event, err := models.NewEvent("note.created", "note", "create", "azrael", map[string]string{"noteId": "abc"})
	require.NoError(t, err)
	payload, err := event.ToJSON()
	require.NoError(t, err)

	messages := make(chan *nats.Msg, 3)
	messages <- &nats.Msg{Subject: NoteEventsSubject, Data: []byte("not an event")}
	messages <- &nats.Msg{Subject: NoteEventsSubject, Data: payload}
	messages <- &nats.Msg{Subject: NoteEventsSubject, Data: payload}
	close(messages)

	var received []models.Event
	calls := 0
	Consume(context.Background(), messages, zap.NewNop(), func(_ context.Context, msg Message, e models.Event) error {
		calls++
		assert.Equal(t, NoteEventsSubject, msg.Subject)
		received = append(received, e)
		if calls == 1 {
			return errors.New("handler failed")
		}
		return nil
	})

	require.Len(t, received, 2)
	assert.Equal(t, event.ID, received[0].ID)
	assert.Equal(t, "azrael", received[1].ActorID)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	messages := make(chan *nats.Msg)
	done := make(chan struct{})

	go func() {
		Consume(ctx, messages, zap.NewNop(), func(context.Context, Message, models.Event) error { return nil })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for consumer to stop")
	}
}
