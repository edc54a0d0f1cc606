package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	event := NewSessionEvent(EventSessionSubmitted, SessionSubmittedEvent{
		SessionID:    "s-1",
		AssessmentID: 3,
		Score:        57,
		Reason:       "manual",
	})

	msg, err := NewMessage(event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "session.submitted", msg.Metadata.Get("event_type"))
	assert.Equal(t, "assessment-session", msg.Metadata.Get("source"))
	assert.Equal(t, "1.0", msg.Metadata.Get("version"))

	var decoded struct {
		Type EventType             `json:"type"`
		Data SessionSubmittedEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, EventSessionSubmitted, decoded.Type)
	assert.Equal(t, 57, decoded.Data.Score)
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewMockEventPublisher(logger)
	ctx := context.Background()

	require.NoError(t, p.PublishSessionEvent(ctx, NewSessionEvent(EventSessionStarted, nil)))
	require.NoError(t, p.PublishSessionEvent(ctx, NewSessionEvent(EventSessionSubmitted, nil)))

	assert.Len(t, p.GetPublishedEvents(), 2)
	assert.Len(t, p.EventsOfType(EventSessionStarted), 1)

	events := p.GetPublishedEvents()
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.False(t, events[0].Timestamp.IsZero())

	p.ClearEvents()
	assert.Empty(t, p.GetPublishedEvents())
}
