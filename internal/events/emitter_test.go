package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives and can be configured to fail.
type MockEventHandler struct {
	HandledCount int
	LastEvent    *TaskRequestEvent
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestInMemoryEventEmitter(t *testing.T) {
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewTaskRequestEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		// Should not error even with no handlers
		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}

		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewTaskRequestEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)

		// Verify both handlers received the event
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{
			HandlerError: errors.New("handler error"),
		}

		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewTaskRequestEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		// The first handler's error is returned, but the second handler
		// still receives the event.
		err = emitter.EmitEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Equal(t, failingHandler.HandlerError, err)
		assert.Equal(t, 1, successHandler.HandledCount)
	})
}

func TestTaskRequestEventPayload(t *testing.T) {
	payload := struct {
		ComputationID string `json:"computation_id"`
	}{
		ComputationID: "e7b9f0c2-0000-0000-0000-000000000000",
	}

	event, err := NewTaskRequestEvent("computation", payload)
	require.NoError(t, err)
	assert.Equal(t, "computation", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded struct {
		ComputationID string `json:"computation_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload.ComputationID, decoded.ComputationID)
}
