package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = SetTraceID(ctx)
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2)

	// A second context gets a different ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, req, http.StatusAccepted, map[string]string{"status": "pending"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pending", body["status"])
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetTraceID(req.Context()))

	RespondWithError(rec, req, http.StatusNotFound, "Computation not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Computation not found", body.Error)
	assert.NotEmpty(t, body.TraceID)
}

func TestRespondWithErrorAndLogHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithErrorAndLog(
		rec, req,
		http.StatusInternalServerError,
		"Failed to submit computation",
		errors.New("pq: connection refused"),
	)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The raw error never reaches the client.
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "Failed to submit computation")
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/",
			strings.NewReader(`{"epsilon": 0.001, "guess": -20}`),
		)

		var payload struct {
			Epsilon float64 `json:"epsilon"`
			Guess   float64 `json:"guess"`
		}
		require.NoError(t, DecodeJSON(req, &payload))
		assert.Equal(t, 0.001, payload.Epsilon)
		assert.Equal(t, float64(-20), payload.Guess)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))

		var payload struct{}
		assert.Error(t, DecodeJSON(req, &payload))
	})
}

func TestValidateRequest(t *testing.T) {
	type submitRequest struct {
		Epsilon float64 `validate:"gt=0"`
	}

	assert.NoError(t, ValidateRequest(submitRequest{Epsilon: 0.001}))
	assert.Error(t, ValidateRequest(submitRequest{Epsilon: 0}))
}
