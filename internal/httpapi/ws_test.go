package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzebond/CoP-Bot/internal/game"
)

func TestHandleWS_RejectsBadTokens(t *testing.T) {
	hub := NewHub(nil)
	handler := hub.HandleWS(testAuth())

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ws/events", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ws/events?token=garbage", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)

	c := &client{send: make(chan []byte, 4)}
	hub.add(c)

	hub.Broadcast(game.Event{Type: game.EventChallengePosted, Payload: game.PostedPayload{From: "Greta", Groups: 2}})

	select {
	case b := <-c.send:
		var ev struct {
			Type    string             `json:"type"`
			Payload game.PostedPayload `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(b, &ev))
		assert.Equal(t, game.EventChallengePosted, ev.Type)
		assert.Equal(t, "Greta", ev.Payload.From)
		assert.Equal(t, 2, ev.Payload.Groups)
	default:
		t.Fatal("no event delivered")
	}

	hub.remove(c)
}
