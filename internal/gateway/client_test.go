package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
	"github.com/ecoroute/trip-planner/backend/internal/gateway"
)

// ---- helpers ---------------------------------------------------------------

func newClient(t *testing.T, h http.HandlerFunc) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return gateway.NewClient(gateway.Config{
		URL:         srv.URL + "/v1/chat/completions",
		APIKey:      "test-key",
		Model:       "test-model",
		MaxTokens:   512,
		Temperature: 0.3,
		Timeout:     2 * time.Second,
	}, srv.Client())
}

func userMessage(content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: content}}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ---- tests -----------------------------------------------------------------

func TestComplete_SendsRequestAndDecodesContent(t *testing.T) {
	var got map[string]any
	var auth string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"overview\":\"hi\"}"}}]}`)
	})

	resp, err := c.Complete(context.Background(), userMessage("plan"))

	require.NoError(t, err)
	assert.Equal(t, `{"overview":"hi"}`, resp.Content())
	assert.Nil(t, resp.EmbeddedError())
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "test-model", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	assert.InDelta(t, 0.3, got["temperature"], 0.001)
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "plan", msgs[0].(map[string]any)["content"])
}

func TestComplete_Non2xxIsGatewayError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"error":{"message":"upstream down"}}`)
	})

	_, err := c.Complete(context.Background(), userMessage("plan"))

	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
}

func TestComplete_HTTP429IsRateLimited(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"error":{"code":429}}`)
	})

	_, err := c.Complete(context.Background(), userMessage("plan"))

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestComplete_UndecodableBodyIsGatewayError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>oops</html>`)
	})

	_, err := c.Complete(context.Background(), userMessage("plan"))

	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestComplete_DeadlineIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := gateway.NewClient(gateway.Config{URL: srv.URL, Model: "m", Timeout: 50 * time.Millisecond}, srv.Client())

	start := time.Now()
	_, err := c.Complete(context.Background(), userMessage("plan"))

	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Less(t, time.Since(start), time.Second)
}

func TestComplete_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{}`)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Complete(context.Background(), userMessage("plan"))
		require.ErrorIs(t, err, domain.ErrGateway)
	}
	_, err := c.Complete(context.Background(), userMessage("plan"))

	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 5, hits.Load())
}

func TestComplete_RateLimitsDoNotOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusTooManyRequests, `{}`)
	})

	for i := 0; i < 7; i++ {
		_, err := c.Complete(context.Background(), userMessage("plan"))
		require.ErrorIs(t, err, domain.ErrRateLimited)
	}
	assert.EqualValues(t, 7, hits.Load())
}
