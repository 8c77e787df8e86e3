// Package gateway is the chat-completion client for the inference gateway.
// The gateway speaks the OpenAI chat-completions wire format; request and
// message types come from go-openai, but the HTTP exchange is done here so the
// raw decoded body, including embedded error objects, reaches the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/ecoroute/trip-planner/backend/internal/domain"
)

// maxResponseBytes caps how much of a gateway response body is read.
const maxResponseBytes = 4 << 20

// Config describes how to reach the gateway and how to sample.
type Config struct {
	// URL is the full chat-completions endpoint.
	URL    string
	APIKey string
	Model  string

	MaxTokens   int
	Temperature float32

	// Timeout bounds each completion call. Zero means 60 seconds.
	Timeout time.Duration
}

// Client sends chat completion requests to the gateway through a circuit breaker.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "completion-gateway",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Capacity signals and caller cancellations say nothing about gateway health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrRateLimited) || errors.Is(err, context.Canceled)
		},
	})

	return &Client{cfg: cfg, http: httpClient, breaker: cb}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one chat completion request and returns the decoded body.
//
// Transport failures, deadline expiry, non-2xx statuses, undecodable bodies and
// an open circuit all wrap domain.ErrGateway. An HTTP 429 wraps
// domain.ErrRateLimited instead. Errors embedded in a 2xx body are returned as
// part of the Response for the caller to classify.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, messages)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Response{}, fmt.Errorf("gateway.Client.Complete: %w: %w", domain.ErrGateway, err)
		}
		return Response{}, fmt.Errorf("gateway.Client.Complete: %w", err)
	}
	return out.(Response), nil
}

func (c *Client) do(ctx context.Context, messages []openai.ChatCompletionMessage) (Response, error) {
	payload, err := json.Marshal(openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%w: encode request: %w", domain.ErrGateway, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("%w: build request: %w", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, fmt.Errorf("%w: no response within %s: %w", domain.ErrGateway, c.cfg.Timeout, err)
		}
		return Response{}, fmt.Errorf("%w: %w", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %w", domain.ErrGateway, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, fmt.Errorf("%w: gateway returned %d", domain.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("%w: gateway returned %d: %s", domain.ErrGateway, resp.StatusCode, snippet(body))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return Response{}, fmt.Errorf("%w: undecodable response body: %w", domain.ErrGateway, err)
	}
	return out, nil
}

func snippet(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
