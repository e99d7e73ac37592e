// Package nerdgraph talks to the NerdGraph GraphQL API and its embedded NRQL engine.
package nerdgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/resilience"
)

// Regional endpoints.
const (
	EndpointUS = "https://api.newrelic.com/graphql"
	EndpointEU = "https://api.eu.newrelic.com/graphql"
)

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// CachePolicy controls whether intermediaries may answer from cache.
type CachePolicy int

const (
	CachePolicyCache CachePolicy = iota
	CachePolicyNoCache
)

// Request is one GraphQL round trip.
type Request struct {
	// Operation names the request in logs and metrics.
	Operation   string
	Query       string
	Variables   map[string]any
	CachePolicy CachePolicy
}

// RequestRecorder receives one call per completed round trip.
type RequestRecorder interface {
	RecordNerdGraphRequest(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Client executes GraphQL documents against NerdGraph.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	recorder   RequestRecorder
	logger     logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCircuitBreaker guards every round trip with cb.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithRecorder reports request metrics to r.
func WithRecorder(r RequestRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for endpoint authenticated with apiKey.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 150 * time.Second},
		logger:     logger.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EndpointForRegion maps a region name to its endpoint. Unknown regions use the US endpoint.
func EndpointForRegion(region string) string {
	if strings.EqualFold(strings.TrimSpace(region), "EU") {
		return EndpointEU
	}
	return EndpointUS
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// CountsAsFailure reports whether err says NerdGraph is unhealthy.
// Circuit breakers around the client use it as their failure predicate.
func CountsAsFailure(err error) bool {
	return domainerrors.IsTransientError(err) && !errors.Is(err, context.Canceled)
}

// Do runs req and decodes the data member of the response into out.
// A response carrying GraphQL errors is a failure even when data is present.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	run := func() error { return c.do(ctx, req, out) }

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, run)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = domainerrors.NewTransientError("nerdgraph unavailable", err)
		}
	} else {
		err = run()
	}

	if c.recorder != nil {
		c.recorder.RecordNerdGraphRequest(ctx, req.Operation, err == nil, time.Since(start))
	}
	if err != nil {
		c.logger.Debug("nerdgraph request failed",
			"operation", req.Operation,
			"duration", time.Since(start),
			"error", err,
		)
	}
	return err
}

func (c *Client) do(ctx context.Context, req Request, out any) error {
	payload := map[string]any{"query": req.Query}
	if len(req.Variables) > 0 {
		payload["variables"] = req.Variables
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domainerrors.NewPermanentError("encoding graphql request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domainerrors.NewPermanentError("building graphql request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("API-Key", c.apiKey)
	httpReq.Header.Set("User-Agent", "alert-insights")
	if req.CachePolicy == CachePolicyNoCache {
		httpReq.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return categorizeTransportError(err, req.Operation)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return categorizeTransportError(err, req.Operation)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return categorizeStatus(resp.StatusCode, respBody, req.Operation)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return domainerrors.NewPermanentError(fmt.Sprintf("%s: decoding response", req.Operation), err)
	}
	if len(env.Errors) > 0 {
		return domainerrors.NewPermanentError(
			fmt.Sprintf("%s: graphql error", req.Operation),
			errors.New(env.Errors[0].Message),
		)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domainerrors.NewPermanentError(fmt.Sprintf("%s: decoding data", req.Operation), err)
	}
	return nil
}

// categorizeStatus classifies a non-2xx response.
func categorizeStatus(status int, body []byte, operation string) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	cause := fmt.Errorf("status %d: %s", status, snippet)

	switch {
	case status == http.StatusTooManyRequests:
		return domainerrors.NewTransientError(fmt.Sprintf("%s: rate limited", operation), cause)
	case status >= 500:
		return domainerrors.NewTransientError(fmt.Sprintf("%s: nerdgraph server error", operation), cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domainerrors.NewPermanentError(fmt.Sprintf("%s: unauthorized", operation), cause)
	default:
		return domainerrors.NewPermanentError(fmt.Sprintf("%s: client error", operation), cause)
	}
}

// categorizeTransportError wraps network failures and timeouts as transient.
// A cancelled caller is not an upstream failure and stays unclassified.
func categorizeTransportError(err error, operation string) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.NewTransientError(fmt.Sprintf("%s: context timeout", operation), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainerrors.NewTransientError(fmt.Sprintf("%s: network error", operation), err)
	}
	return domainerrors.NewTransientError(fmt.Sprintf("%s: transport error", operation), err)
}
