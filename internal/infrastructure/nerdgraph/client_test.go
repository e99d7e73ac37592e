package nerdgraph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/resilience"
)

type capturedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
	Header    http.Header    `json:"-"`
}

// fakeNerdGraph answers every request with respond and records what it received.
type fakeNerdGraph struct {
	t       *testing.T
	mu      sync.Mutex
	calls   []capturedRequest
	respond func(req capturedRequest) (int, any)
	server  *httptest.Server
}

func newFakeNerdGraph(t *testing.T, respond func(req capturedRequest) (int, any)) *fakeNerdGraph {
	t.Helper()
	f := &fakeNerdGraph{t: t, respond: respond}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Header = r.Header.Clone()

		f.mu.Lock()
		f.calls = append(f.calls, req)
		f.mu.Unlock()

		status, body := f.respond(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeNerdGraph) requests() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.calls...)
}

func dataResponse(data any) (int, any) {
	return http.StatusOK, map[string]any{"data": data}
}

func TestClientDo(t *testing.T) {
	fake := newFakeNerdGraph(t, func(capturedRequest) (int, any) {
		return dataResponse(map[string]any{"actor": map[string]any{"accounts": []any{}}})
	})
	client := NewClient(fake.server.URL, "NRAK-test")

	var out accountsData
	err := client.Do(context.Background(), Request{
		Operation:   "accounts",
		Query:       accountsDocument,
		Variables:   map[string]any{"cursor": "c1"},
		CachePolicy: CachePolicyNoCache,
	}, &out)

	require.NoError(t, err)
	reqs := fake.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "NRAK-test", reqs[0].Header.Get("API-Key"))
	assert.Equal(t, "no-cache", reqs[0].Header.Get("Cache-Control"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, accountsDocument, reqs[0].Query)
	assert.Equal(t, "c1", reqs[0].Variables["cursor"])
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      any
		transient bool
		message   string
	}{
		{
			name:    "graphql errors",
			status:  http.StatusOK,
			body:    map[string]any{"data": nil, "errors": []any{map[string]any{"message": "NRQL Syntax Error"}}},
			message: "NRQL Syntax Error",
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      map[string]any{},
			transient: true,
			message:   "rate limited",
		},
		{
			name:      "server error",
			status:    http.StatusBadGateway,
			body:      map[string]any{},
			transient: true,
			message:   "server error",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    map[string]any{"error": "bad key"},
			message: "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeNerdGraph(t, func(capturedRequest) (int, any) { return tt.status, tt.body })
			client := NewClient(fake.server.URL, "key")

			err := client.Do(context.Background(), Request{Operation: "op", Query: "query { actor { user { id } } }"}, nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, tt.transient, domainerrors.IsTransientError(err))
			assert.Equal(t, !tt.transient, domainerrors.IsPermanentError(err))
		})
	}
}

func TestClientCircuitBreaker(t *testing.T) {
	fake := newFakeNerdGraph(t, func(capturedRequest) (int, any) {
		return http.StatusServiceUnavailable, map[string]any{}
	})
	breaker := resilience.NewCircuitBreaker("nerdgraph", 2, time.Hour,
		resilience.WithFailurePredicate(CountsAsFailure))
	client := NewClient(fake.server.URL, "key", WithCircuitBreaker(breaker))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.Error(t, client.Do(ctx, Request{Operation: "op", Query: "query { x }"}, nil))
	}
	err := client.Do(ctx, Request{Operation: "op", Query: "query { x }"}, nil)

	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.True(t, domainerrors.IsTransientError(err))
	assert.Len(t, fake.requests(), 2)
}

func TestClientCancelledCallsKeepBreakerClosed(t *testing.T) {
	const callers = 5

	arrived := make(chan struct{}, callers)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Query == "query { slow }" {
			arrived <- struct{}{}
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	t.Cleanup(server.Close)

	breaker := resilience.NewCircuitBreaker("nerdgraph", callers, 30*time.Second,
		resilience.WithFailurePredicate(CountsAsFailure))
	client := NewClient(server.URL, "key", WithCircuitBreaker(breaker))

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			errs <- client.Do(ctx, Request{Operation: "alert_counts", Query: "query { slow }"}, nil)
		}()
	}
	for i := 0; i < callers; i++ {
		<-arrived
	}
	cancel()

	for i := 0; i < callers; i++ {
		err := <-errs
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, domainerrors.IsTransientError(err))
		assert.False(t, CountsAsFailure(err))
	}

	assert.Equal(t, resilience.StateClosed, breaker.State())
	assert.Zero(t, breaker.Failures())
	require.NoError(t, client.Do(context.Background(), Request{Operation: "accounts", Query: "query { x }"}, nil))
}

func TestCountsAsFailure(t *testing.T) {
	assert.True(t, CountsAsFailure(domainerrors.NewTransientError("op", errors.New("503"))))
	assert.True(t, CountsAsFailure(domainerrors.NewTransientError("op", context.DeadlineExceeded)))
	assert.False(t, CountsAsFailure(domainerrors.NewTransientError("op", context.Canceled)))
	assert.False(t, CountsAsFailure(domainerrors.NewPermanentError("op", errors.New("400"))))
	assert.False(t, CountsAsFailure(nil))
}

type recordedCall struct {
	operation string
	success   bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordNerdGraphRequest(_ context.Context, operation string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{operation, success})
}

func TestClientRecordsRequests(t *testing.T) {
	fake := newFakeNerdGraph(t, func(capturedRequest) (int, any) { return dataResponse(map[string]any{}) })
	recorder := &fakeRecorder{}
	client := NewClient(fake.server.URL, "key", WithRecorder(recorder))

	require.NoError(t, client.Do(context.Background(), Request{Operation: "accounts", Query: "query { x }"}, nil))

	assert.Equal(t, []recordedCall{{"accounts", true}}, recorder.calls)
}

func TestClientTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/graphql", "key")

	err := client.Do(context.Background(), Request{Operation: "op", Query: "query { x }"}, nil)

	require.Error(t, err)
	assert.True(t, domainerrors.IsTransientError(err))
	assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
}

func TestEndpointForRegion(t *testing.T) {
	assert.Equal(t, EndpointEU, EndpointForRegion("eu"))
	assert.Equal(t, EndpointUS, EndpointForRegion("US"))
	assert.Equal(t, EndpointUS, EndpointForRegion(""))
}
