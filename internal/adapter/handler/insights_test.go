package handler

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

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/dto"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/persistence/memory"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
)

// stubSource implements the source ports the handler tests reach.
// Calling any other method panics on the nil embedded interface.
type stubSource struct {
	insights.Source

	accounts    []entity.Account
	accountsErr error
	countsHook  func(ctx context.Context)
	policies    []entity.Policy
	policiesErr error
	timestamps  entity.ConditionTimestamps
}

func (s *stubSource) Accounts(context.Context) ([]entity.Account, error) {
	return s.accounts, s.accountsErr
}

func (s *stubSource) AlertCounts(ctx context.Context, account entity.Account, _ string) (entity.AlertCounts, error) {
	if s.countsHook != nil {
		s.countsHook(ctx)
	}
	return entity.AlertCounts{AccountID: account.ID, AccountName: account.Name, NotificationCount: 3, IssueCount: 1}, nil
}

func (s *stubSource) PoliciesPage(context.Context, entity.Account, *string) (entity.Page[entity.Policy], error) {
	return entity.Page[entity.Policy]{Items: s.policies}, s.policiesErr
}

func (s *stubSource) ConditionTimestamps(context.Context, entity.Account, string, string) (entity.ConditionTimestamps, error) {
	return s.timestamps, nil
}

type countingRecorder struct {
	superseded []string
}

func (c *countingRecorder) RecordViewSuperseded(_ context.Context, view string) {
	c.superseded = append(c.superseded, view)
}

func newTestMux(t *testing.T, source *stubSource, registry *memory.ViewRegistry, recorder SupersededRecorder) *http.ServeMux {
	t.Helper()
	return newTestMuxWithConfig(t, source, registry, recorder,
		InsightsConfig{DefaultDuration: time.Hour, MaxDuration: 7 * 24 * time.Hour})
}

func newTestMuxWithConfig(t *testing.T, source *stubSource, registry *memory.ViewRegistry, recorder SupersededRecorder, cfg InsightsConfig) *http.ServeMux {
	t.Helper()
	deps := insights.Deps{}
	scorecard := insights.NewScorecardUseCase(source, deps)
	h := NewInsightsHandler(InsightsUseCases{
		Overview:      insights.NewOverviewUseCase(source, deps),
		Incidents:     insights.NewIncidentsUseCase(source, deps),
		Notifications: insights.NewNotificationsUseCase(source, deps),
		Entities:      insights.NewEntitiesUseCase(source, deps),
		Ccu:           insights.NewCcuUseCase(source, deps),
		Policies:      insights.NewPoliciesUseCase(source, deps),
		Timeline:      insights.NewTimelineUseCase(source, deps),
		Scorecard:     scorecard,
		Digest:        insights.NewDigestUseCase(scorecard, nil, deps),
	}, registry, recorder, cfg, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/accounts/overview", h.Overview)
	mux.HandleFunc("GET /api/v1/accounts/{id}/policies", h.Policies)
	mux.HandleFunc("GET /api/v1/accounts/{id}/conditions/{conditionId}/timeline", h.Timeline)
	mux.HandleFunc("POST /api/v1/accounts/{id}/digest", h.Digest)
	return mux
}

func serve(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestInsightsHandler_Overview(t *testing.T) {
	source := &stubSource{accounts: []entity.Account{{ID: 1, Name: "Staging"}, {ID: 2, Name: "Production"}}}
	mux := newTestMux(t, source, nil, nil)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/overview?duration=1d", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp dto.OverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Accounts, 2)
	assert.Empty(t, resp.Degraded)
}

func TestInsightsHandler_InvalidInput(t *testing.T) {
	mux := newTestMux(t, &stubSource{}, nil, nil)

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"non numeric account", http.MethodGet, "/api/v1/accounts/abc/policies"},
		{"negative account", http.MethodGet, "/api/v1/accounts/-4/policies"},
		{"malformed duration", http.MethodGet, "/api/v1/accounts/overview?duration=soon"},
		{"duration above maximum", http.MethodGet, "/api/v1/accounts/overview?duration=30d"},
		{"non numeric condition", http.MethodGet, "/api/v1/accounts/1/conditions/abc/timeline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, errKindInvalidRequest, decodeError(t, w).Error)
		})
	}
}

func TestInsightsHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "transient",
			err:        domainerrors.NewTransientError("nerdgraph returned 503", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   errKindUnavailable,
		},
		{
			name:       "permanent",
			err:        domainerrors.NewPermanentError("nerdgraph rejected query", nil),
			wantStatus: http.StatusBadGateway,
			wantKind:   errKindUpstream,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   errKindTimeout,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   errKindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, &stubSource{accountsErr: tt.err}, nil, nil)

			w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/overview", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, w).Error)
		})
	}
}

func TestInsightsHandler_Policies(t *testing.T) {
	source := &stubSource{policies: []entity.Policy{{ID: "7", Name: "Golden signals"}}}
	mux := newTestMux(t, source, nil, nil)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/42/policies", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.PoliciesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.AccountID)
	require.Len(t, resp.Policies, 1)
	assert.Equal(t, "Golden signals", resp.Policies[0].Name)
}

func TestInsightsHandler_Timeline(t *testing.T) {
	now := time.Now().UnixMilli()
	source := &stubSource{timestamps: entity.ConditionTimestamps{Critical: []int64{now - int64(time.Minute/time.Millisecond)}}}
	mux := newTestMux(t, source, nil, nil)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/42/conditions/9/timeline", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TimelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "9", resp.ConditionID)
	assert.Len(t, resp.Critical, 1)
	assert.NotNil(t, resp.Warning)
}

func TestInsightsHandler_DigestWithoutNotifier(t *testing.T) {
	mux := newTestMux(t, &stubSource{}, nil, nil)

	w := serve(mux, httptest.NewRequest(http.MethodPost, "/api/v1/accounts/42/digest", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, errKindNotifierDisabled, decodeError(t, w).Error)
}

func TestInsightsHandler_SupersededResult(t *testing.T) {
	registry := memory.NewViewRegistry(time.Minute)
	recorder := &countingRecorder{}
	key := entity.ViewKey{Session: "tab-1", View: viewOverview}

	// A newer request for a wider range arrives while the first one is computing.
	source := &stubSource{
		accounts: []entity.Account{{ID: 1}},
		countsHook: func(ctx context.Context) {
			_, err := registry.Begin(ctx, key, "SINCE 1 day ago")
			assert.NoError(t, err)
		},
	}
	mux := newTestMux(t, source, registry, recorder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/overview", nil)
	req.Header.Set(SessionHeader, "tab-1")
	w := serve(mux, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errKindSuperseded, decodeError(t, w).Error)
	assert.Equal(t, []string{viewOverview}, recorder.superseded)
}

func TestInsightsHandler_NoSessionIsNeverSuperseded(t *testing.T) {
	registry := memory.NewViewRegistry(time.Minute)
	recorder := &countingRecorder{}
	key := entity.ViewKey{Session: "tab-1", View: viewOverview}

	source := &stubSource{
		accounts: []entity.Account{{ID: 1}},
		countsHook: func(ctx context.Context) {
			_, err := registry.Begin(ctx, key, "SINCE 1 day ago")
			assert.NoError(t, err)
		},
	}
	mux := newTestMux(t, source, registry, recorder)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/overview", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.superseded)
}

func TestInsightsHandler_ClientGoneDoesNotCancelQueries(t *testing.T) {
	var (
		mu        sync.Mutex
		ctxErrs   []error
		deadlines []bool
	)
	source := &stubSource{
		accounts: []entity.Account{{ID: 1, Name: "Staging"}, {ID: 2, Name: "Production"}},
		countsHook: func(ctx context.Context) {
			_, hasDeadline := ctx.Deadline()
			mu.Lock()
			defer mu.Unlock()
			ctxErrs = append(ctxErrs, ctx.Err())
			deadlines = append(deadlines, hasDeadline)
		},
	}
	mux := newTestMuxWithConfig(t, source, nil, nil, InsightsConfig{
		DefaultDuration: time.Hour,
		MaxDuration:     7 * 24 * time.Hour,
		ComputeTimeout:  time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/overview", nil).WithContext(ctx)
	w := serve(mux, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ctxErrs, 2)
	for i := range ctxErrs {
		assert.NoError(t, ctxErrs[i])
		assert.True(t, deadlines[i])
	}
}
