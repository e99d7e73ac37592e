package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/dto"
	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler/middleware"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/repository"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
)

// Error kinds returned in dto.ErrorResponse.Error.
const (
	errKindInvalidRequest   = "invalid_request"
	errKindSuperseded       = "superseded"
	errKindNotifierDisabled = "notifier_disabled"
	errKindTimeout          = "timeout"
	errKindUnavailable      = "upstream_unavailable"
	errKindUpstream         = "upstream_failed"
	errKindInternal         = "internal_error"
)

// writeJSON encodes body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// classify maps an error onto an HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidAccount),
		errors.Is(err, entity.ErrInvalidTimeRange),
		errors.Is(err, entity.ErrInvalidCondition),
		errors.Is(err, entity.ErrInvalidPolicy),
		errors.Is(err, entity.ErrInvalidFilter),
		errors.Is(err, errInvalidParameter):
		return http.StatusBadRequest, errKindInvalidRequest
	case errors.Is(err, repository.ErrSuperseded):
		return http.StatusConflict, errKindSuperseded
	case errors.Is(err, insights.ErrNotifierDisabled):
		return http.StatusNotImplemented, errKindNotifierDisabled
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errKindTimeout
	case domainerrors.IsTransientError(err):
		return http.StatusServiceUnavailable, errKindUnavailable
	case domainerrors.IsPermanentError(err), domainerrors.IsFetchFailed(err):
		return http.StatusBadGateway, errKindUpstream
	default:
		return http.StatusInternalServerError, errKindInternal
	}
}

// writeError answers with the status classify picks for err.
// Server-side failures are logged, client errors are not.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, kind := classify(err)
	requestID := middleware.GetRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			"path", r.URL.Path,
			"status", status,
			"request_id", requestID,
			"error", err,
		)
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error:     kind,
		Message:   err.Error(),
		RequestID: requestID,
	})
}
