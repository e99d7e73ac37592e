package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// SessionHeader scopes superseded-response detection to one client.
const SessionHeader = "X-Session-ID"

var errInvalidParameter = errors.New("invalid parameter")

// accountFromPath reads the {id} path segment.
func accountFromPath(r *http.Request) (entity.Account, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return entity.Account{}, fmt.Errorf("account %q: %w", raw, entity.ErrInvalidAccount)
	}
	return entity.Account{ID: id}, nil
}

// timeRangeFromQuery reads ?duration=, falling back to def and capping at maxDuration.
func timeRangeFromQuery(r *http.Request, def, maxDuration time.Duration) (entity.TimeRange, error) {
	d := def
	if raw := strings.TrimSpace(r.URL.Query().Get("duration")); raw != "" {
		parsed, err := ParseDuration(raw)
		if err != nil {
			return entity.TimeRange{}, fmt.Errorf("duration %q: %w", raw, errInvalidParameter)
		}
		d = parsed
	}
	if maxDuration > 0 && d > maxDuration {
		return entity.TimeRange{}, fmt.Errorf("duration %s exceeds maximum %s: %w", d, maxDuration, errInvalidParameter)
	}
	return entity.NewTimeRange(d)
}

// ParseDuration accepts Go durations plus a whole-day suffix, e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// filtersFromQuery reads every ?filter=key=value parameter.
func filtersFromQuery(r *http.Request) ([]entity.Filter, error) {
	return entity.ParseFilters(r.URL.Query()["filter"])
}

func sessionFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}
