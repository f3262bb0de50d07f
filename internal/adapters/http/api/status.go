// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatusHandler reports the last run outcome and service statistics.
type StatusHandler struct {
	deps          Dependencies
	statsProvider StatsProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies, statsProvider StatsProvider) *StatusHandler {
	return &StatusHandler{deps: deps, statsProvider: statsProvider}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	resp := map[string]interface{}{
		"stats": h.statsProvider.GetStats(),
	}

	last, err := h.deps.LastRun(r.Context())
	switch {
	case err == nil:
		resp["last_run"] = last
	case isNotFound(err):
		resp["last_run"] = nil
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// isNotFound allows the API to translate upstream not-found errors to an
// empty result instead of a failure.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
