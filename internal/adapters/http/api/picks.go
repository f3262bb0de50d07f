// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// PicksHandler serves the most recent ranked picks.
type PicksHandler struct {
	deps Dependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps Dependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// HandlePicks handles GET /picks requests.
func (h *PicksHandler) HandlePicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	entries, err := h.deps.Picks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
