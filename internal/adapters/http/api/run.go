// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/moatwatch/moatwatch/pkg/logger"
)

// RunHandler triggers a manual pipeline run.
type RunHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(deps Dependencies) *RunHandler {
	return &RunHandler{
		deps:   deps,
		logger: logger.Get().Named("api"),
	}
}

// HandleRun handles POST /run requests. The run executes in the background;
// a request while one is in flight gets 409.
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if h.deps.Running() {
		writeError(w, http.StatusConflict, "run_in_progress", ErrRunInProgress)
		return
	}

	go func() {
		ctx := context.Background()
		if err := h.deps.Run(ctx, "manual"); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				return
			}
			h.logger.Error(ctx, "manual run failed", logger.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, runAccepted{
		Status:    "accepted",
		Trigger:   "manual",
		StartedAt: time.Now(),
	})
}
