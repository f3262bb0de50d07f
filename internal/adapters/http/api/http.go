// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Run starts one pipeline run with the given trigger label.
	Run(ctx context.Context, trigger string) error

	// Running reports whether a run is in flight.
	Running() bool

	// LastRun returns the most recent run summary.
	LastRun(ctx context.Context) (model.RunSummary, error)

	// Picks returns the most recent ranked picks.
	Picks(ctx context.Context) ([]types.Entry, error)
}

// Entry mirrors the read shape returned by picks queries.
type Entry = types.Entry

// Server wires HTTP routes for the pipeline API.
type Server struct {
	healthHandler *HealthHandler
	statusHandler *StatusHandler
	picksHandler  *PicksHandler
	runHandler    *RunHandler
	reportDir     string
}

// NewServer creates a new API server with all handlers. The report
// directory is served at the root path.
func NewServer(deps Dependencies, statsProvider StatsProvider, reportDir string) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statusHandler: NewStatusHandler(deps, statsProvider),
		picksHandler:  NewPicksHandler(deps),
		runHandler:    NewRunHandler(deps),
		reportDir:     reportDir,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/picks", MetricsMiddleware(s.picksHandler.HandlePicks, "picks"))
	mux.HandleFunc("/run", MetricsMiddleware(s.runHandler.HandleRun, "run"))
	mux.Handle("/", http.FileServer(http.Dir(s.reportDir)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type runAccepted struct {
	Status    string    `json:"status"`
	Trigger   string    `json:"trigger"`
	StartedAt time.Time `json:"started_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
