package quotesim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/moatwatch/moatwatch/pkg/logger"
)

// Route paths served by the simulator.
const (
	quoteSummaryPrefix = "/v10/finance/quoteSummary/"
	nseListPath        = "/nse/equity.csv"
	bseListPath        = "/bse/listing.json"
)

// Config holds the simulator configuration.
type Config struct {
	Addr       string        // listen address
	NumSymbols int           // symbols in the simulated universe
	Seed       int64         // generation seed
	Latency    time.Duration // artificial response delay
	FailEvery  int           // every Nth quote request returns 500, 0 disables
}

// Server simulates the listing and quote endpoints the pipeline consumes.
type Server struct {
	cfg      Config
	symbols  []string
	requests int
	logger   logger.Logger
}

// NewServer creates a simulator with a deterministic universe: odd indexes
// list on BSE, the rest on NSE.
func NewServer(cfg Config) *Server {
	symbols := make([]string, cfg.NumSymbols)
	for i := range symbols {
		if i%2 == 1 {
			symbols[i] = fmt.Sprintf("%d.BO", 500000+i)
		} else {
			symbols[i] = fmt.Sprintf("SIM%03d.NS", i)
		}
	}
	return &Server{
		cfg:     cfg,
		symbols: symbols,
		logger:  logger.Get().Named("quotesim"),
	}
}

// Register attaches the simulator routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc(quoteSummaryPrefix, s.handleQuoteSummary)
	mux.HandleFunc(nseListPath, s.handleNSEList)
	mux.HandleFunc(bseListPath, s.handleBSEList)
}

// ListenAndServe runs the simulator until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	s.Register(mux)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "simulator listening",
		logger.String("addr", s.cfg.Addr),
		logger.Int("symbols", len(s.symbols)),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("simulator serve: %w", err)
	}
	return nil
}

// handleNSEList serves the NSE-shaped equity listing CSV.
func (s *Server) handleNSEList(w http.ResponseWriter, r *http.Request) {
	s.delay()
	w.Header().Set("Content-Type", "text/csv")
	var b strings.Builder
	b.WriteString("SYMBOL,NAME OF COMPANY,SERIES\n")
	for _, sym := range s.symbols {
		if base, ok := strings.CutSuffix(sym, ".NS"); ok {
			fmt.Fprintf(&b, "%s,%s Ltd,EQ\n", base, base)
		}
	}
	_, _ = w.Write([]byte(b.String()))
}

// handleBSEList serves the BSE-shaped scrip listing JSON.
func (s *Server) handleBSEList(w http.ResponseWriter, r *http.Request) {
	s.delay()
	type row struct {
		ScripCD string `json:"SCRIP_CD"`
	}
	var payload struct {
		Table []row `json:"Table"`
	}
	for _, sym := range s.symbols {
		if base, ok := strings.CutSuffix(sym, ".BO"); ok {
			payload.Table = append(payload.Table, row{ScripCD: base})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// handleQuoteSummary serves the per-symbol fundamentals payload.
func (s *Server) handleQuoteSummary(w http.ResponseWriter, r *http.Request) {
	s.delay()

	symbol := strings.TrimPrefix(r.URL.Path, quoteSummaryPrefix)
	if symbol == "" {
		http.NotFound(w, r)
		return
	}

	s.requests++
	if s.cfg.FailEvery > 0 && s.requests%s.cfg.FailEvery == 0 {
		http.Error(w, "simulated upstream failure", http.StatusInternalServerError)
		return
	}

	c := generate(symbol, s.cfg.Seed)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope(symbol, c))
}

func (s *Server) delay() {
	if s.cfg.Latency > 0 {
		time.Sleep(s.cfg.Latency)
	}
}
