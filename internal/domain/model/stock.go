// Package model contains domain models passed between layers.
package model

import "time"

// Fundamentals captures the per-symbol metrics written into a snapshot.
// JSON field names match the historical snapshot files so published
// artifacts keep their schema. Nil pointers serialize as null for metrics
// that could not be determined.
type Fundamentals struct {
	Name           string   `json:"name"`
	Sector         string   `json:"sector"`
	CurrentPrice   *float64 `json:"current_price"`
	MarketCap      float64  `json:"market_cap"`
	PERatio        *float64 `json:"pe_ratio"`
	ROE            *float64 `json:"roe"`             // percent
	DebtToEquity   *float64 `json:"debt_to_equity"`  // ratio
	FCF            *float64 `json:"fcf"`             // free cash flow, absolute
	EarningsGrowth *float64 `json:"earnings_growth"` // percent, 5y CAGR
	ProfitMargin   *float64 `json:"profit_margin"`   // percent
	IntrinsicValue *float64 `json:"intrinsic_value"` // per share
	MarginOfSafety *float64 `json:"margin_of_safety"` // percent
	LastUpdated    string   `json:"last_updated"`
	Err            string   `json:"error,omitempty"`
}

// Snapshot is a point-in-time dump of collected market data keyed by symbol
// (e.g. "TCS.NS", "500325.BO").
type Snapshot map[string]Fundamentals

// RunSummary records the outcome of one pipeline run. It backs the /status
// endpoint and the summary file in the data dir.
type RunSummary struct {
	RunID             string    `json:"run_id"`
	Trigger           string    `json:"trigger"` // "scheduled" or "manual"
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	Status            string    `json:"status"` // "success" or "failure"
	Error             string    `json:"error,omitempty"`
	SymbolsDiscovered int       `json:"symbols_discovered"`
	SymbolsCollected  int       `json:"symbols_collected"`
	SymbolsSkipped    int       `json:"symbols_skipped"`
	FetchErrors       int       `json:"fetch_errors"`
	Picks             int       `json:"picks"`
	Published         bool      `json:"published"`
}

// Ptr is a convenience for building optional metric values.
func Ptr(v float64) *float64 { return &v }
