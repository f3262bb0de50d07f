// Package scoring applies Buffett-style investment criteria to collected
// fundamentals: circle of competence, financial strength, and valuation.
// Each criterion contributes points; stocks clearing the minimum score
// become picks, ranked by total score.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/types"
)

// Default scoring configuration constants.
const (
	defaultMinScore = 8

	billion = 1_000_000_000

	largeCapFloor = 10 * billion
	midCapFloor   = 1 * billion
	microCapCeil  = 0.2 * billion
)

// Sectors within the circle of competence and sectors typically avoided.
// Substring matching mirrors how upstream sector labels vary.
var defaultPreferredSectors = []string{
	"Financial Services", "Consumer Defensive", "Technology", "Financial", "Pharmaceuticals",
	"Consumer Goods", "Healthcare", "Consumer Staples", "Insurance", "Banking",
	"Food & Beverage", "Retail", "Communication Services", "Utilities",
}

var defaultAvoidedSectors = []string{
	"Biotechnology", "Cryptocurrency", "Cannabis",
	"Mining", "Oil & Gas E&P", "Airlines",
}

// Result contains the computed score for one stock.
type Result struct {
	Symbol   string
	Score    float64
	Reasons  []string
	Warnings []string
}

// Scorer computes a Buffett score for a stock's fundamentals.
type Scorer interface {
	Score(ctx context.Context, symbol string, f model.Fundamentals) (Result, error)
}

// BuffettScorer implements Scorer with the point-based criteria.
type BuffettScorer struct {
	preferredSectors []string
	avoidedSectors   []string
	minScore         float64
}

// Option applies a configuration option to the BuffettScorer.
type Option func(*BuffettScorer)

// WithPreferredSectors overrides the circle-of-competence sector list.
func WithPreferredSectors(sectors []string) Option {
	return func(s *BuffettScorer) {
		if len(sectors) > 0 {
			s.preferredSectors = sectors
		}
	}
}

// WithAvoidedSectors overrides the avoided sector list.
func WithAvoidedSectors(sectors []string) Option {
	return func(s *BuffettScorer) {
		if len(sectors) > 0 {
			s.avoidedSectors = sectors
		}
	}
}

// WithMinScore sets the minimum total score required for a pick.
func WithMinScore(min float64) Option {
	return func(s *BuffettScorer) {
		if min > 0 {
			s.minScore = min
		}
	}
}

// NewBuffettScorer creates a scorer with the default criteria.
func NewBuffettScorer(opts ...Option) *BuffettScorer {
	s := &BuffettScorer{
		preferredSectors: defaultPreferredSectors,
		avoidedSectors:   defaultAvoidedSectors,
		minScore:         defaultMinScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinScore returns the configured pick threshold.
func (s *BuffettScorer) MinScore() float64 { return s.minScore }

// Score evaluates one stock against all criteria.
func (s *BuffettScorer) Score(ctx context.Context, symbol string, f model.Fundamentals) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scoring cancelled: %w", err)
	}

	r := Result{Symbol: symbol}

	// Circle of competence.
	if containsAny(f.Sector, s.preferredSectors) {
		r.add(1, "Within Buffett's circle of competence: %s", f.Sector)
	} else if containsAny(f.Sector, s.avoidedSectors) {
		r.warn("Outside Buffett's typical interests: %s", f.Sector)
	}

	// Return on equity: the gold standard is 15%+.
	if roe := deref(f.ROE); roe != 0 {
		switch {
		case roe > 20:
			r.add(3, "Exceptional ROE of %.2f%%", roe)
		case roe > 15:
			r.add(2, "Strong ROE of %.2f%%", roe)
		case roe > 10:
			r.add(1, "Decent ROE of %.2f%%", roe)
		}
	}

	// Low debt.
	if f.DebtToEquity != nil {
		de := *f.DebtToEquity
		switch {
		case de < 0.3:
			r.add(3, "Minimal debt-to-equity ratio of %.2f", de)
		case de < 0.5:
			r.add(2, "Low debt-to-equity ratio of %.2f", de)
		case de < 0.7:
			r.add(1, "Moderate debt-to-equity ratio of %.2f", de)
		default:
			r.warn("High debt-to-equity ratio of %.2f", de)
		}
	}

	// Consistent earnings growth.
	if growth := deref(f.EarningsGrowth); growth != 0 {
		switch {
		case growth > 15:
			r.add(3, "Excellent earnings growth of %.2f%%", growth)
		case growth > 10:
			r.add(2, "Strong earnings growth of %.2f%%", growth)
		case growth > 5:
			r.add(1, "Positive earnings growth of %.2f%%", growth)
		}
	}

	// Cash generation.
	if fcf := deref(f.FCF); fcf > 0 {
		if f.MarketCap > 0 {
			fcfYield := fcf / f.MarketCap * 100
			switch {
			case fcfYield > 8:
				r.add(3, "Excellent FCF yield of %.2f%%", fcfYield)
			case fcfYield > 5:
				r.add(2, "Strong FCF yield of %.2f%%", fcfYield)
			case fcfYield > 3:
				r.add(1, "Positive FCF yield of %.2f%%", fcfYield)
			}
		} else {
			r.add(1, "Positive free cash flow")
		}
	}

	// Margin of safety: price versus intrinsic value.
	if mos := deref(f.MarginOfSafety); mos != 0 && deref(f.IntrinsicValue) > 0 {
		switch {
		case mos > 40:
			r.add(4, "Huge margin of safety: %.2f%%", mos)
		case mos > 30:
			r.add(3, "Substantial margin of safety: %.2f%%", mos)
		case mos > 20:
			r.add(2, "Good margin of safety: %.2f%%", mos)
		case mos > 10:
			r.add(1, "Some margin of safety: %.2f%%", mos)
		}
	}

	// Valuation sanity.
	if pe := deref(f.PERatio); pe > 0 {
		switch {
		case pe < 15:
			r.add(3, "Attractive P/E ratio of %.2f", pe)
		case pe < 20:
			r.add(2, "Reasonable P/E ratio of %.2f", pe)
		case pe < 25:
			r.add(1, "Acceptable P/E ratio of %.2f", pe)
		default:
			r.warn("High P/E ratio of %.2f", pe)
		}
	}

	// Scale: established companies preferred, tiny ones flagged.
	if f.MarketCap != 0 {
		capBillions := f.MarketCap / billion
		switch {
		case f.MarketCap >= largeCapFloor:
			r.add(1, "Large established company (₹%.2fB market cap)", capBillions)
		case f.MarketCap >= midCapFloor:
			r.Score += 0.5
		case f.MarketCap < microCapCeil:
			r.warn("Very small company (₹%.2fB market cap)", capBillions)
		}
	}

	return r, nil
}

// Rank scores every stock in the snapshot, keeps those at or above the
// minimum score, and returns them ordered by score descending with ranks
// assigned. Stocks that errored during collection are skipped.
func (s *BuffettScorer) Rank(ctx context.Context, snap model.Snapshot) ([]types.Entry, error) {
	entries := make([]types.Entry, 0, len(snap))
	for symbol, f := range snap {
		if f.Err != "" {
			continue
		}
		res, err := s.Score(ctx, symbol, f)
		if err != nil {
			return nil, err
		}
		if res.Score < s.minScore {
			continue
		}
		entries = append(entries, types.Entry{
			Symbol:         displaySymbol(symbol),
			Exchange:       exchange(symbol),
			Name:           f.Name,
			Sector:         f.Sector,
			Price:          deref(f.CurrentPrice),
			IntrinsicValue: deref(f.IntrinsicValue),
			MarginOfSafety: deref(f.MarginOfSafety),
			PERatio:        deref(f.PERatio),
			ROE:            deref(f.ROE),
			DebtToEquity:   deref(f.DebtToEquity),
			MarketCap:      f.MarketCap,
			Score:          res.Score,
			Reasons:        res.Reasons,
			Warnings:       res.Warnings,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Symbol < entries[j].Symbol
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (r *Result) add(points float64, format string, args ...any) {
	r.Score += points
	r.Reasons = append(r.Reasons, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func containsAny(sector string, list []string) bool {
	for _, s := range list {
		if strings.Contains(sector, s) {
			return true
		}
	}
	return false
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// exchange maps the symbol suffix to the exchange label.
func exchange(symbol string) string {
	if strings.HasSuffix(symbol, ".BO") {
		return "BSE"
	}
	return "NSE"
}

// displaySymbol strips the exchange suffix for presentation.
func displaySymbol(symbol string) string {
	symbol = strings.TrimSuffix(symbol, ".NS")
	return strings.TrimSuffix(symbol, ".BO")
}
