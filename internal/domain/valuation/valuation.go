// Package valuation derives investable metrics from raw company facts:
// ROE, debt-to-equity, free cash flow, earnings growth, a discounted cash
// flow intrinsic value, and the margin of safety against the current price.
package valuation

import (
	"math"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
)

// Default DCF parameters.
const (
	defaultDiscountRate    = 0.12
	defaultTerminalGrowth  = 0.03
	defaultGrowthFloor     = 0.05
	defaultGrowthCeiling   = 0.20
	defaultFallbackGrowth  = 0.10
	defaultProjectionYears = 10

	// Symbols whose summary blob has fewer fields than this carry no
	// usable coverage upstream.
	minFieldCount = 5

	earningsCAGRSpan = 5 // years for the earnings growth window
)

// Deriver computes model.Fundamentals from model.Facts.
type Deriver struct {
	discountRate    float64
	terminalGrowth  float64
	growthFloor     float64
	growthCeiling   float64
	fallbackGrowth  float64
	projectionYears int
}

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithDiscountRate sets the DCF discount rate.
func WithDiscountRate(r float64) Option {
	return func(d *Deriver) {
		if r > 0 {
			d.discountRate = r
		}
	}
}

// WithTerminalGrowth sets the terminal growth rate. It must stay below the
// discount rate or the terminal value diverges.
func WithTerminalGrowth(g float64) Option {
	return func(d *Deriver) {
		if g > 0 {
			d.terminalGrowth = g
		}
	}
}

// WithGrowthBounds clamps the assumed FCF growth rate into [floor, ceiling].
func WithGrowthBounds(floor, ceiling float64) Option {
	return func(d *Deriver) {
		if floor > 0 && ceiling > floor {
			d.growthFloor = floor
			d.growthCeiling = ceiling
		}
	}
}

// WithProjectionYears sets the number of projected FCF years.
func WithProjectionYears(n int) Option {
	return func(d *Deriver) {
		if n > 0 {
			d.projectionYears = n
		}
	}
}

// NewDeriver creates a Deriver with default DCF parameters.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		discountRate:    defaultDiscountRate,
		terminalGrowth:  defaultTerminalGrowth,
		growthFloor:     defaultGrowthFloor,
		growthCeiling:   defaultGrowthCeiling,
		fallbackGrowth:  defaultFallbackGrowth,
		projectionYears: defaultProjectionYears,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive computes the full set of fundamentals for one symbol. It returns
// ErrInsufficientData when the symbol has no usable upstream coverage and
// ErrMissingStatements when financial statements are absent; callers skip
// such symbols rather than failing the run.
func (d *Deriver) Derive(facts *model.Facts, now time.Time) (model.Fundamentals, error) {
	if facts.FieldCount < minFieldCount {
		return model.Fundamentals{}, ErrInsufficientData
	}
	if !facts.HasStatements() {
		return model.Fundamentals{}, ErrMissingStatements
	}

	f := model.Fundamentals{
		Name:        name(facts),
		Sector:      sector(facts),
		LastUpdated: now.Format("2006-01-02 15:04"),
	}

	if facts.MarketCap != nil {
		f.MarketCap = *facts.MarketCap
	}
	f.CurrentPrice = price(facts)
	f.PERatio = coalesce(facts.TrailingPE, facts.ForwardPE)
	f.ROE = d.roe(facts)
	f.DebtToEquity = d.debtToEquity(facts)
	f.FCF = freeCashFlow(facts)
	f.EarningsGrowth = d.earningsGrowth(facts)
	if facts.ProfitMargins != nil {
		f.ProfitMargin = model.Ptr(*facts.ProfitMargins * 100)
	}
	f.IntrinsicValue = d.intrinsicValue(facts, f.FCF)
	f.MarginOfSafety = marginOfSafety(f.IntrinsicValue, f.CurrentPrice)

	return f, nil
}

// roe prefers the reported ratio and falls back to net income over equity.
func (d *Deriver) roe(facts *model.Facts) *float64 {
	if facts.ReturnOnEquity != nil {
		return model.Ptr(*facts.ReturnOnEquity * 100)
	}
	if len(facts.NetIncome) == 0 || facts.StockholdersEquity == nil {
		return nil
	}
	equity := *facts.StockholdersEquity
	if equity <= 0 {
		return nil
	}
	return model.Ptr(facts.NetIncome[0] / equity * 100)
}

// debtToEquity prefers the reported percent figure (converted to a ratio)
// and falls back to total debt over equity, summing long- and short-term
// debt when no total is reported.
func (d *Deriver) debtToEquity(facts *model.Facts) *float64 {
	if facts.DebtToEquity != nil {
		return model.Ptr(*facts.DebtToEquity / 100)
	}
	if facts.StockholdersEquity == nil {
		return nil
	}
	equity := *facts.StockholdersEquity
	if equity <= 0 {
		return nil
	}
	debt := facts.TotalDebt
	if debt == nil {
		var sum float64
		if facts.LongTermDebt != nil {
			sum += *facts.LongTermDebt
		}
		if facts.CurrentDebt != nil {
			sum += *facts.CurrentDebt
		}
		debt = &sum
	}
	return model.Ptr(*debt / equity)
}

// freeCashFlow is operating cash flow minus the magnitude of capital
// expenditure (reported as a negative line upstream).
func freeCashFlow(facts *model.Facts) *float64 {
	if facts.OperatingCashFlow == nil || facts.CapitalExpenditure == nil {
		return nil
	}
	return model.Ptr(*facts.OperatingCashFlow - math.Abs(*facts.CapitalExpenditure))
}

// earningsGrowth is the annualized growth over the statement window,
// falling back to the reported forward growth estimate.
func (d *Deriver) earningsGrowth(facts *model.Facts) *float64 {
	if len(facts.NetIncome) >= earningsCAGRSpan {
		current := facts.NetIncome[0]
		past := facts.NetIncome[earningsCAGRSpan-1]
		if current > 0 && past > 0 {
			cagr := (math.Pow(current/past, 1.0/float64(earningsCAGRSpan)) - 1) * 100
			return model.Ptr(cagr)
		}
	}
	if facts.EarningsGrowth != nil {
		return model.Ptr(*facts.EarningsGrowth * 100)
	}
	return nil
}

// intrinsicValue runs a two-stage DCF: projectionYears of clamped growth on
// current FCF, a Gordon terminal value, everything discounted back and
// divided by shares outstanding.
func (d *Deriver) intrinsicValue(facts *model.Facts, fcf *float64) *float64 {
	if fcf == nil || *fcf <= 0 {
		return nil
	}
	shares := coalesce(facts.SharesOutstanding, facts.ImpliedSharesOutstanding)
	if shares == nil || *shares <= 0 {
		return nil
	}

	growth := d.fallbackGrowth
	if facts.EarningsGrowth != nil {
		growth = *facts.EarningsGrowth
	}
	growth = math.Max(d.growthFloor, math.Min(growth, d.growthCeiling))

	var presentValue float64
	projected := *fcf
	for year := 1; year <= d.projectionYears; year++ {
		projected = *fcf * math.Pow(1+growth, float64(year))
		presentValue += projected / math.Pow(1+d.discountRate, float64(year))
	}

	terminal := projected * (1 + d.terminalGrowth) / (d.discountRate - d.terminalGrowth)
	presentValue += terminal / math.Pow(1+d.discountRate, float64(d.projectionYears+1))

	return model.Ptr(presentValue / *shares)
}

// marginOfSafety is the discount of price to intrinsic value, in percent.
// Only defined when the stock trades below intrinsic value.
func marginOfSafety(intrinsic, price *float64) *float64 {
	if intrinsic == nil || price == nil {
		return nil
	}
	if *intrinsic <= 0 || *intrinsic <= *price {
		return nil
	}
	return model.Ptr((*intrinsic - *price) / *intrinsic * 100)
}

func price(facts *model.Facts) *float64 {
	return coalesce(facts.CurrentPrice, facts.PreviousClose, facts.RegularMarketPrice)
}

func name(facts *model.Facts) string {
	if facts.Name != "" {
		return facts.Name
	}
	return facts.Symbol
}

func sector(facts *model.Facts) string {
	if facts.Sector != "" {
		return facts.Sector
	}
	return "Unknown"
}

func coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
