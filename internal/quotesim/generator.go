// Package quotesim provides a deterministic stand-in for the market data
// APIs so the whole pipeline can run offline. Each symbol always yields the
// same fundamentals, derived from a hash of its name.
package quotesim

import (
	"hash/fnv"
	"math/rand"
)

// Profile archetypes the generator spreads symbols across.
const (
	caseValuePick   = 0 // strong fundamentals, cheap
	caseQualityPick = 1 // strong fundamentals, fair price
	caseGrowthTrap  = 2 // growing but leveraged
	caseLeveraged   = 3 // heavy debt
	caseDecliner    = 4 // shrinking earnings
	caseMicroCap    = 5 // tiny, volatile
	caseSparse      = 6 // too few fields to analyze
	caseErratic     = 7 // wide random spread

	profileCount = 8
)

// Metric generation ranges per archetype.
const (
	billion = 1_000_000_000
)

var sectors = []string{
	"Technology",
	"Financial Services",
	"Consumer Defensive",
	"Healthcare",
	"Industrials",
	"Energy",
	"Utilities",
	"Basic Materials",
}

// company is the raw material the simulator serves for one symbol.
type company struct {
	Name              string
	Sector            string
	Price             float64
	MarketCap         float64
	TrailingPE        float64
	ROE               float64 // fraction, e.g. 0.22
	DebtToEquity      float64 // percent, as the upstream API reports it
	ProfitMargin      float64
	SharesOutstanding float64
	NetIncome         []float64 // newest first
	Equity            float64
	TotalDebt         float64
	OperatingCashFlow float64
	CapEx             float64
	Sparse            bool
}

// generate builds the deterministic company record for a symbol.
func generate(symbol string, seed int64) company {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ seed))

	profile := rng.Intn(profileCount)
	c := company{
		Name:   symbol + " Ltd",
		Sector: sectors[rng.Intn(len(sectors))],
	}

	switch profile {
	case caseValuePick:
		c.fill(rng, 12*billion, 80*billion, 8, 14, 0.18, 0.30, 10, 40, 0.14)
	case caseQualityPick:
		c.fill(rng, 5*billion, 40*billion, 18, 24, 0.16, 0.28, 20, 60, 0.12)
	case caseGrowthTrap:
		c.fill(rng, 2*billion, 20*billion, 25, 45, 0.12, 0.20, 90, 160, 0.08)
	case caseLeveraged:
		c.fill(rng, 1*billion, 15*billion, 10, 22, 0.06, 0.12, 150, 300, 0.05)
	case caseDecliner:
		c.fill(rng, billion/2, 8*billion, 6, 12, 0.04, 0.09, 40, 90, 0.04)
		// newest income below the oldest, a shrinking business
		c.NetIncome = []float64{c.NetIncome[0] * 0.6, c.NetIncome[0] * 0.8, c.NetIncome[0]}
	case caseMicroCap:
		c.fill(rng, billion/20, billion/4, 5, 30, 0.08, 0.35, 10, 120, 0.10)
	case caseSparse:
		c.Sparse = true
		c.Price = 50 + rng.Float64()*500
	case caseErratic:
		c.fill(rng, billion/10, 100*billion, 4, 60, 0.01, 0.40, 5, 350, 0.02)
	}

	return c
}

// fill populates the record with values drawn from the given ranges.
func (c *company) fill(rng *rand.Rand, mcapMin, mcapMax, peMin, peMax, roeMin, roeMax, deMin, deMax, marginBase float64) {
	c.MarketCap = mcapMin + rng.Float64()*(mcapMax-mcapMin)
	c.TrailingPE = peMin + rng.Float64()*(peMax-peMin)
	c.ROE = roeMin + rng.Float64()*(roeMax-roeMin)
	c.DebtToEquity = deMin + rng.Float64()*(deMax-deMin)
	c.ProfitMargin = marginBase * (0.5 + rng.Float64())

	c.SharesOutstanding = 10_000_000 + rng.Float64()*990_000_000
	c.Price = c.MarketCap / c.SharesOutstanding

	latest := c.MarketCap / c.TrailingPE
	growth := 0.9 + rng.Float64()*0.25
	c.NetIncome = []float64{
		latest,
		latest / growth,
		latest / (growth * growth),
	}

	c.Equity = latest / c.ROE
	c.TotalDebt = c.Equity * c.DebtToEquity / 100
	c.OperatingCashFlow = latest * (1.0 + rng.Float64()*0.4)
	c.CapEx = -c.OperatingCashFlow * (0.2 + rng.Float64()*0.3)
}
