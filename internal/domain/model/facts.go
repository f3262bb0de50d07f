package model

// Facts carries the raw per-symbol fields fetched from the fundamentals API
// before any derivation. Pointers distinguish "absent" from zero; statement
// slices are ordered newest first.
type Facts struct {
	Symbol string
	Name   string
	Sector string

	// FieldCount is the number of fields present in the upstream summary
	// blob. Tiny blobs mean the symbol has no usable coverage.
	FieldCount int

	CurrentPrice       *float64
	PreviousClose      *float64
	RegularMarketPrice *float64
	MarketCap          *float64
	TrailingPE         *float64
	ForwardPE          *float64

	ReturnOnEquity *float64 // fraction, e.g. 0.18
	DebtToEquity   *float64 // percent, as reported upstream
	ProfitMargins  *float64 // fraction
	EarningsGrowth *float64 // fraction

	SharesOutstanding        *float64
	ImpliedSharesOutstanding *float64

	// Statement lines.
	NetIncome          []float64 // annual net income, newest first
	StockholdersEquity *float64
	TotalDebt          *float64
	LongTermDebt       *float64
	CurrentDebt        *float64
	OperatingCashFlow  *float64
	CapitalExpenditure *float64
}

// HasStatements reports whether any balance-sheet or income-statement data
// came back for the symbol.
func (f *Facts) HasStatements() bool {
	return f.StockholdersEquity != nil || len(f.NetIncome) > 0
}
