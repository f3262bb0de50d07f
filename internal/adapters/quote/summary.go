package quote

import "github.com/moatwatch/moatwatch/internal/domain/model"

// Wire types for the quote-summary payload. Numeric fields arrive wrapped
// as {"raw": 123.4, "fmt": "123.40"}; only raw matters here.

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type summaryEnvelope struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	Price *struct {
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		MarketCap          rawValue `json:"marketCap"`
	} `json:"price"`

	SummaryProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"summaryProfile"`

	SummaryDetail *struct {
		TrailingPE    rawValue `json:"trailingPE"`
		ForwardPE     rawValue `json:"forwardPE"`
		PreviousClose rawValue `json:"previousClose"`
	} `json:"summaryDetail"`

	FinancialData *struct {
		CurrentPrice   rawValue `json:"currentPrice"`
		ReturnOnEquity rawValue `json:"returnOnEquity"`
		DebtToEquity   rawValue `json:"debtToEquity"`
		ProfitMargins  rawValue `json:"profitMargins"`
		EarningsGrowth rawValue `json:"earningsGrowth"`
	} `json:"financialData"`

	DefaultKeyStatistics *struct {
		SharesOutstanding        rawValue `json:"sharesOutstanding"`
		ImpliedSharesOutstanding rawValue `json:"impliedSharesOutstanding"`
	} `json:"defaultKeyStatistics"`

	IncomeStatementHistory *struct {
		Statements []struct {
			NetIncome rawValue `json:"netIncome"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`

	BalanceSheetHistory *struct {
		Statements []struct {
			TotalStockholderEquity rawValue `json:"totalStockholderEquity"`
			TotalDebt              rawValue `json:"totalDebt"`
			LongTermDebt           rawValue `json:"longTermDebt"`
			ShortLongTermDebt      rawValue `json:"shortLongTermDebt"`
		} `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`

	CashflowStatementHistory *struct {
		Statements []struct {
			TotalCashFromOperatingActivities rawValue `json:"totalCashFromOperatingActivities"`
			CapitalExpenditures              rawValue `json:"capitalExpenditures"`
		} `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

// facts flattens the wire payload into model.Facts. FieldCount approximates
// the upstream coverage so the deriver can reject near-empty symbols.
func (r *summaryResult) facts(symbol string) *model.Facts {
	f := &model.Facts{Symbol: symbol}

	if r.Price != nil {
		f.Name = r.Price.LongName
		if f.Name == "" {
			f.Name = r.Price.ShortName
		}
		f.RegularMarketPrice = r.Price.RegularMarketPrice.Raw
		f.MarketCap = r.Price.MarketCap.Raw
	}
	if r.SummaryProfile != nil {
		f.Sector = r.SummaryProfile.Sector
		if f.Sector == "" {
			f.Sector = r.SummaryProfile.Industry
		}
	}
	if r.SummaryDetail != nil {
		f.TrailingPE = r.SummaryDetail.TrailingPE.Raw
		f.ForwardPE = r.SummaryDetail.ForwardPE.Raw
		f.PreviousClose = r.SummaryDetail.PreviousClose.Raw
	}
	if r.FinancialData != nil {
		f.CurrentPrice = r.FinancialData.CurrentPrice.Raw
		f.ReturnOnEquity = r.FinancialData.ReturnOnEquity.Raw
		f.DebtToEquity = r.FinancialData.DebtToEquity.Raw
		f.ProfitMargins = r.FinancialData.ProfitMargins.Raw
		f.EarningsGrowth = r.FinancialData.EarningsGrowth.Raw
	}
	if r.DefaultKeyStatistics != nil {
		f.SharesOutstanding = r.DefaultKeyStatistics.SharesOutstanding.Raw
		f.ImpliedSharesOutstanding = r.DefaultKeyStatistics.ImpliedSharesOutstanding.Raw
	}
	if r.IncomeStatementHistory != nil {
		for _, stmt := range r.IncomeStatementHistory.Statements {
			if stmt.NetIncome.Raw != nil {
				f.NetIncome = append(f.NetIncome, *stmt.NetIncome.Raw)
			}
		}
	}
	if r.BalanceSheetHistory != nil && len(r.BalanceSheetHistory.Statements) > 0 {
		latest := r.BalanceSheetHistory.Statements[0]
		f.StockholdersEquity = latest.TotalStockholderEquity.Raw
		f.TotalDebt = latest.TotalDebt.Raw
		f.LongTermDebt = latest.LongTermDebt.Raw
		f.CurrentDebt = latest.ShortLongTermDebt.Raw
	}
	if r.CashflowStatementHistory != nil && len(r.CashflowStatementHistory.Statements) > 0 {
		latest := r.CashflowStatementHistory.Statements[0]
		f.OperatingCashFlow = latest.TotalCashFromOperatingActivities.Raw
		f.CapitalExpenditure = latest.CapitalExpenditures.Raw
	}

	f.FieldCount = countFields(f)
	return f
}

func countFields(f *model.Facts) int {
	n := 0
	if f.Name != "" {
		n++
	}
	if f.Sector != "" {
		n++
	}
	for _, p := range []*float64{
		f.CurrentPrice, f.PreviousClose, f.RegularMarketPrice, f.MarketCap,
		f.TrailingPE, f.ForwardPE, f.ReturnOnEquity, f.DebtToEquity,
		f.ProfitMargins, f.EarningsGrowth, f.SharesOutstanding,
		f.ImpliedSharesOutstanding, f.StockholdersEquity, f.TotalDebt,
		f.LongTermDebt, f.CurrentDebt, f.OperatingCashFlow, f.CapitalExpenditure,
	} {
		if p != nil {
			n++
		}
	}
	n += len(f.NetIncome)
	return n
}
