package quotesim

// Wire shapes mirroring the quote-summary payload the collector parses.

type raw struct {
	Raw float64 `json:"raw"`
}

type statement map[string]raw

type result map[string]any

type summaryPayload struct {
	QuoteSummary struct {
		Result []result `json:"result"`
		Error  any      `json:"error"`
	} `json:"quoteSummary"`
}

// envelope renders a company record as a full quote-summary response. A
// sparse company only carries the price module, which leaves too little for
// downstream analysis.
func envelope(symbol string, c company) summaryPayload {
	res := result{
		"price": map[string]any{
			"longName":           c.Name,
			"regularMarketPrice": raw{Raw: c.Price},
			"marketCap":          raw{Raw: c.MarketCap},
		},
	}

	if !c.Sparse {
		res["summaryProfile"] = map[string]any{
			"sector": c.Sector,
		}
		res["summaryDetail"] = map[string]any{
			"trailingPE":    raw{Raw: c.TrailingPE},
			"previousClose": raw{Raw: c.Price},
		}
		res["financialData"] = map[string]any{
			"currentPrice":   raw{Raw: c.Price},
			"returnOnEquity": raw{Raw: c.ROE},
			"debtToEquity":   raw{Raw: c.DebtToEquity},
			"profitMargins":  raw{Raw: c.ProfitMargin},
		}
		res["defaultKeyStatistics"] = map[string]any{
			"sharesOutstanding": raw{Raw: c.SharesOutstanding},
		}

		income := make([]statement, 0, len(c.NetIncome))
		for _, ni := range c.NetIncome {
			income = append(income, statement{"netIncome": raw{Raw: ni}})
		}
		res["incomeStatementHistory"] = map[string]any{
			"incomeStatementHistory": income,
		}
		res["balanceSheetHistory"] = map[string]any{
			"balanceSheetStatements": []statement{{
				"totalStockholderEquity": raw{Raw: c.Equity},
				"totalDebt":              raw{Raw: c.TotalDebt},
			}},
		}
		res["cashflowStatementHistory"] = map[string]any{
			"cashflowStatements": []statement{{
				"totalCashFromOperatingActivities": raw{Raw: c.OperatingCashFlow},
				"capitalExpenditures":              raw{Raw: c.CapEx},
			}},
		}
	}

	var p summaryPayload
	p.QuoteSummary.Result = []result{res}
	return p
}
