// Package types contains common read shapes shared across the application.
package types

// Entry represents one ranked pick as rendered in reports and API responses.
type Entry struct {
	Rank           int      `json:"rank"`
	Symbol         string   `json:"symbol"`
	Exchange       string   `json:"exchange"`
	Name           string   `json:"name"`
	Sector         string   `json:"sector"`
	Price          float64  `json:"price"`
	IntrinsicValue float64  `json:"intrinsic_value"`
	MarginOfSafety float64  `json:"margin_of_safety"`
	PERatio        float64  `json:"pe_ratio"`
	ROE            float64  `json:"roe"`
	DebtToEquity   float64  `json:"debt_to_equity"`
	MarketCap      float64  `json:"market_cap"`
	Score          float64  `json:"score"`
	Reasons        []string `json:"reasons"`
	Warnings       []string `json:"warnings"`
}
