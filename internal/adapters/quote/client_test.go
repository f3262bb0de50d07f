package quote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleSummary = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "longName": "Tata Consultancy Services Limited",
        "regularMarketPrice": {"raw": 3500.5},
        "marketCap": {"raw": 12500000000000}
      },
      "summaryProfile": {"sector": "Technology"},
      "summaryDetail": {"trailingPE": {"raw": 24.1}},
      "financialData": {
        "currentPrice": {"raw": 3501.0},
        "returnOnEquity": {"raw": 0.445},
        "debtToEquity": {"raw": 8.2},
        "profitMargins": {"raw": 0.19}
      },
      "defaultKeyStatistics": {"sharesOutstanding": {"raw": 3600000000}},
      "incomeStatementHistory": {
        "incomeStatementHistory": [
          {"netIncome": {"raw": 420000000000}},
          {"netIncome": {"raw": 390000000000}}
        ]
      },
      "balanceSheetHistory": {
        "balanceSheetStatements": [{
          "totalStockholderEquity": {"raw": 910000000000},
          "totalDebt": {"raw": 75000000000}
        }]
      },
      "cashflowStatementHistory": {
        "cashflowStatements": [{
          "totalCashFromOperatingActivities": {"raw": 440000000000},
          "capitalExpenditures": {"raw": -31000000000}
        }]
      }
    }],
    "error": null
  }
}`

func TestFundamentals(t *testing.T) {
	ctx := context.Background()

	Convey("Given a quote-summary endpoint", t, func() {
		var gotPath, gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleSummary))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithUserAgent("test-agent"))

		Convey("When fetching a symbol", func() {
			facts, err := c.Fundamentals(ctx, "TCS.NS")

			Convey("Then the request targets the symbol path", func() {
				So(err, ShouldBeNil)
				So(gotPath, ShouldEqual, "/v10/finance/quoteSummary/TCS.NS")
				So(gotUA, ShouldEqual, "test-agent")
			})

			Convey("Then the payload flattens into facts", func() {
				So(err, ShouldBeNil)
				So(facts.Symbol, ShouldEqual, "TCS.NS")
				So(facts.Name, ShouldEqual, "Tata Consultancy Services Limited")
				So(facts.Sector, ShouldEqual, "Technology")
				So(*facts.CurrentPrice, ShouldEqual, 3501.0)
				So(*facts.TrailingPE, ShouldEqual, 24.1)
				So(*facts.ReturnOnEquity, ShouldEqual, 0.445)
				So(facts.NetIncome, ShouldResemble, []float64{420000000000, 390000000000})
				So(*facts.StockholdersEquity, ShouldEqual, 910000000000.0)
				So(*facts.OperatingCashFlow, ShouldEqual, 440000000000.0)
				So(*facts.CapitalExpenditure, ShouldEqual, -31000000000.0)
			})

			Convey("Then the field count reflects coverage", func() {
				So(err, ShouldBeNil)
				So(facts.FieldCount, ShouldBeGreaterThan, 10)
				So(facts.HasStatements(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a 404 for an unknown symbol", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithHTTPClient(srv.Client()))

		Convey("Then the client reports no data", func() {
			_, err := c.Fundamentals(ctx, "GONE.NS")
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
		})
	})

	Convey("Given an upstream failure", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithHTTPClient(srv.Client()))

		Convey("Then the status error surfaces", func() {
			_, err := c.Fundamentals(ctx, "TCS.NS")
			So(errors.Is(err, ErrStatus), ShouldBeTrue)
		})
	})

	Convey("Given an empty result set", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithHTTPClient(srv.Client()))

		Convey("Then the client reports no data", func() {
			_, err := c.Fundamentals(ctx, "EMPTY.NS")
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
		})
	})
}
