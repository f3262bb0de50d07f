package quotesim

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateDeterminism(t *testing.T) {
	Convey("Given the same symbol and seed", t, func() {
		a := generate("SIM004.NS", 7)
		b := generate("SIM004.NS", 7)

		Convey("Then the generated company is identical", func() {
			So(a.Name, ShouldEqual, b.Name)
			So(a.Price, ShouldEqual, b.Price)
			So(a.MarketCap, ShouldEqual, b.MarketCap)
			So(a.NetIncome, ShouldResemble, b.NetIncome)
		})
	})

	Convey("Given a different seed", t, func() {
		a := generate("SIM004.NS", 7)
		b := generate("SIM004.NS", 8)

		Convey("Then the company differs", func() {
			So(a.Price == b.Price && a.MarketCap == b.MarketCap, ShouldBeFalse)
		})
	})

	Convey("Given a filled company", t, func() {
		var c company
		for i := 0; c.Sparse || c.MarketCap == 0; i++ {
			c = generate("PROBE"+string(rune('A'+i))+".NS", 1)
		}

		Convey("Then price, market cap and shares are consistent", func() {
			So(c.Price*c.SharesOutstanding, ShouldAlmostEqual, c.MarketCap, c.MarketCap/1e6)
			So(len(c.NetIncome), ShouldEqual, 3)
			So(c.CapEx, ShouldBeLessThan, 0)
		})
	})
}

func TestSimulatorRoutes(t *testing.T) {
	Convey("Given a running simulator", t, func() {
		sim := NewServer(Config{NumSymbols: 6, Seed: 1})
		mux := http.NewServeMux()
		sim.Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("Then the NSE listing parses as CSV with a header", func() {
			resp, err := http.Get(srv.URL + "/nse/equity.csv")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			rows, csvErr := csv.NewReader(resp.Body).ReadAll()
			So(csvErr, ShouldBeNil)
			So(rows[0][0], ShouldEqual, "SYMBOL")
			So(len(rows), ShouldEqual, 4) // header + 3 NSE symbols
			So(rows[1][0], ShouldEqual, "SIM000")
		})

		Convey("Then the BSE listing carries scrip codes", func() {
			resp, err := http.Get(srv.URL + "/bse/listing.json")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var payload struct {
				Table []struct {
					ScripCD string `json:"SCRIP_CD"`
				} `json:"Table"`
			}
			So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)
			So(len(payload.Table), ShouldEqual, 3)
			So(payload.Table[0].ScripCD, ShouldEqual, "500001")
		})

		Convey("Then a quote summary has the upstream wire shape", func() {
			resp, err := http.Get(srv.URL + "/v10/finance/quoteSummary/SIM000.NS")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var payload struct {
				QuoteSummary struct {
					Result []map[string]json.RawMessage `json:"result"`
					Error  interface{}                  `json:"error"`
				} `json:"quoteSummary"`
			}
			So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)
			So(len(payload.QuoteSummary.Result), ShouldEqual, 1)
			So(payload.QuoteSummary.Result[0], ShouldContainKey, "price")
		})

		Convey("Then an empty symbol path is not found", func() {
			resp, err := http.Get(srv.URL + "/v10/finance/quoteSummary/")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSimulatorFailEvery(t *testing.T) {
	Convey("Given a simulator that fails every second quote", t, func() {
		sim := NewServer(Config{NumSymbols: 2, Seed: 1, FailEvery: 2})
		mux := http.NewServeMux()
		sim.Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		statuses := make([]int, 0, 4)
		for i := 0; i < 4; i++ {
			resp, err := http.Get(srv.URL + "/v10/finance/quoteSummary/SIM000.NS")
			So(err, ShouldBeNil)
			statuses = append(statuses, resp.StatusCode)
			resp.Body.Close()
		}

		Convey("Then failures alternate with successes", func() {
			So(statuses, ShouldResemble, []int{
				http.StatusOK, http.StatusInternalServerError,
				http.StatusOK, http.StatusInternalServerError,
			})
		})
	})
}

func TestSparsePayload(t *testing.T) {
	Convey("Given a sparse-profile symbol", t, func() {
		var symbol string
		for i := 0; symbol == ""; i++ {
			candidate := "SPARSE" + string(rune('A'+i)) + ".NS"
			if generate(candidate, 1).Sparse {
				symbol = candidate
			}
		}

		env := envelope(symbol, generate(symbol, 1))
		raw, err := json.Marshal(env)
		So(err, ShouldBeNil)
		body := string(raw)

		Convey("Then only the price module carries data", func() {
			So(body, ShouldContainSubstring, "regularMarketPrice")
			So(body, ShouldNotContainSubstring, "incomeStatementHistory")
			So(body, ShouldNotContainSubstring, "financialData")
		})
	})
}
