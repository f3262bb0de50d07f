package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScreenerSource scrapes symbols out of an HTML listing page. It reads the
// first cell of every table row, so it works against most screener-style
// "top companies" tables. Cell text is expected to already carry the
// exchange suffix.
type ScreenerSource struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewScreenerSource creates an HTML listing source.
func NewScreenerSource(client *http.Client, url, userAgent string) *ScreenerSource {
	return &ScreenerSource{client: client, url: url, userAgent: userAgent}
}

// Name identifies the source in logs.
func (s *ScreenerSource) Name() string { return "screener" }

// Symbols fetches the page and extracts symbols from table rows.
func (s *ScreenerSource) Symbols(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRequest, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: screener returned %d", ErrSourceStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceParse, err)
	}

	var symbols []string
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return // header row
		}
		symbol := strings.ToUpper(strings.TrimSpace(cell.Text()))
		if symbol == "" || !hasExchangeSuffix(symbol) {
			return
		}
		symbols = append(symbols, symbol)
	})
	return symbols, nil
}

func hasExchangeSuffix(symbol string) bool {
	return strings.HasSuffix(symbol, ".NS") || strings.HasSuffix(symbol, ".BO")
}
