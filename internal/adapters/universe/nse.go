package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NSESource lists equities from the NSE archive CSV (EQUITY_L.csv).
type NSESource struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewNSESource creates an NSE listing source.
func NewNSESource(client *http.Client, url, userAgent string) *NSESource {
	return &NSESource{client: client, url: url, userAgent: userAgent}
}

// Name identifies the source in logs.
func (s *NSESource) Name() string { return "nse" }

// Symbols downloads and parses the equity CSV, suffixing each symbol with
// ".NS". The SYMBOL column is located by header name rather than position.
func (s *NSESource) Symbols(ctx context.Context) ([]string, error) {
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
		return nil, fmt.Errorf("%w: nse list returned %d", ErrSourceStatus, resp.StatusCode)
	}

	return parseNSECSV(resp.Body)
}

func parseNSECSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // the archive file has ragged trailing columns

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceParse, err)
	}

	symbolCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "SYMBOL") {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("%w: no SYMBOL column in header", ErrSourceParse)
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceParse, err)
		}
		if symbolCol >= len(record) {
			continue
		}
		symbol := strings.TrimSpace(record[symbolCol])
		if symbol == "" {
			continue
		}
		symbols = append(symbols, symbol+".NS")
	}
	return symbols, nil
}
