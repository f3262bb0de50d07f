package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// BSESource lists active equity scrips from the BSE listing API.
type BSESource struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewBSESource creates a BSE listing source.
func NewBSESource(client *http.Client, url, userAgent string) *BSESource {
	return &BSESource{client: client, url: url, userAgent: userAgent}
}

// Name identifies the source in logs.
func (s *BSESource) Name() string { return "bse" }

// bseListing mirrors the BSE API response shape. Scrip codes come back as
// numbers, hence json.Number.
type bseListing struct {
	Table []struct {
		ScripCD json.Number `json:"SCRIP_CD"`
	} `json:"Table"`
}

// Symbols fetches the scrip list and suffixes each code with ".BO".
func (s *BSESource) Symbols(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRequest, err)
	}
	// The BSE API rejects requests without a browser user agent.
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bse list returned %d", ErrSourceStatus, resp.StatusCode)
	}

	var listing bseListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceParse, err)
	}

	symbols := make([]string, 0, len(listing.Table))
	for _, row := range listing.Table {
		code := strings.TrimSpace(row.ScripCD.String())
		if code == "" {
			continue
		}
		symbols = append(symbols, code+".BO")
	}
	return symbols, nil
}
