// Package quote fetches per-symbol fundamentals from a quote-summary style
// HTTP API and maps them into raw company facts for derivation.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
)

const quoteSummaryModules = "price,summaryProfile,summaryDetail,financialData,defaultKeyStatistics," +
	"incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory"

// Client talks to the fundamentals API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithUserAgent sets the outbound user agent.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// NewClient creates a fundamentals client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		userAgent:  "moatwatch/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fundamentals fetches the quote summary for one symbol.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*model.Facts, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(quoteSummaryModules))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: quote api returned %d for %s", ErrStatus, resp.StatusCode, symbol)
	}

	var envelope summaryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return envelope.QuoteSummary.Result[0].facts(symbol), nil
}
