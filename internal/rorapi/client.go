// Package rorapi searches the live registry API for organizations.
package rorapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eykd/rorv/internal/domain"
)

// DefaultBaseURL is the public v2 registry API.
const DefaultBaseURL = "https://api.ror.org/v2"

// DefaultTimeout bounds one search request.
const DefaultTimeout = 30 * time.Second

// ErrStatus is returned for non-200 responses.
var ErrStatus = errors.New("unexpected registry API status")

// Client queries the registry search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type searchResponse struct {
	NumberOfResults int               `json:"number_of_results"`
	Items           []domain.Document `json:"items"`
}

// Search returns the organizations matching query, restricted to a
// country when countryCode is set.
func (c *Client) Search(ctx context.Context, query, countryCode string) ([]domain.Record, error) {
	q := url.Values{}
	q.Set("query", query)
	if countryCode != "" {
		q.Set("filter", "locations.geonames_details.country_code:"+strings.ToUpper(countryCode))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/organizations?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: searching %q: HTTP %d", ErrStatus, query, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search response for %q: %w", query, err)
	}

	records := make([]domain.Record, 0, len(body.Items))
	for _, d := range body.Items {
		records = append(records, d.Record())
	}
	return records, nil
}

// Candidates implements the duplicate detector's corpus on top of Search.
func (c *Client) Candidates(ctx context.Context, name, countryCode string) ([]domain.Record, error) {
	return c.Search(ctx, name, countryCode)
}
