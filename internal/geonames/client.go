// Package geonames resolves GeoNames ids to places through the GeoNames
// web service, with an optional cache.
package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eykd/rorv/internal/domain"
)

// DefaultBaseURL is the public GeoNames web service.
const DefaultBaseURL = "http://api.geonames.org"

// DefaultTimeout bounds one lookup.
const DefaultTimeout = 10 * time.Second

// ErrInvalidID is returned for ids that are not positive integers.
var ErrInvalidID = errors.New("invalid geonames id")

// ErrService is returned when GeoNames answers with an error status.
var ErrService = errors.New("geonames service error")

// Cache stores resolved places by id.
type Cache interface {
	Get(ctx context.Context, id string) (domain.Place, bool, error)
	Set(ctx context.Context, id string, place domain.Place) error
}

// Client looks up GeoNames places.
type Client struct {
	baseURL  string
	username string
	http     *http.Client
	cache    Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache sets the lookup cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a Client for the given GeoNames account. Lookups are
// cached in memory unless another cache is configured.
func NewClient(username string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		username: username,
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    NewMemoryCache(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type placeResponse struct {
	GeoNameID   int64  `json:"geonameId"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
	Status      *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

// Lookup resolves id. Cache failures are treated as misses.
func (c *Client) Lookup(ctx context.Context, id string) (domain.Place, error) {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err != nil || n <= 0 {
		return domain.Place{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	if place, ok, err := c.cache.Get(ctx, id); err == nil && ok {
		return place, nil
	}

	q := url.Values{}
	q.Set("geonameId", id)
	q.Set("username", c.username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getJSON?"+q.Encode(), nil)
	if err != nil {
		return domain.Place{}, fmt.Errorf("building geonames request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Place{}, fmt.Errorf("requesting geonames id %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Place{}, fmt.Errorf("%w: id %s: HTTP %d", ErrService, id, resp.StatusCode)
	}

	var body placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Place{}, fmt.Errorf("decoding geonames response for %s: %w", id, err)
	}
	if body.Status != nil {
		return domain.Place{}, fmt.Errorf("%w: id %s: %s (%d)", ErrService, id, body.Status.Message, body.Status.Value)
	}

	place := domain.Place{
		GeoNamesID:  id,
		City:        body.Name,
		CountryCode: strings.ToUpper(body.CountryCode),
		CountryName: body.CountryName,
	}
	_ = c.cache.Set(ctx, id, place)
	return place, nil
}
