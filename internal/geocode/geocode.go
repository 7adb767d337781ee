// Package geocode resolves free-text addresses to coordinates through the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/config"
	"github.com/lcs-staffing/admin-console/internal/domain"
)

// ErrNoResults is returned when the address resolves to nothing.
var ErrNoResults = errors.New("geocode: no results")

// Geocoder turns an address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

// Client calls the Google Geocoding JSON endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient builds a client from configuration.
func NewClient(cfg config.GeocodingConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout()},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

type response struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the first result's location.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode decode: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		c.logger.Warn("geocode rejected", zap.String("status", body.Status), zap.String("message", body.ErrorMessage))
		return nil, fmt.Errorf("geocode: status %s", body.Status)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	loc := body.Results[0].Geometry.Location
	return &domain.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
