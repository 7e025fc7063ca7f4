package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/models"
)

// Geocoder resolves a free-text location to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (models.Coordinate, error)
}

// Client talks to the external geocoding service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Geocode resolves a "Country, Region" descriptor. A response without
// results is an error; the caller decides whether that is fatal for its
// broader pass.
func (c *Client) Geocode(ctx context.Context, location string) (models.Coordinate, error) {
	reqURL := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"location":    location,
		"status_code": resp.StatusCode,
	}).Debug("Geocode response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Coordinate{}, fmt.Errorf("geocode request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(decoded.Results) == 0 {
		return models.Coordinate{}, fmt.Errorf("no geocode result for %q (status %s)", location, decoded.Status)
	}

	loc := decoded.Results[0].Geometry.Location
	return models.Coordinate{Lat: loc.Lat, Lon: loc.Lng}, nil
}
