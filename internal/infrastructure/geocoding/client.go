package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/pkg/geo"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// Client talks to a Nominatim-compatible search endpoint. An empty
// result set or a non-success status means "address not found" and
// yields a nil point, not an error; errors are reserved for transport
// failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, query string) (*geo.Point, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Geocoder returned non-OK status", "status", resp.StatusCode, "query", query)
		return nil, nil
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Warn("Geocoder response could not be decoded", "error", err)
		return nil, nil
	}

	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, nil
	}

	return &geo.Point{Lat: lat, Lon: lon}, nil
}

// PostalClient resolves postal codes through a ViaCEP-style endpoint
// for address form prefill. Lookup failure is never fatal; the
// shopper just types the address in.
type PostalClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewPostalClient(baseURL string, timeout time.Duration, log *logger.Logger) *PostalClient {
	return &PostalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type postalResult struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	NotFound     bool   `json:"erro"`
}

func (c *PostalClient) Lookup(ctx context.Context, postalCode string) (*ports.PostalAddress, error) {
	cleaned := strings.NewReplacer("-", "", ".", "", " ", "").Replace(postalCode)
	if len(cleaned) != 8 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, url.PathEscape(cleaned))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var result postalResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil
	}
	if result.NotFound {
		return nil, nil
	}

	return &ports.PostalAddress{
		PostalCode:   result.CEP,
		Street:       result.Street,
		Neighborhood: result.Neighborhood,
		City:         result.City,
		State:        result.State,
	}, nil
}
