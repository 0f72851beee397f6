// Package geocode is a Nominatim (OpenStreetMap) client used two ways:
// forward geocoding of user-typed locations during the conversation, and
// reverse geocoding of coordinates into neighborhood names for post text.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/config"
)

// boroughNames maps Nominatim county names to the borough names NYC
// residents actually use.
var boroughNames = map[string]string{
	"Kings":           "Brooklyn",
	"Kings County":    "Brooklyn",
	"Queens":          "Queens",
	"Queens County":   "Queens",
	"New York":        "Manhattan",
	"New York County": "Manhattan",
	"Bronx":           "The Bronx",
	"Bronx County":    "The Bronx",
	"Richmond":        "Staten Island",
	"Richmond County": "Staten Island",
}

// Client talks to a Nominatim-compatible endpoint. Nominatim's usage policy
// caps clients at one request per second, so every call waits out the
// remainder of that interval before hitting the network.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// New creates a Client from config.
func New(cfg config.GeocoderConfig) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		minInterval: time.Second,
	}
}

// throttle blocks until the rate limit allows another request.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

// Forward geocodes free-text into coordinates. A query that doesn't mention
// New York gets ", New York City, NY" appended, since contributors usually
// type just a street or neighborhood. No match returns ok=false with a nil
// error; transport failures return an error.
func (c *Client) Forward(ctx context.Context, text string) (lat, lon float64, ok bool, err error) {
	query := strings.TrimSpace(text)
	lower := strings.ToLower(query)
	if !strings.Contains(lower, "new york") && !strings.Contains(lower, "nyc") {
		query += ", New York City, NY"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return 0, 0, false, err
	}
	if len(results) == 0 {
		return 0, 0, false, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false, fmt.Errorf("geocode: bad coordinates in response: %s, %s", results[0].Lat, results[0].Lon)
	}
	return lat, lon, true, nil
}

// reverseResponse is the subset of the Nominatim reverse payload we read.
type reverseResponse struct {
	Address struct {
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		Hamlet        string `json:"hamlet"`
		Village       string `json:"village"`
		CityDistrict  string `json:"city_district"`
		Borough       string `json:"borough"`
		County        string `json:"county"`
		City          string `json:"city"`
		Town          string `json:"town"`
	} `json:"address"`
}

// Neighborhood reverse-geocodes coordinates into a reader-friendly place
// name like "Astoria, Queens". Best-effort: any failure returns "".
func (c *Client) Neighborhood(ctx context.Context, lat, lon float64) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("zoom", "18")

	var resp reverseResponse
	if err := c.get(ctx, "/reverse", params, &resp); err != nil {
		return ""
	}

	addr := resp.Address
	neighborhood := firstNonEmpty(addr.Neighbourhood, addr.Suburb, addr.Hamlet, addr.Village)
	borough := firstNonEmpty(addr.CityDistrict, addr.Borough, addr.County)

	var parts []string
	if neighborhood != "" {
		parts = append(parts, neighborhood)
	}
	if borough != "" {
		if mapped, ok := boroughNames[borough]; ok {
			borough = mapped
		}
		borough = strings.ReplaceAll(borough, "Borough of ", "")
		borough = strings.TrimSuffix(borough, " County")
		parts = append(parts, borough)
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return firstNonEmpty(addr.City, addr.Town)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocode: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode: %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocode: decode %s response: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
