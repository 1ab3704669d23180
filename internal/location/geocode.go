package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanosDev/awqat/internal/httpclient"
)

const geocodeTimeout = 15 * time.Second

// HTTPGeocoder resolves coordinates against a Nominatim-style reverse
// geocoding endpoint.
type HTTPGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPGeocoder creates a reverse geocoder for the given endpoint base URL.
func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.NewSimple(geocodeTimeout),
	}
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
	} `json:"address"`
}

// ReverseCity returns the city-level name for the given coordinates. Smaller
// settlements fall back to town, village, then county.
func (g *HTTPGeocoder) ReverseCity(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("reverse geocode: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}

	for _, name := range []string{parsed.Address.City, parsed.Address.Town, parsed.Address.Village, parsed.Address.County} {
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("reverse geocode: no settlement at %.4f,%.4f", lat, lon)
}
