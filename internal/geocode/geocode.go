package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const DefaultURL = "https://maps.apigw.ntruss.com/map-reversegeocode/v2/gc"

var (
	// ErrUnauthorized means the geocoding provider rejected the key pair with HTTP 401.
	ErrUnauthorized       = errors.New("reverse geocoding unauthorized")
	ErrMissingCredentials = errors.New("reverse geocoding credentials are not set")
	ErrNoResults          = errors.New("reverse geocoding returned no results")
)

type Region struct {
	Division     string
	Neighborhood string
}

type Client struct {
	httpClient   *http.Client
	url          string
	clientID     string
	clientSecret string
}

func NewClient(httpClient *http.Client, endpoint string, clientID string, clientSecret string) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}

	return &Client{
		httpClient:   httpClient,
		url:          endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type area struct {
	Name string `json:"name"`
}

type reverseResponseBody struct {
	Status struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"status"`
	Results []struct {
		Name   string `json:"name"`
		Region struct {
			Area1 area `json:"area1"`
			Area2 area `json:"area2"`
			Area3 area `json:"area3"`
		} `json:"region"`
	} `json:"results"`
}

// Reverse resolves the district (area2) and neighborhood (area3) names of a point.
func (c *Client) Reverse(ctx context.Context, lat float64, lon float64) (Region, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return Region{}, ErrMissingCredentials
	}

	query := url.Values{}
	query.Set("coords", strconv.FormatFloat(lon, 'f', -1, 64)+","+strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("output", "json")
	query.Set("orders", "legalcode")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+query.Encode(), nil)
	if err != nil {
		return Region{}, fmt.Errorf("can't create request: %w", err)
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.clientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Region{}, fmt.Errorf("can't do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Region{}, ErrUnauthorized
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Region{}, fmt.Errorf("can't read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Region{}, fmt.Errorf("server sent http error: %d, %s", resp.StatusCode, respBody)
	}

	var body reverseResponseBody
	err = json.Unmarshal(respBody, &body)
	if err != nil {
		return Region{}, fmt.Errorf("can't parse response body: %w, %s", err, respBody)
	}

	if body.Status.Code != 0 || len(body.Results) == 0 {
		return Region{}, fmt.Errorf("%w: status %d %s", ErrNoResults, body.Status.Code, body.Status.Name)
	}

	region := body.Results[0].Region
	return Region{
		Division:     region.Area2.Name,
		Neighborhood: region.Area3.Name,
	}, nil
}
