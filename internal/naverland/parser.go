package naverland

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/geocode"
)

const (
	DefaultBaseURL = "https://new.land.naver.com"
	DefaultZoom    = 15

	realEstateType = "APT"
	priceType      = "RETAIL"
	emptyTagFilter = "::::::::"
	maxRangeValue  = "900000000"
)

type Geocoder interface {
	Reverse(ctx context.Context, lat float64, lon float64) (geocode.Region, error)
}

type Config struct {
	BaseURL                   string
	Zoom                      int
	MinHouseholdCount         int
	MaxPages                  int
	GeocodeDelay              time.Duration
	PageDelay                 time.Duration
	MaxWorkersCollectArticles int
	ClipToPolygon             bool
}

func DefaultConfig() Config {
	return Config{
		BaseURL:                   DefaultBaseURL,
		Zoom:                      DefaultZoom,
		MinHouseholdCount:         300,
		MaxPages:                  50,
		GeocodeDelay:              100 * time.Millisecond,
		PageDelay:                 50 * time.Millisecond,
		MaxWorkersCollectArticles: 1,
	}
}

type Parser struct {
	httpClient *http.Client
	geocoder   Geocoder
	logger     *zap.Logger
	cfg        Config
}

func NewParser(httpClient *http.Client, geocoder Geocoder, cfg Config, logger *zap.Logger) *Parser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Zoom <= 0 {
		cfg.Zoom = DefaultZoom
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.MaxWorkersCollectArticles < 1 {
		cfg.MaxWorkersCollectArticles = 1
	}

	return &Parser{
		httpClient: httpClient,
		geocoder:   geocoder,
		logger:     logger,
		cfg:        cfg,
	}
}

func (p *Parser) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("can't create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server sent http error: %d, %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
