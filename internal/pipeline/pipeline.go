package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mishannn/landparser-go/internal/geo"
	"github.com/mishannn/landparser-go/internal/geocode"
	"github.com/mishannn/landparser-go/internal/httpclient"
	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/metrics"
	"github.com/mishannn/landparser-go/internal/naverland"
)

// UnknownDistrict is the display name used when the district lookup fails.
const UnknownDistrict = "Unknown"

type Signal string

const (
	SignalNone         Signal = "NONE"
	SignalAuthError    Signal = "AUTH_ERROR"
	SignalGenericError Signal = "GENERIC_ERROR"
)

// Credentials are supplied by the caller on every run and never stored by the pipeline.
type Credentials struct {
	Headers             map[string]string `json:"headers"`
	Cookies             map[string]string `json:"cookies"`
	GeocodeClientID     string            `json:"geocodeClientId"`
	GeocodeClientSecret string            `json:"geocodeClientSecret"`
}

type Result struct {
	RunID        string        `json:"runId"`
	Rows         []listing.Row `json:"rows"`
	DistrictName string        `json:"districtName"`
	Signal       Signal        `json:"signal"`
}

type Config struct {
	NaverLand   naverland.Config
	GeocodeURL  string
	HTTPTimeout time.Duration
}

type Pipeline struct {
	cfg    Config
	cache  Cache
	group  singleflight.Group
	logger *zap.Logger
}

func NewPipeline(cfg Config, cache Cache, logger *zap.Logger) *Pipeline {
	if cfg.NaverLand.Zoom <= 0 {
		cfg.NaverLand.Zoom = naverland.DefaultZoom
	}
	if cache == nil {
		cache = NewMemoryCache(DefaultCacheTTL, DefaultCacheEntries)
	}

	return &Pipeline{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

func cacheKey(coord geo.Coordinate) string {
	return coord.String()
}

// Run scrapes listings around coord. Identical concurrent calls share one scrape and successful
// results are reused for the cache TTL.
func (p *Pipeline) Run(ctx context.Context, coord geo.Coordinate, creds Credentials) Result {
	key := cacheKey(coord)

	cached, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("can't read pipeline cache", zap.String("key", key), zap.Error(err))
	}
	if ok {
		metrics.PipelineCacheRequests.WithLabelValues("hit").Inc()
		return cached
	}
	metrics.PipelineCacheRequests.WithLabelValues("miss").Inc()

	v, _, _ := p.group.Do(key, func() (any, error) {
		result := p.run(ctx, coord, creds)
		if result.Signal == SignalNone {
			if err := p.cache.Set(ctx, key, result); err != nil {
				p.logger.Warn("can't write pipeline cache", zap.String("key", key), zap.Error(err))
			}
		}
		return result, nil
	})

	return v.(Result)
}

func districtName(district *naverland.District) string {
	if district.DivisionName == "" || district.CortarName == "" {
		return UnknownDistrict
	}
	return district.DisplayName()
}

func (p *Pipeline) run(ctx context.Context, coord geo.Coordinate, creds Credentials) (result Result) {
	started := time.Now()
	result.RunID = uuid.NewString()
	logger := p.logger.With(zap.String("runId", result.RunID), zap.Stringer("coordinate", coord))

	defer func() {
		signal := string(result.Signal)
		metrics.PipelineRuns.WithLabelValues(signal).Inc()
		metrics.PipelineRunDuration.WithLabelValues(signal).Observe(time.Since(started).Seconds())
		logger.Info("pipeline run finished",
			zap.String("signal", signal),
			zap.String("district", result.DistrictName),
			zap.Int("rows", len(result.Rows)),
			zap.Duration("duration", time.Since(started)))
	}()

	geocodeClient := geocode.NewClient(
		httpclient.New(nil, nil, p.cfg.HTTPTimeout),
		p.cfg.GeocodeURL,
		creds.GeocodeClientID,
		creds.GeocodeClientSecret,
	)
	parser := naverland.NewParser(
		httpclient.New(creds.Headers, creds.Cookies, p.cfg.HTTPTimeout),
		geocodeClient,
		p.cfg.NaverLand,
		logger,
	)

	district, err := parser.GetDistrict(ctx, coord, p.cfg.NaverLand.Zoom)
	if err != nil {
		logger.Error("can't resolve district", zap.Error(err))
		result.DistrictName = UnknownDistrict
		result.Signal = SignalGenericError
		return result
	}
	result.DistrictName = districtName(district)

	markers, err := parser.GetMarkers(ctx, district)
	if errors.Is(err, geocode.ErrUnauthorized) {
		logger.Error("geocoding credentials rejected", zap.Error(err))
		result.Signal = SignalAuthError
		return result
	}
	if err != nil {
		logger.Error("can't get markers", zap.Error(err))
		result.Signal = SignalGenericError
		return result
	}

	articles, err := parser.GetArticles(ctx, markers)
	if err != nil {
		logger.Error("can't get articles", zap.Error(err))
		result.Signal = SignalGenericError
		return result
	}
	metrics.ListingsCollected.Add(float64(len(articles)))

	result.Rows = listing.Normalize(articles)
	result.Signal = SignalNone
	return result
}
