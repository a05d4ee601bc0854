package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mishannn/landparser-go/internal/geo"
	"github.com/mishannn/landparser-go/internal/naverland"
	"github.com/mishannn/landparser-go/internal/summary"
)

const geocodePath = "/map-reversegeocode/v2/gc"

type fakeProvider struct {
	requests        atomic.Int32
	districtStatus  int
	geocodeStatus   int
	articleRequests atomic.Int32
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	switch r.URL.Path {
	case "/api/cortars":
		if f.districtStatus != 0 {
			w.WriteHeader(f.districtStatus)
			return
		}
		w.Write([]byte(`{
			"cortarNo": "1168010100",
			"cortarName": "역삼동",
			"divisionName": "강남구",
			"cortarZoom": 15,
			"cortarVertexLists": [[[37.50, 127.00], [37.50, 127.01], [37.51, 127.00], [37.51, 127.01]]]
		}`))
	case "/api/complexes/single-markers/2.0":
		w.Write([]byte(`[{"markerId": "12345", "latitude": 37.505, "longitude": 127.005, "complexName": "래미안", "completionYearMonth": "202001", "totalHouseholdCount": 500}]`))
	case geocodePath:
		if f.geocodeStatus != 0 {
			w.WriteHeader(f.geocodeStatus)
			return
		}
		w.Write([]byte(`{"status":{"code":0},"results":[{"region":{"area2":{"name":"강남구"},"area3":{"name":"역삼동"}}}]}`))
	case "/api/articles/complex/12345":
		f.articleRequests.Add(1)
		w.Write([]byte(`{"articleList":[{"articleNo":"2400001","articleName":"래미안","dealOrWarrantPrc":"10억 5,000","tradeTypeName":"매매","floorInfo":"5/15","areaName":"84A"}],"isMoreData":false}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestPipeline(t *testing.T, srv *httptest.Server, cache Cache) *Pipeline {
	t.Helper()

	cfg := Config{
		NaverLand: naverland.Config{
			BaseURL:           srv.URL,
			MinHouseholdCount: 300,
			MaxPages:          50,
		},
		GeocodeURL: srv.URL + geocodePath,
	}
	return NewPipeline(cfg, cache, zaptest.NewLogger(t))
}

var testCreds = Credentials{
	Headers:             map[string]string{"Authorization": "Bearer token"},
	Cookies:             map[string]string{"NNB": "cookie"},
	GeocodeClientID:     "id",
	GeocodeClientSecret: "secret",
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	provider := &fakeProvider{}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	p := newTestPipeline(t, srv, NewMemoryCache(DefaultCacheTTL, DefaultCacheEntries))

	result := p.Run(context.Background(), geo.Coordinate{Lat: 37.505, Lon: 127.005}, testCreds)

	assert.Equal(t, SignalNone, result.Signal)
	assert.Equal(t, "강남구 역삼동", result.DistrictName)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	require.NotNil(t, row.Year)
	require.NotNil(t, row.Units)
	assert.Equal(t, 2020, *row.Year)
	assert.Equal(t, 500, *row.Units)
	assert.Contains(t, row.Link, "complexes/12345?ms=37.505,127.005,15")

	rows := summary.Build(result.Rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Sale.Count)
	assert.Equal(t, 1_050_000_000.0, *rows[0].Sale.Mean)
}

func TestPipeline_Run_SendsCredentials(t *testing.T) {
	var (
		mu                 sync.Mutex
		gotAuth, gotCookie string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotAuth = r.Header.Get("Authorization")
		if c, err := r.Cookie("NNB"); err == nil {
			gotCookie = c.Value
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil)
	result := p.Run(context.Background(), geo.Coordinate{Lat: 37.5, Lon: 127.0}, testCreds)

	assert.Equal(t, SignalGenericError, result.Signal)
	assert.Equal(t, UnknownDistrict, result.DistrictName)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "cookie", gotCookie)
}

func TestPipeline_Run_AuthError(t *testing.T) {
	provider := &fakeProvider{geocodeStatus: http.StatusUnauthorized}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	p := newTestPipeline(t, srv, NewMemoryCache(DefaultCacheTTL, DefaultCacheEntries))
	coord := geo.Coordinate{Lat: 37.505, Lon: 127.005}

	result := p.Run(context.Background(), coord, testCreds)
	assert.Equal(t, SignalAuthError, result.Signal)
	assert.Empty(t, result.Rows)
	assert.Zero(t, provider.articleRequests.Load())

	before := provider.requests.Load()
	result = p.Run(context.Background(), coord, testCreds)
	assert.Equal(t, SignalAuthError, result.Signal)
	assert.Greater(t, provider.requests.Load(), before, "failed runs must not be cached")
}

func TestPipeline_Run_DistrictFailure(t *testing.T) {
	provider := &fakeProvider{districtStatus: http.StatusInternalServerError}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	p := newTestPipeline(t, srv, nil)
	result := p.Run(context.Background(), geo.Coordinate{Lat: 37.505, Lon: 127.005}, testCreds)

	assert.Equal(t, SignalGenericError, result.Signal)
	assert.Equal(t, UnknownDistrict, result.DistrictName)
	assert.Equal(t, int32(1), provider.requests.Load())
}

func TestPipeline_Run_UsesCache(t *testing.T) {
	provider := &fakeProvider{}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	p := newTestPipeline(t, srv, NewMemoryCache(DefaultCacheTTL, DefaultCacheEntries))
	coord := geo.Coordinate{Lat: 37.505, Lon: 127.005}

	first := p.Run(context.Background(), coord, testCreds)
	requests := provider.requests.Load()

	second := p.Run(context.Background(), coord, testCreds)
	assert.Equal(t, first, second)
	assert.Equal(t, requests, provider.requests.Load())
}

func TestPipeline_Run_ConcurrentCallsShareResult(t *testing.T) {
	provider := &fakeProvider{}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	p := newTestPipeline(t, srv, NewMemoryCache(DefaultCacheTTL, DefaultCacheEntries))
	coord := geo.Coordinate{Lat: 37.505, Lon: 127.005}

	var wg sync.WaitGroup
	results := make([]Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Run(context.Background(), coord, testCreds)
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		assert.Equal(t, SignalNone, result.Signal)
		assert.Len(t, result.Rows, 1)
	}
	assert.LessOrEqual(t, provider.articleRequests.Load(), int32(len(results)))
}
