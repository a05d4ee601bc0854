package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/mishannn/landparser-go/internal/geocode"
	"github.com/mishannn/landparser-go/internal/naverland"
	"github.com/mishannn/landparser-go/internal/pipeline"
	"github.com/mishannn/landparser-go/internal/session"
)

const (
	EnvHeaders         = "NAVER_API_ALL_HEADERS_JSON"
	EnvCookies         = "NAVER_API_COOKIES_JSON"
	EnvClientID        = "NAVER_CLIENT_ID"
	EnvClientSecret    = "NAVER_CLIENT_SECRET"
	defaultHTTPTimeout = 30 * time.Second
)

type Config struct {
	NaverLand struct {
		BaseURL                   string        `yaml:"base_url"`
		Zoom                      int           `yaml:"zoom"`
		MinHouseholdCount         int           `yaml:"min_household_count"`
		MaxPages                  int           `yaml:"max_pages"`
		GeocodeDelay              time.Duration `yaml:"geocode_delay"`
		PageDelay                 time.Duration `yaml:"page_delay"`
		MaxWorkersCollectArticles int           `yaml:"max_workers_collect_articles"`
		ClipToPolygon             bool          `yaml:"clip_to_polygon"`
	} `yaml:"naverland"`
	Geocode struct {
		URL string `yaml:"url"`
	} `yaml:"geocode"`
	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl"`
		MaxEntries int           `yaml:"max_entries"`
	} `yaml:"cache"`
	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Server struct {
		Address       string        `yaml:"address"`
		Debounce      time.Duration `yaml:"debounce"`
		MaxSelections int           `yaml:"max_selections"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Database struct {
		Address  string `yaml:"address"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"database"`
	Sheets struct {
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		Range           string `yaml:"range"`
	} `yaml:"sheets"`

	Credentials pipeline.Credentials `yaml:"-"`
}

// Load reads the YAML config at configPath (an empty path means defaults only) and the provider
// credentials from the environment, loading envFile first when it exists.
func Load(configPath string, envFile string) (*Config, error) {
	config := &Config{}

	if configPath != "" {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("can't open config file: %w", err)
		}
		defer file.Close()

		d := yaml.NewDecoder(file)

		if err := d.Decode(config); err != nil {
			return nil, fmt.Errorf("can't parse config file: %w", err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("can't load env file: %w", err)
			}
		}
	}

	creds, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}
	config.Credentials = creds

	config.applyDefaults()

	return config, nil
}

func decodeEnvMap(name string) (map[string]string, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return map[string]string{}, nil
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("can't decode %s: %w", name, err)
	}
	return m, nil
}

func credentialsFromEnv() (pipeline.Credentials, error) {
	headers, err := decodeEnvMap(EnvHeaders)
	if err != nil {
		return pipeline.Credentials{}, err
	}

	cookies, err := decodeEnvMap(EnvCookies)
	if err != nil {
		return pipeline.Credentials{}, err
	}

	return pipeline.Credentials{
		Headers:             headers,
		Cookies:             cookies,
		GeocodeClientID:     os.Getenv(EnvClientID),
		GeocodeClientSecret: os.Getenv(EnvClientSecret),
	}, nil
}

func (c *Config) applyDefaults() {
	defaults := naverland.DefaultConfig()

	nl := &c.NaverLand
	if nl.BaseURL == "" {
		nl.BaseURL = defaults.BaseURL
	}
	if nl.Zoom <= 0 {
		nl.Zoom = defaults.Zoom
	}
	if nl.MinHouseholdCount <= 0 {
		nl.MinHouseholdCount = defaults.MinHouseholdCount
	}
	if nl.MaxPages <= 0 {
		nl.MaxPages = defaults.MaxPages
	}
	if nl.GeocodeDelay <= 0 {
		nl.GeocodeDelay = defaults.GeocodeDelay
	}
	if nl.PageDelay <= 0 {
		nl.PageDelay = defaults.PageDelay
	}
	if nl.MaxWorkersCollectArticles <= 0 {
		nl.MaxWorkersCollectArticles = defaults.MaxWorkersCollectArticles
	}

	if c.Geocode.URL == "" {
		c.Geocode.URL = geocode.DefaultURL
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = defaultHTTPTimeout
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = pipeline.DefaultCacheTTL
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = pipeline.DefaultCacheEntries
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.Debounce <= 0 {
		c.Server.Debounce = session.DefaultDebounce
	}
	if c.Server.MaxSelections <= 0 {
		c.Server.MaxSelections = session.DefaultMaxSelections
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		NaverLand: naverland.Config{
			BaseURL:                   c.NaverLand.BaseURL,
			Zoom:                      c.NaverLand.Zoom,
			MinHouseholdCount:         c.NaverLand.MinHouseholdCount,
			MaxPages:                  c.NaverLand.MaxPages,
			GeocodeDelay:              c.NaverLand.GeocodeDelay,
			PageDelay:                 c.NaverLand.PageDelay,
			MaxWorkersCollectArticles: c.NaverLand.MaxWorkersCollectArticles,
			ClipToPolygon:             c.NaverLand.ClipToPolygon,
		},
		GeocodeURL:  c.Geocode.URL,
		HTTPTimeout: c.HTTP.Timeout,
	}
}
