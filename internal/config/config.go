package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

// Feed is one yearly flash export.
type Feed struct {
	Year   int    `yaml:"year"`
	Source string `yaml:"source"` // http(s) URL, file:// URL, or local path

	// Reference years are ingested and count towards the all-years heat map
	// and the sub-region maps, but get no per-year artifacts and stay out of
	// the hour and month charts.
	Reference bool `yaml:"reference"`
}

// SubRegion is a named area nested inside the main region.
type SubRegion struct {
	Name string       `yaml:"name"`
	Lat  domain.Range `yaml:"lat"`
	Lon  domain.Range `yaml:"lon"`
	View MapView      `yaml:"view"`
}

// Region returns the sub-region as an inclusive rectangle.
func (s SubRegion) Region() domain.Region {
	return domain.NewRegion(s.Lat, s.Lon)
}

// MapView positions an HTML map.
type MapView struct {
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	Zoom      float64 `yaml:"zoom"`
}

// Config holds all run settings: a YAML file merged over DefaultConfig,
// then overridden from environment variables.
type Config struct {
	Region     domain.Region `yaml:"region"`
	Feeds      []Feed        `yaml:"feeds"`
	SubRegions []SubRegion   `yaml:"sub_regions"`
	Map        MapView       `yaml:"map"`

	// Palette colors years in descending order on the dots and sub-region maps.
	Palette     []string `yaml:"palette"`
	DensityBins int      `yaml:"density_bins"`

	BoundaryPath string `yaml:"boundary_path"` // GeoJSON outline overlaid on every map
	OutputDir    string `yaml:"output_dir"`

	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	FeedCacheSize int           `yaml:"feed_cache_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	KafkaBrokers   []string `yaml:"kafka_brokers"`
	KafkaTopic     string   `yaml:"kafka_topic"`
	PushgatewayURL string   `yaml:"pushgateway_url"`
	MetricsFile    string   `yaml:"metrics_file"`
}

// ChartFeeds returns the feeds that get per-year artifacts, in config order.
func (c *Config) ChartFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if !f.Reference {
			out = append(out, f)
		}
	}
	return out
}

// PublishEnabled reports whether normalized strikes go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// DefaultConfig returns the Armenia analysis the tool was built for.
func DefaultConfig() *Config {
	return &Config{
		Region: domain.Region{LonMin: 43.45, LonMax: 47.17, LatMin: 38.84, LatMax: 41.3},
		Feeds: []Feed{
			{Year: 2018, Source: "https://lightning.nsstc.nasa.gov/isslisib/tmp/lisflashes-46.70.69.250.txt", Reference: true},
			{Year: 2019, Source: "https://lightning.nsstc.nasa.gov/isslisib/tmp/lisflashes-62.3.16.1.txt"},
			{Year: 2020, Source: "https://lightning.nsstc.nasa.gov/isslisib/tmp/lisflashes-46.71.128.123.txt"},
			{Year: 2021, Source: "https://lightning.nsstc.nasa.gov/isslisib/tmp/lisflashes-217.76.14.49.txt"},
			{Year: 2022, Source: "https://lightning.nsstc.nasa.gov/isslisib/tmp/lisflashes-141.136.79.228.txt"},
		},
		SubRegions: []SubRegion{
			{
				Name: "Armavir",
				Lat:  domain.Range{Min: 40, Max: 40.3},
				Lon:  domain.Range{Min: 43.6, Max: 44.6},
				View: MapView{CenterLat: 40.15446, CenterLon: 44.03815, Zoom: 10},
			},
		},
		Map:           MapView{CenterLat: 40, CenterLon: 45, Zoom: 7.5},
		Palette:       []string{"red", "blue", "orange", "green", "purple"},
		DensityBins:   100,
		OutputDir:     ".",
		FetchTimeout:  30 * time.Second,
		FeedCacheSize: 16,
		LogLevel:      "info",
		LogFormat:     "json",
		KafkaTopic:    "lightning-strikes",
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.LogLevel = sharedcfg.EnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = sharedcfg.EnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.OutputDir = sharedcfg.EnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.BoundaryPath = sharedcfg.EnvOrDefault("BOUNDARY_PATH", cfg.BoundaryPath)
	cfg.KafkaTopic = sharedcfg.EnvOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.PushgatewayURL = sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", cfg.PushgatewayURL)
	cfg.MetricsFile = sharedcfg.EnvOrDefault("METRICS_FILE", cfg.MetricsFile)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(v)
	}

	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return errors.New("invalid FETCH_TIMEOUT")
		}
		cfg.FetchTimeout = d
	}

	if v := os.Getenv("FEED_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.New("invalid FEED_CACHE_SIZE")
		}
		cfg.FeedCacheSize = n
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := c.Region.Validate(); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	if len(c.Feeds) == 0 {
		return errors.New("feeds: at least one feed is required")
	}

	seen := make(map[int]bool, len(c.Feeds))
	for i, f := range c.Feeds {
		if f.Source == "" {
			return fmt.Errorf("feeds[%d]: source is required", i)
		}
		if seen[f.Year] {
			return fmt.Errorf("feeds[%d]: duplicate year %d", i, f.Year)
		}
		seen[f.Year] = true
	}

	for i, s := range c.SubRegions {
		if s.Name == "" {
			return fmt.Errorf("sub_regions[%d]: name is required", i)
		}
		if err := s.Region().Validate(); err != nil {
			return fmt.Errorf("sub_regions[%d] %s: %w", i, s.Name, err)
		}
	}

	if len(c.Palette) == 0 {
		return errors.New("palette: at least one color is required")
	}
	if c.DensityBins <= 0 {
		return errors.New("density_bins must be positive")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}
	if c.FeedCacheSize <= 0 {
		return errors.New("FEED_CACHE_SIZE must be positive")
	}
	return nil
}
