package model

import (
	"os"
	"path/filepath"
	"time"
)

// Output format variants. FormatAhmed reproduces the field mapping of the
// example dataset the project was asked to match.
const (
	FormatStandard = "standard"
	FormatAhmed    = "ahmed"
)

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	return name == FormatStandard || name == FormatAhmed
}

// Config holds the complete scraper configuration
type Config struct {
	BaseURL      string          `yaml:"base_url" mapstructure:"base_url"`
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	Scrape       ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig    `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls the fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Retries       int           `yaml:"retries" mapstructure:"retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ScrapeConfig controls the worker pool
type ScrapeConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls page caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig controls per-domain request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls where and how results are written.
// Passed explicitly to the aggregator; there is no ambient output state.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Format  string `yaml:"format" mapstructure:"format"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://mzalendo.com",
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxBodyBytes:  2_000_000,
			Retries:       3,
			RespectRobots: true,
		},
		Scrape: ScrapeConfig{
			Workers: 5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			Dir:    "kenyan_leaders_data",
			Format: FormatStandard,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "mzalendo")
	}
	return ".mzalendo-cache"
}
