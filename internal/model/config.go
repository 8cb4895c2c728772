package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Scan        ScanConfig        `yaml:"scan" json:"scan"`
	Providers   ProvidersConfig   `yaml:"providers" json:"providers"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// HTTPConfig controls the article fetcher and the provider fetch broker.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// ScanConfig controls candidate extraction.
type ScanConfig struct {
	// Limit caps the number of characters scanned from the article body.
	Limit int `yaml:"limit" json:"limit"`
	// MinYear / MaxYear bound the bare-year regex. The heuristic-precision
	// mode narrows MinYear to 1500.
	MinYear int `yaml:"min_year" json:"min_year"`
	MaxYear int `yaml:"max_year" json:"max_year"`
}

// ProvidersConfig controls the art-collection providers.
type ProvidersConfig struct {
	MetEnabled       bool          `yaml:"met_enabled" json:"met_enabled"`
	EuropeanaAPIKey  string        `yaml:"europeana_api_key,omitempty" json:"-"`
	YearPadding      int           `yaml:"year_padding" json:"year_padding"`
	PerProviderLimit int           `yaml:"per_provider_limit" json:"per_provider_limit"`
	CacheTTL         time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	MetBaseURL       string        `yaml:"met_base_url,omitempty" json:"met_base_url,omitempty"`
	EuropeanaBaseURL string        `yaml:"europeana_base_url,omitempty" json:"europeana_base_url,omitempty"`
}

// LLMConfig controls the optional LLM-backed candidate extractor.
type LLMConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key,omitempty" json:"-"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxPairs  int    `yaml:"max_pairs" json:"max_pairs"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// ConcurrencyConfig controls fan-out widths.
type ConcurrencyConfig struct {
	// ResolveWorkers bounds concurrent candidate resolutions in one scan.
	ResolveWorkers int `yaml:"resolve_workers" json:"resolve_workers"`
	// BatchWorkers bounds concurrent article scans in batch mode.
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`
}

// RateLimitConfig controls per-host provider request pacing.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	AnnotatedText bool `yaml:"annotated_text" json:"annotated_text"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "wiki-art-enhance/0.1 (+https://github.com/diegovillafuerte1/wiki-art-enhance)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Scan: ScanConfig{
			Limit:   12000,
			MinYear: 1000,
			MaxYear: 2099,
		},
		Providers: ProvidersConfig{
			MetEnabled:       true,
			YearPadding:      20,
			PerProviderLimit: 20,
			CacheTTL:         5 * time.Minute,
		},
		LLM: LLMConfig{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxPairs:  5,
			MaxTokens: 400,
		},
		Concurrency: ConcurrencyConfig{
			ResolveWorkers: 8,
			BatchWorkers:   4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			AnnotatedText: true,
		},
	}
}
