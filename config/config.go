package config

import (
	"time"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/fetcher"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/resilience"
	"github.com/kbukum/lazyseq/validation"
	"github.com/kbukum/lazyseq/version"
)

// Config is the configuration of a program that consumes paged sources.
// Projects embed it in their own config structs:
//
//	type SyncConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Catalog       CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
//	}
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Paging      PagingConfig    `yaml:"paging" mapstructure:"paging"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Retry       RetryConfig     `yaml:"retry" mapstructure:"retry"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Bulkhead    BulkheadConfig  `yaml:"bulkhead" mapstructure:"bulkhead"`
	Breaker     BreakerConfig   `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// PagingConfig holds the arguments of lazy.FromPagedFetch.
type PagingConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`
	StartPage int `yaml:"start_page" mapstructure:"start_page" validate:"gte=0"`
	// MaxPages caps the number of fetches; zero means no cap.
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages" validate:"gte=0"`
}

// RetryConfig configures retries of failed page fetches.
type RetryConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff" validate:"gtefield=InitialBackoff"`
	BackoffFactor  float64       `yaml:"backoff_factor" mapstructure:"backoff_factor" validate:"gte=1"`
	Jitter         float64       `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
	// Timeout bounds each attempt; zero disables it.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// RateLimitConfig configures a token bucket in front of the page source.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Rate    float64 `yaml:"rate" mapstructure:"rate" validate:"gt=0"`
	Burst   int     `yaml:"burst" mapstructure:"burst" validate:"gte=1"`
}

// BulkheadConfig bounds concurrent fetches against the page source.
type BulkheadConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=1"`
	MaxWait       time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
}

// BreakerConfig configures a circuit breaker around the page source.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxFailures      int           `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=1"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls" validate:"gte=1"`
}

// TelemetryConfig configures OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"hostname_port"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval" validate:"gte=0"`
}

// ApplyDefaults fills every unset field.
// Override this in embedding structs and call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Paging.BatchSize == 0 {
		c.Paging.BatchSize = 100
	}
	c.Logging.ApplyDefaults()

	def := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = def.InitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = def.MaxBackoff
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = def.BackoffFactor
	}

	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}

	bh := resilience.DefaultBulkheadConfig("")
	if c.Bulkhead.MaxConcurrent == 0 {
		c.Bulkhead.MaxConcurrent = bh.MaxConcurrent
	}

	cb := resilience.DefaultCircuitBreakerConfig("")
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = cb.MaxFailures
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = cb.Timeout
	}
	if c.Breaker.HalfOpenMaxCalls == 0 {
		c.Breaker.HalfOpenMaxCalls = cb.HalfOpenMaxCalls
	}

	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	// An explicit zero rate cannot be told apart from unset; disable telemetry instead.
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.MetricInterval == 0 {
		c.Telemetry.MetricInterval = 15 * time.Second
	}
}

// Validate checks the struct tags and the logging section.
// Override this in embedding structs and call c.Config.Validate() first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return apperrors.Validation(err.Error()).WithCause(err)
	}
	return nil
}

// GetConfig returns the base Config. When embedded, the method is promoted
// so the embedding struct satisfies Loadable.
func (c *Config) GetConfig() *Config {
	return c
}

// Options returns the page options implied by the paging section.
func (p PagingConfig) Options() []lazy.PageOption {
	if p.MaxPages == 0 {
		return nil
	}
	return []lazy.PageOption{lazy.WithMaxPages(p.MaxPages)}
}

// ToResilience converts the retry section, or returns nil when retries are off.
func (r RetryConfig) ToResilience() *resilience.RetryConfig {
	if !r.Enabled {
		return nil
	}
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = r.MaxAttempts
	cfg.InitialBackoff = r.InitialBackoff
	cfg.MaxBackoff = r.MaxBackoff
	cfg.BackoffFactor = r.BackoffFactor
	cfg.Jitter = r.Jitter
	return &cfg
}

// ToResilience converts the rate limit section, or returns nil when it is off.
func (r RateLimitConfig) ToResilience(name string) *resilience.RateLimiterConfig {
	if !r.Enabled {
		return nil
	}
	cfg := resilience.DefaultRateLimiterConfig(name)
	cfg.Rate = r.Rate
	cfg.Burst = r.Burst
	return &cfg
}

// ToResilience converts the bulkhead section, or returns nil when it is off.
func (b BulkheadConfig) ToResilience(name string) *resilience.BulkheadConfig {
	if !b.Enabled {
		return nil
	}
	cfg := resilience.DefaultBulkheadConfig(name)
	cfg.MaxConcurrent = b.MaxConcurrent
	cfg.MaxWait = b.MaxWait
	return &cfg
}

// ToResilience converts the circuit breaker section, or returns nil when it is off.
func (b BreakerConfig) ToResilience(name string) *resilience.CircuitBreakerConfig {
	if !b.Enabled {
		return nil
	}
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.MaxFailures = b.MaxFailures
	cfg.Timeout = b.Timeout
	cfg.HalfOpenMaxCalls = b.HalfOpenMaxCalls
	return &cfg
}

// Resilience builds the fetcher policies for the named source.
func (c *Config) Resilience(source string) fetcher.ResilienceConfig {
	rc := fetcher.ResilienceConfig{
		RateLimiter:    c.RateLimit.ToResilience(source),
		Bulkhead:       c.Bulkhead.ToResilience(source),
		CircuitBreaker: c.Breaker.ToResilience(source),
		Retry:          c.Retry.ToResilience(),
	}
	if c.Retry.Enabled {
		rc.Timeout = c.Retry.Timeout
	}
	return rc
}

// InitLogger builds the logger described by the logging section and
// installs it as the global logger used by components given a nil logger.
func (c *Config) InitLogger() *logger.Logger {
	return logger.Init(c.Logging, c.Name)
}

// TracerConfig converts the telemetry section for observability.InitTracer.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: version.Get().Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// MeterConfig converts the telemetry section for observability.InitMeter.
func (c *Config) MeterConfig() observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: version.Get().Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		Interval:       c.Telemetry.MetricInterval,
	}
}
