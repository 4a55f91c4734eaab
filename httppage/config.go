package httppage

import (
	"time"

	"github.com/kbukum/lazyseq/validation"
)

// Config configures the page client.
type Config struct {
	// BaseURL is prepended to every endpoint path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// EnableHTTP2 configures the transport for HTTP/2 over TLS.
	EnableHTTP2 bool `yaml:"enable_http2" mapstructure:"enable_http2"`
	// UserAgent overrides version.UserAgent().
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Auth signs a bearer token for every request when set.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
}

// AuthConfig configures the HS256 bearer tokens sent by the client.
type AuthConfig struct {
	Secret  string        `yaml:"secret" mapstructure:"secret" validate:"required"`
	Subject string        `yaml:"subject" mapstructure:"subject"`
	Issuer  string        `yaml:"issuer" mapstructure:"issuer"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Auth != nil && c.Auth.TTL == 0 {
		c.Auth.TTL = 5 * time.Minute
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
