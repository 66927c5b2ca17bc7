package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mcclellann/welfare/pkg/logger"
)

// ID strategies for record identifiers.
const (
	IDStrategyUUID     = "uuid"
	IDStrategySequence = "sequence"
)

// Config holds every setting of the service. Nothing else reads the environment.
type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR,default=:8080"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	SeedFixtures bool   `env:"SEED_FIXTURES,default=true"`
	IDStrategy   string `env:"ID_STRATEGY,default=uuid"`

	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	InsightsTimeout time.Duration `env:"INSIGHTS_TIMEOUT,default=30s"`

	AMQPURL        string `env:"AMQP_URL"`
	AMQPExchange   string `env:"AMQP_EXCHANGE,default=welfare"`
	AMQPRoutingKey string `env:"AMQP_ROUTING_KEY,default=ledger.events"`

	ExportPath     string `env:"EXPORT_PATH"`
	MetricsEnabled bool   `env:"METRICS_ENABLED,default=true"`
}

// Load reads an optional .env file at path and maps the environment onto a Config.
// A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load configuration file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, fmt.Errorf("map environment onto configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if _, port, err := net.SplitHostPort(c.HTTPAddr); err != nil || port == "" {
		errors = append(errors, fmt.Sprintf("invalid HTTP address '%s': must be host:port", c.HTTPAddr))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.IDStrategy != IDStrategyUUID && c.IDStrategy != IDStrategySequence {
		errors = append(errors, fmt.Sprintf("invalid id strategy '%s': must be %s or %s", c.IDStrategy, IDStrategyUUID, IDStrategySequence))
	}

	if c.InsightsTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid insights timeout %v: must be positive", c.InsightsTimeout))
	} else if c.InsightsTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid insights timeout %v: must be at most 5 minutes", c.InsightsTimeout))
	}
	if c.GeminiAPIKey != "" && c.GeminiModel == "" {
		errors = append(errors, "Gemini model cannot be empty when an API key is provided")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
