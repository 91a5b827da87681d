// internal/config/config.go

package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. Nested sections are read from
// variables prefixed with the section name, e.g. SERVER_PORT.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Timezone    string `envconfig:"TIMEZONE" default:"Asia/Tokyo"`

	Server     ServerConfig     `envconfig:"SERVER"`
	NATS       NATSConfig       `envconfig:"NATS"`
	Maps       MapsConfig       `envconfig:"GOOGLE_MAPS"`
	OpenAI     OpenAIConfig     `envconfig:"OPENAI"`
	Forecast   ForecastConfig   `envconfig:"FORECAST"`
	HTTPClient HTTPClientConfig `envconfig:"HTTP_CLIENT"`
	Session    SessionConfig    `envconfig:"SESSION"`
	Event      EventConfig      `envconfig:"EVENT"`
	Log        LogConfig        `envconfig:"LOG"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Port            int           `split_words:"true" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	CorsOrigins     []string      `split_words:"true" default:"*"`
}

// NATSConfig holds NATS configuration. An empty URL disables the event bus.
type NATSConfig struct {
	URL            string        `split_words:"true" default:"nats://localhost:4222"`
	MaxReconnects  int           `split_words:"true" default:"10"`
	ReconnectWait  time.Duration `split_words:"true" default:"1s"`
	ConnectTimeout time.Duration `split_words:"true" default:"2s"`
	EventsPrefix   string        `split_words:"true" default:"gathering.sessions"`
}

// MapsConfig holds Google Maps Platform configuration
type MapsConfig struct {
	APIKey   string `split_words:"true" required:"true" validate:"required"`
	Language string `split_words:"true" default:"ja"`
	BaseURL  string `split_words:"true"`
}

// OpenAIConfig holds chat completion configuration. Without an API key game
// suggestions report that they are not configured.
type OpenAIConfig struct {
	APIKey  string `split_words:"true"`
	Model   string `split_words:"true" default:"gpt-3.5-turbo"`
	BaseURL string `split_words:"true"`
}

// ForecastConfig holds weather forecast configuration
type ForecastConfig struct {
	BaseURL         string `split_words:"true" default:"https://weather.tsukumijima.net" validate:"url"`
	DefaultCityCode string `split_words:"true" default:"130010" validate:"numeric"`
}

// HTTPClientConfig holds settings shared by every outbound client
type HTTPClientConfig struct {
	Timeout time.Duration `split_words:"true" default:"10s" validate:"gt=0"`
}

// SessionConfig holds planning session configuration
type SessionConfig struct {
	TTL             time.Duration `split_words:"true" default:"24h" validate:"gt=0"`
	JanitorInterval time.Duration `split_words:"true" default:"1m" validate:"gt=0"`
}

// EventConfig holds defaults for the planned gathering
type EventConfig struct {
	StartTime       string `split_words:"true" default:"19:00" validate:"datetime=15:04"`
	DefaultLocation string `split_words:"true" default:"東京都"`
	SearchRadius    uint   `split_words:"true" default:"1000" validate:"min=1,max=50000"`
	VenueLimit      int    `split_words:"true" default:"5" validate:"min=1,max=20"`
	DetailWorkers   int    `split_words:"true" default:"5" validate:"min=1"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `split_words:"true" default:"info" validate:"oneof=debug info warn error"`
}

// Load loads configuration from a .env file, when present, and environment
// variables
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}

	return config, validate(config)
}

// Location returns the configured time zone
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// IsProduction reports whether the application runs in production
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// validate checks if config is valid
func validate(config Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := config.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", config.Timezone, err)
	}

	return nil
}
