package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type GeocodeConfig struct {
	BaseURL     string        `validate:"required,url"`
	Country     string        `validate:"omitempty,len=2"`
	Timeout     time.Duration `validate:"gt=0"`
	MaxAttempts int           `validate:"min=1,max=10"`
	Interval    time.Duration `validate:"gte=0"`
	Workers     int           `validate:"min=1,max=32"`
}

type ObservabilityConfig struct {
	ServiceName  string `validate:"required"`
	OTLPEndpoint string
	MetricsAddr  string `validate:"required"`
	PprofAddr    string
	PprofEnabled bool
}

type Config struct {
	AppEnv        string `validate:"required"`
	ServerPort    string `validate:"required,numeric"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	Observability ObservabilityConfig
	Geocode       GeocodeConfig
}

// Load reads .env files for the current APP_ENV (if present) and builds the
// configuration from the environment. Real environment variables always win
// over .env; .env.<APP_ENV> overrides .env.
func Load() (*Config, error) {
	appEnv := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if appEnv == "" {
		appEnv = "local"
	}
	LoadDotEnv(appEnv)
	return FromEnv(appEnv)
}

// LoadDotEnv loads .env and .env.<appEnv> without overriding variables that are
// already exported in the process environment.
func LoadDotEnv(appEnv string) {
	exported := make(map[string]bool)
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok {
			exported[k] = true
		}
	}

	_ = godotenv.Load(".env")
	specific, err := godotenv.Read(".env." + appEnv)
	if err != nil {
		return
	}
	for k, v := range specific {
		if !exported[k] {
			_ = os.Setenv(k, v)
		}
	}
}

// FromEnv builds and validates a Config from the current process environment.
func FromEnv(appEnv string) (*Config, error) {
	cfg := &Config{
		AppEnv:     appEnv,
		ServerPort: getEnvOrDefault("SERVER_PORT", getEnvOrDefault("PORT", "8091")),
		LogLevel:   strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "aid-map"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		},
		Geocode: GeocodeConfig{
			BaseURL: getEnvOrDefault("MAPBOX_GEOCODE_URL", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
			Country: getEnvOrDefault("MAPBOX_GEOCODE_COUNTRY", "US"),
		},
	}

	var err error
	if cfg.Observability.PprofEnabled, err = getBool("PPROF_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Geocode.Timeout, err = getDuration("MAPBOX_GEOCODE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Geocode.Interval, err = getDuration("MAPBOX_GEOCODE_INTERVAL", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Geocode.MaxAttempts, err = getInt("MAPBOX_GEOCODE_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.Geocode.Workers, err = getInt("GEOCODE_WORKERS", 1); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct constraints. Callers that override fields after
// loading, such as CLI flags, run it again.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local" || c.AppEnv == "localhost"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
	}
	return d, nil
}
