package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Dynamo  DynamoConfig  `mapstructure:"dynamo"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output"`
}

// TracingConfig.Endpoint is the OTLP/HTTP collector base URL, scheme included.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type DynamoConfig struct {
	Table  string `mapstructure:"table"`
	Region string `mapstructure:"region"`
	// Endpoint overrides the resolved DynamoDB endpoint, e.g. DynamoDB Local.
	Endpoint string `mapstructure:"endpoint"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"app.name":             "APP_NAME",
	"app.environment":      "APP_ENV",
	"app.version":          "APP_VERSION",
	"log.level":            "LOG_LEVEL",
	"log.format":           "LOG_FORMAT",
	"log.output":           "LOG_OUTPUT",
	"tracing.enabled":      "TRACING_ENABLED",
	"tracing.service_name": "TRACING_SERVICE_NAME",
	"tracing.endpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
	"tracing.sample_rate":  "TRACING_SAMPLE_RATE",
	"dynamo.table":         "ORDERS_TABLE",
	"dynamo.region":        "AWS_REGION",
	"dynamo.endpoint":      "DYNAMODB_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "order-ingest")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.0.0")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "order-ingest")
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("dynamo.table", "orders")
	v.SetDefault("dynamo.region", "")
	v.SetDefault("dynamo.endpoint", "")
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Dynamo.Table) == "" {
		errs = append(errs, "ORDERS_TABLE must not be empty")
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or console, got %q", cfg.Log.Format))
	}

	if cfg.Tracing.Enabled {
		if u, err := url.Parse(cfg.Tracing.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("OTEL_EXPORTER_OTLP_ENDPOINT must be a URL such as http://localhost:4318, got %q", cfg.Tracing.Endpoint))
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			errs = append(errs, "TRACING_SAMPLE_RATE must be between 0 and 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
