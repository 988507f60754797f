// Package config provides configuration loading and validation for the
// analytics API server. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the analytics API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// CORSOrigins lists dashboard origins allowed to call the API from the
	// browser. Empty disables CORS handling.
	CORSOrigins []string `koanf:"cors_origins"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Voice telemetry logs: either a local directory or an S3 bucket.
	// When both are set the S3 source wins.
	TelemetryDir string `koanf:"telemetry_dir"`

	TelemetryS3Bucket    string `koanf:"telemetry_s3_bucket"`
	TelemetryS3Prefix    string `koanf:"telemetry_s3_prefix"`
	TelemetryS3Region    string `koanf:"telemetry_s3_region"`
	TelemetryS3AccessKey string `koanf:"telemetry_s3_access_key"`
	TelemetryS3SecretKey string `koanf:"telemetry_s3_secret_key"`
	TelemetryS3Endpoint  string `koanf:"telemetry_s3_endpoint"`

	// Distributed tracing (OTLP). Disabled by default.
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingExporter   string  `koanf:"tracing_exporter"`
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
	TracingInsecure   bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL     = errors.New("DATABASE_URL is required")
	ErrMissingTelemetrySource = errors.New("TELEMETRY_DIR or a complete telemetry S3 configuration is required")
	ErrIncompleteS3Config     = errors.New("telemetry S3 configuration requires bucket, access key and secret key")
	ErrInvalidPort            = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultTracingSampleRate = 1.0
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid). If a config file path is provided and the file cannot be loaded,
// an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try KINOLEARN_PORT first, then PORT for container defaults
	port, portErr := getEnvIntOrDefaultMulti([]string{"KINOLEARN_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                 port,
		Env:                  getEnvOrDefaultMulti([]string{"KINOLEARN_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		CORSOrigins:          getEnvListOrKoanf("CORS_ORIGINS", k, "cors_origins"),
		DatabaseURL:          getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		TelemetryDir:         getEnvOrKoanf("TELEMETRY_DIR", k, "telemetry_dir"),
		TelemetryS3Bucket:    getEnvOrKoanf("TELEMETRY_S3_BUCKET", k, "telemetry_s3_bucket"),
		TelemetryS3Prefix:    getEnvOrKoanf("TELEMETRY_S3_PREFIX", k, "telemetry_s3_prefix"),
		TelemetryS3Region:    getEnvOrKoanf("TELEMETRY_S3_REGION", k, "telemetry_s3_region"),
		TelemetryS3AccessKey: getEnvOrKoanf("TELEMETRY_S3_ACCESS_KEY", k, "telemetry_s3_access_key"),
		TelemetryS3SecretKey: getEnvOrKoanf("TELEMETRY_S3_SECRET_KEY", k, "telemetry_s3_secret_key"),
		TelemetryS3Endpoint:  getEnvOrKoanf("TELEMETRY_S3_ENDPOINT", k, "telemetry_s3_endpoint"),
		TracingEnabled:       getEnvBoolOrKoanf("TRACING_ENABLED", k, "tracing_enabled"),
		TracingExporter:      getEnvOrKoanf("TRACING_EXPORTER", k, "tracing_exporter"),
		OTLPEndpoint:         getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		TracingSampleRate:    getEnvFloatOrKoanf("TRACING_SAMPLE_RATE", k, "tracing_sample_rate", DefaultTracingSampleRate),
		TracingInsecure:      getEnvBoolOrKoanf("TRACING_INSECURE", k, "tracing_insecure"),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvListOrKoanf returns a comma-separated environment list if set,
// otherwise the koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		var origins []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return origins
	}
	return k.Strings(koanfKey)
}

// getEnvBoolOrKoanf returns the environment variable parsed as a boolean if
// set, otherwise the koanf value. Unparseable values are treated as false.
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) bool {
	if val := os.Getenv(envKey); val != "" {
		b, err := strconv.ParseBool(val)
		return err == nil && b
	}
	return k.Bool(koanfKey)
}

// getEnvFloatOrKoanf returns the environment variable parsed as a float if
// set, otherwise the koanf value, or the default when neither is set.
func getEnvFloatOrKoanf(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) float64 {
	if val := os.Getenv(envKey); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey)
	}
	return defaultVal
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// UseS3Telemetry reports whether the telemetry reader should use the S3
// source instead of the local directory.
func (c *Config) UseS3Telemetry() bool {
	return c.TelemetryS3Bucket != ""
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}

	if c.TelemetryDir == "" && c.TelemetryS3Bucket == "" {
		errs = append(errs, ErrMissingTelemetrySource)
	}

	// S3 settings are all-or-nothing once any of them is set.
	if c.TelemetryS3Bucket != "" || c.TelemetryS3AccessKey != "" || c.TelemetryS3SecretKey != "" {
		if c.TelemetryS3Bucket == "" || c.TelemetryS3AccessKey == "" || c.TelemetryS3SecretKey == "" {
			errs = append(errs, ErrIncompleteS3Config)
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                    fmt.Sprintf("%d", c.Port),
		"env":                     c.Env,
		"cors_origins":            strings.Join(c.CORSOrigins, ","),
		"database_url":            maskDatabaseURL(c.DatabaseURL),
		"telemetry_dir":           c.TelemetryDir,
		"telemetry_s3_bucket":     c.TelemetryS3Bucket,
		"telemetry_s3_prefix":     c.TelemetryS3Prefix,
		"telemetry_s3_region":     c.TelemetryS3Region,
		"telemetry_s3_access_key": maskSecret(c.TelemetryS3AccessKey),
		"telemetry_s3_secret_key": maskSecret(c.TelemetryS3SecretKey),
		"telemetry_s3_endpoint":   c.TelemetryS3Endpoint,
		"tracing_enabled":         strconv.FormatBool(c.TracingEnabled),
		"otlp_endpoint":           c.OTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a database URL.
// Supports both postgres:// and postgresql:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
