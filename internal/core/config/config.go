package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// PostgresURL is the connection string for the fleet database.
	PostgresURL string `mapstructure:"POSTGRES_URL" required:"true"`
	// RedisURL is the connection string for the cache/dedup store.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`

	// Tracking holds ingestion and metric tunables.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Sync holds the external system-of-record configuration.
	Sync SyncConfig `mapstructure:",squash"`
}

// TrackingConfig holds ingestion validation and metric parameters.
type TrackingConfig struct {
	// MaxFutureSkewMin is how far ahead of the server clock a client
	// timestamp may be before the sample is rejected.
	MaxFutureSkewMin int `mapstructure:"MAX_FUTURE_SKEW_MIN" default:"5"`
	// FuelEfficiencyKmpl is the fleet-default fuel efficiency snapshot
	// stamped on samples that do not carry their own.
	FuelEfficiencyKmpl float64 `mapstructure:"FUEL_EFFICIENCY_KMPL" default:"40"`
	// FuelPricePerLitre is the fleet-default fuel price snapshot.
	FuelPricePerLitre float64 `mapstructure:"FUEL_PRICE_PER_LITRE" default:"102.5"`
	// LowBatteryThreshold is the battery percentage below which a sample
	// counts as a low-battery warning on its session.
	LowBatteryThreshold int `mapstructure:"LOW_BATTERY_THRESHOLD" default:"20"`
	// DedupTTLSec is how long an ingest idempotency key is remembered.
	DedupTTLSec int `mapstructure:"DEDUP_TTL_SEC" default:"86400"`
	// AggregateCacheTTLSec is how long daily analytics rollups are cached.
	AggregateCacheTTLSec int `mapstructure:"AGGREGATE_CACHE_TTL_SEC" default:"60"`
}

// SyncConfig holds the configuration for pushing records to the external
// system of record.
type SyncConfig struct {
	// URL is the base URL of the external API. Empty disables the reconciler.
	URL string `mapstructure:"SYNC_URL"`
	// APIKey authenticates pushes to the external API.
	APIKey string `mapstructure:"SYNC_API_KEY"`
	// IntervalSec is how often the reconciler drains pending records.
	IntervalSec int `mapstructure:"SYNC_INTERVAL_SEC" default:"30"`
	// MaxAttempts is the retry cap before a record is abandoned for
	// manual follow-up.
	MaxAttempts int `mapstructure:"SYNC_MAX_ATTEMPTS" default:"5"`
	// BatchSize is how many pending records are pushed per round trip.
	BatchSize int `mapstructure:"SYNC_BATCH_SIZE" default:"50"`
	// TimeoutSec bounds each external call.
	TimeoutSec int `mapstructure:"SYNC_TIMEOUT_SEC" default:"10"`
	// BackoffBaseSec is the base of the exponential retry backoff.
	BackoffBaseSec int `mapstructure:"SYNC_BACKOFF_BASE_SEC" default:"60"`
}

// Interval returns the reconciler drain interval as a duration.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// Timeout returns the external call timeout as a duration.
func (c SyncConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// BackoffBase returns the retry backoff base as a duration.
func (c SyncConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSec) * time.Second
}

// MaxFutureSkew returns the accepted clock skew as a duration.
func (c TrackingConfig) MaxFutureSkew() time.Duration {
	return time.Duration(c.MaxFutureSkewMin) * time.Minute
}

// DedupTTL returns the idempotency-key lifetime as a duration.
func (c TrackingConfig) DedupTTL() time.Duration {
	return time.Duration(c.DedupTTLSec) * time.Second
}

// AggregateCacheTTL returns the analytics cache lifetime as a duration.
func (c TrackingConfig) AggregateCacheTTL() time.Duration {
	return time.Duration(c.AggregateCacheTTLSec) * time.Second
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
