package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinDaysToQuery = 1
	MinMaxAttempts = 1

	// Default values
	DefaultMaxAttempts   = 10
	DefaultRetryDelay    = 300 // seconds between attempts
	DefaultDaysToQuery   = 7
	DefaultEndDateOffset = 0
	DefaultGranularity   = "daily"
	DefaultLogLevel      = "info"
	DefaultAPITimeout    = 60 // per-call provider API timeout in seconds
	DefaultStoragePrefix = "cost-reports"
)

// AWSConfig holds AWS Cost Explorer credentials and query options.
// Credentials are explicit fields so fetch logic never reads ambient
// environment state.
type AWSConfig struct {
	Enabled         bool     `yaml:"enabled"`
	AccessKeyID     string   `yaml:"access_key_id"`
	SecretAccessKey string   `yaml:"secret_access_key"`
	Region          string   `yaml:"region"`
	Endpoint        string   `yaml:"endpoint"` // override for tests / gateways
	GroupByTags     []string `yaml:"group_by_tags"`
}

// AzureConfig holds Azure Cost Management credentials and scope
type AzureConfig struct {
	Enabled          bool   `yaml:"enabled"`
	TenantID         string `yaml:"tenant_id"`
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	SubscriptionID   string `yaml:"subscription_id"`
	SubscriptionName string `yaml:"subscription_name"`
}

// StorageConfig selects and configures the snapshot object store
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "s3" or "local"
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	LocalRoot string `yaml:"local_root"`
}

// RetryConfig controls the per-provider retry loop. The delay is fixed, not
// exponential: provider billing APIs recover on human-scale windows and the
// job runs unattended, so simplicity wins over adaptive throttling.
type RetryConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

// CollectionConfig controls the cost-query window
type CollectionConfig struct {
	DaysToQuery   int    `yaml:"days_to_query"`
	EndDateOffset *int   `yaml:"end_date_offset"` // Pointer to distinguish between 0 and unset
	Granularity   string `yaml:"granularity"`
}

// Config represents the application configuration
type Config struct {
	AWS        AWSConfig        `yaml:"aws"`
	Azure      AzureConfig      `yaml:"azure"`
	Storage    StorageConfig    `yaml:"storage"`
	Retry      RetryConfig      `yaml:"retry"`
	Collection CollectionConfig `yaml:"collection"`

	PushgatewayURL string `yaml:"pushgateway_url"`
	LogLevel       string `yaml:"log_level"`
	APITimeout     int    `yaml:"api_timeout"` // seconds
}

// Load loads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 -- Config file path is provided by administrator via CLI flag, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Retry.DelaySeconds == 0 {
		cfg.Retry.DelaySeconds = DefaultRetryDelay
	}
	if cfg.Collection.DaysToQuery == 0 {
		cfg.Collection.DaysToQuery = DefaultDaysToQuery
	}
	// Only apply default if EndDateOffset is nil (not set), not if it's explicitly 0
	if cfg.Collection.EndDateOffset == nil {
		offset := DefaultEndDateOffset
		cfg.Collection.EndDateOffset = &offset
	}
	if cfg.Collection.Granularity == "" {
		cfg.Collection.Granularity = DefaultGranularity
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "s3"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultStoragePrefix
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration.
// Credentials use the standard provider variable names so Kubernetes secret
// injection works without remapping; collector knobs use the COST_COLLECTOR_
// prefix.
func applyEnvOverrides(cfg *Config) error {
	// AWS credentials
	if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
		cfg.AWS.AccessKeyID = val
	}
	if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
		cfg.AWS.SecretAccessKey = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.AWS.Region = val
	}

	// Azure credentials
	if val := os.Getenv("AZURE_TENANT_ID"); val != "" {
		cfg.Azure.TenantID = val
	}
	if val := os.Getenv("AZURE_CLIENT_ID"); val != "" {
		cfg.Azure.ClientID = val
	}
	if val := os.Getenv("AZURE_CLIENT_SECRET"); val != "" {
		cfg.Azure.ClientSecret = val
	}
	if val := os.Getenv("AZURE_SUBSCRIPTION_ID"); val != "" {
		cfg.Azure.SubscriptionID = val
	}

	// Object store credentials
	if val := os.Getenv("MINIO_ENDPOINT"); val != "" {
		cfg.Storage.Endpoint = val
	}
	if val := os.Getenv("MINIO_ACCESS_KEY"); val != "" {
		cfg.Storage.AccessKey = val
	}
	if val := os.Getenv("MINIO_SECRET_KEY"); val != "" {
		cfg.Storage.SecretKey = val
	}
	if val := os.Getenv("MINIO_BUCKET"); val != "" {
		cfg.Storage.Bucket = val
	}

	// Collector knobs
	if val := os.Getenv("COST_COLLECTOR_MAX_ATTEMPTS"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_COLLECTOR_MAX_ATTEMPTS: must be an integer, got %q", val)
		}
		cfg.Retry.MaxAttempts = i
	}
	if val := os.Getenv("COST_COLLECTOR_RETRY_DELAY"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_COLLECTOR_RETRY_DELAY: must be an integer, got %q", val)
		}
		cfg.Retry.DelaySeconds = i
	}
	if val := os.Getenv("COST_COLLECTOR_DAYS_TO_QUERY"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_COLLECTOR_DAYS_TO_QUERY: must be an integer, got %q", val)
		}
		cfg.Collection.DaysToQuery = i
	}
	if val := os.Getenv("COST_COLLECTOR_END_DATE_OFFSET"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_COLLECTOR_END_DATE_OFFSET: must be an integer, got %q", val)
		}
		cfg.Collection.EndDateOffset = &i
	}
	if val := os.Getenv("COST_COLLECTOR_PUSHGATEWAY_URL"); val != "" {
		cfg.PushgatewayURL = val
	}
	if val := os.Getenv("COST_COLLECTOR_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if !cfg.AWS.Enabled && !cfg.Azure.Enabled {
		return fmt.Errorf("no providers enabled")
	}

	if cfg.AWS.Enabled {
		if cfg.AWS.AccessKeyID == "" || cfg.AWS.SecretAccessKey == "" {
			return fmt.Errorf("aws enabled but credentials missing (access_key_id / secret_access_key)")
		}
		if cfg.AWS.Region == "" {
			return fmt.Errorf("aws enabled but region missing")
		}
	}

	if cfg.Azure.Enabled {
		if cfg.Azure.TenantID == "" || cfg.Azure.ClientID == "" || cfg.Azure.ClientSecret == "" {
			return fmt.Errorf("azure enabled but credentials missing (tenant_id / client_id / client_secret)")
		}
		if cfg.Azure.SubscriptionID == "" {
			return fmt.Errorf("azure enabled but subscription_id missing")
		}
	}

	switch cfg.Storage.Backend {
	case "s3":
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage backend s3 requires a bucket")
		}
	case "local":
		if cfg.Storage.LocalRoot == "" {
			return fmt.Errorf("storage backend local requires local_root")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Retry.MaxAttempts < MinMaxAttempts {
		return fmt.Errorf("retry.max_attempts must be at least %d, got %d", MinMaxAttempts, cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.DelaySeconds < 0 {
		return fmt.Errorf("retry.delay_seconds cannot be negative, got %d", cfg.Retry.DelaySeconds)
	}

	if cfg.Collection.DaysToQuery < MinDaysToQuery {
		return fmt.Errorf("collection.days_to_query must be at least %d", MinDaysToQuery)
	}
	if cfg.Collection.EndDateOffset != nil && *cfg.Collection.EndDateOffset < 0 {
		return fmt.Errorf("collection.end_date_offset cannot be negative, got %d", *cfg.Collection.EndDateOffset)
	}
	if cfg.Collection.Granularity != "daily" && cfg.Collection.Granularity != "monthly" {
		return fmt.Errorf("collection.granularity must be daily or monthly, got %q", cfg.Collection.Granularity)
	}

	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}
	if cfg.APITimeout > 300 {
		return fmt.Errorf("api_timeout should not exceed 300 seconds (5 minutes), got %d", cfg.APITimeout)
	}

	return nil
}
