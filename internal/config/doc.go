// Package config provides configuration management for the cloud cost collector.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Provider and store credentials use the standard variable names so
// Kubernetes secret injection works directly:
//   - AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION
//   - AZURE_TENANT_ID, AZURE_CLIENT_ID, AZURE_CLIENT_SECRET, AZURE_SUBSCRIPTION_ID
//   - MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET
//
// Collector knobs use the COST_COLLECTOR_ prefix:
//   - COST_COLLECTOR_MAX_ATTEMPTS: Retry attempts per provider (default 10)
//   - COST_COLLECTOR_RETRY_DELAY: Fixed delay between attempts in seconds (default 300)
//   - COST_COLLECTOR_DAYS_TO_QUERY: Cost-query window in days (default 7)
//   - COST_COLLECTOR_END_DATE_OFFSET: Days to offset the window end date
//   - COST_COLLECTOR_PUSHGATEWAY_URL: Optional Prometheus Pushgateway address
//   - COST_COLLECTOR_LOG_LEVEL: Log level (debug, info, warn, error)
//
// Example configuration file (config.yaml):
//
//	aws:
//	  enabled: true
//	  region: "eu-west-1"
//	  group_by_tags: ["Project"]
//
//	azure:
//	  enabled: true
//	  subscription_id: "sub-123"
//	  subscription_name: "Production"
//
//	storage:
//	  backend: s3
//	  endpoint: "https://minio.internal:9000"
//	  bucket: "cost-dashboard"
//
//	retry:
//	  max_attempts: 10
//	  delay_seconds: 300
//
//	collection:
//	  days_to_query: 7
//	  end_date_offset: 0
//	  granularity: daily
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
package config
