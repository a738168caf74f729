package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `
aws:
  enabled: true
  access_key_id: "AKIATEST"
  secret_access_key: "secret"
  region: "eu-west-1"
  group_by_tags: ["Project"]

azure:
  enabled: true
  tenant_id: "tenant-1"
  client_id: "client-1"
  client_secret: "s3cret"
  subscription_id: "sub-1"
  subscription_name: "Production"

storage:
  backend: s3
  endpoint: "https://minio.internal:9000"
  access_key: "minio"
  secret_key: "minio123"
  bucket: "cost-dashboard"

retry:
  max_attempts: 5
  delay_seconds: 30

collection:
  days_to_query: 7
  end_date_offset: 1
  granularity: daily

log_level: "info"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if !cfg.AWS.Enabled || !cfg.Azure.Enabled {
		t.Error("both providers should be enabled")
	}
	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("AWS.Region = %v, want eu-west-1", cfg.AWS.Region)
	}
	if cfg.Azure.SubscriptionID != "sub-1" {
		t.Errorf("Azure.SubscriptionID = %v, want sub-1", cfg.Azure.SubscriptionID)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Retry.MaxAttempts = %v, want 5", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.DelaySeconds != 30 {
		t.Errorf("Retry.DelaySeconds = %v, want 30", cfg.Retry.DelaySeconds)
	}
	if cfg.Storage.Bucket != "cost-dashboard" {
		t.Errorf("Storage.Bucket = %v, want cost-dashboard", cfg.Storage.Bucket)
	}
	if *cfg.Collection.EndDateOffset != 1 {
		t.Errorf("Collection.EndDateOffset = %v, want 1", *cfg.Collection.EndDateOffset)
	}
}

func TestLoad_ApplyDefaults_Success(t *testing.T) {
	// Minimal config with missing optional fields
	configPath := writeConfig(t, `
aws:
  enabled: true
  access_key_id: "AKIATEST"
  secret_access_key: "secret"
  region: "us-east-1"

storage:
  backend: local
  local_root: "/tmp/cost-reports"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"MaxAttempts", cfg.Retry.MaxAttempts, DefaultMaxAttempts},
		{"DelaySeconds", cfg.Retry.DelaySeconds, DefaultRetryDelay},
		{"DaysToQuery", cfg.Collection.DaysToQuery, DefaultDaysToQuery},
		{"EndDateOffset", *cfg.Collection.EndDateOffset, DefaultEndDateOffset},
		{"Granularity", cfg.Collection.Granularity, "daily"},
		{"Prefix", cfg.Storage.Prefix, DefaultStoragePrefix},
		{"LogLevel", cfg.LogLevel, "info"},
		{"APITimeout", cfg.APITimeout, DefaultAPITimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides_Success(t *testing.T) {
	configPath := writeConfig(t, `
azure:
  enabled: true
  tenant_id: "file-tenant"
  client_id: "file-client"
  client_secret: "file-secret"
  subscription_id: "file-sub"

storage:
  backend: local
  local_root: "/tmp/cost-reports"
`)

	t.Setenv("AZURE_TENANT_ID", "env-tenant")
	t.Setenv("AZURE_CLIENT_SECRET", "env-secret")
	t.Setenv("COST_COLLECTOR_MAX_ATTEMPTS", "3")
	t.Setenv("COST_COLLECTOR_RETRY_DELAY", "60")
	t.Setenv("COST_COLLECTOR_END_DATE_OFFSET", "2")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Azure.TenantID != "env-tenant" {
		t.Errorf("TenantID = %v, want env override", cfg.Azure.TenantID)
	}
	if cfg.Azure.ClientSecret != "env-secret" {
		t.Errorf("ClientSecret = %v, want env override", cfg.Azure.ClientSecret)
	}
	if cfg.Azure.ClientID != "file-client" {
		t.Errorf("ClientID = %v, want file value", cfg.Azure.ClientID)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %v, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.DelaySeconds != 60 {
		t.Errorf("DelaySeconds = %v, want 60", cfg.Retry.DelaySeconds)
	}
	if *cfg.Collection.EndDateOffset != 2 {
		t.Errorf("EndDateOffset = %v, want 2", *cfg.Collection.EndDateOffset)
	}
}

func TestLoad_InvalidEnvValue_Error(t *testing.T) {
	configPath := writeConfig(t, `
aws:
  enabled: true
  access_key_id: "AKIATEST"
  secret_access_key: "secret"
  region: "us-east-1"
storage:
  backend: local
  local_root: "/tmp/cost-reports"
`)

	t.Setenv("COST_COLLECTOR_MAX_ATTEMPTS", "ten")

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for non-integer COST_COLLECTOR_MAX_ATTEMPTS")
	}
}

func TestLoad_Validation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "no providers",
			content: `
storage:
  backend: local
  local_root: "/tmp/x"
`,
			wantErr: "no providers enabled",
		},
		{
			name: "aws missing credentials",
			content: `
aws:
  enabled: true
  region: "us-east-1"
storage:
  backend: local
  local_root: "/tmp/x"
`,
			wantErr: "credentials missing",
		},
		{
			name: "azure missing subscription",
			content: `
azure:
  enabled: true
  tenant_id: "t"
  client_id: "c"
  client_secret: "s"
storage:
  backend: local
  local_root: "/tmp/x"
`,
			wantErr: "subscription_id missing",
		},
		{
			name: "s3 without bucket",
			content: `
aws:
  enabled: true
  access_key_id: "k"
  secret_access_key: "s"
  region: "us-east-1"
storage:
  backend: s3
`,
			wantErr: "requires a bucket",
		},
		{
			name: "unknown backend",
			content: `
aws:
  enabled: true
  access_key_id: "k"
  secret_access_key: "s"
  region: "us-east-1"
storage:
  backend: ftp
`,
			wantErr: "unknown storage backend",
		},
		{
			name: "bad granularity",
			content: `
aws:
  enabled: true
  access_key_id: "k"
  secret_access_key: "s"
  region: "us-east-1"
storage:
  backend: local
  local_root: "/tmp/x"
collection:
  granularity: hourly
`,
			wantErr: "granularity",
		},
		{
			name: "negative end date offset",
			content: `
aws:
  enabled: true
  access_key_id: "k"
  secret_access_key: "s"
  region: "us-east-1"
storage:
  backend: local
  local_root: "/tmp/x"
collection:
  end_date_offset: -1
`,
			wantErr: "end_date_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile_Error(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_MalformedYAML_Error(t *testing.T) {
	configPath := writeConfig(t, "aws: [not a mapping")
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
