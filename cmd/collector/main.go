package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zgpcy/cloud-cost-collector/internal/aws"
	"github.com/zgpcy/cloud-cost-collector/internal/azure"
	"github.com/zgpcy/cloud-cost-collector/internal/config"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/metrics"
	"github.com/zgpcy/cloud-cost-collector/internal/orchestrator"
	"github.com/zgpcy/cloud-cost-collector/internal/retry"
	"github.com/zgpcy/cloud-cost-collector/internal/snapshot"
	"github.com/zgpcy/cloud-cost-collector/internal/storage"
	"github.com/zgpcy/cloud-cost-collector/internal/version"
)

var configPath = flag.String("config", "config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration first (need log level from config)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logger.New(cfg.LogLevel)
	logger.Info("Cloud Cost Collector starting",
		"version", version.Version,
		"config_path", *configPath)

	logger.Info("Configuration loaded successfully",
		"aws_enabled", cfg.AWS.Enabled,
		"azure_enabled", cfg.Azure.Enabled,
		"storage_backend", cfg.Storage.Backend,
		"days_to_query", cfg.Collection.DaysToQuery,
		"granularity", cfg.Collection.Granularity,
		"retry_max_attempts", cfg.Retry.MaxAttempts,
		"retry_delay_seconds", cfg.Retry.DelaySeconds,
		"api_timeout_seconds", cfg.APITimeout)

	// Cancel the run on SIGINT or SIGTERM; in-flight retries abandon their
	// sleeps and the job finishes with whatever completed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the snapshot store
	var store storage.BlobStore
	switch cfg.Storage.Backend {
	case "local":
		store = storage.NewLocalStore(cfg.Storage.LocalRoot)
	default:
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			logger.Error("Failed to create object store client", "error", err)
			os.Exit(1)
		}
		store = s3Store
	}
	publisher := snapshot.NewPublisher(store, cfg.Storage.Prefix, logger)

	retryCfg := retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       time.Duration(cfg.Retry.DelaySeconds) * time.Second,
	}

	// Build one pipeline per enabled provider, each with its own runner
	var pipelines []orchestrator.Pipeline
	if cfg.AWS.Enabled {
		awsClient, err := aws.NewClient(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to create AWS client", "error", err)
			os.Exit(1)
		}
		pipelines = append(pipelines, orchestrator.Pipeline{
			Fetcher: awsClient,
			Runner:  retry.NewRunner(retryCfg, logger),
		})
	}
	if cfg.Azure.Enabled {
		azureClient, err := azure.NewClient(cfg, logger)
		if err != nil {
			logger.Error("Failed to create Azure client", "error", err)
			os.Exit(1)
		}
		pipelines = append(pipelines, orchestrator.Pipeline{
			Fetcher: azureClient,
			Runner:  retry.NewRunner(retryCfg, logger),
		})
	}
	logger.Info("Provider pipelines initialized", "count", len(pipelines))

	// Run the collection job to completion
	orch := orchestrator.New(pipelines, publisher, cfg, logger)
	job := orch.Run(ctx)

	for _, result := range job.Results {
		logger.Info("Provider pipeline result",
			"provider", result.Provider,
			"status", result.Status,
			"attempts_used", result.AttemptsUsed,
			"record_count", result.RecordCount,
			"artifact_key", result.ArtifactKey)
	}
	logger.Info("Collection job complete",
		"job_id", job.ID,
		"logical_date", job.LogicalDate,
		"overall", job.Overall,
		"exit_code", job.ExitCode())

	// Push run metrics if a gateway is configured; never affects the outcome
	pusher := metrics.NewPusher(cfg.PushgatewayURL, logger)
	pusher.PushJob(job)

	os.Exit(job.ExitCode())
}
