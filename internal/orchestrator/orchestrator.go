package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zgpcy/cloud-cost-collector/internal/clock"
	"github.com/zgpcy/cloud-cost-collector/internal/config"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
	"github.com/zgpcy/cloud-cost-collector/internal/retry"
	"github.com/zgpcy/cloud-cost-collector/internal/snapshot"
	"golang.org/x/sync/errgroup"
)

// OverallStatus is the aggregate result of one collection job
type OverallStatus string

// Aggregate job outcomes
const (
	OverallSuccess OverallStatus = "SUCCESS"
	OverallPartial OverallStatus = "PARTIAL"
	OverallFailure OverallStatus = "FAILURE"
)

// PipelineStatus is the terminal state of one provider pipeline within a job
type PipelineStatus string

// Pipeline outcomes. Degraded means the fetch succeeded but the snapshot
// could not be published; it never counts toward overall success.
const (
	PipelineSucceeded PipelineStatus = "SUCCEEDED"
	PipelineFailed    PipelineStatus = "FAILED"
	PipelineDegraded  PipelineStatus = "DEGRADED"
)

// ProviderResult records how one provider pipeline ended
type ProviderResult struct {
	Provider     provider.ProviderType
	Status       PipelineStatus
	AttemptsUsed int
	RecordCount  int
	ArtifactKey  string
	Err          error
}

// Job is the full record of one collection run
type Job struct {
	ID          string
	LogicalDate string
	StartedAt   time.Time
	FinishedAt  time.Time
	Overall     OverallStatus
	Results     map[provider.ProviderType]*ProviderResult
}

// ExitCode maps the aggregate outcome to a process exit code. Anything short
// of full success is nonzero so schedulers alert on partial runs too.
func (j *Job) ExitCode() int {
	if j.Overall == OverallSuccess {
		return 0
	}
	return 1
}

// Pipeline pairs a provider fetcher with its own retry runner
type Pipeline struct {
	Fetcher provider.CostFetcher
	Runner  *retry.Runner
}

// Orchestrator runs all provider pipelines for one collection job and
// aggregates their outcomes
type Orchestrator struct {
	pipelines []Pipeline
	publisher *snapshot.Publisher
	cfg       *config.Config
	logger    *logger.Logger
	clock     clock.Clock // Time provider for testing

	mu      sync.Mutex
	lastJob *Job
}

// New creates an orchestrator over the given pipelines
func New(pipelines []Pipeline, publisher *snapshot.Publisher, cfg *config.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		pipelines: pipelines,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
		clock:     clock.RealClock{},
	}
}

// SetClock overrides the time provider, for testing
func (o *Orchestrator) SetClock(c clock.Clock) {
	o.clock = c
}

// Run executes every pipeline concurrently and waits for all of them. One
// provider failing never stops the others; every pipeline always runs to its
// own terminal state. The returned job is complete when Run returns.
func (o *Orchestrator) Run(ctx context.Context) *Job {
	now := o.clock.Now().UTC()

	endOffset := 0
	if o.cfg.Collection.EndDateOffset != nil {
		endOffset = *o.cfg.Collection.EndDateOffset
	}
	tf := provider.LastNDays(now, o.cfg.Collection.DaysToQuery, endOffset)
	gran := provider.Granularity(o.cfg.Collection.Granularity)

	job := &Job{
		ID:          uuid.NewString(),
		LogicalDate: tf.End,
		StartedAt:   now,
		Results:     make(map[provider.ProviderType]*ProviderResult),
	}

	o.logger.Info("Starting collection job",
		"job_id", job.ID,
		"logical_date", job.LogicalDate,
		"timeframe_start", tf.Start,
		"timeframe_end", tf.End,
		"granularity", gran,
		"pipelines", len(o.pipelines))

	var g errgroup.Group
	for _, p := range o.pipelines {
		p := p
		g.Go(func() error {
			result := o.runPipeline(ctx, p, tf, gran, job.LogicalDate)
			o.mu.Lock()
			job.Results[result.Provider] = result
			o.mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait is only a barrier
	_ = g.Wait()

	job.FinishedAt = o.clock.Now().UTC()
	job.Overall = aggregate(job.Results)

	o.logger.Info("Collection job finished",
		"job_id", job.ID,
		"overall", job.Overall,
		"duration_seconds", job.FinishedAt.Sub(job.StartedAt).Seconds())

	o.mu.Lock()
	o.lastJob = job
	o.mu.Unlock()

	return job
}

// runPipeline drives one provider through fetch, retry, and publish
func (o *Orchestrator) runPipeline(ctx context.Context, p Pipeline, tf provider.Timeframe, gran provider.Granularity, logicalDate string) *ProviderResult {
	name := p.Fetcher.Name()
	log := o.logger.WithProvider(string(name))

	outcome := p.Runner.Run(ctx, p.Fetcher, tf, gran)
	result := &ProviderResult{
		Provider:     name,
		AttemptsUsed: outcome.AttemptsUsed,
	}

	if outcome.Status != retry.StatusSuccess {
		result.Status = PipelineFailed
		result.Err = outcome.LastErr
		return result
	}

	result.RecordCount = len(outcome.Rows)

	key, err := o.publisher.Publish(ctx, name, outcome.Rows, logicalDate)
	if err != nil {
		log.Error("Snapshot publication failed after successful fetch",
			"logical_date", logicalDate,
			"error", err)
		result.Status = PipelineDegraded
		result.Err = err
		return result
	}

	result.Status = PipelineSucceeded
	result.ArtifactKey = key
	return result
}

// aggregate folds the per-provider results into the overall job status
func aggregate(results map[provider.ProviderType]*ProviderResult) OverallStatus {
	succeeded := 0
	for _, r := range results {
		if r.Status == PipelineSucceeded {
			succeeded++
		}
	}
	switch {
	case len(results) > 0 && succeeded == len(results):
		return OverallSuccess
	case succeeded > 0:
		return OverallPartial
	default:
		return OverallFailure
	}
}

// LastJob returns the most recently completed job, or nil before the first run
func (o *Orchestrator) LastJob() *Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastJob
}
