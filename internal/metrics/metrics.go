package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/orchestrator"
	"github.com/zgpcy/cloud-cost-collector/internal/version"
)

// pushJobName groups all pushed series under one Pushgateway job
const pushJobName = "cloud_cost_collector"

// Pusher publishes per-run metrics to a Prometheus Pushgateway. A batch
// process has no scrape endpoint to expose, so the run pushes its outcome
// instead.
type Pusher struct {
	url    string
	logger *logger.Logger
}

// NewPusher creates a pusher targeting the given Pushgateway URL. An empty
// URL disables pushing entirely.
func NewPusher(url string, log *logger.Logger) *Pusher {
	return &Pusher{url: url, logger: log}
}

// Enabled reports whether a Pushgateway URL is configured
func (p *Pusher) Enabled() bool {
	return p.url != ""
}

// PushJob publishes the outcome of one collection job. A push failure is
// logged and swallowed; metrics delivery never changes the job result.
func (p *Pusher) PushJob(job *orchestrator.Job) {
	if !p.Enabled() {
		return
	}

	reg := prometheus.NewRegistry()

	jobSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_job_success",
		Help: "Whether the last collection job fully succeeded (1 = success, 0 = failure or partial)",
	})
	jobDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_job_duration_seconds",
		Help: "Wall clock duration of the last collection job in seconds",
	})
	providerSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_provider_success",
		Help: "Whether the provider pipeline fetched and published (1 = success, 0 = failure)",
	}, []string{"provider"})
	providerAttempts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_provider_attempts",
		Help: "Fetch attempts used by the provider pipeline in the last job",
	}, []string{"provider"})
	recordsPublished := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_records_published",
		Help: "Number of cost records in the snapshot published for the provider",
	}, []string{"provider"})
	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cloud_cost_collector_build_info",
		Help: "Build version information",
	}, []string{"version", "git_commit", "build_date", "go_version"})

	reg.MustRegister(jobSuccess, jobDuration, providerSuccess, providerAttempts, recordsPublished, buildInfo)

	if job.Overall == orchestrator.OverallSuccess {
		jobSuccess.Set(1)
	}
	jobDuration.Set(job.FinishedAt.Sub(job.StartedAt).Seconds())

	for name, r := range job.Results {
		labels := prometheus.Labels{"provider": string(name)}
		if r.Status == orchestrator.PipelineSucceeded {
			providerSuccess.With(labels).Set(1)
		} else {
			providerSuccess.With(labels).Set(0)
		}
		providerAttempts.With(labels).Set(float64(r.AttemptsUsed))
		recordsPublished.With(labels).Set(float64(r.RecordCount))
	}

	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	err := push.New(p.url, pushJobName).
		Grouping("logical_date", job.LogicalDate).
		Gatherer(reg).
		Push()
	if err != nil {
		p.logger.Warn("Failed to push job metrics",
			"pushgateway_url", p.url,
			"error", err)
		return
	}

	p.logger.Debug("Pushed job metrics",
		"pushgateway_url", p.url,
		"overall", job.Overall)
}
