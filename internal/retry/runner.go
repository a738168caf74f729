package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

// Status is the terminal state of one retry run. A run always ends in
// exactly one of these; no error ever escapes to the caller.
type Status string

// Terminal states
const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Config controls one runner. The delay between attempts is fixed rather
// than exponential; billing APIs recover on human-scale windows, so a flat
// 5-minute wait is both simpler and sufficient.
type Config struct {
	MaxAttempts int           // Total attempts including the first (default 10)
	Delay       time.Duration // Fixed sleep between attempts (default 5m)
}

// Outcome reports how a run ended. Rows is populated only on SUCCESS and
// LastErr only on FAILED.
type Outcome struct {
	Status       Status
	AttemptsUsed int
	Rows         []provider.CostRecord
	LastErr      error
}

// Runner executes a single provider fetch with bounded fixed-delay retries.
// Each provider pipeline owns its own Runner, so one provider's sleeps never
// block the other's attempts.
type Runner struct {
	cfg    Config
	logger *logger.Logger
}

// NewRunner creates a runner with the given retry policy
func NewRunner(cfg Config, log *logger.Logger) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Runner{cfg: cfg, logger: log}
}

// Run calls the fetcher until it succeeds or MaxAttempts are exhausted,
// sleeping the fixed delay between attempts. Cancelling ctx abandons an
// in-progress sleep and ends the run as FAILED with the context error
// recorded. The returned outcome is the only result; all retryable failures
// are absorbed here.
func (r *Runner) Run(ctx context.Context, fetcher provider.CostFetcher, tf provider.Timeframe, gran provider.Granularity) Outcome {
	log := r.logger.WithProvider(string(fetcher.Name()))

	var (
		rows     []provider.CostRecord
		attempts int
	)

	operation := func() error {
		attempts++
		log.Info("Fetching cost data",
			"attempt", attempts,
			"max_attempts", r.cfg.MaxAttempts,
			"timeframe_start", tf.Start,
			"timeframe_end", tf.End,
			"granularity", gran)

		fetched, err := fetcher.Fetch(ctx, tf, gran)
		if err != nil {
			return err
		}
		rows = fetched
		return nil
	}

	notify := func(err error, next time.Duration) {
		kind := provider.FetchErrorKind("unknown")
		if fe, ok := provider.AsFetchError(err); ok {
			kind = fe.Kind
		}
		log.Warn("Fetch attempt failed, retrying after delay",
			"attempt", attempts,
			"max_attempts", r.cfg.MaxAttempts,
			"error_kind", kind,
			"retry_delay", next,
			"error", err)
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.cfg.Delay), uint64(r.cfg.MaxAttempts-1)),
		ctx)

	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		log.Error("Fetch attempts exhausted",
			"attempts_used", attempts,
			"error", err)
		return Outcome{Status: StatusFailed, AttemptsUsed: attempts, LastErr: err}
	}

	log.Info("Fetch succeeded",
		"attempts_used", attempts,
		"record_count", len(rows))
	return Outcome{Status: StatusSuccess, AttemptsUsed: attempts, Rows: rows}
}
