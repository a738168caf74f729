package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderType represents a cloud billing source
type ProviderType string

// Supported cloud providers
const (
	ProviderAWS   ProviderType = "aws"
	ProviderAzure ProviderType = "azure"
)

// Granularity is the aggregation resolution requested from a provider
type Granularity string

// Supported granularities
const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// Timeframe is the cost-query window, as inclusive YYYY-MM-DD dates
type Timeframe struct {
	Start string
	End   string
}

// LastNDays returns the timeframe covering days calendar days ending
// endOffset days before now. The end date doubles as the logical date
// a collection run represents.
func LastNDays(now time.Time, days, endOffset int) Timeframe {
	end := now.AddDate(0, 0, -endOffset)
	start := end.AddDate(0, 0, -days)
	return Timeframe{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
}

// CostFetcher is the interface all cloud cost fetchers implement.
// A fetch either returns the complete normalized row set for the
// timeframe or fails with a *FetchError; partial results are never
// returned alongside an error.
type CostFetcher interface {
	// Fetch retrieves and normalizes cost rows for the timeframe
	Fetch(ctx context.Context, tf Timeframe, gran Granularity) ([]CostRecord, error)

	// Name returns the provider name (aws, azure)
	Name() ProviderType
}

// CostRecord represents a single normalized billing line from any cloud provider
type CostRecord struct {
	Provider    ProviderType      `json:"provider"`
	Service     string            `json:"service"` // Service name (Storage, EC2, etc.)
	Account     string            `json:"account"` // Resource group (Azure) or linked account (AWS)
	Tags        map[string]string `json:"tags,omitempty"`
	PeriodStart string            `json:"period_start"` // YYYY-MM-DD, inclusive
	PeriodEnd   string            `json:"period_end"`   // YYYY-MM-DD, inclusive
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"` // ISO code (USD, EUR)
}

// Validate checks the record invariants. Records that fail validation are
// rejected before publication rather than coerced.
func (r CostRecord) Validate() error {
	if r.Provider != ProviderAWS && r.Provider != ProviderAzure {
		return fmt.Errorf("unknown provider %q", r.Provider)
	}
	start, err := time.Parse("2006-01-02", r.PeriodStart)
	if err != nil {
		return fmt.Errorf("invalid period_start %q: %w", r.PeriodStart, err)
	}
	end, err := time.Parse("2006-01-02", r.PeriodEnd)
	if err != nil {
		return fmt.Errorf("invalid period_end %q: %w", r.PeriodEnd, err)
	}
	if start.After(end) {
		return fmt.Errorf("period_start %s after period_end %s", r.PeriodStart, r.PeriodEnd)
	}
	if r.Amount < 0 {
		return fmt.Errorf("negative amount %v", r.Amount)
	}
	return nil
}

// ValidateAll validates every record and reports the first violation with
// its index. A single bad row rejects the whole batch.
func ValidateAll(records []CostRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d (%s/%s): %w", i, r.Provider, r.Service, err)
		}
	}
	return nil
}
