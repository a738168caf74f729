package snapshot

import (
	"fmt"
	"time"

	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

// Snapshot is the published artifact: the full normalized record set for
// one provider and one logical date, plus metadata the dashboard renders
// without scanning the rows. One snapshot key exists per (provider,
// logical date); a new write fully replaces the old artifact.
type Snapshot struct {
	Provider    provider.ProviderType `json:"provider"`
	LogicalDate string                `json:"logical_date"` // YYYY-MM-DD
	GeneratedAt time.Time             `json:"generated_at"`
	RecordCount int                   `json:"record_count"`
	TotalAmount float64               `json:"total_amount"`
	Currency    string                `json:"currency"`
	Records     []provider.CostRecord `json:"records"`
}

// Key returns the deterministic object key for a (provider, logical date)
// pair under the configured prefix.
func Key(prefix string, p provider.ProviderType, logicalDate string) string {
	return fmt.Sprintf("%s/%s/%s.json", prefix, p, logicalDate)
}

// build assembles the snapshot envelope around the rows
func build(p provider.ProviderType, rows []provider.CostRecord, logicalDate string, generatedAt time.Time) Snapshot {
	var total float64
	currency := ""
	for _, r := range rows {
		total += r.Amount
		if currency == "" {
			currency = r.Currency
		} else if currency != r.Currency {
			// Mixed currencies within one provider snapshot; leave the
			// aggregate currency unset rather than mislabel the total
			currency = "mixed"
		}
	}

	return Snapshot{
		Provider:    p,
		LogicalDate: logicalDate,
		GeneratedAt: generatedAt,
		RecordCount: len(rows),
		TotalAmount: total,
		Currency:    currency,
		Records:     rows,
	}
}
