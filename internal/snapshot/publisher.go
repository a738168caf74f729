package snapshot

import (
	"context"
	"encoding/json"

	"github.com/zgpcy/cloud-cost-collector/internal/clock"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
	"github.com/zgpcy/cloud-cost-collector/internal/storage"
)

// Publisher serializes normalized cost rows and writes them as a named
// artifact to the object store, replacing the prior snapshot for that
// provider and logical date. Exactly one write attempt per publish; retry
// policy lives entirely in the fetch path.
type Publisher struct {
	store  storage.BlobStore
	prefix string
	clock  clock.Clock
	logger *logger.Logger
}

// NewPublisher creates a publisher writing under prefix
func NewPublisher(store storage.BlobStore, prefix string, log *logger.Logger) *Publisher {
	return &Publisher{
		store:  store,
		prefix: prefix,
		clock:  clock.RealClock{},
		logger: log,
	}
}

// Publish validates, serializes and writes rows for one provider. It
// returns the artifact key on success and a *PublishError otherwise.
// Writes are atomic from the reader's perspective: the store's replace
// semantics guarantee no partially-written artifact is ever observable.
func (p *Publisher) Publish(ctx context.Context, prov provider.ProviderType, rows []provider.CostRecord, logicalDate string) (string, error) {
	log := p.logger.WithProvider(string(prov))

	if err := provider.ValidateAll(rows); err != nil {
		log.Error("Refusing to publish invalid records", "error", err)
		return "", &PublishError{Provider: prov, Kind: PublishErrValidation, Err: err}
	}

	snap := build(prov, rows, logicalDate, p.clock.Now().UTC())

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", &PublishError{Provider: prov, Kind: PublishErrSerialization, Err: err}
	}

	key := Key(p.prefix, prov, logicalDate)
	if err := p.store.Put(ctx, key, data); err != nil {
		kind := classifyStoreErr(err)
		log.Error("Snapshot write failed",
			"key", key,
			"error_kind", kind,
			"error", err)
		return "", &PublishError{Provider: prov, Kind: kind, Err: err}
	}

	log.Info("Snapshot published",
		"key", key,
		"record_count", snap.RecordCount,
		"total_amount", snap.TotalAmount,
		"currency", snap.Currency,
		"logical_date", logicalDate)
	return key, nil
}
