package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/zgpcy/cloud-cost-collector/internal/provider"
	"github.com/zgpcy/cloud-cost-collector/internal/storage"
)

// Read loads and decodes the snapshot for one provider and logical date.
// This is the contract the dashboard consumes; the collector itself never
// reads snapshots back.
func Read(ctx context.Context, store storage.BlobStore, prefix string, p provider.ProviderType, logicalDate string) (*Snapshot, error) {
	key := Key(prefix, p, logicalDate)
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	if snap.Provider != p {
		return nil, fmt.Errorf("snapshot %s belongs to provider %q, expected %q", key, snap.Provider, p)
	}
	return &snap, nil
}

// ListDates returns the logical dates with a published snapshot for the
// provider, in store listing order.
func ListDates(ctx context.Context, store storage.BlobStore, prefix string, p provider.ProviderType) ([]string, error) {
	keys, err := store.List(ctx, fmt.Sprintf("%s/%s/", prefix, p))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var dates []string
	for _, k := range keys {
		base := path.Base(k)
		if strings.HasSuffix(base, ".json") {
			dates = append(dates, strings.TrimSuffix(base, ".json"))
		}
	}
	return dates, nil
}
