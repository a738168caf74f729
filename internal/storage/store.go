package storage

import "context"

// BlobStore is the object-store contract the snapshot pipeline depends on.
// Put must have atomic-replace semantics for a key: readers observe either
// the prior artifact or the complete new one, never a torn write. The
// collector core only calls Put; Get and List exist for the dashboard
// reader boundary.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
