// Package storage provides the object-store abstraction snapshots are
// published to.
//
// The BlobStore interface is a minimal put/get/list contract with
// atomic-replace Put semantics. Three backends exist:
//
//   - S3Store: AWS S3 or any S3-compatible store (MinIO) via explicit
//     credentials and an optional endpoint override
//   - LocalStore: local filesystem with stage-then-rename publishes,
//     for development runs
//   - MemStore: in-memory store for tests
//
// Each provider pipeline writes under its own key prefix, so no
// cross-provider write contention exists and no locking is needed beyond
// the store's own replace guarantee.
package storage
