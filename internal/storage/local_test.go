package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_PutGetRoundTrip(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte(`{"provider":"aws"}`)
	if err := store.Put(ctx, "cost-reports/aws/2025-06-15.json", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "cost-reports/aws/2025-06-15.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %s", got)
	}
}

func TestLocalStore_PutReplaces(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	key := "cost-reports/azure/2025-06-15.json"

	if err := store.Put(ctx, key, []byte("old")); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := store.Put(ctx, key, []byte("new")); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want last write to win", got)
	}

	// Exactly one artifact at the key, and no staging leftovers
	keys, err := store.List(ctx, "cost-reports/azure/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("List returned %d keys, want 1: %v", len(keys), keys)
	}
}

func TestLocalStore_NoStagingFilesLeftBehind(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	ctx := context.Background()

	if err := store.Put(ctx, "reports/a.json", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "reports"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".stage-") {
			t.Errorf("staging file left behind: %s", e.Name())
		}
	}
}

func TestLocalStore_ListByPrefix(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	puts := []string{
		"cost-reports/aws/2025-06-14.json",
		"cost-reports/aws/2025-06-15.json",
		"cost-reports/azure/2025-06-15.json",
	}
	for _, k := range puts {
		if err := store.Put(ctx, k, []byte("{}")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	keys, err := store.List(ctx, "cost-reports/aws")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("got %d keys, want 2: %v", len(keys), keys)
	}

	// Prefix with no objects is empty, not an error
	keys, err = store.List(ctx, "cost-reports/gcp")
	if err != nil {
		t.Fatalf("List empty prefix: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d keys for empty prefix, want 0", len(keys))
	}
}

func TestLocalStore_GetMissingKey(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	if _, err := store.Get(context.Background(), "missing.json"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestMemStore_Basics(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.Put(ctx, "a/1.json", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "a/1.json", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 (replace, not append)", store.Len())
	}

	got, err := store.Get(ctx, "a/1.json")
	if err != nil || string(got) != "two" {
		t.Errorf("Get = %q, %v; want \"two\"", got, err)
	}

	keys, _ := store.List(ctx, "a/")
	if len(keys) != 1 || keys[0] != "a/1.json" {
		t.Errorf("List = %v", keys)
	}
}
