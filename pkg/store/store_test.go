package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/jobsearch"
)

func sampleSnapshot() (snap Snapshot) {
	snap = Snapshot{
		Criteria: jobsearch.Criteria{Title: "Go Engineer", Location: "Remote"},
		Jobs: []jobsearch.Posting{
			{JobID: "4012345678", JobTitle: "Go Engineer", CompanyName: "Acme"},
		},
	}
	return snap
}

// exerciseStore runs the same checks against any backend.
func exerciseStore(t *testing.T, s ResultStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("Expected ErrEmpty before save, got %v", err)
	}

	err = s.Save(ctx, Snapshot{Criteria: jobsearch.Criteria{Title: "ignored"}})
	if err != nil {
		t.Fatalf("Unexpected error saving empty snapshot: %v", err)
	}

	_, err = s.Load(ctx)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("Expected empty snapshot to be ignored, got %v", err)
	}

	err = s.Save(ctx, sampleSnapshot())
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if len(snap.Jobs) != 1 || snap.Jobs[0].JobID != "4012345678" {
		t.Errorf("Unexpected jobs: %+v", snap.Jobs)
	}
	if snap.Criteria.Title != "Go Engineer" {
		t.Errorf("Expected title 'Go Engineer', got '%s'", snap.Criteria.Title)
	}
	if snap.SavedAt.IsZero() {
		t.Error("Expected SavedAt to be set")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "results.json"), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	exerciseStore(t, s)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("", nil)
	if err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = s.Shutdown(context.Background()) }()

	exerciseStore(t, s)

	if !mr.Exists(Key) {
		t.Errorf("Expected key '%s' in redis", Key)
	}
}

func TestRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", nil)
	if err == nil {
		t.Error("Expected error for invalid url, got nil")
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	fileStore, err := New(ctx, config.StoreConfig{Backend: config.StoreFile, Path: filepath.Join(t.TempDir(), "r.json")}, nil)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if _, ok := fileStore.(*FileStore); !ok {
		t.Errorf("Expected *FileStore, got %T", fileStore)
	}

	redisStore, err := New(ctx, config.StoreConfig{Backend: config.StoreRedis, RedisURL: "redis://" + mr.Addr()}, nil)
	if err != nil {
		t.Fatalf("Failed to create redis store: %v", err)
	}
	defer func() { _ = redisStore.Shutdown(ctx) }()
	if _, ok := redisStore.(*RedisStore); !ok {
		t.Errorf("Expected *RedisStore, got %T", redisStore)
	}

	_, err = New(ctx, config.StoreConfig{Backend: "s3"}, nil)
	if err == nil {
		t.Error("Expected error for unknown backend, got nil")
	}
}
