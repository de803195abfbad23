package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileStoreCreatesAndReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "identity.json")
	s := NewFileStore(path, time.Hour, testLogger())

	first, err := s.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first == "" {
		t.Fatal("expected an id")
	}
	second, err := s.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != second {
		t.Fatalf("id changed: %s -> %s", first, second)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileStoreRegeneratesAfterTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	s := NewFileStore(path, time.Hour, testLogger())
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	first, err := s.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	clock = clock.Add(59 * time.Minute)
	again, _ := s.GetOrCreate(context.Background())
	if again != first {
		t.Fatal("id should survive within the ttl")
	}

	clock = clock.Add(2 * time.Minute)
	fresh, err := s.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if fresh == first {
		t.Fatal("expected a new id after the ttl")
	}
}

func TestFileStoreRecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path, 0, testLogger())

	id, err := s.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := decodeRecord(data)
	if err != nil {
		t.Fatalf("rewritten record unreadable: %v", err)
	}
	if r.UUID != id {
		t.Fatalf("stored %s, returned %s", r.UUID, id)
	}
}

func TestDecodeRecordRejectsBadUUID(t *testing.T) {
	_, err := decodeRecord([]byte(`{"uuid":"nope","timestamp":1}`))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestFileStoreHonorsCancelledContext(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "id.json"), 0, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.GetOrCreate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
