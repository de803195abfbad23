package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the identity in a small JSON file on the local machine
type FileStore struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, ttl time.Duration, logger *slog.Logger) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileStore{path: path, ttl: ttl, now: time.Now, logger: logger}
}

// GetOrCreate returns the stored id, or a new one if the file is missing,
// unreadable or expired
func (s *FileStore) GetOrCreate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r, err := s.load()
	switch {
	case err == nil && !r.expired(now, s.ttl):
		return r.UUID, nil
	case err == nil:
		s.logger.Debug("identity expired, regenerating", "path", s.path)
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, ErrCorrupt):
		s.logger.Warn("identity file corrupt, regenerating", "path", s.path, "error", err)
	default:
		return "", err
	}

	r = newRecord(now)
	if err := s.save(r); err != nil {
		return "", err
	}
	return r.UUID, nil
}

func (s *FileStore) load() (record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return record{}, err
	}
	return decodeRecord(data)
}

// save writes the record through a temp file so a crash never leaves a
// half-written identity behind
func (s *FileStore) save(r record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
