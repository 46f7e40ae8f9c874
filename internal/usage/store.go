// Package usage tracks per-day scan counts for tier rate limiting. The store
// is an explicit injected interface so the orchestration core stays free of
// global mutable state and commands can be tested with an in-memory double.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
	"github.com/khanhnv2901/webgrade/internal/shared/security"
)

// Record is one day's scan counter.
type Record struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Scans int    `json:"scans"`
}

// Store reads and writes the usage record.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// Consume registers one scan against the store, rolling the counter over at
// day boundaries. It returns ErrUsageLimitExceeded when the day's count has
// reached the limit; a limit <= 0 means unlimited.
func Consume(ctx context.Context, store Store, now time.Time, limit int) error {
	rec, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load usage record: %w", err)
	}

	day := now.UTC().Format("2006-01-02")
	if rec.Day != day {
		rec = Record{Day: day}
	}

	if limit > 0 && rec.Scans >= limit {
		return sharedErrors.ErrUsageLimitExceeded
	}

	rec.Scans++
	if err := store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save usage record: %w", err)
	}
	return nil
}

// FileStore persists the usage record as a JSON file.
type FileStore struct {
	filePath string
	mu       sync.Mutex
}

// NewFileStore creates the data directory if needed and returns a store
// backed by usage.json inside it.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath, err := security.ResolveWithin(dataDir, "usage.json")
	if err != nil {
		return nil, err
	}

	return &FileStore{filePath: filePath}, nil
}

// Load reads the current record. A missing file yields a zero record.
func (s *FileStore) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read usage file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt counter file should not block scanning; start fresh.
		return Record{}, nil
	}
	return rec, nil
}

// Save writes the record atomically via a temp file rename.
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("write usage file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace usage file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
}

func (m *MemoryStore) Load(ctx context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *MemoryStore) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)

func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".webgrade"), nil
}
