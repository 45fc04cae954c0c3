package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/electron-release/internal/config"
	domain "github.com/oshokin/electron-release/internal/domain/release"
)

// Repository defines persistence operations for the pending update.
type Repository interface {
	Load(ctx context.Context) (*domain.Pending, error)
	Save(ctx context.Context, pending *domain.Pending) error
	Clear(ctx context.Context) error
}

// FileRepository persists the pending update to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when no update is pending.
var ErrNotFound = errors.New("no pending update")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the pending update from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read pending update: %w", err)
	}

	var p domain.Pending
	if err = json.Unmarshal(contents, &p); err != nil {
		return nil, fmt.Errorf("decode pending update: %w", err)
	}

	if p.Release == nil || p.Path == "" {
		return nil, ErrNotFound
	}

	return &p, nil
}

// Save writes the pending update to disk.
func (r *FileRepository) Save(_ context.Context, p *domain.Pending) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pending update: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write pending update: %w", err)
	}

	return nil
}

// Clear removes the record. Clearing an absent record is not an error.
func (r *FileRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pending update: %w", err)
	}

	return nil
}
