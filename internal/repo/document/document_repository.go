package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

var (
	// ErrUnknownDriver is returned when the configured storage driver is not supported.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrConcurrentModification is returned by Save when the stored document
	// changed since it was loaded.
	ErrConcurrentModification = errors.New("document modified concurrently")
)

// Repository stores the single consolidated Document.
type Repository interface {
	// Lock acquires the store lock, shared for readers and exclusive for writers.
	// Returns a function to release the lock.
	Lock(ctx context.Context, exclusive bool) (func(), error)

	// Load reads the current document. A missing document yields an empty one.
	Load(ctx context.Context) (*domain.Document, error)

	// Save replaces the stored document. Callers must hold the exclusive lock.
	Save(ctx context.Context, doc *domain.Document) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// RepositoryConfig selects and configures the storage driver.
type RepositoryConfig struct {
	// Driver is either "file" or "sqlite"
	Driver string `env:"DRIVER" default:"file"`
	// Path is the JSON file or SQLite database location
	Path string `env:"PATH" default:"var/data/db.json"`
}

// NewRepositoryFactory returns the factory of the configured driver.
func NewRepositoryFactory(cfg RepositoryConfig) (RepositoryFactory, error) {
	switch cfg.Driver {
	case "", "file":
		return FileDocumentRepositoryFactory(FileDocumentRepositoryConfig{Path: cfg.Path}), nil
	case "sqlite":
		return SQLiteDocumentRepositoryFactory(SQLiteDocumentRepositoryConfig{DatabasePath: cfg.Path}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
