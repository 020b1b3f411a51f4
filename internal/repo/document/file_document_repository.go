package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

const flockRetryInterval = 10 * time.Millisecond

// FileDocumentRepositoryConfig holds configuration for the JSON file repository.
type FileDocumentRepositoryConfig struct {
	// Path is the location of the JSON document
	Path string
}

// FileDocumentRepositoryFactory creates a factory function that returns a new FileDocumentRepository.
func FileDocumentRepositoryFactory(cfg FileDocumentRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewFileDocumentRepository(ctx, cfg)
	}
}

// FileDocumentRepository implements Repository with a pretty-printed JSON file.
// Readers and writers coordinate through an advisory lock on "<path>.lock",
// which also serializes separate processes sharing the file.
type FileDocumentRepository struct {
	cfg FileDocumentRepositoryConfig
	log logging.Logger
}

var _ Repository = (*FileDocumentRepository)(nil)

// NewFileDocumentRepository creates the repository and writes the empty
// document if the file does not exist yet.
func NewFileDocumentRepository(ctx context.Context, cfg FileDocumentRepositoryConfig) (*FileDocumentRepository, error) {
	repo := &FileDocumentRepository{
		cfg: cfg,
		log: logging.GetLogger("repo.document.file_document_repository").With(
			logging.Group("repo", "path", cfg.Path),
		),
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

func (r *FileDocumentRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(r.cfg.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	release, err := r.Lock(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, err := os.Stat(r.cfg.Path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat: %w", err)
	}

	return r.Save(ctx, domain.NewDocument())
}

// Lock implements Repository.Lock with flock(2). The wait honours ctx.
func (r *FileDocumentRepository) Lock(ctx context.Context, exclusive bool) (release func(), err error) {
	lockfile := r.cfg.Path + ".lock"

	mode := syscall.LOCK_SH
	if exclusive {
		mode = syscall.LOCK_EX
	}

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lockfile: %w", err)
	}

	for {
		err = syscall.Flock(int(file.Fd()), mode|syscall.LOCK_NB)
		if err == nil {
			break
		}

		if !errors.Is(err, syscall.EWOULDBLOCK) && !errors.Is(err, syscall.EINTR) {
			_ = file.Close()

			return nil, fmt.Errorf("flock: %w", err)
		}

		select {
		case <-ctx.Done():
			_ = file.Close()

			return nil, fmt.Errorf("flock: %w", ctx.Err())
		case <-time.After(flockRetryInterval):
		}
	}

	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
	}, nil
}

// Load implements Repository.Load.
func (r *FileDocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	data, err := os.ReadFile(r.cfg.Path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc := domain.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc.Normalize()

	return doc, nil
}

// Save implements Repository.Save. The document is written to a temporary file
// in the same directory and renamed over the target once synced.
func (r *FileDocumentRepository) Save(ctx context.Context, doc *domain.Document) (err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "save document failed", "error", err)
		}
	}()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(r.cfg.Path), filepath.Base(r.cfg.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	tmpName := file.Name()

	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err = file.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err = file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err = os.Rename(tmpName, r.cfg.Path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// Close implements Repository.Close.
func (r *FileDocumentRepository) Close() error {
	return nil
}
