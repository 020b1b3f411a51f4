package entitysvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	"github.com/mkrupp/newsletterhub/internal/repo/document"
)

// EntityService is the single writer of the persisted Document. Updates are
// serialized within the process by a mutex and across processes by the
// repository's exclusive lock, so every mutation observes the previous one.
type EntityService struct {
	repo document.Repository
	log  logging.Logger
	mu   sync.Mutex
}

// NewEntityService creates the service on a repository from factory.
func NewEntityService(ctx context.Context, factory document.RepositoryFactory) (*EntityService, error) {
	repo, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new document repo: %w", err)
	}

	return &EntityService{
		repo: repo,
		log:  logging.GetLogger("svc.entitysvc.entity_service"),
	}, nil
}

// View runs fn over the latest committed document. fn must not retain or
// modify the document.
func (s *EntityService) View(ctx context.Context, fn func(doc *domain.Document) error) error {
	release, err := s.repo.Lock(ctx, false)
	if err != nil {
		return fmt.Errorf("lock shared: %w", err)
	}
	defer release()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	return fn(doc)
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error, and that error is returned unchanged.
func (s *EntityService) Update(ctx context.Context, fn func(doc *domain.Document) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.repo.Lock(ctx, true)
	if err != nil {
		return fmt.Errorf("lock exclusive: %w", err)
	}
	defer release()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if err := fn(doc); err != nil {
		return err
	}

	doc.Normalize()

	if err := s.repo.Save(ctx, doc); err != nil {
		s.log.ErrorContext(ctx, "save document failed", "error", err)

		return fmt.Errorf("save document: %w", err)
	}

	return nil
}

// Close releases the underlying repository.
func (s *EntityService) Close() error {
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close document repo: %w", err)
	}

	return nil
}
