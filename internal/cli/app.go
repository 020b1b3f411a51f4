package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/repo/document"
	"github.com/mkrupp/newsletterhub/internal/svc/authsvc"
	"github.com/mkrupp/newsletterhub/internal/svc/entitysvc"
)

// App holds the services the commands operate on.
type App struct {
	cfg      Config
	entities *entitysvc.EntityService
	sessions *authsvc.SessionStore
}

// NewApp opens the configured store.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	factory, err := document.NewRepositoryFactory(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("new repository factory: %w", err)
	}

	entities, err := entitysvc.NewEntityService(ctx, factory)
	if err != nil {
		return nil, fmt.Errorf("new entity service: %w", err)
	}

	return &App{
		cfg:      cfg,
		entities: entities,
		sessions: authsvc.NewSessionStore(entities),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.entities != nil {
		return a.entities.Close()
	}

	return nil
}

// snapshot returns a private copy of the committed document.
func (a *App) snapshot(ctx context.Context) (*domain.Document, error) {
	var doc *domain.Document

	err := a.entities.View(ctx, func(current *domain.Document) error {
		doc = current.Clone()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view document: %w", err)
	}

	return doc, nil
}

// storeSize returns the on-disk size of the store, or -1 when unknown.
func (a *App) storeSize() int64 {
	info, err := os.Stat(a.cfg.Store.Path)
	if err != nil {
		return -1
	}

	return info.Size()
}
