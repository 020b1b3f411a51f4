package document_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrupp/newsletterhub/internal/domain"

	. "github.com/mkrupp/newsletterhub/internal/repo/document"
)

const initialDocument = `{
  "users": [],
  "sources": [],
  "feeds": [],
  "sessions": {}
}`

func newRepos(t *testing.T) map[string]Repository {
	t.Helper()

	dir := t.TempDir()
	ctx := context.Background()

	fileRepo, err := NewFileDocumentRepository(ctx, FileDocumentRepositoryConfig{
		Path: filepath.Join(dir, "data", "db.json"),
	})
	if err != nil {
		t.Fatalf("failed to create file repository: %v", err)
	}

	sqliteRepo, err := NewSQLiteDocumentRepository(ctx, SQLiteDocumentRepositoryConfig{
		DatabasePath: filepath.Join(dir, "data", "db.sqlite"),
	})
	if err != nil {
		t.Fatalf("failed to create sqlite repository: %v", err)
	}

	t.Cleanup(func() {
		_ = fileRepo.Close()
		_ = sqliteRepo.Close()
	})

	return map[string]Repository{"file": fileRepo, "sqlite": sqliteRepo}
}

func sampleDocument() *domain.Document {
	doc := domain.NewDocument()
	doc.Users = append(doc.Users, domain.User{ID: "u1", Email: "ada@example.com", Name: "Ada", PasswordHash: "aa:bb"})
	doc.Sources = append(doc.Sources, domain.Source{ID: "s1", UserID: "u1", Name: "AI Weekly", EmailAddress: "a@b.c"})
	doc.Feeds = append(doc.Feeds, domain.Feed{ID: "f1", UserID: "u1", Name: "AI", Keywords: "ml", SourceIDs: []string{"s1"}})
	doc.Sessions["tok"] = domain.Session{UserID: "u1", CreatedAt: 1700000000000}

	return doc
}

func TestFileDocumentRepository_InitialDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "db.json")

	if _, err := NewFileDocumentRepository(context.Background(), FileDocumentRepositoryConfig{Path: path}); err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}

	if string(content) != initialDocument {
		t.Errorf("content mismatch\nwant: %s\ngot:  %s", initialDocument, content)
	}
}

func TestFileDocumentRepository_KeepsExistingDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")
	existing := `{"users":[{"id":"u1","email":"a@b.c","name":"A","avatarUrl":"","passwordHash":"x:y"}]}`

	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	repo, err := NewFileDocumentRepository(context.Background(), FileDocumentRepositoryConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	doc, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(doc.Users) != 1 || doc.Users[0].Email != "a@b.c" {
		t.Errorf("Users = %+v, want the existing user", doc.Users)
	}

	if doc.Sources == nil || doc.Feeds == nil || doc.Sessions == nil {
		t.Errorf("Load() did not normalize missing collections: %+v", doc)
	}
}

func TestRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	for name, repo := range newRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			release, err := repo.Lock(ctx, true)
			if err != nil {
				t.Fatalf("Lock() error = %v", err)
			}
			defer release()

			if _, err := repo.Load(ctx); err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if err := repo.Save(ctx, sampleDocument()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			doc, err := repo.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if len(doc.Users) != 1 || len(doc.Sources) != 1 || len(doc.Feeds) != 1 || len(doc.Sessions) != 1 {
				t.Fatalf("Load() = %+v, want the saved document", doc)
			}

			if got := doc.Feeds[0].SourceIDs; len(got) != 1 || got[0] != "s1" {
				t.Errorf("SourceIDs = %v, want [s1]", got)
			}

			if got := doc.Sessions["tok"].CreatedAt; got != 1700000000000 {
				t.Errorf("CreatedAt = %d, want 1700000000000", got)
			}
		})
	}
}

func TestFileDocumentRepository_LockExcludes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")
	repo, err := NewFileDocumentRepository(context.Background(), FileDocumentRepositoryConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	release, err := repo.Lock(context.Background(), true)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := repo.Lock(ctx, false); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Lock() error = %v, want %v", err, context.DeadlineExceeded)
	}

	release()

	releaseShared, err := repo.Lock(context.Background(), false)
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}

	releaseShared()
}

func TestSQLiteDocumentRepository_ConcurrentModification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite")

	first, err := NewSQLiteDocumentRepository(ctx, SQLiteDocumentRepositoryConfig{DatabasePath: path})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer first.Close()

	second, err := NewSQLiteDocumentRepository(ctx, SQLiteDocumentRepositoryConfig{DatabasePath: path})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer second.Close()

	if _, err := first.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := second.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := second.Save(ctx, sampleDocument()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := first.Save(ctx, domain.NewDocument()); !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("Save() error = %v, want %v", err, ErrConcurrentModification)
	}

	doc, err := first.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(doc.Users) != 1 {
		t.Errorf("Users = %+v, want the document saved by the other writer", doc.Users)
	}
}

func TestNewRepositoryFactory(t *testing.T) {
	t.Parallel()

	if _, err := NewRepositoryFactory(RepositoryConfig{Driver: "postgres"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("NewRepositoryFactory() error = %v, want %v", err, ErrUnknownDriver)
	}

	factory, err := NewRepositoryFactory(RepositoryConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "db.sqlite"),
	})
	if err != nil {
		t.Fatalf("NewRepositoryFactory() error = %v", err)
	}

	repo, err := factory(context.Background())
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*SQLiteDocumentRepository); !ok {
		t.Errorf("factory() = %T, want *SQLiteDocumentRepository", repo)
	}
}
