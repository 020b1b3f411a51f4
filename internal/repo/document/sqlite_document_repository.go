package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

// SQLiteDocumentRepositoryConfig holds configuration for the SQLite document repository.
type SQLiteDocumentRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string
}

// SQLiteDocumentRepository implements Repository by keeping the JSON document
// in a single row. Every save bumps a version column, and a save based on a
// stale version fails with ErrConcurrentModification.
type SQLiteDocumentRepository struct {
	db  *sql.DB
	log logging.Logger

	lock    *sync.RWMutex // go-sqlite does not support concurrent writes
	version atomic.Int64
}

var _ Repository = (*SQLiteDocumentRepository)(nil)

// SQLiteDocumentRepositoryFactory creates a factory function that returns a new SQLiteDocumentRepository.
func SQLiteDocumentRepositoryFactory(cfg SQLiteDocumentRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteDocumentRepository(ctx, cfg)
	}
}

// NewSQLiteDocumentRepository opens the database and creates the schema and
// the empty document if needed.
func NewSQLiteDocumentRepository(
	ctx context.Context,
	cfg SQLiteDocumentRepositoryConfig,
) (*SQLiteDocumentRepository, error) {
	log := logging.GetLogger("repo.document.sqlite_document_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := initializeDB(ctx, db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.DebugContext(ctx, "database ready")

	return &SQLiteDocumentRepository{
		db:   db,
		log:  log,
		lock: new(sync.RWMutex),
	}, nil
}

func initializeDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			body       TEXT    NOT NULL,
			version    INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	body, err := json.Marshal(domain.NewDocument())
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO documents (id, body, version, updated_at) VALUES (1, ?, 1, ?)",
		string(body),
		time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

// Lock implements Repository.Lock within the process. Writers from other
// processes are detected by the version check in Save.
func (r *SQLiteDocumentRepository) Lock(_ context.Context, exclusive bool) (func(), error) {
	if exclusive {
		r.lock.Lock()

		return r.lock.Unlock, nil
	}

	r.lock.RLock()

	return r.lock.RUnlock, nil
}

// Load implements Repository.Load.
func (r *SQLiteDocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	var (
		body    string
		version int64
	)

	err := r.db.QueryRowContext(ctx, "SELECT body, version FROM documents WHERE id = 1").Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	doc := domain.NewDocument()
	if err := json.Unmarshal([]byte(body), doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc.Normalize()
	r.version.Store(version)

	return doc, nil
}

// Save implements Repository.Save.
func (r *SQLiteDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE documents SET body = ?, version = version + 1, updated_at = ? WHERE id = 1 AND version = ?",
		string(body),
		time.Now().UnixMilli(),
		r.version.Load(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_BUSY {
			err = errors.Join(ErrConcurrentModification, err)
		}

		return fmt.Errorf("update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		r.log.WarnContext(ctx, "stale document version", "version", r.version.Load())

		return ErrConcurrentModification
	}

	r.version.Add(1)

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteDocumentRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
