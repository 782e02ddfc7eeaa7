package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/annokeeper/internal/dbx"
	"github.com/dmitrijs2005/annokeeper/internal/filex"
	"github.com/dmitrijs2005/annokeeper/internal/journal/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Store owns the journal database.
type Store struct {
	db *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open creates the journal file (and its directory) at path if needed and
// applies pending migrations. ":memory:" opens a private in-memory journal.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Entries() Repository {
	return NewSQLiteRepository(s.db)
}

// RecordBatch writes entries atomically.
func (s *Store) RecordBatch(ctx context.Context, entries []Entry) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, e := range entries {
			if err := repo.Record(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
