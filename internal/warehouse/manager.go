package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Settings describe how to reach the annotations table.
type Settings struct {
	DSN          string
	Schema       string
	Table        string
	QueryTimeout time.Duration
	MaxOpenConns int
}

// driverName is a seam for tests.
var driverName = "pgx"

// Manager owns the connection pool and vends the annotations repository.
type Manager struct {
	db       *sql.DB
	settings Settings
}

// Open connects to the warehouse and verifies the connection within the
// configured query timeout.
func Open(ctx context.Context, s Settings) (*Manager, error) {
	db, err := sql.Open(driverName, s.DSN)
	if err != nil {
		return nil, wrap("open", err)
	}
	if s.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := dbx.Deadline(ctx, s.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, wrap("ping", fmt.Errorf("%s: %w", s.Table, err))
	}

	return &Manager{db: db, settings: s}, nil
}

// Annotations returns the repository bound to the pool.
func (m *Manager) Annotations() Repository {
	return m.Repository(m.db)
}

// Repository binds the annotations repository to db, typically a transaction.
func (m *Manager) Repository(db dbx.DBTX) *PostgresRepository {
	return NewPostgresRepository(db, m.settings.Schema, m.settings.Table, m.settings.QueryTimeout)
}

func (m *Manager) Close() error {
	return m.db.Close()
}
