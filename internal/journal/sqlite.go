package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/dbx"
)

const selectEntries = `SELECT operation_id, kind, card_id, annotation_id, phase, status, message, at_unix_nano FROM journal`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journal (operation_id, kind, card_id, annotation_id, phase, status, message, at_unix_nano)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.OperationID, string(e.Kind), nullable(e.CardID), nullable(e.AnnotationID),
		e.Phase, string(e.Status), e.Message, e.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record journal entry %s/%s: %w", e.OperationID, e.Phase, err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return r.list(ctx, selectEntries+` ORDER BY seq DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) Failures(ctx context.Context, limit int) ([]Entry, error) {
	return r.list(ctx, selectEntries+` WHERE status = ? ORDER BY seq DESC LIMIT ?`, string(StatusFailed), limit)
}

func (r *SQLiteRepository) Operation(ctx context.Context, operationID string) ([]Entry, error) {
	return r.list(ctx, selectEntries+` WHERE operation_id = ? ORDER BY seq`, operationID)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var (
			e             Entry
			kind, status  string
			cardID, annID sql.NullInt64
			atUnixNano    int64
		)
		if err := rows.Scan(&e.OperationID, &kind, &cardID, &annID, &e.Phase, &status, &e.Message, &atUnixNano); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		e.Kind = Kind(kind)
		e.Status = Status(status)
		if cardID.Valid {
			v := cardID.Int64
			e.CardID = &v
		}
		if annID.Valid {
			v := annID.Int64
			e.AnnotationID = &v
		}
		e.At = time.Unix(0, atUnixNano).UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal rows: %w", err)
	}
	return result, nil
}

func nullable(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
