package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/dbx"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/jackc/pgx/v5"
)

const columns = `CARD_ID, ID, DOMO_USER_ID, DOMO_USER_NAME, COLOR, CONTENT, ENTRY_DATE, CREATED_DATE`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db      dbx.DBTX
	table   string
	timeout time.Duration
}

// NewPostgresRepository binds a repository to db and the schema-qualified
// table. Every call is bounded by timeout.
func NewPostgresRepository(db dbx.DBTX, schema, table string, timeout time.Duration) *PostgresRepository {
	ident := pgx.Identifier{table}
	if schema != "" {
		ident = pgx.Identifier{schema, table}
	}
	return &PostgresRepository{db: db, table: ident.Sanitize(), timeout: timeout}
}

func (r *PostgresRepository) Insert(ctx context.Context, a models.Annotation) error {
	ctx, cancel := dbx.Deadline(ctx, r.timeout)
	defer cancel()

	userID, userName := authorArgs(a.CreatedBy)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, r.table, columns)
	_, err := r.db.ExecContext(ctx, query,
		nullInt64(a.CardID), nullInt64(a.ID), userID, userName,
		a.Color, a.Content, models.Day(a.EntryDate), nullTime(a.CreatedAt))
	return wrap("insert", err)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, f Fields) error {
	ctx, cancel := dbx.Deadline(ctx, r.timeout)
	defer cancel()

	userID, userName := authorArgs(f.CreatedBy)
	query := fmt.Sprintf(`UPDATE %s SET CONTENT = $1, COLOR = $2, ENTRY_DATE = $3,
		DOMO_USER_ID = COALESCE($4, DOMO_USER_ID),
		DOMO_USER_NAME = COALESCE($5, DOMO_USER_NAME),
		CREATED_DATE = COALESCE($6, CREATED_DATE)
		WHERE ID = $7`, r.table)
	res, err := r.db.ExecContext(ctx, query,
		f.Content, f.Color, models.Day(f.EntryDate), userID, userName, nullTime(f.CreatedAt), id)
	if err != nil {
		return wrap("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update", err)
	}
	if n == 0 {
		return wrap("update", fmt.Errorf("annotation %d: %w", id, common.ErrNotFound))
	}
	return nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE ID = $1`, r.table)
	n, err := r.exec(ctx, query, id)
	return n, wrap("delete", err)
}

func (r *PostgresRepository) DeleteByContentAndDate(ctx context.Context, content string, entryDate time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE CONTENT = $1 AND ENTRY_DATE = $2 AND ID IS NULL`, r.table)
	n, err := r.exec(ctx, query, content, models.Day(entryDate))
	return n, wrap("delete", err)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := dbx.Deadline(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) Select(ctx context.Context, f Filter) ([]models.Annotation, error) {
	ctx, cancel := dbx.Deadline(ctx, r.timeout)
	defer cancel()

	query, args := r.selectQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("select", err)
	}
	defer rows.Close()

	var result []models.Annotation
	for rows.Next() {
		var (
			cardID, id, userID sql.NullInt64
			userName           sql.NullString
			createdAt          sql.NullTime
			a                  models.Annotation
		)
		if err := rows.Scan(&cardID, &id, &userID, &userName, &a.Color, &a.Content, &a.EntryDate, &createdAt); err != nil {
			return nil, wrap("select", err)
		}
		if cardID.Valid {
			a.CardID = models.Int64(cardID.Int64)
		}
		if id.Valid {
			a.ID = models.Int64(id.Int64)
		}
		if userID.Valid || userName.Valid {
			a.CreatedBy = &models.Author{UserName: userName.String}
			if userID.Valid {
				a.CreatedBy.UserID = models.Int64(userID.Int64)
			}
		}
		if createdAt.Valid {
			a.CreatedAt = models.Time(createdAt.Time)
		}
		a.EntryDate = models.Day(a.EntryDate)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("select", err)
	}
	return result, nil
}

func (r *PostgresRepository) selectQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.Range.From.IsZero() {
		where = append(where, "ENTRY_DATE >= "+arg(models.Day(f.Range.From)))
	}
	if !f.Range.To.IsZero() {
		where = append(where, "ENTRY_DATE <= "+arg(models.Day(f.Range.To)))
	}
	if f.CardID != nil {
		where = append(where, "CARD_ID = "+arg(*f.CardID))
	}
	if f.WithIDOnly {
		where = append(where, "ID IS NOT NULL")
	}
	if f.GlobalOnly {
		where = append(where, "ID IS NULL AND CARD_ID IS NULL")
	}
	if len(f.Colors) > 0 {
		ph := make([]string, 0, len(f.Colors))
		for _, c := range f.Colors {
			ph = append(ph, arg(strings.ToUpper(c)))
		}
		where = append(where, "UPPER(COLOR) IN ("+strings.Join(ph, ", ")+")")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, columns, r.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ENTRY_DATE DESC"
	return query, args
}

func authorArgs(a *models.Author) (any, any) {
	if a == nil {
		return nil, nil
	}
	var name any
	if a.UserName != "" {
		name = a.UserName
	}
	return nullInt64(a.UserID), name
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
