// Package warehouse provides typed access to the annotations table, the
// durable system of record that mirrors card service annotations and holds
// global (card-less) annotations.
package warehouse

import (
	"context"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/models"
)

// Filter narrows Select. Zero values mean "no restriction".
type Filter struct {
	Range  models.DateRange
	CardID *int64
	// WithIDOnly keeps rows that carry a card service id.
	WithIDOnly bool
	// GlobalOnly keeps rows with neither id nor card id.
	GlobalOnly bool
	// Colors keeps rows whose color is one of the given hex values.
	Colors []string
}

// Fields are the columns Update rewrites. Nil CreatedBy or CreatedAt keep the
// stored values.
type Fields struct {
	Content   string
	Color     string
	EntryDate time.Time
	CreatedBy *models.Author
	CreatedAt *time.Time
}

// Repository is the warehouse client used by the engine and the directory.
// Every method returns a *WarehouseError on failure.
type Repository interface {
	Insert(ctx context.Context, a models.Annotation) error
	Update(ctx context.Context, id int64, f Fields) error
	DeleteByID(ctx context.Context, id int64) (int64, error)
	// DeleteByContentAndDate removes global rows by (content, entry date).
	// The key is not unique: every matching row is removed.
	DeleteByContentAndDate(ctx context.Context, content string, entryDate time.Time) (int64, error)
	// Select returns matching rows ordered by entry date, newest first.
	Select(ctx context.Context, f Filter) ([]models.Annotation, error)
}
