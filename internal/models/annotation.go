// Package models defines the annotation entity shared by the card service,
// the warehouse and the reconciliation engine.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/common"
	"golang.org/x/text/unicode/norm"
)

// Author identifies the human who wrote an annotation.
type Author struct {
	UserID   *int64
	UserName string
}

// Annotation is a dated, colored note. ID and CardID are nil for global
// (warehouse-only) annotations.
type Annotation struct {
	ID        *int64
	CardID    *int64
	Content   string
	EntryDate time.Time
	Color     string
	CreatedBy *Author
	CreatedAt *time.Time
}

// IsGlobal reports whether the annotation lives only in the warehouse.
func (a Annotation) IsGlobal() bool {
	return a.ID == nil && a.CardID == nil
}

// Draft is an annotation that has not been written anywhere yet.
type Draft struct {
	Content   string
	EntryDate time.Time
	Color     string
	Author    *Author
}

// NormalizeContent returns s in Unicode NFC. Content is compared byte for
// byte on both stores, so every write and every match goes through it.
func NormalizeContent(s string) string {
	return norm.NFC.String(s)
}

// Validate normalizes the content and the color and checks the fields every
// write path needs. It returns an error wrapping common.ErrValidation.
func (d *Draft) Validate() error {
	d.Content = NormalizeContent(d.Content)
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: annotation text is empty", common.ErrValidation)
	}
	if d.EntryDate.IsZero() {
		return fmt.Errorf("%w: annotation date is missing", common.ErrValidation)
	}
	if d.Color == "" {
		d.Color = DefaultColor
		return nil
	}
	hex, err := ParseColor(d.Color)
	if err != nil {
		return err
	}
	d.Color = hex
	return nil
}

// ValidateStored checks a draft built from a stored row. Content and date
// are checked as in Validate, but the color is kept as stored: hex values
// outside the palette are carried through, and only an empty color falls
// back to DefaultColor.
func (d *Draft) ValidateStored() error {
	color := d.Color
	d.Color = ""
	if err := d.Validate(); err != nil {
		d.Color = color
		return err
	}
	if color != "" {
		d.Color = color
	}
	return nil
}

// Matches reports whether a has the same content, entry date and color as d.
func (d Draft) Matches(a Annotation) bool {
	return NormalizeContent(a.Content) == NormalizeContent(d.Content) &&
		SameDate(a.EntryDate, d.EntryDate) &&
		strings.EqualFold(a.Color, d.Color)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Time returns a pointer to t.
func Time(t time.Time) *time.Time {
	return &t
}
