// Package directory is the read path over the warehouse: range and card
// scoped queries used for display and by the push and delete flows.
package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
)

type Directory struct {
	store warehouse.Repository
}

func New(store warehouse.Repository) *Directory {
	return &Directory{store: store}
}

// InRange returns every annotation whose entry date lies in r.
func (d *Directory) InRange(ctx context.Context, r models.DateRange) ([]models.Annotation, error) {
	return d.store.Select(ctx, warehouse.Filter{Range: r})
}

// ForCard returns the annotations mirrored for cardID.
func (d *Directory) ForCard(ctx context.Context, cardID int64, r models.DateRange) ([]models.Annotation, error) {
	return d.store.Select(ctx, warehouse.Filter{Range: r, CardID: &cardID})
}

// Globals returns warehouse-only annotations.
func (d *Directory) Globals(ctx context.Context, r models.DateRange) ([]models.Annotation, error) {
	return d.store.Select(ctx, warehouse.Filter{Range: r, GlobalOnly: true})
}

// PushCandidates returns rows in r whose color is one of colors. An empty
// color list selects every row. Colors may be palette names or hex values.
func (d *Directory) PushCandidates(ctx context.Context, r models.DateRange, colors []string) ([]models.Annotation, error) {
	hex, err := models.ParseColors(colors)
	if err != nil {
		return nil, err
	}
	return d.store.Select(ctx, warehouse.Filter{Range: r, Colors: hex})
}

// ColorCount is one line of a Summary.
type ColorCount struct {
	Hex   string
	Name  string
	Count int
}

type Summary struct {
	Total   int
	Globals int
	ByColor []ColorCount
}

func (s Summary) String() string {
	return fmt.Sprintf("Total: %d annotations", s.Total)
}

// Summarize counts rows per color. Palette colors come first in palette order,
// followed by unknown colors sorted by hex.
func Summarize(rows []models.Annotation) Summary {
	s := Summary{Total: len(rows)}
	counts := make(map[string]int)
	for _, a := range rows {
		if a.IsGlobal() {
			s.Globals++
		}
		counts[canonicalHex(a.Color)]++
	}

	for _, c := range models.Palette {
		if n, ok := counts[c.Hex]; ok {
			s.ByColor = append(s.ByColor, ColorCount{Hex: c.Hex, Name: c.Name, Count: n})
			delete(counts, c.Hex)
		}
	}

	rest := make([]string, 0, len(counts))
	for hex := range counts {
		rest = append(rest, hex)
	}
	sort.Strings(rest)
	for _, hex := range rest {
		s.ByColor = append(s.ByColor, ColorCount{Hex: hex, Name: models.ColorName(hex), Count: counts[hex]})
	}
	return s
}

func canonicalHex(c string) string {
	if hex, err := models.ParseColor(c); err == nil {
		return hex
	}
	return c
}
