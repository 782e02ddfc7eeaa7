package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
)

// SyncResult tallies one card's sync. Err is set when the fetch or the
// warehouse select failed and nothing was attempted.
type SyncResult struct {
	CardID   int64
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
	Errors   []error
	Err      error
}

// Sync mirrors the card's annotations into the warehouse. Card-only ids are
// inserted, changed ones are updated, and warehouse-only rows are left alone.
// Per-annotation failures are counted; only a failed fetch or select aborts.
func (e *Engine) Sync(ctx context.Context, cardID int64, r models.DateRange) (SyncResult, error) {
	op := journal.NewOperation(journal.KindSync)
	log := e.log.With("operation_id", op.ID, "card_id", cardID)
	res := SyncResult{CardID: cardID}

	def, err := e.cards.FetchDefinition(ctx, cardID)
	if err != nil {
		return e.abortSync(ctx, op, res, PhaseFetch, err)
	}

	var remote []models.Annotation
	for _, a := range def.Annotations(cardID) {
		if a.ID == nil {
			log.Debug(ctx, "card annotation without id ignored", "content", a.Content)
			continue
		}
		if r.Contains(a.EntryDate) {
			remote = append(remote, a)
		}
	}

	rows, err := e.store.Select(ctx, warehouse.Filter{CardID: &cardID, WithIDOnly: true})
	if err != nil {
		return e.abortSync(ctx, op, res, PhaseSelect, err)
	}
	mirrored := make(map[int64]models.Annotation, len(rows))
	for _, row := range rows {
		mirrored[*row.ID] = row
	}

	for _, a := range remote {
		row, ok := mirrored[*a.ID]
		switch {
		case !ok:
			err = e.store.Insert(ctx, a)
			if err == nil {
				res.Inserted++
			}
		case needsUpdate(a, row):
			err = e.store.Update(ctx, *a.ID, warehouse.Fields{
				Content:   a.Content,
				Color:     a.Color,
				EntryDate: a.EntryDate,
				CreatedBy: a.CreatedBy,
				CreatedAt: a.CreatedAt,
			})
			if err == nil {
				res.Updated++
			}
		default:
			res.Skipped++
			continue
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, &PhaseError{CardID: &cardID, Phase: PhaseWarehouse, Err: err})
			log.Warn(ctx, "annotation sync failed", "annotation_id", *a.ID, "error", err)
			e.record(ctx, op.Entry(PhaseWarehouse, &cardID, a.ID, err, e.now()))
		}
	}

	summary := fmt.Sprintf("inserted=%d updated=%d skipped=%d failed=%d", res.Inserted, res.Updated, res.Skipped, res.Failed)
	entry := op.Entry(PhaseWarehouse, &cardID, nil, nil, e.now())
	entry.Message = summary
	e.record(ctx, entry)
	log.Info(ctx, "card synced", "inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

func (e *Engine) abortSync(ctx context.Context, op journal.Operation, res SyncResult, phase string, err error) (SyncResult, error) {
	cardID := res.CardID
	res.Err = &PhaseError{CardID: &cardID, Phase: phase, Err: err}
	e.log.Error(ctx, "card sync aborted", "operation_id", op.ID, "card_id", cardID, "phase", phase, "error", err)
	e.record(ctx, op.Entry(phase, &cardID, nil, err, e.now()))
	return res, res.Err
}

// needsUpdate reports whether the mirrored row differs from the card in
// content, color or date, or can have its creation time backfilled.
func needsUpdate(card, row models.Annotation) bool {
	if card.Content != row.Content ||
		!strings.EqualFold(card.Color, row.Color) ||
		!models.SameDate(card.EntryDate, row.EntryDate) {
		return true
	}
	return row.CreatedAt == nil && card.CreatedAt != nil
}

// SyncCards syncs every card, at most the configured number at a time. The
// results follow the order of ids; one card failing never stops the others.
func (e *Engine) SyncCards(ctx context.Context, ids []int64, r models.DateRange) []SyncResult {
	ids = uniqueIDs(ids)
	results := make([]SyncResult, len(ids))
	e.forEach(len(ids), func(i int) {
		results[i], _ = e.Sync(ctx, ids[i], r)
	})
	return results
}
