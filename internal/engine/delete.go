package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/models"
)

// DeleteResult reports both phases of a Delete independently. A warehouse
// delete may succeed while the card service delete fails, or the reverse.
type DeleteResult struct {
	OperationID string
	// WarehouseRows is the number of rows removed. The content and date path
	// may remove more than one.
	WarehouseRows int64
	WarehouseErr  error
	// CardAttempted is false for annotations that live only in the warehouse.
	CardAttempted bool
	CardErr       error
}

// OK reports whether every attempted phase succeeded.
func (r DeleteResult) OK() bool {
	return r.WarehouseErr == nil && r.CardErr == nil
}

// Delete removes a from the warehouse and, when it belongs to a card, from
// the card service. Annotations without an id are removed from the warehouse
// by content and entry date, which matches every global row sharing both.
func (e *Engine) Delete(ctx context.Context, a models.Annotation) (DeleteResult, error) {
	if a.ID == nil && (strings.TrimSpace(a.Content) == "" || a.EntryDate.IsZero()) {
		return DeleteResult{}, fmt.Errorf("%w: delete needs an id or content and date", common.ErrValidation)
	}

	op := journal.NewOperation(journal.KindDelete)
	res := DeleteResult{OperationID: op.ID}
	log := e.log.With("operation_id", op.ID)

	if a.ID == nil {
		n, err := e.store.DeleteByContentAndDate(ctx, models.NormalizeContent(a.Content), a.EntryDate)
		res.WarehouseRows, res.WarehouseErr = n, wrapPhase(nil, PhaseWarehouse, err)
		e.record(ctx, op.Entry(PhaseWarehouse, nil, nil, err, e.now()))
		if err != nil {
			log.Warn(ctx, "global annotation delete failed", "error", err)
		} else {
			log.Info(ctx, "global annotation deleted", "rows", n)
		}
		return res, nil
	}

	n, err := e.store.DeleteByID(ctx, *a.ID)
	res.WarehouseRows, res.WarehouseErr = n, wrapPhase(a.CardID, PhaseWarehouse, err)
	e.record(ctx, op.Entry(PhaseWarehouse, a.CardID, a.ID, err, e.now()))
	if err != nil {
		log.Warn(ctx, "warehouse delete failed", "annotation_id", *a.ID, "error", err)
	}

	if a.CardID != nil {
		res.CardAttempted = true
		_, _, res.CardErr = e.saveDelta(ctx, op, *a.CardID, carddoc.Delta{Deleted: []int64{*a.ID}})
		if res.CardErr == nil {
			log.Info(ctx, "annotation deleted from card", "card_id", *a.CardID, "annotation_id", *a.ID)
		}
	}
	return res, nil
}

func wrapPhase(cardID *int64, phase string, err error) error {
	if err == nil {
		return nil
	}
	return &PhaseError{CardID: cardID, Phase: phase, Err: err}
}
