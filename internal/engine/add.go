package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
)

// CardOutcome is the result of one card in a multi-card operation. Phase and
// Err are empty on success.
type CardOutcome struct {
	CardID       int64
	AnnotationID *int64
	Phase        string
	Err          error
}

// AddResult reports an Add. Global adds touch only the warehouse and leave
// the card lists empty. Partial lists cards where the card service accepted
// the annotation but the warehouse insert failed; those are not rolled back.
type AddResult struct {
	OperationID  string
	Global       bool
	SuccessCards []int64
	AssignedIDs  map[int64]int64
	Partial      []CardOutcome
	Failed       []CardOutcome
}

// Add writes d to each card and mirrors it into the warehouse. Without cards
// the annotation is global and only the warehouse is written. Validation
// errors are returned before any call is made; per-card failures are
// reported in the result.
func (e *Engine) Add(ctx context.Context, d models.Draft, cardIDs []int64) (AddResult, error) {
	if err := d.Validate(); err != nil {
		return AddResult{}, err
	}

	op := journal.NewOperation(journal.KindAdd)
	res := AddResult{OperationID: op.ID, AssignedIDs: map[int64]int64{}}

	cardIDs = uniqueIDs(cardIDs)
	if len(cardIDs) == 0 {
		res.Global = true
		return res, e.addGlobal(ctx, op, d)
	}

	outcomes := make([]CardOutcome, len(cardIDs))
	e.forEach(len(cardIDs), func(i int) {
		outcomes[i] = e.addToCardAndMirror(ctx, op, cardIDs[i], d)
	})

	for _, o := range outcomes {
		switch {
		case o.Err == nil:
			res.SuccessCards = append(res.SuccessCards, o.CardID)
			res.AssignedIDs[o.CardID] = *o.AnnotationID
		case o.AnnotationID != nil:
			res.Partial = append(res.Partial, o)
			res.AssignedIDs[o.CardID] = *o.AnnotationID
		default:
			res.Failed = append(res.Failed, o)
		}
	}
	return res, nil
}

func (e *Engine) addGlobal(ctx context.Context, op journal.Operation, d models.Draft) error {
	err := e.store.Insert(ctx, models.Annotation{
		Content:   d.Content,
		EntryDate: d.EntryDate,
		Color:     d.Color,
		CreatedBy: d.Author,
		CreatedAt: models.Time(e.now().UTC()),
	})
	e.record(ctx, op.Entry(PhaseWarehouse, nil, nil, err, e.now()))
	if err != nil {
		e.log.Error(ctx, "global annotation insert failed", "operation_id", op.ID, "error", err)
		return &PhaseError{Phase: PhaseWarehouse, Err: err}
	}
	e.log.Info(ctx, "global annotation added", "operation_id", op.ID)
	return nil
}

func (e *Engine) addToCardAndMirror(ctx context.Context, op journal.Operation, cardID int64, d models.Draft) CardOutcome {
	out := CardOutcome{CardID: cardID}

	created, phase, err := e.addToCard(ctx, op, cardID, d)
	if err != nil {
		out.Phase, out.Err = phase, err
		return out
	}
	out.AnnotationID = created.ID

	createdAt := created.CreatedAt
	if createdAt == nil {
		createdAt = models.Time(e.now().UTC())
	}
	author := created.CreatedBy
	if author == nil {
		author = d.Author
	}
	err = e.store.Insert(ctx, models.Annotation{
		ID:        created.ID,
		CardID:    &cardID,
		Content:   d.Content,
		EntryDate: d.EntryDate,
		Color:     d.Color,
		CreatedBy: author,
		CreatedAt: createdAt,
	})
	e.record(ctx, op.Entry(PhaseWarehouse, &cardID, created.ID, err, e.now()))
	if err != nil {
		out.Phase = PhaseWarehouse
		out.Err = &PhaseError{CardID: &cardID, Phase: PhaseWarehouse, Err: err}
		e.log.Warn(ctx, "annotation added to card but not mirrored", "operation_id", op.ID, "card_id", cardID, "annotation_id", *created.ID, "error", err)
	}
	return out
}

// addToCard runs fetch, snapshot, save and resolve for one card and returns
// the annotation the card service created. On failure it returns the phase.
func (e *Engine) addToCard(ctx context.Context, op journal.Operation, cardID int64, d models.Draft) (models.Annotation, string, error) {
	before, phase, err := e.saveDelta(ctx, op, cardID, carddoc.Delta{New: []models.Draft{d}})
	if err != nil {
		return models.Annotation{}, phase, err
	}

	fail := func(err error) (models.Annotation, string, error) {
		e.record(ctx, op.Entry(PhaseResolve, &cardID, nil, err, e.now()))
		e.log.Warn(ctx, "assigned id not resolved", "operation_id", op.ID, "card_id", cardID, "error", err)
		return models.Annotation{}, PhaseResolve, &PhaseError{CardID: &cardID, Phase: PhaseResolve, Err: err}
	}

	after, err := e.cards.FetchDefinition(ctx, cardID)
	if err != nil {
		return fail(err)
	}
	afterAnns := after.Annotations(cardID)
	id, err := carddoc.ResolveAssignedID(before.Annotations(cardID), afterAnns, d)
	if err != nil {
		return fail(err)
	}

	created := models.Annotation{ID: &id, CardID: &cardID}
	for _, a := range afterAnns {
		if a.ID != nil && *a.ID == id {
			created = a
			break
		}
	}
	e.record(ctx, op.Entry(PhaseResolve, &cardID, &id, nil, e.now()))
	e.log.Info(ctx, "annotation added to card", "operation_id", op.ID, "card_id", cardID, "annotation_id", id)
	return created, "", nil
}

// saveDelta fetches the card, snapshots it when an archiver is set and saves
// the merged payload. It returns the definition as fetched.
func (e *Engine) saveDelta(ctx context.Context, op journal.Operation, cardID int64, delta carddoc.Delta) (*carddoc.Definition, string, error) {
	var annID *int64
	if len(delta.Deleted) == 1 {
		annID = &delta.Deleted[0]
	}
	fail := func(phase string, err error) (*carddoc.Definition, string, error) {
		e.record(ctx, op.Entry(phase, &cardID, annID, err, e.now()))
		e.log.Warn(ctx, "card phase failed", "operation_id", op.ID, "card_id", cardID, "phase", phase, "error", err)
		return nil, phase, &PhaseError{CardID: &cardID, Phase: phase, Err: err}
	}

	def, err := e.cards.FetchDefinition(ctx, cardID)
	if err != nil {
		return fail(PhaseFetch, err)
	}

	if e.archiver != nil {
		key, err := e.archiver.Archive(ctx, cardID, *def)
		if err != nil {
			return fail(PhaseSnapshot, err)
		}
		e.log.Debug(ctx, "definition archived", "card_id", cardID, "key", key)
	}

	payload, err := carddoc.BuildSavePayload(def, delta)
	if err != nil {
		return fail(PhaseSave, err)
	}
	if _, err := e.cards.SaveDefinition(ctx, cardID, payload); err != nil {
		return fail(PhaseSave, err)
	}
	e.record(ctx, op.Entry(PhaseSave, &cardID, annID, nil, e.now()))
	return def, "", nil
}

// PushRow is the outcome of pushing one warehouse row.
type PushRow struct {
	Annotation models.Annotation
	// AssignedIDs maps card id to the id the card service minted.
	AssignedIDs map[int64]int64
	Failed      []CardOutcome
}

type PushResult struct {
	OperationID string
	Pushed      int
	Failed      int
	Rows        []PushRow
}

// Push adds every warehouse row in r whose color is in colors (all colors
// when empty) to each target card. A row counts as pushed when every card
// accepted it. Rows in other colors are not attempted. The warehouse is not
// written; the next Sync mirrors the assigned ids.
func (e *Engine) Push(ctx context.Context, r models.DateRange, colors []string, cardIDs []int64) (PushResult, error) {
	cardIDs = uniqueIDs(cardIDs)
	if len(cardIDs) == 0 {
		return PushResult{}, fmt.Errorf("%w: push needs at least one target card", common.ErrValidation)
	}
	hex, err := models.ParseColors(colors)
	if err != nil {
		return PushResult{}, err
	}

	op := journal.NewOperation(journal.KindPush)
	res := PushResult{OperationID: op.ID}

	rows, err := e.store.Select(ctx, warehouse.Filter{Range: r, Colors: hex})
	if err != nil {
		e.record(ctx, op.Entry(PhaseSelect, nil, nil, err, e.now()))
		return res, &PhaseError{Phase: PhaseSelect, Err: err}
	}

	for _, row := range rows {
		pr := PushRow{Annotation: row, AssignedIDs: map[int64]int64{}}
		d := models.Draft{Content: row.Content, EntryDate: row.EntryDate, Color: row.Color, Author: row.CreatedBy}

		if err := d.ValidateStored(); err != nil {
			for _, id := range cardIDs {
				pr.Failed = append(pr.Failed, CardOutcome{CardID: id, Phase: PhaseValidate, Err: err})
			}
		} else {
			outcomes := make([]CardOutcome, len(cardIDs))
			e.forEach(len(cardIDs), func(i int) {
				o := CardOutcome{CardID: cardIDs[i]}
				created, phase, err := e.addToCard(ctx, op, cardIDs[i], d)
				if err != nil {
					o.Phase, o.Err = phase, err
				} else {
					o.AnnotationID = created.ID
				}
				outcomes[i] = o
			})
			for _, o := range outcomes {
				if o.Err != nil {
					pr.Failed = append(pr.Failed, o)
					continue
				}
				pr.AssignedIDs[o.CardID] = *o.AnnotationID
			}
		}

		if len(pr.Failed) == 0 {
			res.Pushed++
		} else {
			res.Failed++
		}
		res.Rows = append(res.Rows, pr)
	}

	e.log.Info(ctx, "push finished", "operation_id", op.ID, "pushed", res.Pushed, "failed", res.Failed)
	return res, nil
}
