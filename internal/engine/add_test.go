package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/cardservice"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var clock = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return clock }

func milestone() models.Draft {
	return models.Draft{Content: "milestone A", EntryDate: day("2024-01-15"), Color: "Blue"}
}

func TestAdd_Global(t *testing.T) {
	cards := newFakeCards()
	store := newMemStore()
	e := New(cards, store, WithClock(fixedClock))

	res, err := e.Add(context.Background(), milestone(), nil)
	require.NoError(t, err)
	assert.True(t, res.Global)
	assert.Empty(t, res.SuccessCards)

	require.Equal(t, 1, store.count())
	row := store.rows[0]
	assert.True(t, row.IsGlobal())
	assert.Equal(t, "#72B0D7", row.Color)
	require.NotNil(t, row.CreatedAt)
	assert.True(t, clock.Equal(*row.CreatedAt))
	assert.Empty(t, cards.fetches)
}

func TestAdd_GlobalWarehouseFailure(t *testing.T) {
	store := newMemStore()
	store.insertErr[0] = errors.New("disk full")

	_, err := New(newFakeCards(), store).Add(context.Background(), milestone(), nil)
	require.ErrorIs(t, err, common.ErrWarehouse)
	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseWarehouse, pe.Phase)
}

func TestAdd_ValidationBeforeAnyCall(t *testing.T) {
	cards := newFakeCards(5)
	store := newMemStore()
	e := New(cards, store)

	for name, d := range map[string]models.Draft{
		"empty text": {Content: " ", EntryDate: day("2024-01-15")},
		"no date":    {Content: "x"},
		"bad color":  {Content: "x", EntryDate: day("2024-01-15"), Color: "Teal"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Add(context.Background(), d, []int64{5})
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
	assert.Empty(t, cards.fetches)
	assert.Zero(t, store.count())
}

func TestAddThenDelete_RoundTripOverHTTP(t *testing.T) {
	cards := newFakeCards(5)
	srv := httptest.NewServer(cards.handler())
	defer srv.Close()

	client := cardservice.NewHTTPClient(srv.URL, testToken, 5*time.Second)
	store := newMemStore()
	e := New(client, store, WithClock(fixedClock))
	ctx := context.Background()

	res, err := e.Add(ctx, milestone(), []int64{5})
	require.NoError(t, err)
	require.Equal(t, []int64{5}, res.SuccessCards)
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Partial)

	view, err := e.CardAnnotations(ctx, 5)
	require.NoError(t, err)
	require.Len(t, view.Annotations, 1)
	a := view.Annotations[0]
	assert.Equal(t, "milestone A", a.Content)
	assert.Equal(t, "2024-01-15", models.FormatDate(a.EntryDate))
	assert.Equal(t, "#72B0D7", a.Color)
	require.NotNil(t, a.ID)
	assert.Equal(t, res.AssignedIDs[5], *a.ID)

	rows := store.forCard(5)
	require.Len(t, rows, 1)
	assert.Equal(t, *a.ID, *rows[0].ID)
	require.NotNil(t, rows[0].CreatedAt)
	assert.True(t, cards.now.Equal(*rows[0].CreatedAt), "created time comes from the card service")

	del, err := e.Delete(ctx, models.Annotation{ID: a.ID, CardID: models.Int64(5)})
	require.NoError(t, err)
	assert.True(t, del.OK())
	assert.True(t, del.CardAttempted)
	assert.Equal(t, int64(1), del.WarehouseRows)

	view, err = e.CardAnnotations(ctx, 5)
	require.NoError(t, err)
	for _, got := range view.Annotations {
		assert.NotEqual(t, *a.ID, *got.ID)
	}
	assert.Empty(t, store.forCard(5))
}

func TestAdd_PartialFailureIsolation(t *testing.T) {
	cards := newFakeCards(5, 6)
	cards.saveErr[6] = &cardservice.RemoteServiceError{Op: "save card definition", StatusCode: http.StatusInternalServerError, Body: "boom"}
	store := newMemStore()

	res, err := New(cards, store).Add(context.Background(), milestone(), []int64{5, 6})
	require.NoError(t, err)

	assert.Equal(t, []int64{5}, res.SuccessCards)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(6), res.Failed[0].CardID)
	assert.Equal(t, PhaseSave, res.Failed[0].Phase)
	assert.ErrorIs(t, res.Failed[0].Err, common.ErrRemoteService)

	require.Len(t, cards.list(5), 1)
	require.Len(t, store.forCard(5), 1)
	assert.Empty(t, cards.list(6))
	assert.Empty(t, store.forCard(6))
}

func TestAdd_WarehouseFailureIsPartialSuccess(t *testing.T) {
	ctx := context.Background()
	jr, err := journal.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer jr.Close()

	cards := newFakeCards(5)
	store := newMemStore()
	store.insertErr[5] = errors.New("warehouse down")

	res, err := New(cards, store, WithJournal(jr.Entries())).Add(ctx, milestone(), []int64{5})
	require.NoError(t, err)
	assert.Empty(t, res.SuccessCards)
	assert.Empty(t, res.Failed)
	require.Len(t, res.Partial, 1)

	p := res.Partial[0]
	assert.Equal(t, PhaseWarehouse, p.Phase)
	require.NotNil(t, p.AnnotationID)
	assert.ErrorIs(t, p.Err, common.ErrWarehouse)
	assert.Len(t, cards.list(5), 1, "card service add is not rolled back")

	entries, err := jr.Entries().Operation(ctx, res.OperationID)
	require.NoError(t, err)
	var phases []string
	for _, e := range entries {
		phases = append(phases, e.Phase+":"+string(e.Status))
	}
	assert.Equal(t, []string{"save:ok", "resolve:ok", "warehouse:failed"}, phases)
}

func TestAdd_AmbiguousIDFails(t *testing.T) {
	cards := newFakeCards(5)
	cards.mintTwice = true
	store := newMemStore()

	res, err := New(cards, store).Add(context.Background(), milestone(), []int64{5})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, PhaseResolve, res.Failed[0].Phase)
	assert.ErrorIs(t, res.Failed[0].Err, carddoc.ErrAmbiguousAssignedID)
	assert.Zero(t, store.count())
}

func TestAdd_RefetchFailure(t *testing.T) {
	cards := newFakeCards(5)
	cards.fetchErr = func(_ int64, call int) error {
		if call == 2 {
			return common.ErrUnavailable
		}
		return nil
	}

	res, err := New(cards, newMemStore()).Add(context.Background(), milestone(), []int64{5})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, PhaseResolve, res.Failed[0].Phase)
	assert.ErrorIs(t, res.Failed[0].Err, common.ErrUnavailable)
}

func TestAdd_Snapshots(t *testing.T) {
	cards := newFakeCards(5, 6)
	arch := &fakeArchiver{}

	res, err := New(cards, newMemStore(), WithArchiver(arch)).Add(context.Background(), milestone(), []int64{5, 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, res.SuccessCards)
	assert.ElementsMatch(t, []int64{5, 6}, arch.keys)

	cards = newFakeCards(5)
	arch = &fakeArchiver{err: errors.New("bucket missing")}
	res, err = New(cards, newMemStore(), WithArchiver(arch)).Add(context.Background(), milestone(), []int64{5})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, PhaseSnapshot, res.Failed[0].Phase)
	assert.Zero(t, cards.saves[5], "no save without a snapshot")
}

func TestAdd_ConcurrentCardsKeepOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ids := []int64{11, 12, 13, 14, 15, 16}
	cards := newFakeCards(ids...)
	store := newMemStore()
	e := New(cards, store, WithConcurrency(4))

	res, err := e.Add(context.Background(), milestone(), append(ids, 11))
	require.NoError(t, err)
	assert.Equal(t, ids, res.SuccessCards)
	assert.Len(t, res.AssignedIDs, len(ids))
	for _, id := range ids {
		assert.Equal(t, 2, cards.fetches[id], "fetch before save and once after")
		assert.Equal(t, 1, cards.saves[id])
		assert.Len(t, store.forCard(id), 1)
	}
}
