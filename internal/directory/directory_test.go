package directory

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	warehouse.Repository
	filters []warehouse.Filter
	rows    []models.Annotation
	err     error
}

func (f *fakeRepo) Select(_ context.Context, flt warehouse.Filter) ([]models.Annotation, error) {
	f.filters = append(f.filters, flt)
	return f.rows, f.err
}

func rng() models.DateRange {
	return models.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestDirectory_Filters(t *testing.T) {
	repo := &fakeRepo{}
	d := New(repo)
	ctx := context.Background()

	_, err := d.InRange(ctx, rng())
	require.NoError(t, err)
	_, err = d.ForCard(ctx, 7, rng())
	require.NoError(t, err)
	_, err = d.Globals(ctx, models.DateRange{})
	require.NoError(t, err)
	_, err = d.PushCandidates(ctx, rng(), []string{"red", "#72b0d7"})
	require.NoError(t, err)
	_, err = d.PushCandidates(ctx, rng(), nil)
	require.NoError(t, err)

	want := []warehouse.Filter{
		{Range: rng()},
		{Range: rng(), CardID: models.Int64(7)},
		{GlobalOnly: true},
		{Range: rng(), Colors: []string{"#FD7F76", "#72B0D7"}},
		{Range: rng(), Colors: []string{}},
	}
	if diff := cmp.Diff(want, repo.filters); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestPushCandidates_UnknownColor(t *testing.T) {
	repo := &fakeRepo{}
	_, err := New(repo).PushCandidates(context.Background(), rng(), []string{"Teal"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, repo.filters)
}

func TestSummarize(t *testing.T) {
	rows := []models.Annotation{
		{ID: models.Int64(1), CardID: models.Int64(5), Color: "#FD7F76"},
		{Color: "#72b0d7"},
		{Color: "#72B0D7"},
		{Color: "#ABCDEF"},
		{ID: models.Int64(2), CardID: models.Int64(5), Color: "#FD7F76"},
	}

	got := Summarize(rows)
	want := Summary{
		Total:   5,
		Globals: 3,
		ByColor: []ColorCount{
			{Hex: "#72B0D7", Name: "Blue", Count: 2},
			{Hex: "#FD7F76", Name: "Red", Count: 2},
			{Hex: "#ABCDEF", Name: "#ABCDEF", Count: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Total: 5 annotations", got.String())
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, 0, got.Total)
	assert.Empty(t, got.ByColor)
}
