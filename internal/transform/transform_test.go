package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

func TestApplyDispatch(t *testing.T) {
	ds := sampleDataset(t)
	ctx := context.Background()

	out, outcome, err := Apply(ctx, ds, Request{
		Kind:     KindSubtable,
		Subtable: &SubtableSpec{Rows: &RowAxis{Spec: "0-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 2, outcome.RowsRemoved)
	assert.NotEqual(t, ds.ID(), out.ID())
}

func TestApplyUnknownKind(t *testing.T) {
	_, _, err := Apply(context.Background(), sampleDataset(t), Request{Kind: "transmogrify"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidRequest, apperrors.CodeOf(err))
}

func TestApplyMissingPayload(t *testing.T) {
	kinds := []Kind{KindSubtable, KindReplace, KindMissing, KindDeduplicate, KindScale, KindEncode, KindFilter}
	for _, kind := range kinds {
		_, _, err := Apply(context.Background(), sampleDataset(t), Request{Kind: kind})
		require.Error(t, err, "kind %s", kind)
		assert.Equal(t, apperrors.CodeInvalidRequest, apperrors.CodeOf(err))
	}
}

func TestApplyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Apply(ctx, sampleDataset(t), Request{Kind: KindDeduplicate, Deduplicate: &DedupSpec{}})
	assert.ErrorIs(t, err, context.Canceled)
}

// Exercises a realistic cleaning pipeline end to end: impute, dedup,
// scale, then one-hot encode.
func TestApplyPipeline(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "Age", Cells: []dataset.Cell{dataset.Number(25), dataset.Missing(), dataset.Number(35), dataset.Number(25)}},
		{Name: "City", Cells: []dataset.Cell{dataset.Text("Warsaw"), dataset.Text("Krakow"), dataset.Text("Gdansk"), dataset.Text("Warsaw")}},
	})
	ctx := context.Background()

	steps := []Request{
		{Kind: KindMissing, Missing: &MissingSpec{Mode: Impute, Column: "Age", Method: FillMean}},
		{Kind: KindDeduplicate, Deduplicate: &DedupSpec{}},
		{Kind: KindScale, Scale: &ScaleSpec{Method: MinMax, Columns: []string{"Age"}}},
		{Kind: KindEncode, Encode: &EncodeSpec{Method: OneHot, Columns: []string{"City"}}},
	}

	for _, req := range steps {
		next, _, err := Apply(ctx, ds, req)
		require.NoError(t, err, "kind %s", req.Kind)
		ds = next
	}

	// Mean of [25, 35, 25] fills the gap at ~28.33; dedup removes the
	// repeated (25, Warsaw) row; min-max maps the ages into [0, 1];
	// one-hot expands City.
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"Age", "City_Warsaw", "City_Krakow", "City_Gdansk"}, ds.ColumnNames())
	assert.Equal(t, 0, ds.MissingCount())

	lo, _ := ds.Cell(0, 0).Float()
	hi, _ := ds.Cell(2, 0).Float()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}
