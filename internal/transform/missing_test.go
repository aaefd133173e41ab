package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

func gappyDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return dataset.MustNew([]dataset.Column{
		{Name: "Age", Cells: []dataset.Cell{dataset.Number(25), dataset.Missing(), dataset.Number(35)}},
		{Name: "City", Cells: []dataset.Cell{dataset.Text("Warsaw"), dataset.Text("Krakow"), dataset.Text("Warsaw")}},
		{Name: "Score", Cells: []dataset.Cell{dataset.Number(1), dataset.Number(2), dataset.Missing()}},
	})
}

func TestProfile(t *testing.T) {
	p := Profile(gappyDataset(t), false)

	assert.Equal(t, 2, p.TotalMissing)
	assert.Equal(t, []int{1, 2}, p.RowsWithMissing)
	require.Len(t, p.Columns, 2)
	assert.Equal(t, "Age", p.Columns[0].Column)
	assert.Equal(t, []int{1}, p.Columns[0].Rows)
	assert.InDelta(t, 100.0/3, p.Columns[0].Percent, 1e-9)
	assert.Equal(t, "Score", p.Columns[1].Column)
}

func TestProfileTreatEmptyAsMissing(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Text(""), dataset.Text("x")}},
	})

	assert.Equal(t, 0, Profile(ds, false).TotalMissing)
	assert.Equal(t, 1, Profile(ds, true).TotalMissing)
}

func TestDropRows(t *testing.T) {
	out, outcome, err := handleMissing(gappyDataset(t), MissingSpec{Mode: DropRows})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Rows())
	assert.Equal(t, 2, outcome.RowsRemoved)
	assert.Equal(t, "Warsaw", out.Cell(0, 1).String())
}

func TestDropRowsIdempotent(t *testing.T) {
	once, _, err := handleMissing(gappyDataset(t), MissingSpec{Mode: DropRows})
	require.NoError(t, err)
	twice, outcome, err := handleMissing(once, MissingSpec{Mode: DropRows})
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.RowsRemoved)
	assert.Equal(t, once.Fingerprint(), twice.Fingerprint())
}

func TestDropColumns(t *testing.T) {
	out, outcome, err := handleMissing(gappyDataset(t), MissingSpec{Mode: DropColumns})
	require.NoError(t, err)

	assert.Equal(t, []string{"City"}, out.ColumnNames())
	assert.Equal(t, []string{"Age", "Score"}, outcome.ColumnsRemoved)
}

func TestDropColumnsAllMissingFails(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Missing(), dataset.Number(1)}},
		{Name: "b", Cells: []dataset.Cell{dataset.Number(2), dataset.Missing()}},
	})

	_, _, err := handleMissing(ds, MissingSpec{Mode: DropColumns})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInsufficientData, apperrors.CodeOf(err))
}

func TestImputeMean(t *testing.T) {
	out, outcome, err := handleMissing(gappyDataset(t), MissingSpec{
		Mode:   Impute,
		Column: "Age",
		Method: FillMean,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.CellsImputed)
	v, ok := out.Cell(1, 0).Float()
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)
}

func TestImputeMedian(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Number(1), dataset.Number(10), dataset.Number(2), dataset.Missing()}},
	})

	out, _, err := handleMissing(ds, MissingSpec{Mode: Impute, Column: "a", Method: FillMedian})
	require.NoError(t, err)

	v, _ := out.Cell(3, 0).Float()
	assert.Equal(t, 2.0, v)
}

func TestImputeMode(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "c", Cells: []dataset.Cell{dataset.Text("x"), dataset.Text("y"), dataset.Text("x"), dataset.Missing()}},
	})

	out, _, err := handleMissing(ds, MissingSpec{Mode: Impute, Column: "c", Method: FillMode})
	require.NoError(t, err)
	assert.Equal(t, "x", out.Cell(3, 0).String())
}

func TestImputeModeTieKeepsFirstSeen(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "c", Cells: []dataset.Cell{dataset.Text("b"), dataset.Text("a"), dataset.Text("a"), dataset.Text("b"), dataset.Missing()}},
	})

	out, _, err := handleMissing(ds, MissingSpec{Mode: Impute, Column: "c", Method: FillMode})
	require.NoError(t, err)
	assert.Equal(t, "b", out.Cell(4, 0).String())
}

func TestImputeModeTreatEmptyAsMissing(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "City", Cells: []dataset.Cell{dataset.Text("Warsaw"), dataset.Text(""), dataset.Text(""), dataset.Missing()}},
	})

	// With the flag, empty strings are fill targets, never mode
	// candidates: the result must not contain a value the caller's own
	// configuration defines as missing.
	out, outcome, err := handleMissing(ds, MissingSpec{
		Mode:                Impute,
		Column:              "City",
		Method:              FillMode,
		TreatEmptyAsMissing: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.CellsImputed)
	for i := 0; i < out.Rows(); i++ {
		assert.Equal(t, "Warsaw", out.Cell(i, 0).String(), "row %d", i)
	}

	// Without the flag, the empty string is an ordinary value and wins
	// the frequency count.
	out, outcome, err = handleMissing(ds, MissingSpec{Mode: Impute, Column: "City", Method: FillMode})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.CellsImputed)
	assert.Equal(t, "", out.Cell(3, 0).String())
}

func TestImputeModeAllCellsEmptyWithFlag(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Text(""), dataset.Missing()}},
	})

	// Treating the empty strings as missing leaves no candidates at all.
	_, _, err := handleMissing(ds, MissingSpec{
		Mode: Impute, Column: "a", Method: FillMode, TreatEmptyAsMissing: true,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeImputation, apperrors.CodeOf(err))
}

func TestDropRowsMayYieldZeroRows(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Missing(), dataset.Number(1)}},
		{Name: "b", Cells: []dataset.Cell{dataset.Number(2), dataset.Missing()}},
	})

	// Every row has a gap; unlike drop-columns, the empty result is
	// allowed because the schema survives.
	out, outcome, err := handleMissing(ds, MissingSpec{Mode: DropRows})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows())
	assert.Equal(t, 2, outcome.RowsRemoved)
	assert.Equal(t, []string{"a", "b"}, out.ColumnNames())
}

func TestImputeConstant(t *testing.T) {
	out, _, err := handleMissing(gappyDataset(t), MissingSpec{
		Mode:     Impute,
		Column:   "Age",
		Method:   FillConstant,
		Constant: "18",
	})
	require.NoError(t, err)

	v, ok := out.Cell(1, 0).Float()
	assert.True(t, ok)
	assert.Equal(t, 18.0, v)
}

func TestImputeNoMissingIsNoop(t *testing.T) {
	ds := gappyDataset(t)
	out, outcome, err := handleMissing(ds, MissingSpec{Mode: Impute, Column: "City", Method: FillMode})
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.CellsImputed)
	assert.Equal(t, ds.Fingerprint(), out.Fingerprint())
}

func TestImputeErrors(t *testing.T) {
	allMissing := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Missing(), dataset.Missing()}},
	})

	tests := []struct {
		name string
		ds   *dataset.Dataset
		spec MissingSpec
		code apperrors.Code
	}{
		{
			name: "mean on categorical column",
			ds:   gappyDataset(t),
			spec: MissingSpec{Mode: Impute, Column: "City", Method: FillMean},
			code: apperrors.CodeImputation,
		},
		{
			name: "mode on numeric column",
			ds:   gappyDataset(t),
			spec: MissingSpec{Mode: Impute, Column: "Age", Method: FillMode},
			code: apperrors.CodeImputation,
		},
		{
			name: "mean on entirely missing column",
			ds:   allMissing,
			spec: MissingSpec{Mode: Impute, Column: "a", Method: FillMean},
			code: apperrors.CodeImputation,
		},
		{
			name: "unknown column",
			ds:   gappyDataset(t),
			spec: MissingSpec{Mode: Impute, Column: "Nope", Method: FillMean},
			code: apperrors.CodeOutOfBounds,
		},
		{
			name: "unknown method",
			ds:   gappyDataset(t),
			spec: MissingSpec{Mode: Impute, Column: "Age", Method: "magic"},
			code: apperrors.CodeInvalidRequest,
		},
		{
			name: "unknown mode",
			ds:   gappyDataset(t),
			spec: MissingSpec{Mode: "vanish"},
			code: apperrors.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handleMissing(tt.ds, tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestImputeConstantOnAllMissingColumn(t *testing.T) {
	ds := dataset.MustNew([]dataset.Column{
		{Name: "a", Cells: []dataset.Cell{dataset.Missing(), dataset.Missing()}},
	})

	out, outcome, err := handleMissing(ds, MissingSpec{
		Mode: Impute, Column: "a", Method: FillConstant, Constant: "fallback",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.CellsImputed)
	assert.Equal(t, "fallback", out.Cell(0, 0).String())
}
