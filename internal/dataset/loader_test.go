package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	ds, err := FromRecords(
		[]string{"Age", "City", "Joined"},
		[][]string{
			{"25", "Warsaw", "2024-01-15"},
			{"NA", "Krakow", "2023-06-01"},
			{"35", "?", "2022-11-20"},
		},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 3, ds.Cols())

	// Numeric auto-conversion with the NA indicator turned missing.
	age := ds.Column(0)
	v, ok := age.Cells[0].Float()
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)
	assert.True(t, age.Cells[1].IsMissing())

	// The "?" indicator applies to text columns too.
	assert.True(t, ds.Cell(2, 1).IsMissing())

	// Uniformly date-like text becomes timestamps.
	joined, ok := ds.Cell(0, 2).Time()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), joined)
}

func TestFromRecordsMissingIndicators(t *testing.T) {
	for _, indicator := range DefaultMissingIndicators {
		ds, err := FromRecords([]string{"a"}, [][]string{{indicator}}, nil)
		require.NoError(t, err)
		assert.True(t, ds.Cell(0, 0).IsMissing(), "indicator %q should load as missing", indicator)
	}
}

func TestFromRecordsCustomIndicators(t *testing.T) {
	opts := &LoadOptions{MissingIndicators: []string{"-"}}
	ds, err := FromRecords([]string{"a"}, [][]string{{"-"}, {"NA"}}, opts)
	require.NoError(t, err)

	assert.True(t, ds.Cell(0, 0).IsMissing())
	// "NA" is an ordinary value once the default list is overridden.
	assert.Equal(t, "NA", ds.Cell(1, 0).String())
}

func TestFromRecordsRowLengths(t *testing.T) {
	// Short rows pad with missing.
	ds, err := FromRecords([]string{"a", "b"}, [][]string{{"1"}}, nil)
	require.NoError(t, err)
	assert.True(t, ds.Cell(0, 1).IsMissing())

	// Long rows are an error.
	_, err = FromRecords([]string{"a"}, [][]string{{"1", "2"}}, nil)
	assert.Error(t, err)
}

func TestFromRecordsMixedColumnStaysText(t *testing.T) {
	ds, err := FromRecords([]string{"a"}, [][]string{{"1"}, {"x"}}, nil)
	require.NoError(t, err)

	s, ok := ds.Cell(0, 0).Str()
	assert.True(t, ok)
	assert.Equal(t, "1", s)
	assert.Equal(t, Categorical, Classify(ds.Column(0)))
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Name,Age,Salary",
		"Anna,28,5200",
		"Piotr,NA,6100",
		"Anna,28,5200",
	}, "\n")

	ds, err := ReadCSV(strings.NewReader(input), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"Name", "Age", "Salary"}, ds.ColumnNames())
	assert.Equal(t, Numeric, Classify(ds.Column(1)))
	assert.True(t, ds.Cell(1, 1).IsMissing())
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), nil)
	assert.Error(t, err)
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "a,b\n1\n2,3\n"
	ds, err := ReadCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())
	assert.True(t, ds.Cell(0, 1).IsMissing())
}
