package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcli/internal/dataset"
	"tabcli/internal/stats"
)

func exportDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return dataset.MustNew([]dataset.Column{
		{Name: "Name", Cells: []dataset.Cell{dataset.Text("Anna"), dataset.Text("Piotr")}},
		{Name: "Age", Cells: []dataset.Cell{dataset.Number(28), dataset.Missing()}},
	})
}

func TestWriteDatasetCSV(t *testing.T) {
	var buf bytes.Buffer
	err := New(nil).WriteDatasetCSV(context.Background(), &buf, exportDataset(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Age", lines[0])
	assert.Equal(t, "Anna,28", lines[1])
	assert.Equal(t, "Piotr,", lines[2])
}

func TestDatasetCSVRoundTrip(t *testing.T) {
	ds := exportDataset(t)

	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteDatasetCSV(context.Background(), &buf, ds))

	back, err := dataset.ReadCSV(&buf, nil)
	require.NoError(t, err)

	// The empty field re-loads as missing under the default indicators.
	assert.Equal(t, ds.Fingerprint(), back.Fingerprint())
}

func TestSaveDatasetCSVCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := New(nil).SaveDatasetCSV(context.Background(), path, exportDataset(t))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name,Age")
}

func TestWriteReportCSV(t *testing.T) {
	report := &stats.Report{
		Rows:    3,
		Columns: 3,
		Numeric: []stats.NumericSummary{
			{Column: "Age", Count: 3, Mean: 30, Std: 5, Min: 25, Q25: 27.5, Median: 30, Q75: 32.5, Max: 35},
		},
		Categorical: []stats.CategoricalSummary{
			{Column: "City", Count: 3, Distinct: 2, Mode: "Warsaw", Frequencies: []stats.ValueCount{{Value: "Warsaw", Count: 2}, {Value: "Krakow", Count: 1}}},
		},
		Temporal: []stats.TemporalSummary{
			{
				Column: "Joined",
				Count:  3,
				Min:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				Max:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Range:  365 * 24 * time.Hour,
			},
		},
	}

	var buf bytes.Buffer
	err := New(nil).WriteReportCSV(context.Background(), &buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "column,count,mean,std,min,q25,median,q75,max")
	assert.Contains(t, out, "Age,3,30,5,25,27.5,30,32.5,35")
	assert.Contains(t, out, "column,count,distinct,mode,mode_count")
	assert.Contains(t, out, "City,3,2,Warsaw,2")
	assert.Contains(t, out, "column,count,min,max,range")
	assert.Contains(t, out, "Joined,3,2023-01-01 00:00:00,2024-01-01 00:00:00")
}

func TestWriteReportCSVOmitsEmptySections(t *testing.T) {
	report := &stats.Report{
		Rows:    2,
		Columns: 1,
		Numeric: []stats.NumericSummary{{Column: "x", Count: 2, Mean: 1.5}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteReportCSV(context.Background(), &buf, report))

	out := buf.String()
	assert.Contains(t, out, "mean")
	assert.NotContains(t, out, "distinct")
	assert.NotContains(t, out, "range")
}
