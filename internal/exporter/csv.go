// Package exporter writes datasets, statistics reports, and correlation
// matrices to CSV files and multi-sheet Excel workbooks. It performs no
// computation; everything it writes comes from the core's outputs.
package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"tabcli/internal/dataset"
	"tabcli/internal/stats"
)

// Exporter writes core outputs to files and streams.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// WriteDatasetCSV writes the dataset with a header row. Missing cells
// export as empty fields, which round-trip back to missing under the
// default loader indicators.
func (e *Exporter) WriteDatasetCSV(ctx context.Context, w io.Writer, ds *dataset.Dataset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, ds.Cols())
	for i := 0; i < ds.Rows(); i++ {
		for j := 0; j < ds.Cols(); j++ {
			row[j] = ds.Cell(i, j).String()
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	e.logger.InfoContext(ctx, "wrote dataset csv",
		slog.Int("rows", ds.Rows()),
		slog.Int("columns", ds.Cols()))
	return nil
}

// SaveDatasetCSV writes the dataset to path, creating parent
// directories.
func (e *Exporter) SaveDatasetCSV(ctx context.Context, path string, ds *dataset.Dataset) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.WriteDatasetCSV(ctx, f, ds)
}

// WriteReportCSV writes the statistics report as sectioned tables:
// numeric columns, categorical columns, then temporal columns, each
// with its own header, separated by blank records.
func (e *Exporter) WriteReportCSV(ctx context.Context, w io.Writer, report *stats.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if len(report.Numeric) > 0 {
		if err := writer.Write([]string{"column", "count", "mean", "std", "min", "q25", "median", "q75", "max"}); err != nil {
			return fmt.Errorf("write numeric header: %w", err)
		}
		for _, s := range report.Numeric {
			rec := []string{
				s.Column,
				strconv.Itoa(s.Count),
				formatFloat(s.Mean),
				formatFloat(s.Std),
				formatFloat(s.Min),
				formatFloat(s.Q25),
				formatFloat(s.Median),
				formatFloat(s.Q75),
				formatFloat(s.Max),
			}
			if err := writer.Write(rec); err != nil {
				return fmt.Errorf("write numeric row: %w", err)
			}
		}
	}

	if len(report.Categorical) > 0 {
		if len(report.Numeric) > 0 {
			if err := writer.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{"column", "count", "distinct", "mode", "mode_count"}); err != nil {
			return fmt.Errorf("write categorical header: %w", err)
		}
		for _, s := range report.Categorical {
			modeCount := 0
			if len(s.Frequencies) > 0 {
				modeCount = s.Frequencies[0].Count
			}
			rec := []string{s.Column, strconv.Itoa(s.Count), strconv.Itoa(s.Distinct), s.Mode, strconv.Itoa(modeCount)}
			if err := writer.Write(rec); err != nil {
				return fmt.Errorf("write categorical row: %w", err)
			}
		}
	}

	if len(report.Temporal) > 0 {
		if len(report.Numeric)+len(report.Categorical) > 0 {
			if err := writer.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{"column", "count", "min", "max", "range"}); err != nil {
			return fmt.Errorf("write temporal header: %w", err)
		}
		for _, s := range report.Temporal {
			rec := []string{s.Column, strconv.Itoa(s.Count), s.Min.Format("2006-01-02 15:04:05"), s.Max.Format("2006-01-02 15:04:05"), s.Range.String()}
			if err := writer.Write(rec); err != nil {
				return fmt.Errorf("write temporal row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush report csv: %w", err)
	}
	e.logger.InfoContext(ctx, "wrote statistics report csv",
		slog.Int("numeric", len(report.Numeric)),
		slog.Int("categorical", len(report.Categorical)),
		slog.Int("temporal", len(report.Temporal)))
	return nil
}

// SaveReportCSV writes the statistics report to path, creating parent
// directories.
func (e *Exporter) SaveReportCSV(ctx context.Context, path string, report *stats.Report) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.WriteReportCSV(ctx, f, report)
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
