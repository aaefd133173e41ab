package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"tabcli/internal/dataset"
	"tabcli/internal/stats"
)

// Sheet names of the exported workbook.
const (
	sheetData        = "Data"
	sheetStatistics  = "Statistics"
	sheetCorrelation = "Correlation"
)

// SaveWorkbook writes the dataset and, when non-nil, the statistics
// report and correlation matrix into a multi-sheet Excel workbook.
func (e *Exporter) SaveWorkbook(ctx context.Context, path string, ds *dataset.Dataset, report *stats.Report, matrix *stats.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}
	if err := writeDataSheet(f, ds); err != nil {
		return err
	}
	if report != nil {
		if _, err := f.NewSheet(sheetStatistics); err != nil {
			return fmt.Errorf("create statistics sheet: %w", err)
		}
		if err := writeStatisticsSheet(f, report); err != nil {
			return err
		}
	}
	if matrix != nil {
		if _, err := f.NewSheet(sheetCorrelation); err != nil {
			return fmt.Errorf("create correlation sheet: %w", err)
		}
		if err := writeCorrelationSheet(f, matrix); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	e.logger.InfoContext(ctx, "wrote workbook",
		slog.String("path", path),
		slog.Int("rows", ds.Rows()),
		slog.Bool("statistics", report != nil),
		slog.Bool("correlation", matrix != nil))
	return nil
}

func writeDataSheet(f *excelize.File, ds *dataset.Dataset) error {
	for j, name := range ds.ColumnNames() {
		cellRef, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("data sheet header: %w", err)
		}
		if err := f.SetCellValue(sheetData, cellRef, name); err != nil {
			return fmt.Errorf("data sheet header: %w", err)
		}
	}
	for i := 0; i < ds.Rows(); i++ {
		for j := 0; j < ds.Cols(); j++ {
			cell := ds.Cell(i, j)
			if cell.IsMissing() {
				continue
			}
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("data sheet cell (%d,%d): %w", i, j, err)
			}
			var value interface{}
			if v, ok := cell.Float(); ok {
				value = v
			} else if t, ok := cell.Time(); ok {
				value = t
			} else {
				value = cell.String()
			}
			if err := f.SetCellValue(sheetData, cellRef, value); err != nil {
				return fmt.Errorf("data sheet cell (%d,%d): %w", i, j, err)
			}
		}
	}
	return nil
}

func writeStatisticsSheet(f *excelize.File, report *stats.Report) error {
	row := 1
	writeRow := func(values ...interface{}) error {
		for j, v := range values {
			cellRef, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetStatistics, cellRef, v); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if len(report.Numeric) > 0 {
		if err := writeRow("column", "count", "mean", "std", "min", "q25", "median", "q75", "max"); err != nil {
			return fmt.Errorf("statistics sheet: %w", err)
		}
		for _, s := range report.Numeric {
			if err := writeRow(s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max); err != nil {
				return fmt.Errorf("statistics sheet: %w", err)
			}
		}
		row++
	}
	if len(report.Categorical) > 0 {
		if err := writeRow("column", "count", "distinct", "mode"); err != nil {
			return fmt.Errorf("statistics sheet: %w", err)
		}
		for _, s := range report.Categorical {
			if err := writeRow(s.Column, s.Count, s.Distinct, s.Mode); err != nil {
				return fmt.Errorf("statistics sheet: %w", err)
			}
		}
		row++
	}
	if len(report.Temporal) > 0 {
		if err := writeRow("column", "count", "min", "max", "range"); err != nil {
			return fmt.Errorf("statistics sheet: %w", err)
		}
		for _, s := range report.Temporal {
			if err := writeRow(s.Column, s.Count, s.Min, s.Max, s.Range.String()); err != nil {
				return fmt.Errorf("statistics sheet: %w", err)
			}
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, matrix *stats.Matrix) error {
	set := func(col, row int, v interface{}) error {
		cellRef, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetCorrelation, cellRef, v)
	}

	for i, name := range matrix.Columns {
		if err := set(i+2, 1, name); err != nil {
			return fmt.Errorf("correlation sheet: %w", err)
		}
		if err := set(1, i+2, name); err != nil {
			return fmt.Errorf("correlation sheet: %w", err)
		}
	}
	for i := range matrix.Columns {
		for j := range matrix.Columns {
			v, ok := matrix.At(i, j)
			if !ok {
				// Undefined coefficients stay blank.
				continue
			}
			if err := set(j+2, i+2, v); err != nil {
				return fmt.Errorf("correlation sheet: %w", err)
			}
		}
	}
	return nil
}
