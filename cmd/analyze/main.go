// Command analyze runs a transformation pipeline over a CSV or Excel
// file and writes the result, descriptive statistics, and optionally a
// correlation matrix.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"tabcli/internal/config"
	"tabcli/internal/dataset"
	"tabcli/internal/exporter"
	"tabcli/internal/stats"
	"tabcli/internal/transform"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to YAML configuration file")
		inPath      = flag.String("in", "", "input CSV or Excel file (required)")
		sheet       = flag.String("sheet", "", "Excel sheet name (first sheet when empty)")
		pipeline    = flag.String("pipeline", "", "YAML file with a list of transform requests")
		outCSV      = flag.String("out-csv", "", "write the transformed dataset to this CSV file")
		outStats    = flag.String("out-stats", "", "write the statistics report to this CSV file")
		outXLSX     = flag.String("out-xlsx", "", "write dataset, statistics, and correlation to this workbook")
		correlation = flag.String("correlation", "", "correlation method: pearson or spearman")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	ctx := context.Background()

	ds, err := loadInput(*inPath, *sheet)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", *inPath),
		slog.Int("rows", ds.Rows()),
		slog.Int("columns", ds.Cols()))

	if *pipeline != "" {
		ds, err = runPipeline(ctx, logger, cfg.Limits, ds, *pipeline)
		if err != nil {
			return err
		}
	}

	report, err := stats.Describe(ctx, ds)
	if err != nil {
		return fmt.Errorf("describe dataset: %w", err)
	}
	printReport(report)

	var matrix *stats.Matrix
	if *correlation != "" {
		method, err := stats.ParseMethod(*correlation)
		if err != nil {
			return err
		}
		matrix, err = stats.Correlate(ctx, ds, method)
		if err != nil {
			return fmt.Errorf("correlate: %w", err)
		}
		printStrongest(matrix)
	}

	exp := exporter.New(logger)
	if *outCSV != "" {
		if err := exp.SaveDatasetCSV(ctx, *outCSV, ds); err != nil {
			return err
		}
	}
	if *outStats != "" {
		if err := exp.SaveReportCSV(ctx, *outStats, report); err != nil {
			return err
		}
	}
	if *outXLSX != "" {
		if err := exp.SaveWorkbook(ctx, *outXLSX, ds, report, matrix); err != nil {
			return err
		}
	}
	return nil
}

func loadInput(path, sheet string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return dataset.ReadXLSX(path, sheet, nil)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return dataset.ReadCSV(f, nil)
	}
}

func runPipeline(ctx context.Context, logger *slog.Logger, limits config.LimitsConfig, ds *dataset.Dataset, path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline %s: %w", path, err)
	}
	var requests []transform.Request
	if err := yaml.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("parse pipeline %s: %w", path, err)
	}

	for i, req := range requests {
		stepCtx := ctx
		if limits.OperationTimeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, limits.OperationTimeout)
			defer cancel()
		}
		result, outcome, err := transform.Apply(stepCtx, ds, req)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d (%s): %w", i+1, req.Kind, err)
		}
		logger.InfoContext(ctx, "pipeline step applied",
			slog.Int("step", i+1),
			slog.String("kind", string(req.Kind)),
			slog.Int("rows", result.Rows()),
			slog.Int("rows_removed", outcome.RowsRemoved),
			slog.Int("cells_replaced", outcome.CellsReplaced),
			slog.Int("cells_imputed", outcome.CellsImputed))
		ds = result
	}
	return ds, nil
}

func printReport(report *stats.Report) {
	fmt.Printf("rows: %d  columns: %d  missing cells: %d\n", report.Rows, report.Columns, report.Missing)
	for _, s := range report.Numeric {
		fmt.Printf("  %-20s n=%-6d mean=%-10.4g std=%-10.4g min=%-10.4g q25=%-10.4g median=%-10.4g q75=%-10.4g max=%.4g\n",
			s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
	for _, s := range report.Categorical {
		fmt.Printf("  %-20s n=%-6d distinct=%-6d mode=%q\n", s.Column, s.Count, s.Distinct, s.Mode)
	}
	for _, s := range report.Temporal {
		fmt.Printf("  %-20s n=%-6d min=%s max=%s\n",
			s.Column, s.Count, s.Min.Format("2006-01-02"), s.Max.Format("2006-01-02"))
	}
}

func printStrongest(matrix *stats.Matrix) {
	pairs := matrix.StrongestPairs(10)
	if len(pairs) == 0 {
		return
	}
	fmt.Printf("strongest %s correlations:\n", matrix.Method)
	for _, p := range pairs {
		fmt.Printf("  %-20s %-20s %+.4f\n", p.A, p.B, p.Coefficient)
	}
}
