// Package stats computes descriptive statistics and correlation
// matrices over datasets. Every report is recomputed from the dataset
// snapshot it is given; nothing is cached across mutations. Per-column
// and per-pair computations are independent, so they run concurrently
// under a bounded errgroup without observable ordering effects.
package stats

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"tabcli/internal/dataset"
)

// NumericSummary holds the descriptive statistics of a numeric column.
// Std is the sample standard deviation (Bessel's correction); quartiles
// use linear interpolation between closest ranks (see Quantile).
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// ValueCount is one frequency-table entry.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary holds the descriptive statistics of a categorical
// column. Frequencies are sorted by count descending, ties broken by
// first-seen order; Mode is the first entry.
type CategoricalSummary struct {
	Column      string       `json:"column"`
	Count       int          `json:"count"`
	Distinct    int          `json:"distinct"`
	Mode        string       `json:"mode"`
	Frequencies []ValueCount `json:"frequencies"`
}

// TemporalSummary holds the dedicated datetime summary.
type TemporalSummary struct {
	Column string        `json:"column"`
	Count  int           `json:"count"`
	Min    time.Time     `json:"min"`
	Max    time.Time     `json:"max"`
	Range  time.Duration `json:"range"`
}

// Report is the per-column statistics of one dataset snapshot. Columns
// appear in dataset order within their group; columns with zero
// non-missing cells are omitted.
type Report struct {
	Rows        int                  `json:"rows"`
	Columns     int                  `json:"columns"`
	Missing     int                  `json:"missing"`
	Numeric     []NumericSummary     `json:"numeric,omitempty"`
	Categorical []CategoricalSummary `json:"categorical,omitempty"`
	Temporal    []TemporalSummary    `json:"temporal,omitempty"`
}

type columnSummary struct {
	numeric     *NumericSummary
	categorical *CategoricalSummary
	temporal    *TemporalSummary
}

// Describe computes the report for every column, branching on
// classification. Numeric columns get count/mean/std/min/quartiles/max;
// categorical columns get count/distinct/mode/frequency table; datetime
// columns get the temporal summary.
func Describe(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	summaries := make([]columnSummary, ds.Cols())

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ds.Columns() {
		i := i
		g.Go(func() error {
			summaries[i] = describeColumn(ds.Column(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Rows: ds.Rows(), Columns: ds.Cols(), Missing: ds.MissingCount()}
	for _, s := range summaries {
		switch {
		case s.numeric != nil:
			report.Numeric = append(report.Numeric, *s.numeric)
		case s.categorical != nil:
			report.Categorical = append(report.Categorical, *s.categorical)
		case s.temporal != nil:
			report.Temporal = append(report.Temporal, *s.temporal)
		}
	}
	return report, nil
}

func describeColumn(col dataset.Column) columnSummary {
	switch dataset.Classify(col) {
	case dataset.Numeric:
		s := describeNumeric(col)
		return columnSummary{numeric: &s}
	case dataset.Categorical:
		s := describeCategorical(col)
		return columnSummary{categorical: &s}
	case dataset.Datetime:
		s := describeTemporal(col)
		return columnSummary{temporal: &s}
	default:
		return columnSummary{}
	}
}

func describeNumeric(col dataset.Column) NumericSummary {
	var values []float64
	for _, cell := range col.Cells {
		if v, ok := cell.Float(); ok {
			values = append(values, v)
		}
	}
	sort.Float64s(values)

	m := Mean(values)
	return NumericSummary{
		Column: col.Name,
		Count:  len(values),
		Mean:   m,
		Std:    StdDev(values, m),
		Min:    values[0],
		Q25:    Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		Q75:    Quantile(values, 0.75),
		Max:    values[len(values)-1],
	}
}

func describeCategorical(col dataset.Column) CategoricalSummary {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	count := 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		count++
		key := cell.String()
		if _, seen := counts[key]; !seen {
			firstSeen[key] = i
		}
		counts[key]++
	}

	freq := make([]ValueCount, 0, len(counts))
	for value, n := range counts {
		freq = append(freq, ValueCount{Value: value, Count: n})
	}
	sort.SliceStable(freq, func(i, j int) bool {
		if freq[i].Count != freq[j].Count {
			return freq[i].Count > freq[j].Count
		}
		return firstSeen[freq[i].Value] < firstSeen[freq[j].Value]
	})

	mode := ""
	if len(freq) > 0 {
		mode = freq[0].Value
	}
	return CategoricalSummary{
		Column:      col.Name,
		Count:       count,
		Distinct:    len(freq),
		Mode:        mode,
		Frequencies: freq,
	}
}

func describeTemporal(col dataset.Column) TemporalSummary {
	s := TemporalSummary{Column: col.Name}
	for _, cell := range col.Cells {
		t, ok := cell.Time()
		if !ok {
			if raw, isText := cell.Str(); isText {
				t, ok = dataset.ParseTimestamp(raw)
			}
			if !ok {
				continue
			}
		}
		if s.Count == 0 || t.Before(s.Min) {
			s.Min = t
		}
		if s.Count == 0 || t.After(s.Max) {
			s.Max = t
		}
		s.Count++
	}
	s.Range = s.Max.Sub(s.Min)
	return s
}

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation around m, using Bessel's
// correction. Fewer than two observations yield 0.
func StdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Quantile returns the p-quantile of sorted values using linear
// interpolation between closest ranks: the value at fractional position
// p*(n-1). This matches the conventional dataframe percentile method.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
