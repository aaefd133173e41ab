package transform

import (
	"fmt"
	"math"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opScale = "scale"

// ScaleMethod selects the scaling formula.
type ScaleMethod string

const (
	// MinMax maps values to [0, 1] via (x - min) / (max - min).
	MinMax ScaleMethod = "minmax"
	// Standardize centers and divides by the sample standard deviation
	// (Bessel's correction).
	Standardize ScaleMethod = "standard"
)

// ScaleSpec configures scaling. An empty column list scales every
// numeric column.
type ScaleSpec struct {
	Method  ScaleMethod `json:"method" yaml:"method"`
	Columns []string    `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// scale rescales the selected numeric columns. Missing cells are left
// untouched. Zero-variance columns scale to all 0.0 under both methods;
// that is the documented edge case, not a division error.
func scale(ds *dataset.Dataset, spec ScaleSpec) (*dataset.Dataset, Outcome, error) {
	if spec.Method != MinMax && spec.Method != Standardize {
		return nil, Outcome{}, apperrors.NewInvalidRequest(opScale, fmt.Sprintf("unknown scaling method %q", spec.Method))
	}

	targets := spec.Columns
	if len(targets) == 0 {
		targets = dataset.NumericColumns(ds)
	}

	out := ds.Clone()
	for _, name := range targets {
		idx, err := columnOrError(out, opScale, name)
		if err != nil {
			return nil, Outcome{}, err
		}
		col := out.Columns()[idx]
		if class := dataset.Classify(col); class != dataset.Numeric {
			return nil, Outcome{}, apperrors.NewUnsupportedColumn(opScale, fmt.Sprintf("scaling requires a numeric column, got %s", class)).WithColumn(name)
		}
		scaleColumn(col, spec.Method)
	}
	return out, Outcome{}, nil
}

func scaleColumn(col dataset.Column, method ScaleMethod) {
	values := numericValues(col)
	if len(values) == 0 {
		return
	}

	var transform func(float64) float64
	switch method {
	case MinMax:
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi == lo {
			transform = func(float64) float64 { return 0 }
		} else {
			span := hi - lo
			transform = func(x float64) float64 { return (x - lo) / span }
		}
	case Standardize:
		m := mean(values)
		sd := sampleStdDev(values, m)
		if sd == 0 {
			transform = func(float64) float64 { return 0 }
		} else {
			transform = func(x float64) float64 { return (x - m) / sd }
		}
	}

	for i, cell := range col.Cells {
		if v, ok := cell.Float(); ok {
			col.Cells[i] = dataset.Number(transform(v))
		}
	}
}

// sampleStdDev computes the Bessel-corrected standard deviation. A
// single observation yields 0.
func sampleStdDev(values []float64, m float64) float64 {
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
