package transform

import (
	"fmt"
	"sort"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opMissing = "handle missing data"

// MissingMode selects the removal or imputation policy. Modes are
// mutually exclusive.
type MissingMode string

const (
	// DropRows removes every row containing at least one missing cell.
	// A zero-row result is allowed: the schema survives and remains
	// usable, the same terminal state row filtering can reach.
	DropRows MissingMode = "drop_rows"
	// DropColumns removes every column containing at least one missing
	// cell. Unlike DropRows, removing every column is rejected with
	// INSUFFICIENT_DATA, because a dataset with no columns has no
	// schema left to work with.
	DropColumns MissingMode = "drop_columns"
	// Impute fills missing cells in one column.
	Impute MissingMode = "impute"
)

// ImputeMethod selects the fill statistic.
type ImputeMethod string

const (
	// FillMean fills with the column mean (numeric columns only).
	FillMean ImputeMethod = "mean"
	// FillMedian fills with the column median (numeric columns only).
	FillMedian ImputeMethod = "median"
	// FillMode fills with the most frequent value (non-numeric columns).
	FillMode ImputeMethod = "mode"
	// FillConstant fills with a caller-supplied value.
	FillConstant ImputeMethod = "constant"
)

// MissingSpec configures missing-data handling.
type MissingSpec struct {
	Mode MissingMode `json:"mode" yaml:"mode"`
	// TreatEmptyAsMissing additionally treats empty-string text cells as
	// missing. Off by default: an empty string is a value unless the
	// caller opts in.
	TreatEmptyAsMissing bool `json:"treat_empty_as_missing,omitempty" yaml:"treat_empty_as_missing,omitempty"`

	// Impute-mode parameters.
	Column   string       `json:"column,omitempty" yaml:"column,omitempty"`
	Method   ImputeMethod `json:"method,omitempty" yaml:"method,omitempty"`
	Constant string       `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// ColumnMissing describes the missing cells of one column.
type ColumnMissing struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"`
	Rows    []int   `json:"rows"`
}

// MissingProfile summarizes missing data across the dataset.
type MissingProfile struct {
	TotalMissing    int             `json:"total_missing"`
	Columns         []ColumnMissing `json:"columns"`
	RowsWithMissing []int           `json:"rows_with_missing"`
}

func cellMissing(c dataset.Cell, treatEmpty bool) bool {
	if c.IsMissing() {
		return true
	}
	if treatEmpty {
		if s, ok := c.Str(); ok && s == "" {
			return true
		}
	}
	return false
}

// Profile reports per-column missing counts, percentages, and row
// positions, plus the set of rows carrying any missing cell. Only
// columns with missing cells appear.
func Profile(ds *dataset.Dataset, treatEmptyAsMissing bool) MissingProfile {
	profile := MissingProfile{}
	rowSet := make(map[int]struct{})
	for _, col := range ds.Columns() {
		var rows []int
		for i, cell := range col.Cells {
			if cellMissing(cell, treatEmptyAsMissing) {
				rows = append(rows, i)
				rowSet[i] = struct{}{}
			}
		}
		if len(rows) == 0 {
			continue
		}
		profile.TotalMissing += len(rows)
		profile.Columns = append(profile.Columns, ColumnMissing{
			Column:  col.Name,
			Missing: len(rows),
			Percent: 100 * float64(len(rows)) / float64(ds.Rows()),
			Rows:    rows,
		})
	}
	for r := range rowSet {
		profile.RowsWithMissing = append(profile.RowsWithMissing, r)
	}
	sort.Ints(profile.RowsWithMissing)
	return profile
}

func handleMissing(ds *dataset.Dataset, spec MissingSpec) (*dataset.Dataset, Outcome, error) {
	switch spec.Mode {
	case DropRows:
		return dropMissingRows(ds, spec.TreatEmptyAsMissing)
	case DropColumns:
		return dropMissingColumns(ds, spec.TreatEmptyAsMissing)
	case Impute:
		return impute(ds, spec)
	default:
		return nil, Outcome{}, apperrors.NewInvalidRequest(opMissing, fmt.Sprintf("unknown mode %q", spec.Mode))
	}
}

func dropMissingRows(ds *dataset.Dataset, treatEmpty bool) (*dataset.Dataset, Outcome, error) {
	keep := make([]int, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		complete := true
		for _, col := range ds.Columns() {
			if cellMissing(col.Cells[i], treatEmpty) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	cols := make([]dataset.Column, ds.Cols())
	for j, col := range ds.Columns() {
		cells := make([]dataset.Cell, len(keep))
		for i, r := range keep {
			cells[i] = col.Cells[r]
		}
		cols[j] = dataset.Column{Name: col.Name, Cells: cells}
	}
	out, err := dataset.New(cols)
	if err != nil {
		return nil, Outcome{}, err
	}
	return out, Outcome{RowsRemoved: ds.Rows() - len(keep)}, nil
}

func dropMissingColumns(ds *dataset.Dataset, treatEmpty bool) (*dataset.Dataset, Outcome, error) {
	var cols []dataset.Column
	var removed []string
	for _, col := range ds.Columns() {
		hasMissing := false
		for _, cell := range col.Cells {
			if cellMissing(cell, treatEmpty) {
				hasMissing = true
				break
			}
		}
		if hasMissing {
			removed = append(removed, col.Name)
			continue
		}
		cells := make([]dataset.Cell, len(col.Cells))
		copy(cells, col.Cells)
		cols = append(cols, dataset.Column{Name: col.Name, Cells: cells})
	}
	if len(cols) == 0 {
		return nil, Outcome{}, apperrors.NewInsufficientData(opMissing, "every column contains missing cells; dropping all would leave an empty dataset")
	}
	out, err := dataset.New(cols)
	if err != nil {
		return nil, Outcome{}, err
	}
	return out, Outcome{ColumnsRemoved: removed}, nil
}

func impute(ds *dataset.Dataset, spec MissingSpec) (*dataset.Dataset, Outcome, error) {
	out := ds.Clone()
	idx, err := columnOrError(out, opMissing, spec.Column)
	if err != nil {
		return nil, Outcome{}, err
	}
	col := out.Columns()[idx]

	missing := make([]int, 0)
	for i, cell := range col.Cells {
		if cellMissing(cell, spec.TreatEmptyAsMissing) {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return out, Outcome{}, nil
	}

	fill, err := fillValue(col, spec)
	if err != nil {
		return nil, Outcome{}, err
	}
	for _, i := range missing {
		col.Cells[i] = fill
	}
	return out, Outcome{CellsImputed: len(missing)}, nil
}

func fillValue(col dataset.Column, spec MissingSpec) (dataset.Cell, error) {
	class := dataset.Classify(col)
	allMissing := true
	for _, cell := range col.Cells {
		if !cellMissing(cell, spec.TreatEmptyAsMissing) {
			allMissing = false
			break
		}
	}

	switch spec.Method {
	case FillConstant:
		return coerceValue(col, spec.Constant)

	case FillMean, FillMedian:
		if allMissing {
			return dataset.Cell{}, apperrors.NewImputation(opMissing, "column is entirely missing; no statistic computable, supply a constant").WithColumn(col.Name)
		}
		if class != dataset.Numeric {
			return dataset.Cell{}, apperrors.NewImputation(opMissing, fmt.Sprintf("%s imputation requires a numeric column, got %s", spec.Method, class)).WithColumn(col.Name)
		}
		values := numericValues(col)
		if spec.Method == FillMean {
			return dataset.Number(mean(values)), nil
		}
		sort.Float64s(values)
		return dataset.Number(median(values)), nil

	case FillMode:
		if allMissing {
			return dataset.Cell{}, apperrors.NewImputation(opMissing, "column is entirely missing; no statistic computable, supply a constant").WithColumn(col.Name)
		}
		if class == dataset.Numeric {
			return dataset.Cell{}, apperrors.NewImputation(opMissing, "mode imputation targets non-numeric columns; use mean, median, or a constant").WithColumn(col.Name)
		}
		return modeCell(col, spec.TreatEmptyAsMissing), nil

	default:
		return dataset.Cell{}, apperrors.NewInvalidRequest(opMissing, fmt.Sprintf("unknown imputation method %q", spec.Method))
	}
}

func numericValues(col dataset.Column) []float64 {
	var values []float64
	for _, cell := range col.Cells {
		if v, ok := cell.Float(); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeCell returns the most frequent non-missing cell, ties broken by
// first occurrence. Cells the caller treats as missing (including empty
// strings under treatEmpty) never count as candidates, so the fill value
// can never itself be a missing marker.
func modeCell(col dataset.Column, treatEmpty bool) dataset.Cell {
	counts := make(map[string]int)
	first := make(map[string]int)
	firstCell := make(map[string]dataset.Cell)
	for i, cell := range col.Cells {
		if cellMissing(cell, treatEmpty) {
			continue
		}
		key := cell.String()
		if _, seen := counts[key]; !seen {
			first[key] = i
			firstCell[key] = cell
		}
		counts[key]++
	}
	bestKey := ""
	bestCount := -1
	for key, count := range counts {
		if count > bestCount || (count == bestCount && first[key] < first[bestKey]) {
			bestKey = key
			bestCount = count
		}
	}
	return firstCell[bestKey]
}
