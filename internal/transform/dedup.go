package transform

import (
	"strings"

	"tabcli/internal/dataset"
)

const opDedup = "deduplicate"

// DedupSpec configures row deduplication. An empty column list means
// full-row equality.
type DedupSpec struct {
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// deduplicate keeps the first occurrence of each equivalence class in
// original row order. Two rows are duplicates when every cell in the
// equality subset compares equal; missing equals missing.
func deduplicate(ds *dataset.Dataset, spec DedupSpec) (*dataset.Dataset, Outcome, error) {
	subset, err := equalitySubset(ds, spec.Columns)
	if err != nil {
		return nil, Outcome{}, err
	}

	seen := make(map[string]struct{}, ds.Rows())
	keep := make([]int, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		key := rowKey(ds, i, subset)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
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

// CountDuplicates reports how many rows deduplication would remove,
// without building the result. Hosts surface this before the user
// commits to the removal.
func CountDuplicates(ds *dataset.Dataset, columns []string) (int, error) {
	subset, err := equalitySubset(ds, columns)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, ds.Rows())
	removed := 0
	for i := 0; i < ds.Rows(); i++ {
		key := rowKey(ds, i, subset)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
	}
	return removed, nil
}

func equalitySubset(ds *dataset.Dataset, columns []string) ([]int, error) {
	if len(columns) == 0 {
		subset := make([]int, ds.Cols())
		for i := range subset {
			subset[i] = i
		}
		return subset, nil
	}
	subset := make([]int, 0, len(columns))
	for _, name := range columns {
		idx, err := columnOrError(ds, opDedup, name)
		if err != nil {
			return nil, err
		}
		subset = append(subset, idx)
	}
	return subset, nil
}

// rowKey builds an equality key over the subset columns. The kind tag
// keeps the number 1 and the text "1" distinct; missing cells hash to a
// dedicated tag so missing equals missing.
func rowKey(ds *dataset.Dataset, row int, subset []int) string {
	var b strings.Builder
	for _, j := range subset {
		cell := ds.Cell(row, j)
		b.WriteByte(byte('0' + int(cell.Kind())))
		b.WriteString(cell.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}
