package transform

import (
	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opFilter = "filter rows"

// FilterSpec keeps the rows whose column value is in Values. Values are
// matched against the canonical cell encoding, so "25" matches the
// number 25. Unlike subtable extraction, an empty result is a supported
// terminal state: filtering to zero matching rows is a legitimate
// answer, not a selection mistake.
type FilterSpec struct {
	Column string   `json:"column" yaml:"column"`
	Values []string `json:"values" yaml:"values"`
	// KeepMissing additionally keeps rows whose cell is missing.
	KeepMissing bool `json:"keep_missing,omitempty" yaml:"keep_missing,omitempty"`
}

func filterRows(ds *dataset.Dataset, spec FilterSpec) (*dataset.Dataset, Outcome, error) {
	idx, err := columnOrError(ds, opFilter, spec.Column)
	if err != nil {
		return nil, Outcome{}, err
	}
	if len(spec.Values) == 0 && !spec.KeepMissing {
		return nil, Outcome{}, apperrors.NewInvalidRequest(opFilter, "no filter values given")
	}

	wanted := make(map[string]struct{}, len(spec.Values))
	for _, v := range spec.Values {
		wanted[v] = struct{}{}
	}

	col := ds.Column(idx)
	keep := make([]int, 0, ds.Rows())
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			if spec.KeepMissing {
				keep = append(keep, i)
			}
			continue
		}
		if _, ok := wanted[cell.String()]; ok {
			keep = append(keep, i)
		}
	}

	cols := make([]dataset.Column, ds.Cols())
	for j, c := range ds.Columns() {
		cells := make([]dataset.Cell, len(keep))
		for i, r := range keep {
			cells[i] = c.Cells[r]
		}
		cols[j] = dataset.Column{Name: c.Name, Cells: cells}
	}
	out, err := dataset.New(cols)
	if err != nil {
		return nil, Outcome{}, err
	}
	return out, Outcome{RowsRemoved: ds.Rows() - len(keep)}, nil
}
