package transform

import (
	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
	"tabcli/internal/selection"
)

const opSubtable = "extract subtable"

// RowAxis selects rows by index spec, kept or excluded.
type RowAxis struct {
	// Spec is index-range text, e.g. "0,2-4,6".
	Spec string `json:"spec" yaml:"spec"`
	// Exclude drops the selected rows instead of keeping them.
	Exclude bool `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// ColumnAxis selects columns by explicit names or by index spec. When
// both are given the name list wins and the spec is ignored; a single
// axis never combines keep and exclude semantics, which resolves the
// precedence question explicitly.
type ColumnAxis struct {
	Names   []string `json:"names,omitempty" yaml:"names,omitempty"`
	Spec    string   `json:"spec,omitempty" yaml:"spec,omitempty"`
	Exclude bool     `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// SubtableSpec configures subtable extraction. A nil axis means "no
// change" on that axis.
type SubtableSpec struct {
	Rows    *RowAxis    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns *ColumnAxis `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// extractSubtable builds a new dataset with exactly the selected rows
// and columns, in the order the selection dictates (ascending for
// exclude mode, selection order for keep mode). A selection that would
// produce zero rows or zero columns is rejected: silent empty results
// hide mistakes, so the caller gets a SELECTION_ERROR instead.
func extractSubtable(ds *dataset.Dataset, spec SubtableSpec) (*dataset.Dataset, Outcome, error) {
	colSel, removedCols, err := resolveColumnAxis(ds, spec.Columns)
	if err != nil {
		return nil, Outcome{}, err
	}
	rowSel, err := resolveRowAxis(ds, spec.Rows)
	if err != nil {
		return nil, Outcome{}, err
	}

	colIdx := colSel.Indices()
	rowIdx := rowSel.Indices()

	cols := make([]dataset.Column, len(colIdx))
	for j, c := range colIdx {
		src := ds.Column(c)
		cells := make([]dataset.Cell, len(rowIdx))
		for i, r := range rowIdx {
			cells[i] = src.Cells[r]
		}
		cols[j] = dataset.Column{Name: src.Name, Cells: cells}
	}

	out, err := dataset.New(cols)
	if err != nil {
		return nil, Outcome{}, err
	}
	return out, Outcome{
		RowsRemoved:    ds.Rows() - len(rowIdx),
		ColumnsRemoved: removedCols,
	}, nil
}

func resolveRowAxis(ds *dataset.Dataset, axis *RowAxis) (selection.Selection, error) {
	if axis == nil {
		sel, _ := selection.Parse("")
		return sel.Complement(ds.Rows()), nil
	}
	sel, err := selection.Parse(axis.Spec)
	if err != nil {
		return selection.Selection{}, err
	}
	if err := sel.Bound(ds.Rows(), opSubtable); err != nil {
		return selection.Selection{}, err
	}
	if axis.Exclude {
		sel = sel.Complement(ds.Rows())
	}
	if sel.IsEmpty() {
		return selection.Selection{}, apperrors.NewSelection(opSubtable, "selection yields zero rows")
	}
	return sel, nil
}

func resolveColumnAxis(ds *dataset.Dataset, axis *ColumnAxis) (selection.Selection, []string, error) {
	if axis == nil {
		sel, _ := selection.Parse("")
		return sel.Complement(ds.Cols()), nil, nil
	}

	var sel selection.Selection
	var err error
	if len(axis.Names) > 0 {
		indices := make([]int, 0, len(axis.Names))
		for _, name := range axis.Names {
			idx := ds.ColumnIndex(name)
			if idx < 0 {
				return selection.Selection{}, nil, apperrors.NewSelection(opSubtable, "column does not exist").WithColumn(name)
			}
			indices = append(indices, idx)
		}
		sel, err = selection.FromIndices(indices)
	} else {
		sel, err = selection.Parse(axis.Spec)
	}
	if err != nil {
		return selection.Selection{}, nil, err
	}
	if err := sel.Bound(ds.Cols(), opSubtable); err != nil {
		return selection.Selection{}, nil, err
	}

	kept := sel
	if axis.Exclude {
		kept = sel.Complement(ds.Cols())
	}
	if kept.IsEmpty() {
		return selection.Selection{}, nil, apperrors.NewSelection(opSubtable, "selection yields zero columns")
	}

	var removed []string
	for i := 0; i < ds.Cols(); i++ {
		if !kept.Contains(i) {
			removed = append(removed, ds.Column(i).Name)
		}
	}
	return kept, removed, nil
}
