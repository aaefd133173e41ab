package transform

import (
	"fmt"
	"math/bits"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opEncode = "encode"

// EncodeMethod selects the encoding scheme.
type EncodeMethod string

const (
	// OneHot produces one 0/1 column per distinct value.
	OneHot EncodeMethod = "onehot"
	// Binary assigns integer codes and spreads their bits across
	// ceil(log2(k)) columns.
	Binary EncodeMethod = "binary"
	// Label replaces values with integer codes in place.
	Label EncodeMethod = "label"
)

// MissingPolicy decides how encoders treat missing cells. The choice is
// explicit, never implicit.
type MissingPolicy string

const (
	// MissingAsCategory treats missing as its own distinct category.
	MissingAsCategory MissingPolicy = "as_category"
	// MissingReject refuses to encode a column containing missing cells.
	MissingReject MissingPolicy = "reject"
)

// missingLabel names the missing category in generated column names and
// code tables.
const missingLabel = "missing"

// EncodeSpec configures categorical encoding.
type EncodeSpec struct {
	Method  EncodeMethod `json:"method" yaml:"method"`
	Columns []string     `json:"columns" yaml:"columns"`
	// DropFirst omits the first-seen category's column under one-hot
	// encoding (k-1 columns).
	DropFirst bool `json:"drop_first,omitempty" yaml:"drop_first,omitempty"`
	// MissingPolicy defaults to MissingAsCategory.
	MissingPolicy MissingPolicy `json:"missing_policy,omitempty" yaml:"missing_policy,omitempty"`
}

// encode applies the scheme to each requested column in order. All
// three schemes are deterministic given the same first-seen value
// order. One-hot and binary remove the source column and append their
// generated columns after the remaining ones; label encoding rewrites
// the column in place.
func encode(ds *dataset.Dataset, spec EncodeSpec) (*dataset.Dataset, Outcome, error) {
	policy := spec.MissingPolicy
	if policy == "" {
		policy = MissingAsCategory
	}
	if policy != MissingAsCategory && policy != MissingReject {
		return nil, Outcome{}, apperrors.NewInvalidRequest(opEncode, fmt.Sprintf("unknown missing policy %q", policy))
	}
	if len(spec.Columns) == 0 {
		return nil, Outcome{}, apperrors.NewInvalidRequest(opEncode, "no columns given")
	}

	out := ds.Clone()
	outcome := Outcome{}
	for _, name := range spec.Columns {
		idx, err := columnOrError(out, opEncode, name)
		if err != nil {
			return nil, Outcome{}, err
		}
		col := out.Columns()[idx]
		if class := dataset.Classify(col); class != dataset.Categorical {
			return nil, Outcome{}, apperrors.NewUnsupportedColumn(opEncode, fmt.Sprintf("encoding requires a categorical column, got %s", class)).WithColumn(name)
		}
		if policy == MissingReject && col.MissingCount() > 0 {
			return nil, Outcome{}, apperrors.NewUnsupportedColumn(opEncode, "column has missing cells and the missing policy is reject; impute or drop first").WithColumn(name)
		}

		labels, codes := codeTable(col)

		var next *dataset.Dataset
		switch spec.Method {
		case OneHot:
			next, err = oneHot(out, idx, labels, codes, spec.DropFirst, &outcome)
		case Binary:
			next, err = binaryEncode(out, idx, labels, codes, &outcome)
		case Label:
			next, err = labelEncode(out, idx, codes)
		default:
			return nil, Outcome{}, apperrors.NewInvalidRequest(opEncode, fmt.Sprintf("unknown encoding method %q", spec.Method))
		}
		if err != nil {
			return nil, Outcome{}, err
		}
		out = next
	}
	return out, outcome, nil
}

// codeTable assigns integer codes 0..k-1 in first-seen order. Categories
// are keyed by cell kind plus canonical value, so missing cells form
// their own category even when the text "missing" occurs in the data.
// Display labels are made unique with a numeric suffix when the
// missingLabel collides with a literal value.
func codeTable(col dataset.Column) (labels []string, codes []int) {
	codeOf := make(map[string]int)
	used := make(map[string]struct{})
	codes = make([]int, len(col.Cells))
	for i, cell := range col.Cells {
		key := string(byte('0'+int(cell.Kind()))) + cell.String()
		code, seen := codeOf[key]
		if !seen {
			base := missingLabel
			if !cell.IsMissing() {
				base = cell.String()
			}
			code = len(labels)
			codeOf[key] = code
			labels = append(labels, uniqueLabel(used, base))
		}
		codes[i] = code
	}
	return labels, codes
}

func uniqueLabel(used map[string]struct{}, base string) string {
	label := base
	for n := 2; ; n++ {
		if _, taken := used[label]; !taken {
			used[label] = struct{}{}
			return label
		}
		label = fmt.Sprintf("%s_%d", base, n)
	}
}

func oneHot(ds *dataset.Dataset, idx int, labels []string, codes []int, dropFirst bool, outcome *Outcome) (*dataset.Dataset, error) {
	src := ds.Column(idx)
	start := 0
	if dropFirst {
		start = 1
	}

	cols := make([]dataset.Column, 0, ds.Cols()-1+len(labels)-start)
	for j, col := range ds.Columns() {
		if j != idx {
			cols = append(cols, col)
		}
	}
	for code := start; code < len(labels); code++ {
		name := fmt.Sprintf("%s_%s", src.Name, labels[code])
		cells := make([]dataset.Cell, len(codes))
		for i, c := range codes {
			if c == code {
				cells[i] = dataset.Number(1)
			} else {
				cells[i] = dataset.Number(0)
			}
		}
		cols = append(cols, dataset.Column{Name: name, Cells: cells})
		outcome.ColumnsAdded = append(outcome.ColumnsAdded, name)
	}
	outcome.ColumnsRemoved = append(outcome.ColumnsRemoved, src.Name)
	return dataset.New(cols)
}

func binaryEncode(ds *dataset.Dataset, idx int, labels []string, codes []int, outcome *Outcome) (*dataset.Dataset, error) {
	src := ds.Column(idx)
	maxCode := len(labels) - 1
	width := bits.Len(uint(maxCode))
	if width == 0 {
		width = 1
	}

	cols := make([]dataset.Column, 0, ds.Cols()-1+width)
	for j, col := range ds.Columns() {
		if j != idx {
			cols = append(cols, col)
		}
	}
	for bit := 0; bit < width; bit++ {
		name := fmt.Sprintf("%s_bit_%d", src.Name, bit)
		cells := make([]dataset.Cell, len(codes))
		for i, c := range codes {
			cells[i] = dataset.Number(float64((c >> bit) & 1))
		}
		cols = append(cols, dataset.Column{Name: name, Cells: cells})
		outcome.ColumnsAdded = append(outcome.ColumnsAdded, name)
	}
	outcome.ColumnsRemoved = append(outcome.ColumnsRemoved, src.Name)
	return dataset.New(cols)
}

func labelEncode(ds *dataset.Dataset, idx int, codes []int) (*dataset.Dataset, error) {
	cols := ds.Columns()
	cells := make([]dataset.Cell, len(codes))
	for i, c := range codes {
		cells[i] = dataset.Number(float64(c))
	}
	cols[idx] = dataset.Column{Name: cols[idx].Name, Cells: cells}
	return ds, nil
}
