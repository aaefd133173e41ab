package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opReplace = "replace values"

// CellEdit is one manual cell update. SetMissing inserts the explicit
// missing marker; otherwise Value is coerced to the column's classified
// type.
type CellEdit struct {
	Row        int    `json:"row" yaml:"row"`
	Column     string `json:"column" yaml:"column"`
	Value      string `json:"value" yaml:"value"`
	SetMissing bool   `json:"set_missing,omitempty" yaml:"set_missing,omitempty"`
}

// ReplaceSpec configures value replacement. Manual edits and the
// automatic matcher are independent: when Manual is non-empty only the
// edits run; otherwise Column plus Match or Pattern drive a column-wide
// substitution. Zero matches is a no-op, not an error.
type ReplaceSpec struct {
	Manual []CellEdit `json:"manual,omitempty" yaml:"manual,omitempty"`

	Column      string `json:"column,omitempty" yaml:"column,omitempty"`
	Match       string `json:"match,omitempty" yaml:"match,omitempty"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

func replaceValues(ds *dataset.Dataset, spec ReplaceSpec) (*dataset.Dataset, Outcome, error) {
	if len(spec.Manual) > 0 {
		return applyManualEdits(ds, spec.Manual)
	}
	if spec.Column != "" {
		return applyAutoReplace(ds, spec)
	}
	return nil, Outcome{}, apperrors.NewInvalidRequest(opReplace, "neither manual edits nor a target column given")
}

func applyManualEdits(ds *dataset.Dataset, edits []CellEdit) (*dataset.Dataset, Outcome, error) {
	out := ds.Clone()
	cols := out.Columns()
	for _, edit := range edits {
		idx, err := columnOrError(out, opReplace, edit.Column)
		if err != nil {
			return nil, Outcome{}, err
		}
		if edit.Row < 0 || edit.Row >= out.Rows() {
			return nil, Outcome{}, apperrors.NewOutOfBounds(opReplace, fmt.Sprintf("row %d out of range [0, %d)", edit.Row, out.Rows())).
				WithColumn(edit.Column).WithIndex(edit.Row)
		}
		if edit.SetMissing {
			cols[idx].Cells[edit.Row] = dataset.Missing()
			continue
		}
		cell, err := coerceValue(cols[idx], edit.Value)
		if err != nil {
			return nil, Outcome{}, err
		}
		cols[idx].Cells[edit.Row] = cell
	}
	return out, Outcome{CellsReplaced: len(edits)}, nil
}

func applyAutoReplace(ds *dataset.Dataset, spec ReplaceSpec) (*dataset.Dataset, Outcome, error) {
	out := ds.Clone()
	idx, err := columnOrError(out, opReplace, spec.Column)
	if err != nil {
		return nil, Outcome{}, err
	}
	col := out.Columns()[idx]

	matches, err := buildMatcher(spec)
	if err != nil {
		return nil, Outcome{}, err
	}

	replaced := 0
	var replacement dataset.Cell
	for i, cell := range col.Cells {
		if cell.IsMissing() || !matches(cell.String()) {
			continue
		}
		if replaced == 0 {
			// Coerce once; the column's classification does not change
			// mid-replacement.
			replacement, err = coerceValue(col, spec.Replacement)
			if err != nil {
				return nil, Outcome{}, err
			}
		}
		col.Cells[i] = replacement
		replaced++
	}
	return out, Outcome{CellsReplaced: replaced}, nil
}

func buildMatcher(spec ReplaceSpec) (func(string) bool, error) {
	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeParse, opReplace, fmt.Sprintf("invalid pattern %q", spec.Pattern), err).WithColumn(spec.Column)
		}
		return re.MatchString, nil
	}
	return func(s string) bool { return s == spec.Match }, nil
}

// coerceValue converts a raw string to a cell compatible with the
// column's classification, or fails with TYPE_MISMATCH.
func coerceValue(col dataset.Column, raw string) (dataset.Cell, error) {
	switch dataset.Classify(col) {
	case dataset.Numeric:
		v, ok := parseFloat(raw)
		if !ok {
			return dataset.Cell{}, apperrors.NewTypeMismatch(opReplace, fmt.Sprintf("value %q is not numeric", raw)).WithColumn(col.Name)
		}
		return dataset.Number(v), nil
	case dataset.Datetime:
		t, ok := parseTime(raw)
		if !ok {
			return dataset.Cell{}, apperrors.NewTypeMismatch(opReplace, fmt.Sprintf("value %q is not a datetime", raw)).WithColumn(col.Name)
		}
		return dataset.Timestamp(t), nil
	default:
		return dataset.Text(raw), nil
	}
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func parseTime(s string) (time.Time, bool) {
	return dataset.ParseTimestamp(s)
}
