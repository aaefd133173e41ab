package transform

import (
	"context"
	"fmt"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

// Kind discriminates the Request variant.
type Kind string

const (
	// KindSubtable extracts or drops rows and columns.
	KindSubtable Kind = "subtable"
	// KindReplace substitutes cell values manually or by matcher.
	KindReplace Kind = "replace"
	// KindMissing removes or imputes missing cells.
	KindMissing Kind = "missing"
	// KindDeduplicate removes duplicate rows.
	KindDeduplicate Kind = "deduplicate"
	// KindScale rescales numeric columns.
	KindScale Kind = "scale"
	// KindEncode encodes categorical columns numerically.
	KindEncode Kind = "encode"
	// KindFilter keeps rows whose column value is in a given set.
	KindFilter Kind = "filter"
)

// Request describes one transformation. Exactly the payload matching
// Kind must be set; Apply rejects anything else. Requests are immutable
// once constructed.
type Request struct {
	Kind        Kind           `json:"kind" yaml:"kind" validate:"required"`
	Subtable    *SubtableSpec  `json:"subtable,omitempty" yaml:"subtable,omitempty"`
	Replace     *ReplaceSpec   `json:"replace,omitempty" yaml:"replace,omitempty"`
	Missing     *MissingSpec   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Deduplicate *DedupSpec     `json:"deduplicate,omitempty" yaml:"deduplicate,omitempty"`
	Scale       *ScaleSpec     `json:"scale,omitempty" yaml:"scale,omitempty"`
	Encode      *EncodeSpec    `json:"encode,omitempty" yaml:"encode,omitempty"`
	Filter      *FilterSpec    `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Outcome reports what a transform changed, beyond the dataset itself.
// Deduplication and removal counts are part of the observable result,
// not a side effect.
type Outcome struct {
	RowsRemoved    int      `json:"rows_removed,omitempty"`
	CellsReplaced  int      `json:"cells_replaced,omitempty"`
	CellsImputed   int      `json:"cells_imputed,omitempty"`
	ColumnsAdded   []string `json:"columns_added,omitempty"`
	ColumnsRemoved []string `json:"columns_removed,omitempty"`
}

// Apply dispatches the request and returns a new Dataset. The input
// dataset is never mutated; on error the returned dataset is nil and the
// input remains the caller's working copy. The context bounds long
// operations when the host installs a timeout.
func Apply(ctx context.Context, ds *dataset.Dataset, req Request) (*dataset.Dataset, Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, Outcome{}, err
	}
	switch req.Kind {
	case KindSubtable:
		if req.Subtable == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return extractSubtable(ds, *req.Subtable)
	case KindReplace:
		if req.Replace == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return replaceValues(ds, *req.Replace)
	case KindMissing:
		if req.Missing == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return handleMissing(ds, *req.Missing)
	case KindDeduplicate:
		if req.Deduplicate == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return deduplicate(ds, *req.Deduplicate)
	case KindScale:
		if req.Scale == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return scale(ds, *req.Scale)
	case KindEncode:
		if req.Encode == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return encode(ds, *req.Encode)
	case KindFilter:
		if req.Filter == nil {
			return nil, Outcome{}, missingPayload(req.Kind)
		}
		return filterRows(ds, *req.Filter)
	default:
		return nil, Outcome{}, apperrors.NewInvalidRequest("apply transform", fmt.Sprintf("unknown transform kind %q", req.Kind))
	}
}

func missingPayload(kind Kind) error {
	return apperrors.NewInvalidRequest("apply transform", fmt.Sprintf("transform kind %q requires a %q payload", kind, kind))
}

// columnOrError resolves a column by name with the taxonomy error the
// engines share.
func columnOrError(ds *dataset.Dataset, op, name string) (int, error) {
	idx := ds.ColumnIndex(name)
	if idx < 0 {
		return -1, apperrors.NewOutOfBounds(op, "column does not exist").WithColumn(name)
	}
	return idx, nil
}
