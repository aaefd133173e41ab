// Package selection parses the row/column index mini-language used by
// the transform API: comma-separated tokens that are either a single
// non-negative integer or an inclusive range "a-b". The syntax is part
// of the core's contract.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "tabcli/internal/errors"
)

const opParse = "parse selection"

// Selection is an ordered set of unique non-negative positions.
// Ordering is first-seen: "2,0,1" keeps [2 0 1], ranges expand in
// ascending order. Bounds are validated at the point of application via
// Bound, not at parse time.
type Selection struct {
	indices []int
}

// Parse expands a selection spec. The empty string (or all whitespace)
// yields an empty selection. Duplicates across tokens are merged keeping
// the first occurrence position. Malformed tokens, descending ranges,
// and negative values fail with a PARSE_ERROR.
func Parse(spec string) (Selection, error) {
	if strings.TrimSpace(spec) == "" {
		return Selection{}, nil
	}

	var order []int
	seen := make(map[int]struct{})
	add := func(i int) {
		if _, dup := seen[i]; dup {
			return
		}
		seen[i] = struct{}{}
		order = append(order, i)
	}

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return Selection{}, apperrors.NewParse(opParse, fmt.Sprintf("empty token in %q", spec))
		}
		if i := strings.Index(token, "-"); i > 0 {
			lo, err1 := parseIndex(token[:i])
			hi, err2 := parseIndex(token[i+1:])
			if err1 != nil || err2 != nil {
				return Selection{}, apperrors.NewParse(opParse, fmt.Sprintf("malformed range %q", token))
			}
			if lo > hi {
				return Selection{}, apperrors.NewParse(opParse, fmt.Sprintf("descending range %q", token))
			}
			for v := lo; v <= hi; v++ {
				add(v)
			}
			continue
		}
		v, err := parseIndex(token)
		if err != nil {
			return Selection{}, apperrors.NewParse(opParse, fmt.Sprintf("invalid index %q", token))
		}
		add(v)
	}

	return Selection{indices: order}, nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative index %d", v)
	}
	return v, nil
}

// FromIndices builds a selection from explicit positions, merging
// duplicates with first-seen ordering. Negative positions fail with a
// PARSE_ERROR.
func FromIndices(indices []int) (Selection, error) {
	var order []int
	seen := make(map[int]struct{})
	for _, v := range indices {
		if v < 0 {
			return Selection{}, apperrors.NewParse(opParse, fmt.Sprintf("negative index %d", v)).WithIndex(v)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		order = append(order, v)
	}
	return Selection{indices: order}, nil
}

// Indices returns the positions in selection order. The returned slice
// is a copy.
func (s Selection) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Len returns the number of selected positions.
func (s Selection) Len() int {
	return len(s.indices)
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.indices) == 0
}

// Contains reports whether position i is selected.
func (s Selection) Contains(i int) bool {
	for _, v := range s.indices {
		if v == i {
			return true
		}
	}
	return false
}

// Bound validates every position against [0, size). Out-of-range
// positions are an error, never silently dropped.
func (s Selection) Bound(size int, op string) error {
	for _, v := range s.indices {
		if v >= size {
			return apperrors.NewSelection(op, fmt.Sprintf("index %d out of range [0, %d)", v, size)).WithIndex(v)
		}
	}
	return nil
}

// Complement returns the positions of [0, size) not in s, in ascending
// order. Used by exclude-mode extraction.
func (s Selection) Complement(size int) Selection {
	member := make(map[int]struct{}, len(s.indices))
	for _, v := range s.indices {
		member[v] = struct{}{}
	}
	var out []int
	for i := 0; i < size; i++ {
		if _, drop := member[i]; !drop {
			out = append(out, i)
		}
	}
	return Selection{indices: out}
}
