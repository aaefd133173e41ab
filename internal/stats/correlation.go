package stats

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
)

const opCorrelation = "compute correlation"

// Method selects the correlation coefficient.
type Method string

const (
	// Pearson is the product-moment coefficient.
	Pearson Method = "pearson"
	// Spearman is Pearson over rank-transformed values, ties assigned
	// the average rank.
	Spearman Method = "spearman"
)

// ParseMethod validates a method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Pearson, Spearman:
		return Method(s), nil
	default:
		return "", apperrors.NewInvalidRequest(opCorrelation, fmt.Sprintf("unknown correlation method %q", s))
	}
}

// Matrix is a symmetric correlation matrix over the numeric columns of
// one dataset snapshot. Defined[i][j] is false where the coefficient is
// undefined (fewer than two pairwise-complete observations, or zero
// variance in either column); Values holds 0 there, never NaN.
type Matrix struct {
	Method  Method      `json:"method"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	Defined [][]bool    `json:"defined"`
}

// At returns the coefficient for (i, j) and whether it is defined.
func (m *Matrix) At(i, j int) (float64, bool) {
	return m.Values[i][j], m.Defined[i][j]
}

// Index returns the matrix position of the named column, or -1.
func (m *Matrix) Index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Pair is one off-diagonal correlation, used for the strongest-pairs
// listing.
type Pair struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Coefficient float64 `json:"coefficient"`
}

// StrongestPairs returns the defined off-diagonal pairs sorted by
// absolute coefficient descending. A non-positive limit returns all
// pairs.
func (m *Matrix) StrongestPairs(limit int) []Pair {
	var pairs []Pair
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			if v, ok := m.At(i, j); ok {
				pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], Coefficient: v})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Coefficient) > math.Abs(pairs[b].Coefficient)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// Correlate computes the pairwise correlation matrix over the dataset's
// numeric columns. Each pair uses pairwise-complete observations: rows
// where either column is missing are excluded from that pair only. The
// diagonal is 1.0 for columns with variance, undefined otherwise. Fails
// with INSUFFICIENT_COLUMNS when fewer than two numeric columns exist.
func Correlate(ctx context.Context, ds *dataset.Dataset, method Method) (*Matrix, error) {
	if method != Pearson && method != Spearman {
		return nil, apperrors.NewInvalidRequest(opCorrelation, fmt.Sprintf("unknown correlation method %q", method))
	}

	var names []string
	var values [][]float64
	var valid [][]bool
	for _, col := range ds.Columns() {
		if dataset.Classify(col) != dataset.Numeric {
			continue
		}
		vs := make([]float64, len(col.Cells))
		ok := make([]bool, len(col.Cells))
		for i, cell := range col.Cells {
			vs[i], ok[i] = cell.Float()
		}
		names = append(names, col.Name)
		values = append(values, vs)
		valid = append(valid, ok)
	}
	if len(names) < 2 {
		return nil, apperrors.NewInsufficientColumns(opCorrelation, fmt.Sprintf("need at least 2 numeric columns, have %d", len(names)))
	}

	n := len(names)
	m := &Matrix{Method: method, Columns: names, Values: make([][]float64, n), Defined: make([][]bool, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Defined[i] = make([]bool, n)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, ok := pairCoefficient(values[i], valid[i], values[i], valid[i], method)
			// corr(X, X) is 1 exactly when X has variance; keep the
			// computed marker but pin the value.
			if ok {
				v = 1
			}
			m.Values[i][i] = v
			m.Defined[i][i] = ok
			return nil
		})
		for j := i + 1; j < n; j++ {
			j := j
			g.Go(func() error {
				v, ok := pairCoefficient(values[i], valid[i], values[j], valid[j], method)
				m.Values[i][j], m.Values[j][i] = v, v
				m.Defined[i][j], m.Defined[j][i] = ok, ok
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// pairCoefficient computes one coefficient over the pairwise-complete
// observations of two columns.
func pairCoefficient(xs []float64, xok []bool, ys []float64, yok []bool, method Method) (float64, bool) {
	var px, py []float64
	for i := range xs {
		if xok[i] && yok[i] {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	if len(px) < 2 {
		return 0, false
	}
	if method == Spearman {
		px = averageRanks(px)
		py = averageRanks(py)
	}
	return pearson(px, py)
}

// pearson computes the product-moment coefficient. Zero variance in
// either input makes the coefficient undefined.
func pearson(xs, ys []float64) (float64, bool) {
	mx := Mean(xs)
	my := Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	// Clamp floating noise so callers can rely on [-1, 1].
	return math.Max(-1, math.Min(1, r)), true
}

// averageRanks rank-transforms values, assigning tied values the
// average of the ranks they span. Ranks are 1-based.
func averageRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Positions i..j hold the same value; average their 1-based
		// ranks.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
