package dataset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// CellKind discriminates the tagged cell variant.
type CellKind int

const (
	// KindMissing marks an explicitly missing cell.
	KindMissing CellKind = iota
	// KindNumber holds a float64 value.
	KindNumber
	// KindText holds a string value.
	KindText
	// KindTime holds a timestamp.
	KindTime
)

// String returns the string representation of the kind.
func (k CellKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Cell is a single typed value or an explicit missing marker. A cell is
// never both absent and silently coerced; callers must check IsMissing
// before reading a value.
type Cell struct {
	kind CellKind
	num  float64
	text string
	ts   time.Time
}

// Number creates a numeric cell.
func Number(v float64) Cell {
	return Cell{kind: KindNumber, num: v}
}

// Text creates a text cell.
func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

// Timestamp creates a datetime cell.
func Timestamp(t time.Time) Cell {
	return Cell{kind: KindTime, ts: t}
}

// Missing creates the explicit missing marker.
func Missing() Cell {
	return Cell{kind: KindMissing}
}

// Kind returns the cell's variant tag.
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsMissing reports whether the cell carries the missing marker.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Float returns the numeric value. The second return is false for
// non-numeric cells.
func (c Cell) Float() (float64, bool) {
	return c.num, c.kind == KindNumber
}

// Str returns the text value. The second return is false for non-text
// cells.
func (c Cell) Str() (string, bool) {
	return c.text, c.kind == KindText
}

// Time returns the timestamp value. The second return is false for
// non-datetime cells.
func (c Cell) Time() (time.Time, bool) {
	return c.ts, c.kind == KindTime
}

// String returns the canonical display encoding: numbers in shortest
// round-trip form, timestamps as RFC 3339, missing as the empty string.
// Equality of canonical strings is NOT cell equality; use Equal.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case KindText:
		return c.text
	case KindTime:
		return c.ts.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal compares two cells. Missing equals missing.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.num == o.num
	case KindText:
		return c.text == o.text
	case KindTime:
		return c.ts.Equal(o.ts)
	default:
		return true
	}
}

// Column is an ordered sequence of cells under a unique name.
type Column struct {
	Name  string
	Cells []Cell
}

// MissingCount returns the number of missing cells in the column.
func (c Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.IsMissing() {
			n++
		}
	}
	return n
}

// Dataset is an ordered sequence of named equal-length columns. Row
// identity is purely positional.
type Dataset struct {
	id   uuid.UUID
	cols []Column
	rows int
}

// New builds a Dataset and validates its invariants: unique column names
// and equal column lengths. The column slice is owned by the Dataset
// afterwards.
func New(cols []Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0].Cells)
	}
	seen := make(map[string]struct{}, len(cols))
	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("dataset: column %d has an empty name", i)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}
		if len(col.Cells) != rows {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", col.Name, len(col.Cells), rows)
		}
	}
	return &Dataset{id: uuid.New(), cols: cols, rows: rows}, nil
}

// MustNew is New for statically known inputs; it panics on invariant
// violations. Intended for tests and fixtures.
func MustNew(cols []Column) *Dataset {
	d, err := New(cols)
	if err != nil {
		panic(err)
	}
	return d
}

// ID returns the dataset's identity. Identity changes per transform so
// hosts can keep undo history keyed by ID.
func (d *Dataset) ID() uuid.UUID {
	return d.id
}

// Rows returns the row count.
func (d *Dataset) Rows() int {
	return d.rows
}

// Cols returns the column count.
func (d *Dataset) Cols() int {
	return len(d.cols)
}

// Columns returns the backing column slice. Callers must treat it as
// read-only; transforms copy what they change.
func (d *Dataset) Columns() []Column {
	return d.cols
}

// Column returns the column at position i.
func (d *Dataset) Column(i int) Column {
	return d.cols[i]
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, col := range d.cols {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// ColumnByName returns the named column. The second return is false when
// the column does not exist.
func (d *Dataset) ColumnByName(name string) (Column, bool) {
	i := d.ColumnIndex(name)
	if i < 0 {
		return Column{}, false
	}
	return d.cols[i], true
}

// ColumnNames returns the column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, col := range d.cols {
		names[i] = col.Name
	}
	return names
}

// Cell returns the cell at (row, col). Bounds are the caller's
// responsibility; transforms validate coordinates before reaching here.
func (d *Dataset) Cell(row, col int) Cell {
	return d.cols[col].Cells[row]
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Cell {
	row := make([]Cell, len(d.cols))
	for j, col := range d.cols {
		row[j] = col.Cells[i]
	}
	return row
}

// MissingCount returns the total number of missing cells.
func (d *Dataset) MissingCount() int {
	n := 0
	for _, col := range d.cols {
		n += col.MissingCount()
	}
	return n
}

// Clone returns a deep copy with a fresh identity.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.cols))
	for i, col := range d.cols {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		cols[i] = Column{Name: col.Name, Cells: cells}
	}
	return &Dataset{id: uuid.New(), cols: cols, rows: d.rows}
}
