package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Classification is the derived type label of a column.
type Classification int

const (
	// Unknown is assigned to columns with zero non-missing cells.
	Unknown Classification = iota
	// Numeric means every non-missing cell holds a number.
	Numeric
	// Categorical is the fallback for text-valued columns.
	Categorical
	// Datetime means every non-missing cell holds, or parses as, a
	// timestamp under the accepted layouts.
	Datetime
)

// String returns the string representation of the classification.
func (c Classification) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// DatetimeLayouts is the fixed set of accepted date/time patterns. A text
// column is Datetime only when every non-missing cell parses under at
// least one of these.
var DatetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// ParseTimestamp parses s under the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	return parseTimestamp(s, DatetimeLayouts)
}

func parseTimestamp(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Classify labels a single column. Missing cells never affect the
// outcome. The policy is deliberately threshold-free: a column that is
// neither Numeric nor Datetime is always Categorical, so there are no
// hidden distinct-ratio surprises.
func Classify(col Column) Classification {
	nonMissing := 0
	numbers := 0
	times := 0
	textAsTime := 0
	for _, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		nonMissing++
		switch cell.Kind() {
		case KindNumber:
			numbers++
		case KindTime:
			times++
		case KindText:
			if _, ok := parseTimestamp(cell.text, DatetimeLayouts); ok {
				textAsTime++
			}
		}
	}
	switch {
	case nonMissing == 0:
		return Unknown
	case numbers == nonMissing:
		return Numeric
	case times == nonMissing, textAsTime == nonMissing:
		return Datetime
	default:
		return Categorical
	}
}

// ClassifyAll labels every column of the dataset.
func ClassifyAll(d *Dataset) map[string]Classification {
	out := make(map[string]Classification, d.Cols())
	for _, col := range d.Columns() {
		out[col.Name] = Classify(col)
	}
	return out
}

// NumericColumns returns the names of Numeric columns in dataset order.
func NumericColumns(d *Dataset) []string {
	var names []string
	for _, col := range d.Columns() {
		if Classify(col) == Numeric {
			names = append(names, col.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of Categorical columns in dataset
// order.
func CategoricalColumns(d *Dataset) []string {
	var names []string
	for _, col := range d.Columns() {
		if Classify(col) == Categorical {
			names = append(names, col.Name)
		}
	}
	return names
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}
