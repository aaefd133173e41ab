package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultMissingIndicators are the raw strings recognized as missing
// markers during loading. The list follows the conventions of CSV
// exports from spreadsheet and statistics tools.
var DefaultMissingIndicators = []string{
	"?", "NA", "N/A", "null", "NULL", "", " ", "nan", "NaN", "missing",
}

// LoadOptions tunes raw-table materialization.
type LoadOptions struct {
	// MissingIndicators overrides DefaultMissingIndicators when non-nil.
	MissingIndicators []string
	// DatetimeLayouts overrides DatetimeLayouts when non-nil.
	DatetimeLayouts []string
}

func (o *LoadOptions) indicators() map[string]struct{} {
	list := DefaultMissingIndicators
	if o != nil && o.MissingIndicators != nil {
		list = o.MissingIndicators
	}
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s] = struct{}{}
	}
	return set
}

func (o *LoadOptions) layouts() []string {
	if o != nil && o.DatetimeLayouts != nil {
		return o.DatetimeLayouts
	}
	return DatetimeLayouts
}

// FromRecords materializes a Dataset from an already-parsed raw table:
// a header row and string-valued data rows. Recognized missing
// indicators become explicit missing markers, then each column is
// auto-converted: all-numeric columns become number cells, all-datetime
// columns become timestamps, everything else stays text. Short rows are
// padded with missing cells; long rows are an error.
func FromRecords(header []string, rows [][]string, opts *LoadOptions) (*Dataset, error) {
	indicators := opts.indicators()
	layouts := opts.layouts()

	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = Column{Name: strings.TrimSpace(name), Cells: make([]Cell, len(rows))}
	}

	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("load records: row %d has %d fields, header has %d", i, len(row), len(header))
		}
		for j := range header {
			raw := ""
			if j < len(row) {
				raw = row[j]
			}
			if _, missing := indicators[raw]; missing {
				cols[j].Cells[i] = Missing()
			} else {
				cols[j].Cells[i] = Text(raw)
			}
		}
	}

	for j := range cols {
		cols[j] = autoConvert(cols[j], layouts)
	}

	return New(cols)
}

// autoConvert retypes a raw text column when every non-missing value
// parses uniformly. Mirrors the load-time dtype conversion of the
// classifier policy so classification and loading agree.
func autoConvert(col Column, layouts []string) Column {
	nonMissing := 0
	numeric := 0
	datetime := 0
	for _, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		nonMissing++
		s, _ := cell.Str()
		if _, ok := parseNumber(s); ok {
			numeric++
		}
		if _, ok := parseTimestamp(s, layouts); ok {
			datetime++
		}
	}
	if nonMissing == 0 {
		return col
	}

	switch {
	case numeric == nonMissing:
		for i, cell := range col.Cells {
			if cell.IsMissing() {
				continue
			}
			s, _ := cell.Str()
			v, _ := parseNumber(s)
			col.Cells[i] = Number(v)
		}
	case datetime == nonMissing:
		for i, cell := range col.Cells {
			if cell.IsMissing() {
				continue
			}
			s, _ := cell.Str()
			t, _ := parseTimestamp(s, layouts)
			col.Cells[i] = Timestamp(t)
		}
	}
	return col
}

// ReadCSV reads a CSV stream whose first record is the header.
func ReadCSV(r io.Reader, opts *LoadOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: empty input, expected a header row")
	}
	return FromRecords(records[0], records[1:], opts)
}

// ReadXLSX reads a worksheet from an Excel workbook. An empty sheet name
// selects the first sheet.
func ReadXLSX(path, sheet string, opts *LoadOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read sheet %q: empty sheet, expected a header row", sheet)
	}
	return FromRecords(rows[0], rows[1:], opts)
}
