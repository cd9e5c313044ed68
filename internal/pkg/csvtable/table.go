// Package csvtable reads and writes header-keyed CSV files while keeping the
// original column order.
package csvtable

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var ErrNoHeader = errors.New("csv has no header row")

type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

func New(header []string) *Table {
	t := &Table{Header: append([]string(nil), header...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		// First occurrence wins for duplicated column names.
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}
}

// Read parses a CSV document whose first record is the header. Rows shorter
// than the header are padded with empty values.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	t := New(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv row %d", len(t.Rows)+1)
		}
		for len(rec) < len(t.Header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

// Write emits the header and every row. Values in columns beyond the header
// are dropped.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Header) {
			row = row[:len(t.Header)]
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row %d", i+1)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteFile creates (or truncates) path and writes the table to it.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// MissingColumns returns the names that are not in the header, in the order given.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func (t *Table) HasColumns(names ...string) bool {
	return len(t.MissingColumns(names...)) == 0
}

// Get returns the value of column in row, or "" for an unknown column.
func (t *Table) Get(row int, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes value into column of row. Unknown columns are ignored.
func (t *Table) Set(row int, column, value string) {
	i, ok := t.index[column]
	if !ok {
		return
	}
	t.Rows[row][i] = value
}

// Record returns row as a column name to value map.
func (t *Table) Record(row int) map[string]string {
	out := make(map[string]string, len(t.Header))
	for i, name := range t.Header {
		if _, seen := out[name]; seen {
			continue
		}
		if i < len(t.Rows[row]) {
			out[name] = t.Rows[row][i]
		} else {
			out[name] = ""
		}
	}
	return out
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
