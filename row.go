package pgcrud

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Row is one result row: column names in result order, each paired with the
// value pgx decoded for it.
//
// Values are stored by position, so a result with repeated column names
// (SELECT a.id, b.id ...) keeps every value in Columns and Values. Get, Map
// and MarshalJSON use the first column with a given name.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a Row from parallel column and value slices. Missing values
// are nil; extra values are dropped.
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: make([]string, len(columns)),
		values:  make([]any, len(columns)),
	}
	copy(r.columns, columns)
	copy(r.values, values)
	return r
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns the values in column order.
func (r *Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Get returns the value of col and whether the row has that column.
func (r *Row) Get(col string) (any, bool) {
	for i, c := range r.columns {
		if c == col {
			return r.values[i], true
		}
	}
	return nil, false
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}

// Map returns a copy of the row as a plain map.
func (r *Row) Map() map[string]any {
	out := make(map[string]any, len(r.columns))
	for i, col := range r.columns {
		if _, seen := out[col]; !seen {
			out[col] = r.values[i]
		}
	}
	return out
}

// MarshalJSON encodes the row as a JSON object whose keys keep column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(r.columns))
	buf.WriteByte('{')
	for i, col := range r.columns {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		if len(seen) > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %s: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// rowToRow is a pgx.RowToFunc collecting the current row with its field
// order intact.
func rowToRow(row pgx.CollectableRow) (*Row, error) {
	values, err := row.Values()
	if err != nil {
		return nil, err
	}
	fields := row.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}
	return NewRow(columns, values), nil
}

// collectRows drains rows into a non-nil slice.
func collectRows(rows pgx.Rows) ([]*Row, error) {
	out, err := pgx.CollectRows(rows, rowToRow)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Row{}
	}
	return out, nil
}
