package upsert

import (
	"fmt"
	"sort"
)

// Field is a single column/value pair of a Row.
type Field struct {
	Column string
	Value  any
}

// Row is an ordered set of fields. Field order is the column emission order.
type Row []Field

// Columns returns the column names in order.
func (r Row) Columns() []string {
	columns := make([]string, len(r))
	for i, f := range r {
		columns[i] = f.Column
	}
	return columns
}

// Values returns the field values in order.
func (r Row) Values() []any {
	values := make([]any, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// RowFromMap builds a Row from m with columns sorted by name.
func RowFromMap(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(Row, len(keys))
	for i, k := range keys {
		row[i] = Field{Column: k, Value: m[k]}
	}
	return row
}

// Normalize converts the accepted input shapes into a batch of rows.
// A single Row or map is wrapped into a one-element batch.
func Normalize(data any) ([]Row, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case Row:
		return []Row{v}, nil
	case []Row:
		return v, nil
	case map[string]any:
		return []Row{RowFromMap(v)}, nil
	case []map[string]any:
		rows := make([]Row, len(v))
		for i, m := range v {
			rows[i] = RowFromMap(m)
		}
		return rows, nil
	case []any:
		rows := make([]Row, len(v))
		for i, item := range v {
			row, ok := asRow(item)
			if !ok {
				if i == 0 {
					return nil, invalidInput("data is not a batch of rows: first element is %T", item)
				}
				return nil, invalidInput("row %d: unsupported row type %T", i, item)
			}
			rows[i] = row
		}
		return rows, nil
	default:
		return nil, invalidInput("unsupported data type %T", data)
	}
}

func asRow(item any) (Row, bool) {
	switch r := item.(type) {
	case Row:
		return r, true
	case map[string]any:
		return RowFromMap(r), true
	}
	return nil, false
}

// sameShape reports whether r has exactly the given columns in the same order.
func (r Row) sameShape(columns []string) error {
	if len(r) != len(columns) {
		return fmt.Errorf("columns (%d) and values (%d) length mismatch", len(columns), len(r))
	}
	for i, f := range r {
		if f.Column != columns[i] {
			return fmt.Errorf("column %d is %q, want %q", i, f.Column, columns[i])
		}
	}
	return nil
}
