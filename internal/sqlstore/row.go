package sqlstore

import (
	"database/sql"
	"fmt"
)

// Row is a by-name view over one scanned result row. Mappings read columns
// through it instead of by ordinal position, so a reordered SELECT list
// never silently shifts values into the wrong fields.
type Row struct {
	values map[string]any
}

// readRow scans the current row of rows into a by-name view. Column names
// come from the result set itself.
func readRow(rows *sql.Rows) (*Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	byName := make(map[string]any, len(columns))
	for i, name := range columns {
		byName[name] = values[i]
	}
	return &Row{values: byName}, nil
}

// Int64 reads a non-null integer column.
func (r *Row) Int64(name string) (int64, error) {
	v, ok := r.values[name]
	if !ok {
		return 0, fmt.Errorf("no column %q in row", name)
	}
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("column %q: want integer, got %T", name, v)
	}
}

// String reads a non-null text column.
func (r *Row) String(name string) (string, error) {
	v, ok := r.values[name]
	if !ok {
		return "", fmt.Errorf("no column %q in row", name)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	default:
		return "", fmt.Errorf("column %q: want text, got %T", name, v)
	}
}

// Bool reads a non-null boolean column. SQLite stores booleans as
// integers, so both forms are accepted.
func (r *Row) Bool(name string) (bool, error) {
	v, ok := r.values[name]
	if !ok {
		return false, fmt.Errorf("no column %q in row", name)
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	default:
		return false, fmt.Errorf("column %q: want boolean, got %T", name, v)
	}
}

// NullString reads a nullable text column. ok is false when the column is
// NULL or absent from the row.
func (r *Row) NullString(name string) (string, bool, error) {
	v, present := r.values[name]
	if !present || v == nil {
		return "", false, nil
	}
	s, err := r.String(name)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// NullInt64 reads a nullable integer column. ok is false when the column
// is NULL or absent from the row.
func (r *Row) NullInt64(name string) (int64, bool, error) {
	v, present := r.values[name]
	if !present || v == nil {
		return 0, false, nil
	}
	n, err := r.Int64(name)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
