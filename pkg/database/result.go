package database

import "database/sql"

// RowSet is a fully materialized cursor result.
type RowSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ScalarResult is a single labeled number: an affected-row count or the id
// of an inserted row.
type ScalarResult struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// Result holds exactly one of the two execution result shapes.
type Result struct {
	RowSet *RowSet       `json:"row_set,omitempty"`
	Scalar *ScalarResult `json:"scalar,omitempty"`
}

// Collect is a ResultHandler that materializes either result shape into a
// Result, draining the cursor before it is released.
type Collect struct{}

// HandleRows scans every row into memory.
func (Collect) HandleRows(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := &RowSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// Convert []byte to string for readability
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{RowSet: out}, nil
}

// HandleScalar wraps the labeled scalar.
func (Collect) HandleScalar(value int64, label string) (*Result, error) {
	return &Result{Scalar: &ScalarResult{Value: value, Label: label}}, nil
}
