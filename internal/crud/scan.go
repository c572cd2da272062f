package crud

import (
	"database/sql"
	"strconv"
	"strings"
)

// scanMaps reads every row into a column-name keyed map. Text comes back as string and
// DECIMAL columns as float64 so prices serialize as numbers.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	decimal := make([]bool, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, t := range types {
			decimal[i] = strings.EqualFold(t.DatabaseTypeName(), "DECIMAL")
		}
	}

	data := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range columns {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		entry := make(map[string]any, len(columns))
		for i, col := range columns {
			entry[col] = normalize(values[i], decimal[i])
		}
		data = append(data, entry)
	}
	return data, rows.Err()
}

func normalize(v any, decimal bool) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if decimal {
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
	}
	return string(b)
}
