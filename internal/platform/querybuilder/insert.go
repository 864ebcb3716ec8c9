package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModels builds one multi-row insert from db-tagged structs. Every model
// must share the same struct type; suffix is appended verbatim.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var (
		w       sqlWriter
		columns []string
	)
	for i, model := range models {
		cols, vals, err := modelColumns(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		if i == 0 {
			columns = cols
			w.write("INSERT INTO ", table, " (", strings.Join(columns, ", "), ") VALUES ")
		} else {
			if len(cols) != len(columns) {
				return "", nil, fmt.Errorf("model %d has %d columns, expected %d", i, len(cols), len(columns))
			}
			w.write(", ")
		}
		w.write("(")
		for j, v := range vals {
			if j > 0 {
				w.write(", ")
			}
			w.bind(v)
		}
		w.write(")")
	}

	if suffix = strings.TrimSpace(suffix); suffix != "" {
		w.write(" ", suffix)
	}
	return w.buf.String(), w.args, nil
}

// OnConflictUpdate renders an upsert suffix that overwrites updateColumns from
// the excluded row. With no update columns the conflicting row is kept.
func OnConflictUpdate(conflictColumns []string, updateColumns ...string) string {
	target := "ON CONFLICT (" + strings.Join(conflictColumns, ", ") + ")"
	if len(updateColumns) == 0 {
		return target + " DO NOTHING"
	}
	sets := make([]string, 0, len(updateColumns))
	for _, column := range updateColumns {
		sets = append(sets, column+" = EXCLUDED."+column)
	}
	return target + " DO UPDATE SET " + strings.Join(sets, ", ")
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
