package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelColumns maps a struct's db tags to field indexes.
type modelColumns struct {
	names  []string
	fields []int
}

var modelColumnsCache sync.Map

// InsertModel inserts one row built from the db tags of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix)
}

// InsertModels builds one multi-row insert. All models must share a type.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	builder := InsertInto(table).Suffix(suffix)
	var rowType reflect.Type
	for i, model := range models {
		value, err := structValue(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		if i == 0 {
			rowType = value.Type()
		} else if value.Type() != rowType {
			return "", nil, fmt.Errorf("model %d: type %s does not match %s", i, value.Type(), rowType)
		}

		cols, err := columnsOf(value.Type())
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			builder.Columns(cols.names...)
		}
		row := make([]any, len(cols.fields))
		for j, idx := range cols.fields {
			row[j] = value.Field(idx).Interface()
		}
		builder.Values(row...)
	}
	return builder.ToSQL()
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct")
	}
	return value, nil
}

func columnsOf(typ reflect.Type) (modelColumns, error) {
	if cached, ok := modelColumnsCache.Load(typ); ok {
		return cached.(modelColumns), nil
	}

	var cols modelColumns
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols.names = append(cols.names, name)
		cols.fields = append(cols.fields, i)
	}
	if len(cols.names) == 0 {
		return modelColumns{}, fmt.Errorf("%s has no db columns", typ)
	}

	modelColumnsCache.Store(typ, cols)
	return cols, nil
}
