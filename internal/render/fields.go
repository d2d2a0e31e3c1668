package render

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// tagName is the struct tag holding the placeholder name.
const tagName = "render"

// Field is a named value of a record.
type Field struct {
	Name  string
	Value any
}

// noneValue marks an unset optional field.
type noneValue struct{}

// None is the value of an unset optional field.
// It renders as Python None and as an empty CMake string.
//
//nolint:gochecknoglobals // Sentinel value compared by identity.
var None = noneValue{}

// ErrNotStruct is returned when FieldsOf receives something other than a struct.
var ErrNotStruct = errors.New("record must be a struct or a pointer to a struct")

// FieldsOf converts a tagged struct into its ordered fields.
// The tag `render:"name,optional"` names the placeholder; with the optional
// flag an empty string becomes None. Fields tagged "-" are skipped, untagged
// exported fields use their Go name.
func FieldsOf(record any) ([]Field, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNotStruct
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%T: %w", record, ErrNotStruct)
	}

	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name, optional := parseTag(sf)
		if name == "-" {
			continue
		}

		value := rv.Field(i).Interface()
		if optional && rv.Field(i).IsZero() {
			value = None
		}

		fields = append(fields, Field{Name: name, Value: value})
	}

	return fields, nil
}

// parseTag returns the placeholder name and whether the field is optional.
func parseTag(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok || tag == "" {
		return sf.Name, false
	}

	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}

	return name, options == "optional"
}

// Flatten builds the placeholder map from fields, renaming keys through remap.
// Keys without a remap entry pass through unchanged. remap is never modified.
func Flatten(fields []Field, remap map[string]string) map[string]any {
	data := make(map[string]any, len(fields))

	for _, f := range fields {
		key := f.Name
		if renamed, ok := remap[key]; ok {
			key = renamed
		}

		data[key] = f.Value
	}

	return data
}
