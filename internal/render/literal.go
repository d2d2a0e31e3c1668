package render

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupportedValue is returned when a value has no literal form in the target language.
var ErrUnsupportedValue = errors.New("unsupported value")

// ErrInvalidVariableName is returned for CMake variable names that would break the set() call.
var ErrInvalidVariableName = errors.New("invalid cmake variable name")

// cmakeVariableName matches names accepted by cmakeset.
var cmakeVariableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Python returns the Python literal of v.
// Strings are quoted like repr(), slices become lists and arrays become tuples.
func Python(v any) (string, error) {
	if v == nil {
		return "None", nil
	}

	if _, ok := v.(noneValue); ok {
		return "None", nil
	}

	return pythonValue(reflect.ValueOf(v))
}

// PythonList returns a Python list of the given values, leaving out None.
// It lets a template list optional values without a conditional.
func PythonList(values ...any) (string, error) {
	items := make([]string, 0, len(values))

	for _, v := range values {
		if v == nil || v == any(None) {
			continue
		}

		item, err := Python(v)
		if err != nil {
			return "", err
		}

		items = append(items, item)
	}

	return "[" + strings.Join(items, ", ") + "]", nil
}

func pythonValue(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.String:
		return pythonString(rv.String()), nil
	case reflect.Bool:
		if rv.Bool() {
			return "True", nil
		}

		return "False", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "None", nil
		}

		return Python(rv.Elem().Interface())
	case reflect.Slice:
		items, err := pythonItems(rv)
		if err != nil {
			return "", err
		}

		return "[" + strings.Join(items, ", ") + "]", nil
	case reflect.Array:
		items, err := pythonItems(rv)
		if err != nil {
			return "", err
		}

		if len(items) == 1 {
			return "(" + items[0] + ",)", nil
		}

		return "(" + strings.Join(items, ", ") + ")", nil
	default:
		return "", fmt.Errorf("python literal of %s: %w", rv.Type(), ErrUnsupportedValue)
	}
}

func pythonItems(rv reflect.Value) ([]string, error) {
	items := make([]string, 0, rv.Len())

	for i := range rv.Len() {
		item, err := Python(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// pythonString quotes s the way Python's repr() does.
func pythonString(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteRune(quote)

	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteRune(quote)

	return b.String()
}

// CMake returns v as a quoted CMake argument.
// Variable references such as ${CPACK_PACKAGE_NAME} are kept intact.
// Slices become a space separated list of quoted arguments.
func CMake(v any) (string, error) {
	if v == nil {
		return `""`, nil
	}

	if _, ok := v.(noneValue); ok {
		return `""`, nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return cmakeString(rv.String()), nil
	case reflect.Bool:
		if rv.Bool() {
			return `"ON"`, nil
		}

		return `"OFF"`, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return `"` + strconv.FormatInt(rv.Int(), 10) + `"`, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return `"` + strconv.FormatUint(rv.Uint(), 10) + `"`, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return `""`, nil
		}

		return CMake(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, rv.Len())

		for i := range rv.Len() {
			item, err := CMake(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}

			items = append(items, item)
		}

		return strings.Join(items, " "), nil
	default:
		return "", fmt.Errorf("cmake literal of %s: %w", rv.Type(), ErrUnsupportedValue)
	}
}

func cmakeString(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)

	return `"` + escaped + `"`
}

// CMakeSet renders (name, value) pairs as set() commands, one per line.
func CMakeSet(pairs [][2]string) (string, error) {
	lines := make([]string, 0, len(pairs))

	for _, pair := range pairs {
		if !cmakeVariableName.MatchString(pair[0]) {
			return "", fmt.Errorf("%q: %w", pair[0], ErrInvalidVariableName)
		}

		lines = append(lines, "set("+pair[0]+" "+cmakeString(pair[1])+")")
	}

	return strings.Join(lines, "\n"), nil
}
