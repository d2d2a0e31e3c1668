package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type pair [2]string

// TestPython covers the literal forms used by the freeze spec.
func TestPython(t *testing.T) {
	t.Parallel()

	name := "x"

	cases := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{None, "None"},
		{"plain", "'plain'"},
		{`C:\Users\me\app.ico`, `'C:\\Users\\me\\app.ico'`},
		{"it's", `"it's"`},
		{`both ' and "`, `'both \' and "'`},
		{"line\nbreak\t", `'line\nbreak\t'`},
		{"\x01", `'\x01'`},
		{true, "True"},
		{false, "False"},
		{42, "42"},
		{uint8(7), "7"},
		{&name, "'x'"},
		{(*string)(nil), "None"},
		{[]string{}, "[]"},
		{[]string(nil), "[]"},
		{[]string{"a", "b"}, "['a', 'b']"},
		{[]pair{{"src", "dst"}}, "[('src', 'dst')]"},
		{[1]string{"solo"}, "('solo',)"},
	}

	for _, tc := range cases {
		got, err := Python(tc.in)
		require.NoError(t, err, "%#v", tc.in)
		require.Equal(t, tc.want, got, "%#v", tc.in)
	}

	_, err := Python(map[string]string{})
	require.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Python([]any{1.5})
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

// TestCMake covers quoting and escaping of CMake arguments.
func TestCMake(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{nil, `""`},
		{None, `""`},
		{"WIX", `"WIX"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\path`, `"C:\\path"`},
		{"${CPACK_PACKAGE_NAME}-1.0", `"${CPACK_PACKAGE_NAME}-1.0"`},
		{3, `"3"`},
		{true, `"ON"`},
		{[]string{"mytool", "My Tool"}, `"mytool" "My Tool"`},
	}

	for _, tc := range cases {
		got, err := CMake(tc.in)
		require.NoError(t, err, "%#v", tc.in)
		require.Equal(t, tc.want, got, "%#v", tc.in)
	}

	_, err := CMake(1.5)
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

// TestCMakeSet renders set() lines and rejects bad names.
func TestCMakeSet(t *testing.T) {
	t.Parallel()

	got, err := CMakeSet([][2]string{
		{"CPACK_WIX_UPGRADE_GUID", "1234"},
		{"CPACK_WIX_PRODUCT_ICON", `C:/icons/"app".ico`},
	})
	require.NoError(t, err)
	require.Equal(t,
		"set(CPACK_WIX_UPGRADE_GUID \"1234\")\nset(CPACK_WIX_PRODUCT_ICON \"C:/icons/\\\"app\\\".ico\")",
		got)

	empty, err := CMakeSet(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = CMakeSet([][2]string{{"BAD NAME)", "x"}})
	require.ErrorIs(t, err, ErrInvalidVariableName)
}

// TestPythonList leaves unset values out of the list.
func TestPythonList(t *testing.T) {
	t.Parallel()

	got, err := PythonList("mytool", None, nil, "extra")
	require.NoError(t, err)
	require.Equal(t, "['mytool', 'extra']", got)

	got, err = PythonList(None)
	require.NoError(t, err)
	require.Equal(t, "[]", got)

	_, err = PythonList(map[string]int{})
	require.ErrorIs(t, err, ErrUnsupportedValue)
}
