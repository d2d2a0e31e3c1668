package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	ExecutableName string      `render:"app_executable_name"`
	DataFiles      [][2]string `render:"data_files"`
	Icon           string      `render:"app_icon,optional"`
	Hidden         string      `render:"-"`
	Count          int
	internal       string
}

func newSampleRecord() sampleRecord {
	return sampleRecord{
		ExecutableName: "mytool",
		DataFiles:      [][2]string{{"a.ico", "mytool"}},
		Hidden:         "secret",
		Count:          2,
		internal:       "ignored",
	}
}

// TestFieldsOf_OrderAndTags checks tag names, optional handling and skipped fields.
func TestFieldsOf_OrderAndTags(t *testing.T) {
	t.Parallel()

	fields, err := FieldsOf(newSampleRecord())
	require.NoError(t, err)

	want := []Field{
		{Name: "app_executable_name", Value: "mytool"},
		{Name: "data_files", Value: [][2]string{{"a.ico", "mytool"}}},
		{Name: "app_icon", Value: None},
		{Name: "Count", Value: 2},
	}

	if diff := cmp.Diff(want, fields, cmp.AllowUnexported(noneValue{})); diff != "" {
		t.Errorf("FieldsOf() mismatch (-want +got):\n%s", diff)
	}
}

// TestFieldsOf_RejectsNonStruct ensures the record must be a struct.
func TestFieldsOf_RejectsNonStruct(t *testing.T) {
	t.Parallel()

	_, err := FieldsOf("not a struct")
	require.ErrorIs(t, err, ErrNotStruct)

	var nilRecord *sampleRecord

	_, err = FieldsOf(nilRecord)
	require.ErrorIs(t, err, ErrNotStruct)
}

// TestFlatten_EmptyRemapKeepsNames verifies internal names are used verbatim without a remap.
func TestFlatten_EmptyRemapKeepsNames(t *testing.T) {
	t.Parallel()

	fields, err := FieldsOf(newSampleRecord())
	require.NoError(t, err)

	data := Flatten(fields, nil)
	require.Len(t, data, len(fields))

	for _, f := range fields {
		require.Contains(t, data, f.Name)
	}
}

// TestFlatten_RemapIsPureRename verifies a remapped key never leaves the internal name behind.
func TestFlatten_RemapIsPureRename(t *testing.T) {
	t.Parallel()

	fields, err := FieldsOf(newSampleRecord())
	require.NoError(t, err)

	remap := map[string]string{"data_files": "datas", "not_a_field": "whatever"}

	data := Flatten(fields, remap)
	require.NotContains(t, data, "data_files")
	require.Contains(t, data, "datas")
	require.NotContains(t, data, "whatever")
	require.Equal(t, "mytool", data["app_executable_name"])
	require.Len(t, remap, 2)
}

// TestRender_Deterministic renders the same record twice and compares bytes.
func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	text := "name={{py .app_executable_name}}\ndatas={{py .datas}}\nicon={{py .app_icon}}\n"
	remap := map[string]string{"data_files": "datas"}

	first, err := Render("sample", text, newSampleRecord(), remap)
	require.NoError(t, err)

	second, err := Render("sample", text, newSampleRecord(), remap)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "name='mytool'\ndatas=[('a.ico', 'mytool')]\nicon=None\n", first)
}

// TestRender_MissingPlaceholderFails ensures an unknown key is an error, not a blank.
func TestRender_MissingPlaceholderFails(t *testing.T) {
	t.Parallel()

	_, err := Render("sample", "{{py .does_not_exist}}", newSampleRecord(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample")

	// The internal name is gone once remapped.
	_, err = Render("sample", "{{py .data_files}}", newSampleRecord(), map[string]string{"data_files": "datas"})
	require.Error(t, err)
}

// TestParse_InvalidTemplate reports syntax errors with the template name.
func TestParse_InvalidTemplate(t *testing.T) {
	t.Parallel()

	_, err := Parse("broken", "{{py .x")
	require.ErrorContains(t, err, "broken")

	require.Panics(t, func() { MustParse("broken", "{{end}}") })
}
