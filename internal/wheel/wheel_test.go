package wheel

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleMetadata = `Metadata-Version: 2.1
Name: mytool
Version: 1.2.3
Summary: A tool that does things
Author-email: "Jane Doe" <jane@example.com>
License: MIT
License-File: LICENSE

Long description body.
Name: not-a-header
`

// writeWheel creates a wheel archive with the provided members.
func writeWheel(t *testing.T, name string, members map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	// A directory entry that must be skipped.
	_, err = zw.Create("mytool-1.2.3.dist-info/")
	require.NoError(t, err)

	for member, contents := range members {
		w, err := zw.Create(member)
		require.NoError(t, err)

		_, err = w.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

// TestReadMetadata parses headers and ignores the description body.
func TestReadMetadata(t *testing.T) {
	t.Parallel()

	archive := writeWheel(t, "mytool-1.2.3-py3-none-any.whl", map[string]string{
		"mytool-1.2.3.dist-info/METADATA": sampleMetadata,
	})

	md, err := ReadMetadata(archive)
	require.NoError(t, err)
	require.Equal(t, "mytool", md.Name)
	require.Equal(t, "1.2.3", md.Version)
	require.Equal(t, "A tool that does things", md.Summary)
	require.Equal(t, `"Jane Doe" <jane@example.com>`, md.AuthorEmail)
	require.Equal(t, "MIT", md.LicenseText())
	require.Equal(t, []string{"LICENSE"}, md.LicenseFiles)
}

// TestReadMetadata_Missing reports a MalformedArchiveError naming the archive and the file.
func TestReadMetadata_Missing(t *testing.T) {
	t.Parallel()

	archive := writeWheel(t, "empty-1.0-py3-none-any.whl", map[string]string{
		"empty/__init__.py": "",
	})

	_, err := ReadMetadata(archive)

	var malformed *MalformedArchiveError

	require.ErrorAs(t, err, &malformed)
	require.Equal(t, archive, malformed.Archive)
	require.Equal(t, MetadataFilename, malformed.File)
	require.Contains(t, err.Error(), archive)
	require.Contains(t, err.Error(), MetadataFilename)
}

// TestReadFile_NotAZip wraps the zip error in MalformedArchiveError.
func TestReadFile_NotAZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.whl")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := ReadFile(path, MetadataFilename)

	var malformed *MalformedArchiveError

	require.ErrorAs(t, err, &malformed)
	require.Error(t, malformed.Unwrap())
}

// TestTopLevel returns the first non-empty line of top_level.txt.
func TestTopLevel(t *testing.T) {
	t.Parallel()

	archive := writeWheel(t, "mytool-1.2.3-py3-none-any.whl", map[string]string{
		"mytool/data/top_level.txt":            "decoy\n",
		"mytool-1.2.3.dist-info/top_level.txt": "\nmytool\nother\n",
	})

	name, err := TopLevel(archive)
	require.NoError(t, err)
	require.Equal(t, "mytool", name)

	upper := writeWheel(t, "MyTool-1.2.3-py3-none-any.WHL", map[string]string{
		"mytool-1.2.3.dist-info/top_level.txt": "mytool\n",
	})

	name, err = TopLevel(upper)
	require.NoError(t, err)
	require.Equal(t, "mytool", name)
}

// TestTopLevel_Errors covers wrong extension, missing and empty files.
func TestTopLevel_Errors(t *testing.T) {
	t.Parallel()

	var malformed *MalformedArchiveError

	_, err := TopLevel("package.tar.gz")
	require.ErrorAs(t, err, &malformed)

	archive := writeWheel(t, "a-1.0-py3-none-any.whl", map[string]string{"a/__init__.py": ""})
	_, err = TopLevel(archive)
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, TopLevelFilename, malformed.File)

	archive = writeWheel(t, "b-1.0-py3-none-any.whl", map[string]string{"b-1.0.dist-info/top_level.txt": "\n  \n"})
	_, err = TopLevel(archive)
	require.ErrorAs(t, err, &malformed)
}

// TestParseMetadata_RequiresNameAndVersion rejects incomplete header blocks.
func TestParseMetadata_RequiresNameAndVersion(t *testing.T) {
	t.Parallel()

	_, err := ParseMetadata(strings.NewReader("Metadata-Version: 2.1\nName: x\n\n"))
	require.ErrorIs(t, err, errMissingNameOrVersion)
}

// TestReadLicenseFile finds the License-File entry inside the archive.
func TestReadLicenseFile(t *testing.T) {
	t.Parallel()

	archive := writeWheel(t, "mytool-1.2.3-py3-none-any.whl", map[string]string{
		"mytool/templates/LICENSE":                "{{ license template for generated projects }}",
		"mytool-1.2.3.dist-info/METADATA":         sampleMetadata,
		"mytool-1.2.3.dist-info/licenses/LICENSE": "MIT License text",
		"mytool-1.2.3.dist-info/COPYING":          "Copying text",
	})

	md, err := ReadMetadata(archive)
	require.NoError(t, err)

	data, ok, err := ReadLicenseFile(archive, md)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "MIT License text", string(data))

	md.LicenseFiles = []string{"COPYING"}

	data, ok, err = ReadLicenseFile(archive, md)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Copying text", string(data))

	md.LicenseFiles = []string{"NOTICE", "templates/LICENSE"}

	_, ok, err = ReadLicenseFile(archive, md)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestLicenseText falls back to the SPDX expression when License is unusable.
func TestLicenseText(t *testing.T) {
	t.Parallel()

	md := &Metadata{License: "UNKNOWN", LicenseExpression: "Apache-2.0"}
	require.Equal(t, "Apache-2.0", md.LicenseText())

	md = &Metadata{}
	require.Empty(t, md.LicenseText())
}
