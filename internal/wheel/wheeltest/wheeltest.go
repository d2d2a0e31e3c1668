// Package wheeltest builds small wheel archives for tests.
package wheeltest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Wheel describes the archive to build.
type Wheel struct {
	// Name is the distribution and top-level package name.
	Name string
	// Version is the distribution version.
	Version string
	// Summary is written as the Summary header when set.
	Summary string
	// AuthorEmail is written as the Author-email header when set.
	AuthorEmail string
	// License is written as the License header when set.
	License string
	// LicenseFile is bundled as .dist-info/licenses/LICENSE when set.
	LicenseFile string
}

// Build writes the wheel into dir and returns its path.
func Build(t testing.TB, dir string, w Wheel) string {
	t.Helper()

	distInfo := fmt.Sprintf("%s-%s.dist-info", w.Name, w.Version)

	var metadata strings.Builder

	fmt.Fprintf(&metadata, "Metadata-Version: 2.1\nName: %s\nVersion: %s\n", w.Name, w.Version)

	for _, header := range []struct{ key, value string }{
		{"Summary", w.Summary},
		{"Author-email", w.AuthorEmail},
		{"License", w.License},
	} {
		if header.value != "" {
			fmt.Fprintf(&metadata, "%s: %s\n", header.key, header.value)
		}
	}

	members := map[string]string{
		w.Name + "/__init__.py":     "",
		w.Name + "/__main__.py":     "print('hello')\n",
		distInfo + "/top_level.txt": w.Name + "\n",
		distInfo + "/WHEEL":         "Wheel-Version: 1.0\nRoot-Is-Purelib: true\n",
		distInfo + "/RECORD":        "",
	}

	if w.LicenseFile != "" {
		metadata.WriteString("License-File: LICENSE\n")

		members[distInfo+"/licenses/LICENSE"] = w.LicenseFile
	}

	metadata.WriteString("\n")
	members[distInfo+"/METADATA"] = metadata.String()

	path := filepath.Join(dir, fmt.Sprintf("%s-%s-py3-none-any.whl", w.Name, w.Version))

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for name, contents := range members {
		mw, err := zw.Create(name)
		require.NoError(t, err)

		_, err = mw.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}
