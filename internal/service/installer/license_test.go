package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/wheel"
	"github.com/oshokin/desktop-packager/internal/wheel/wheeltest"
)

// licenseSource builds a source for a wheel inside dir.
func licenseSource(t *testing.T, dir string, w wheeltest.Wheel) *LicenseSource {
	t.Helper()

	packageFile := wheeltest.Build(t, dir, w)

	md, err := wheel.ReadMetadata(packageFile)
	require.NoError(t, err)

	return &LicenseSource{
		PackageFile: packageFile,
		Metadata:    md,
		SearchPaths: []string{dir},
		OutputDir:   filepath.Join(dir, "build"),
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// TestResolveLicense_UserFileWins copies the override before looking at the wheel.
func TestResolveLicense_UserFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := licenseSource(t, dir, wheeltest.Wheel{Name: "mytool", Version: "1.0", License: "MIT"})
	src.UserFile = filepath.Join(dir, "CUSTOM.txt")
	require.NoError(t, os.WriteFile(src.UserFile, []byte("custom terms"), 0o600))

	g := Generators[WIX]

	path, err := ResolveLicense(context.Background(), filepath.Join(src.OutputDir, g.LicenseFileName), g.LicenseStrategies(src)...)
	require.NoError(t, err)
	require.Equal(t, "LICENSE.txt", filepath.Base(path))
	require.Equal(t, "custom terms", readString(t, path))
}

// TestResolveLicense_Wheel prefers a bundled License-File over the License header.
func TestResolveLicense_Wheel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := licenseSource(t, dir, wheeltest.Wheel{
		Name:        "mytool",
		Version:     "1.0",
		License:     "MIT",
		LicenseFile: "full license text",
	})

	g := Generators[DragNDrop]

	path, err := ResolveLicense(context.Background(), filepath.Join(src.OutputDir, g.LicenseFileName), g.LicenseStrategies(src)...)
	require.NoError(t, err)
	require.Equal(t, "full license text", readString(t, path))

	header := licenseSource(t, t.TempDir(), wheeltest.Wheel{Name: "mytool", Version: "1.0", License: "MIT"})

	path, err = ResolveLicense(context.Background(), filepath.Join(header.OutputDir, g.LicenseFileName), g.LicenseStrategies(header)...)
	require.NoError(t, err)
	require.Equal(t, "MIT", readString(t, path))
}

// TestResolveLicense_Local copies ./LICENSE for WIX and references it for DragNDrop.
func TestResolveLicense_Local(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := licenseSource(t, dir, wheeltest.Wheel{Name: "mytool", Version: "1.0"})
	local := filepath.Join(dir, "LICENSE")
	require.NoError(t, os.WriteFile(local, []byte("local terms"), 0o600))

	wix := Generators[WIX]

	path, err := ResolveLicense(context.Background(), filepath.Join(src.OutputDir, wix.LicenseFileName), wix.LicenseStrategies(src)...)
	require.NoError(t, err)
	require.Equal(t, filepath.ToSlash(filepath.Join(src.OutputDir, "LICENSE.txt")), path)
	require.Equal(t, "local terms", readString(t, path))

	dmg := Generators[DragNDrop]

	path, err = ResolveLicense(context.Background(), filepath.Join(src.OutputDir, dmg.LicenseFileName), dmg.LicenseStrategies(src)...)
	require.NoError(t, err)
	require.Equal(t, filepath.ToSlash(local), path)
}

// TestResolveLicense_Placeholder writes "No License given" when nothing else is available.
func TestResolveLicense_Placeholder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := licenseSource(t, dir, wheeltest.Wheel{Name: "mytool", Version: "1.0"})
	g := Generators[DragNDrop]

	path, err := ResolveLicense(context.Background(), filepath.Join(src.OutputDir, g.LicenseFileName), g.LicenseStrategies(src)...)
	require.NoError(t, err)
	require.Equal(t, NoLicenseGiven, readString(t, path))
}

// TestResolveLicense_Exhausted writes "No License provided" when every strategy finds nothing.
func TestResolveLicense_Exhausted(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "LICENSE")
	nothing := func(context.Context) (string, error) {
		return "", resolve.NotFoundf("nothing")
	}

	path, err := ResolveLicense(context.Background(), output, nothing, nothing)
	require.NoError(t, err)
	require.Equal(t, NoLicenseProvided, readString(t, path))
}

// TestResolveLicense_Failure aborts on errors other than not found.
func TestResolveLicense_Failure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	called := false

	_, err := ResolveLicense(context.Background(), filepath.Join(t.TempDir(), "LICENSE"),
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) {
			called = true

			return "never", nil
		},
	)
	require.ErrorIs(t, err, boom)
	require.False(t, called)
}
