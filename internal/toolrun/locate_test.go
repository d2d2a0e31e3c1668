package toolrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/resolve"
)

// TestFromEnv skips unset variables and missing files.
func TestFromEnv(t *testing.T) {
	interpreter := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(interpreter, nil, 0o700))

	t.Setenv("DESKTOP_PACKAGER_TEST_TOOL", "")

	_, err := FromEnv("DESKTOP_PACKAGER_TEST_TOOL")(context.Background())
	require.ErrorIs(t, err, resolve.ErrNotFound)

	t.Setenv("DESKTOP_PACKAGER_TEST_TOOL", interpreter+".missing")

	_, err = FromEnv("DESKTOP_PACKAGER_TEST_TOOL")(context.Background())
	require.ErrorIs(t, err, resolve.ErrNotFound)

	t.Setenv("DESKTOP_PACKAGER_TEST_TOOL", interpreter)

	got, err := FromEnv("DESKTOP_PACKAGER_TEST_TOOL")(context.Background())
	require.NoError(t, err)
	require.Equal(t, interpreter, got)
}

// TestInDirs returns the first directory holding the file and ignores folders.
func TestInDirs(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(first, "cpack"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "cpack"), nil, 0o700))

	got, err := InDirs("cpack", "", first, second)(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(second, "cpack"), got)

	_, err = InDirs("cpack", first)(context.Background())
	require.ErrorIs(t, err, resolve.ErrNotFound)
}

// TestInEnvDir reads the directory from the environment.
func TestInEnvDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpack"), nil, 0o700))

	t.Setenv("DESKTOP_PACKAGER_TEST_BIN", "")

	_, err := InEnvDir("DESKTOP_PACKAGER_TEST_BIN", "cpack")(context.Background())
	require.ErrorIs(t, err, resolve.ErrNotFound)

	t.Setenv("DESKTOP_PACKAGER_TEST_BIN", dir)

	got, err := InEnvDir("DESKTOP_PACKAGER_TEST_BIN", "cpack")(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cpack"), got)
}

// TestOnPath fails over to ErrNotFound for unknown tools.
func TestOnPath(t *testing.T) {
	t.Parallel()

	_, err := OnPath("definitely-not-a-real-tool-7f3a")(context.Background())
	require.ErrorIs(t, err, resolve.ErrNotFound)
}
