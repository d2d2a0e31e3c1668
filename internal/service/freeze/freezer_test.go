package freeze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/resolve/resolvetest"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

// TestFreezer_Freeze passes the spec, dist and work paths to PyInstaller.
func TestFreezer_Freeze(t *testing.T) {
	t.Parallel()

	var got []string

	runner := toolrun.RunnerFunc(func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)

		return nil
	})

	params := &build.Parameters{BuildPath: "build", DistPath: "dist"}

	err := NewFreezer(runner).
		WithPyInstallerStrategies(resolvetest.Value("/opt/bin/pyinstaller")).
		Freeze(context.Background(), build.MacOS, params, "build/specs.spec")
	require.NoError(t, err)
	require.Equal(t, []string{
		"/opt/bin/pyinstaller", "--noconfirm", "build/specs.spec",
		"--distpath", "dist", "--workpath", params.WorkPath(), "--clean",
	}, got)
}

// TestFreezer_Freeze_ToolFailure propagates ExternalToolError.
func TestFreezer_Freeze_ToolFailure(t *testing.T) {
	t.Parallel()

	runner := toolrun.RunnerFunc(func(_ context.Context, name string, args ...string) error {
		return &toolrun.ExternalToolError{Tool: name, Args: args, ExitCode: 2, Err: errors.New("exit status 2")}
	})

	err := NewFreezer(runner).
		WithPyInstallerStrategies(resolvetest.Value("pyinstaller")).
		Freeze(context.Background(), build.Windows, &build.Parameters{}, "specs.spec")

	var toolErr *toolrun.ExternalToolError

	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, 2, toolErr.ExitCode)
}

// TestDefaultPyInstallerStrategies finds PyInstaller in the package environment.
func TestDefaultPyInstallerStrategies(t *testing.T) {
	t.Parallel()

	params := &build.Parameters{BuildPath: t.TempDir()}
	scripts := filepath.Join(params.PackageEnv(), "bin")
	require.NoError(t, os.MkdirAll(scripts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "pyinstaller"), nil, 0o700))

	strategies := DefaultPyInstallerStrategies(build.MacOS, params)
	require.Len(t, strategies, 3)

	got, err := strategies[1](context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(scripts, "pyinstaller"), got)
}
