package environment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/resolve/resolvetest"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

// recorder is a fake runner that records invocations and creates the venv layout.
type recorder struct {
	calls    [][]string
	failPip  bool
	platform build.Platform
}

func (r *recorder) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))

	if len(args) > 1 && args[1] == "venv" {
		libDir, scriptsDir := r.platform.EnvironmentLayout()
		env := args[len(args)-1]

		for _, dir := range []string{libDir, scriptsDir} {
			if err := os.MkdirAll(filepath.Join(env, dir), 0o755); err != nil {
				return err
			}
		}
	}

	if len(args) > 1 && args[1] == "pip" && r.failPip {
		return &toolrun.ExternalToolError{Tool: name, Args: args, ExitCode: 1, Err: errors.New("exit status 1")}
	}

	return nil
}

// TestPrepare_CreatesEnvironment runs venv then pip with every requirement file.
func TestPrepare_CreatesEnvironment(t *testing.T) {
	t.Parallel()

	params := &build.Parameters{
		PackageFile:  "mytool-1.0-py3-none-any.whl",
		BuildPath:    t.TempDir(),
		Requirements: []string{"req-a.txt", "req-b.txt"},
	}

	runner := &recorder{platform: build.MacOS}
	p := New(runner).WithPythonStrategies(resolvetest.Value("/usr/bin/python3"))

	require.NoError(t, p.Prepare(context.Background(), build.MacOS, params))
	require.Equal(t, [][]string{
		{"/usr/bin/python3", "-m", "venv", "--without-pip", params.PackageEnv()},
		{
			"/usr/bin/python3", "-m", "pip", "install", params.PackageFile, "--upgrade",
			"--target=" + params.PackageEnv(), "-r", "req-a.txt", "-r", "req-b.txt",
		},
	}, runner.calls)

	// A complete environment is reused.
	runner.calls = nil
	require.NoError(t, p.Prepare(context.Background(), build.MacOS, params))
	require.Empty(t, runner.calls)

	// Forcing rebuilds it.
	params.ForceRebuild = true
	require.NoError(t, p.Prepare(context.Background(), build.MacOS, params))
	require.Len(t, runner.calls, 2)
}

// TestPrepare_RemovesPartialEnvironment cleans up when pip fails.
func TestPrepare_RemovesPartialEnvironment(t *testing.T) {
	t.Parallel()

	params := &build.Parameters{PackageFile: "x.whl", BuildPath: t.TempDir()}
	runner := &recorder{platform: build.Windows, failPip: true}

	err := New(runner).
		WithPythonStrategies(resolvetest.Value("python")).
		Prepare(context.Background(), build.Windows, params)

	var toolErr *toolrun.ExternalToolError

	require.ErrorAs(t, err, &toolErr)

	_, statErr := os.Stat(params.PackageEnv())
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

// TestPrepare_NoPython reports an exhausted interpreter chain.
func TestPrepare_NoPython(t *testing.T) {
	t.Parallel()

	params := &build.Parameters{PackageFile: "x.whl", BuildPath: t.TempDir()}
	missing := func(context.Context) (string, error) { return "", resolve.ErrNotFound }

	err := New(&recorder{}).WithPythonStrategies(missing).Prepare(context.Background(), build.MacOS, params)

	var notFound *resolve.NotFoundError

	require.ErrorAs(t, err, &notFound)
	require.True(t, strings.Contains(err.Error(), "python interpreter"))
}

// TestNeedsRebuild checks the lib and scripts folders per platform.
func TestNeedsRebuild(t *testing.T) {
	t.Parallel()

	env := filepath.Join(t.TempDir(), "env")
	require.True(t, NeedsRebuild(build.Windows, env, false))

	require.NoError(t, os.MkdirAll(filepath.Join(env, "Lib"), 0o755))
	require.True(t, NeedsRebuild(build.Windows, env, false))

	require.NoError(t, os.MkdirAll(filepath.Join(env, "Scripts"), 0o755))
	require.False(t, NeedsRebuild(build.Windows, env, false))
	require.True(t, NeedsRebuild(build.Windows, env, true))
}
