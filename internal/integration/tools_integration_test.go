package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/domain/build"
)

// fakeTools imitates python, pyinstaller and cpack by creating the files
// each of them would leave behind.
type fakeTools struct {
	platform build.Platform
	params   *build.Parameters

	mu    sync.Mutex
	calls []string
}

var errUnknownTool = errors.New("unknown tool")

// Run dispatches on the base name of the tool.
func (f *fakeTools) Run(_ context.Context, name string, args ...string) error {
	tool := strings.TrimSuffix(filepath.Base(name), ".exe")

	f.mu.Lock()
	f.calls = append(f.calls, tool+" "+strings.Join(args, " "))
	f.mu.Unlock()

	switch tool {
	case "python":
		return f.python(args)
	case "pyinstaller":
		return f.pyinstaller(args)
	case "cpack":
		return f.cpack(args)
	default:
		return fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// Calls returns the recorded invocations.
func (f *fakeTools) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.calls)
}

func (f *fakeTools) python(args []string) error {
	if !slices.Contains(args, "venv") {
		return nil
	}

	env := args[len(args)-1]
	libDir, scriptsDir := f.platform.EnvironmentLayout()

	for _, dir := range []string{libDir, scriptsDir} {
		if err := os.MkdirAll(filepath.Join(env, dir), 0o755); err != nil {
			return err
		}
	}

	return nil
}

func (f *fakeTools) pyinstaller(args []string) error {
	dist := flagValue(args, "--distpath")

	if f.platform == build.MacOS {
		contents := filepath.Join(dist, f.params.AppName+".app", "Contents")
		if err := os.MkdirAll(filepath.Join(contents, "MacOS"), 0o755); err != nil {
			return err
		}

		info := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleExecutable</key>
	<string>mytool</string>
	<key>CFBundleName</key>
	<string>` + f.params.AppName + `</string>
</dict>
</plist>
`

		return os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(info), 0o600)
	}

	collection := filepath.Join(dist, f.params.AppName)
	if err := os.MkdirAll(collection, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(collection, "mytool.exe"), []byte("MZ"), 0o600)
}

func (f *fakeTools) cpack(args []string) error {
	ext := ".msi"
	system := "win64"

	if f.platform == build.MacOS {
		ext, system = ".dmg", "macos-arm64"
	}

	output := flagValue(args, "-B")
	name := f.params.AppName + "-1.2.3-" + system + ext

	return os.WriteFile(filepath.Join(output, name), []byte("installer for "+flagValue(args, "--config")), 0o600)
}

func flagValue(args []string, name string) string {
	i := slices.Index(args, name)
	if i < 0 || i+1 >= len(args) {
		return ""
	}

	return args[i+1]
}

// fakeExecutable creates an empty file standing in for a tool binary.
func fakeExecutable(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o700))

	return path
}
