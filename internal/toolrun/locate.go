package toolrun

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/resolve"
)

// FromEnv returns a strategy yielding the existing file named by an environment variable.
func FromEnv(name string) resolve.Strategy[string] {
	return func(context.Context) (string, error) {
		value := os.Getenv(name)
		if value == "" {
			return "", resolve.NotFoundf("$%s is not set", name)
		}

		if _, err := os.Stat(value); err != nil {
			return "", resolve.NotFoundf("$%s points to %s: %v", name, value, err)
		}

		return value, nil
	}
}

// OnPath returns a strategy looking name up in PATH.
func OnPath(name string) resolve.Strategy[string] {
	return func(context.Context) (string, error) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", resolve.NotFoundf("%s not found in $PATH", name)
		}

		return path, nil
	}
}

// InDirs returns a strategy looking for the executable file name in each of dirs.
func InDirs(name string, dirs ...string) resolve.Strategy[string] {
	return func(context.Context) (string, error) {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}

			candidate := filepath.Join(dir, name)

			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		return "", resolve.NotFoundf("%s not found in %v", name, dirs)
	}
}

// InEnvDir returns a strategy looking for name inside the directory named by
// an environment variable.
func InEnvDir(variable, name string) resolve.Strategy[string] {
	return func(ctx context.Context) (string, error) {
		dir := os.Getenv(variable)
		if dir == "" {
			return "", resolve.NotFoundf("$%s is not set", variable)
		}

		return InDirs(name, dir)(ctx)
	}
}
