package environment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

// PythonEnvVar names an interpreter to use instead of searching PATH.
const PythonEnvVar = "PYTHON"

// Preparer creates package environments.
type Preparer struct {
	runner toolrun.Runner
	python []resolve.Strategy[string]
}

// New returns a Preparer running tools through runner and locating Python
// with the default strategies.
func New(runner toolrun.Runner) *Preparer {
	return &Preparer{
		runner: runner,
		python: DefaultPythonStrategies(),
	}
}

// WithPythonStrategies replaces the interpreter discovery chain.
func (p *Preparer) WithPythonStrategies(strategies ...resolve.Strategy[string]) *Preparer {
	p.python = strategies

	return p
}

// DefaultPythonStrategies tries $PYTHON, then python3 and python on PATH.
func DefaultPythonStrategies() []resolve.Strategy[string] {
	return []resolve.Strategy[string]{
		resolve.Named("$"+PythonEnvVar, toolrun.FromEnv(PythonEnvVar)),
		resolve.Named("python3 on PATH", toolrun.OnPath("python3")),
		resolve.Named("python on PATH", toolrun.OnPath("python")),
	}
}

// NeedsRebuild reports whether the environment at envPath has to be (re)created.
func NeedsRebuild(platform build.Platform, envPath string, force bool) bool {
	if force {
		return true
	}

	libDir, scriptsDir := platform.EnvironmentLayout()

	for _, dir := range []string{envPath, filepath.Join(envPath, libDir), filepath.Join(envPath, scriptsDir)} {
		if _, err := os.Stat(dir); err != nil {
			return true
		}
	}

	return false
}

// Prepare creates the package environment unless a usable one already exists.
// A partially created environment is removed when a step fails.
func (p *Preparer) Prepare(ctx context.Context, platform build.Platform, params *build.Parameters) error {
	envPath := params.PackageEnv()
	ctx = logger.WithKV(ctx, "env", envPath)

	if !NeedsRebuild(platform, envPath, params.ForceRebuild) {
		logger.Info(ctx, "Reusing existing package environment")

		return nil
	}

	python, err := resolve.First(ctx, "python interpreter", p.python...)
	if err != nil {
		return err
	}

	if params.ForceRebuild {
		if err = os.RemoveAll(envPath); err != nil {
			return fmt.Errorf("remove old environment: %w", err)
		}
	}

	logger.InfoKV(ctx, "Creating package environment", "python", python)

	if err = p.create(ctx, python, params); err != nil {
		if removeErr := os.RemoveAll(envPath); removeErr != nil {
			err = errors.Join(err, fmt.Errorf("remove partial environment: %w", removeErr))
		}

		return err
	}

	return nil
}

func (p *Preparer) create(ctx context.Context, python string, params *build.Parameters) error {
	envPath := params.PackageEnv()

	if err := p.runner.Run(ctx, python, "-m", "venv", "--without-pip", envPath); err != nil {
		return fmt.Errorf("create virtual environment: %w", err)
	}

	args := []string{"-m", "pip", "install", params.PackageFile, "--upgrade", "--target=" + envPath}
	for _, requirement := range params.Requirements {
		args = append(args, "-r", requirement)
	}

	if err := p.runner.Run(ctx, python, args...); err != nil {
		return fmt.Errorf("install package: %w", err)
	}

	return nil
}
