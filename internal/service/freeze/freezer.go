package freeze

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

// PyInstallerEnvVar names a PyInstaller executable to use instead of searching for one.
const PyInstallerEnvVar = "PYINSTALLER"

// Freezer runs PyInstaller on a rendered spec file.
type Freezer struct {
	runner     toolrun.Runner
	strategies func(platform build.Platform, params *build.Parameters) []resolve.Strategy[string]
}

// NewFreezer returns a Freezer running PyInstaller through runner.
func NewFreezer(runner toolrun.Runner) *Freezer {
	return &Freezer{
		runner:     runner,
		strategies: DefaultPyInstallerStrategies,
	}
}

// WithPyInstallerStrategies replaces the PyInstaller discovery chain.
func (f *Freezer) WithPyInstallerStrategies(strategies ...resolve.Strategy[string]) *Freezer {
	f.strategies = func(build.Platform, *build.Parameters) []resolve.Strategy[string] {
		return strategies
	}

	return f
}

// DefaultPyInstallerStrategies tries $PYINSTALLER, the scripts folder of the
// package environment, then PATH.
func DefaultPyInstallerStrategies(platform build.Platform, params *build.Parameters) []resolve.Strategy[string] {
	name := "pyinstaller" + platform.ExecutableSuffix()
	_, scriptsDir := platform.EnvironmentLayout()

	return []resolve.Strategy[string]{
		resolve.Named("$"+PyInstallerEnvVar, toolrun.FromEnv(PyInstallerEnvVar)),
		resolve.Named("package environment", toolrun.InDirs(name,
			filepath.Join(params.PackageEnv(), scriptsDir),
			filepath.Join(params.PackageEnv(), "bin"),
		)),
		resolve.Named("pyinstaller on PATH", toolrun.OnPath(name)),
	}
}

// Freeze runs PyInstaller with specsFile, writing the application into the
// dist path and scratch files into the work path.
func (f *Freezer) Freeze(ctx context.Context, platform build.Platform, params *build.Parameters, specsFile string) error {
	pyinstaller, err := resolve.First(ctx, "pyinstaller executable", f.strategies(platform, params)...)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Freezing application", "specs", specsFile, "dist", params.DistPath)

	err = f.runner.Run(ctx, pyinstaller,
		"--noconfirm",
		specsFile,
		"--distpath", params.DistPath,
		"--workpath", params.WorkPath(),
		"--clean",
	)
	if err != nil {
		return fmt.Errorf("freeze application: %w", err)
	}

	return nil
}
