package freeze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/render"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/version"
	"github.com/oshokin/desktop-packager/internal/wheel"
)

// frozenStrategies returns the frozen-folder discovery chain of a platform.
type frozenStrategies func(searchPath, executable string, params *build.Parameters) []resolve.Strategy[string]

// Generator builds and renders freeze configuration for one platform.
type Generator struct {
	platform   build.Platform
	bundleName func(params *build.Parameters) string
	frozen     frozenStrategies
}

// NewWindowsGenerator returns the generator for Windows: the bundle is the
// collection folder holding <executable>.exe.
func NewWindowsGenerator() *Generator {
	return &Generator{
		platform: build.Windows,
		bundleName: func(params *build.Parameters) string {
			return params.AppName
		},
		frozen: windowsStrategies,
	}
}

// NewMacGenerator returns the generator for macOS: the bundle is <AppName>.app.
func NewMacGenerator() *Generator {
	return &Generator{
		platform: build.MacOS,
		bundleName: func(params *build.Parameters) string {
			return params.AppName + ".app"
		},
		frozen: macStrategies,
	}
}

// Platform returns the platform the generator targets.
func (g *Generator) Platform() build.Platform {
	return g.platform
}

// BuildSpecs builds the SpecsData record for params.
// Relative paths are made absolute because PyInstaller resolves them
// against the spec file location.
func (g *Generator) BuildSpecs(ctx context.Context, params *build.Parameters) (*build.SpecsData, error) {
	topLevel, err := wheel.TopLevel(params.PackageFile)
	if err != nil {
		return nil, err
	}

	md, err := wheel.ReadMetadata(params.PackageFile)
	if err != nil {
		return nil, err
	}

	paths, err := absPaths(params.PackageEnv(), params.HooksPath(), params.BuildPath, params.AppIcon, params.InstallerIcon)
	if err != nil {
		return nil, err
	}

	packageEnv, hooksPath, buildPath, appIcon, installerIcon := paths[0], paths[1], paths[2], paths[3], paths[4]

	dataFiles := make([]build.DataFile, 0, len(params.DataFiles)+1)

	for _, df := range params.DataFiles {
		source, err := filepath.Abs(df.Source())
		if err != nil {
			return nil, fmt.Errorf("resolve data file %s: %w", df.Source(), err)
		}

		dataFiles = append(dataFiles, build.NewDataFile(filepath.ToSlash(source), df.Destination()))
	}

	if appIcon != "" {
		dataFiles = append(dataFiles, build.NewDataFile(filepath.ToSlash(appIcon), topLevel))
	}

	specs := &build.SpecsData{
		AppExecutableName:         executableName(params, topLevel),
		CollectionName:            params.CollectionName,
		BundleName:                g.bundleName(params),
		InstallerIcon:             installerIcon,
		AppIcon:                   appIcon,
		SearchPaths:               []string{packageEnv},
		DataFiles:                 dataFiles,
		HooksPath:                 []string{hooksPath},
		TopLevelPackageFolderName: topLevel,
		DistributionVersion:       md.Version,
		HookOutputPath:            hooksPath,
	}

	if specs.CollectionName == "" {
		specs.CollectionName = params.AppName
	}

	if params.BootstrapScript != "" {
		specs.BootstrapScript, err = filepath.Abs(params.BootstrapScript)
		if err != nil {
			return nil, fmt.Errorf("resolve bootstrap script: %w", err)
		}
	} else {
		specs.BootstrapScript = filepath.Join(buildPath, topLevel+"-bootstrap.py")
		specs.GenerateBootstrap = true
	}

	if err = specs.Validate(); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Built freeze specs",
		"platform", g.platform, "executable", specs.AppExecutableName, "bundle", specs.BundleName)

	return specs, nil
}

// GenerateFreezeConfig writes the package hook (and the default bootstrap
// script when requested) and returns the rendered PyInstaller spec.
func (g *Generator) GenerateFreezeConfig(ctx context.Context, specs *build.SpecsData) (string, error) {
	if err := specs.Validate(); err != nil {
		return "", err
	}

	if specs.TopLevelPackageFolderName != "" && specs.HookOutputPath != "" {
		hookFile := filepath.Join(specs.HookOutputPath, "hook-"+specs.TopLevelPackageFolderName+".py")
		if err := writeScript(hookTemplate, hookFile, specs.TopLevelPackageFolderName); err != nil {
			return "", err
		}

		logger.DebugKV(ctx, "Wrote package hook", "path", hookFile)
	}

	if specs.GenerateBootstrap {
		if specs.TopLevelPackageFolderName == "" {
			return "", fmt.Errorf("generate bootstrap script: %w", build.ErrMissingRequiredField)
		}

		if err := writeScript(bootstrapTemplate, specs.BootstrapScript, specs.TopLevelPackageFolderName); err != nil {
			return "", err
		}

		logger.InfoKV(ctx, "Generated bootstrap script", "path", specs.BootstrapScript)
	}

	return specsTemplate.Execute(specs, SpecsKeyMapping)
}

// LocateFrozenApplication finds the folder PyInstaller produced under searchPath.
func (g *Generator) LocateFrozenApplication(ctx context.Context, searchPath string, params *build.Parameters) (string, error) {
	executable := params.ExecutableName
	if executable == "" {
		topLevel, err := wheel.TopLevel(params.PackageFile)
		if err != nil {
			return "", err
		}

		executable = topLevel
	}

	return resolve.First(ctx, "frozen application folder", g.frozen(searchPath, executable, params)...)
}

// executableName is the configured executable name or the top-level package.
func executableName(params *build.Parameters, topLevel string) string {
	if params.ExecutableName != "" {
		return params.ExecutableName
	}

	return topLevel
}

// writeScript renders a hook or bootstrap template for packageName into path.
func writeScript(tmpl *render.Template, path, packageName string) error {
	text, err := tmpl.Execute(packageScript{PackageName: packageName, Generator: version.Generator()}, nil)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	if err = os.WriteFile(path, []byte(text), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// absPaths makes every non-empty path absolute; empty paths stay empty.
func absPaths(paths ...string) ([]string, error) {
	result := make([]string, len(paths))

	for i, p := range paths {
		if p == "" {
			continue
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}

		result[i] = abs
	}

	return result, nil
}
