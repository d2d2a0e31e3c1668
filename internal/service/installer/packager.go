package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/toolrun"
	"github.com/oshokin/desktop-packager/internal/version"
	"github.com/oshokin/desktop-packager/internal/versioning"
	"github.com/oshokin/desktop-packager/internal/wheel"
)

// ConfigFilename is the CPack config written into the build path.
const ConfigFilename = "CPackConfig.cmake"

// ErrNoArtifact is returned when cpack succeeded but left no installer behind.
var ErrNoArtifact = errors.New("no installer artifact")

// Packager renders the CPack config of one generator and runs cpack with it.
type Packager struct {
	generator  *Generator
	runner     toolrun.Runner
	goarch     string
	searchDirs []string
	cpack      []resolve.Strategy[string]
}

// NewPackager returns a Packager for generator running tools through runner.
// packageEnv is searched for a cpack bundled with the cmake wheel.
func NewPackager(generator *Generator, runner toolrun.Runner, packageEnv string) *Packager {
	return &Packager{
		generator:  generator,
		runner:     runner,
		goarch:     runtime.GOARCH,
		searchDirs: []string{"."},
		cpack:      DefaultCPackStrategies(generator.Platform, packageEnv),
	}
}

// WithGOARCH overrides the architecture the installer is built for.
func (p *Packager) WithGOARCH(goarch string) *Packager {
	p.goarch = goarch

	return p
}

// WithLicenseSearchDirs overrides where a local LICENSE file is looked for.
func (p *Packager) WithLicenseSearchDirs(dirs ...string) *Packager {
	p.searchDirs = dirs

	return p
}

// WithCPackStrategies replaces the cpack discovery chain.
func (p *Packager) WithCPackStrategies(strategies ...resolve.Strategy[string]) *Packager {
	p.cpack = strategies

	return p
}

// GenerateConfigFile writes CPackConfig.cmake for the frozen application and returns its path.
func (p *Packager) GenerateConfigFile(ctx context.Context, frozenAppPath string, params *build.Parameters) (string, error) {
	ctx = logger.WithKV(ctx, "generator", p.generator.Name)

	md, err := wheel.ReadMetadata(params.PackageFile)
	if err != nil {
		return "", err
	}

	v, err := versioning.Parse(md.Version)
	if err != nil {
		return "", err
	}

	system, err := SystemName(p.generator.Platform, p.goarch)
	if err != nil {
		return "", err
	}

	licenseFile, err := ResolveLicense(ctx,
		filepath.Join(params.BuildPath, p.generator.LicenseFileName),
		p.generator.LicenseStrategies(&LicenseSource{
			UserFile:    params.LicenseFile,
			PackageFile: params.PackageFile,
			Metadata:    md,
			SearchPaths: p.searchDirs,
			OutputDir:   params.BuildPath,
		})...)
	if err != nil {
		return "", err
	}

	descriptionFile, err := WriteDescription(params.BuildPath, md)
	if err != nil {
		return "", err
	}

	var project *config.Project
	if params.ConfigFile != "" {
		if project, err = config.ReadProject(params.ConfigFile); err != nil {
			return "", err
		}
	}

	extra, err := p.generator.ExtraVariables(project, params.InstallerIcon)
	if err != nil {
		return "", err
	}

	frozenAbs, err := filepath.Abs(frozenAppPath)
	if err != nil {
		return "", fmt.Errorf("resolve frozen application: %w", err)
	}

	executable := params.ExecutableName
	if executable == "" {
		if executable, err = wheel.TopLevel(params.PackageFile); err != nil {
			return "", err
		}
	}

	installDirectory := params.InstallDirectory
	if installDirectory == "" {
		installDirectory = params.AppName
	}

	general := &generalSection{
		Generator:                  version.Generator(),
		PackageName:                params.AppName,
		InstalledDirectoriesSource: filepath.ToSlash(frozenAbs),
		InstalledDirectoriesOutput: "/" + filepath.Base(frozenAbs),
		Vendor:                     Vendor(md, params.Vendor),
		SystemName:                 system,
		Version:                    v.Triple(),
		VersionMajor:               v.Major,
		VersionMinor:               v.Minor,
		VersionPatch:               v.Patch,
		VersionTweak:               v.Tweak(),
		FileName:                   v.PackageFileName(system),
		LicenseFile:                licenseFile,
		DescriptionFile:            descriptionFile,
		InstallDirectory:           installDirectory,
		Executables:                []string{executable, params.AppName},
	}

	text, err := p.generator.Generate(general, p.goarch, extra)
	if err != nil {
		return "", err
	}

	configFile := filepath.Join(params.BuildPath, ConfigFilename)
	if err = writeFile(configFile, []byte(text)); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Wrote CPack config", "path", configFile, "version", md.Version, "system", system)

	return configFile, nil
}

// CreateSystemPackage runs cpack with configFile, building into outputDir,
// and returns the produced installer.
// outputDir is owned by the packager and emptied first, so installers
// left by an earlier run are never picked up.
func (p *Packager) CreateSystemPackage(ctx context.Context, configFile, outputDir string) (string, error) {
	cpack, err := resolve.First(ctx, "cpack executable", p.cpack...)
	if err != nil {
		return "", err
	}

	if err = os.RemoveAll(outputDir); err != nil {
		return "", fmt.Errorf("clear %s: %w", outputDir, err)
	}

	if err = os.MkdirAll(outputDir, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create %s: %w", outputDir, err)
	}

	logger.InfoKV(ctx, "Building installer", "generator", p.generator.Name, "cpack", cpack, "output", outputDir)

	if err = p.runner.Run(ctx, cpack, "--config", configFile, "-B", outputDir); err != nil {
		return "", fmt.Errorf("build installer: %w", err)
	}

	artifact, err := LocateInstallerArtifact(ctx, outputDir, p.generator.Extension)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoArtifact, err)
	}

	return artifact, nil
}
