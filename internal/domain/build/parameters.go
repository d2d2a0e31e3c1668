package build

import (
	"path/filepath"
)

// Parameters are the user inputs of one packaging run.
// Paths are stored as given; derived paths are computed by the methods below.
type Parameters struct {
	// PackageFile is the wheel to package.
	PackageFile string
	// BuildPath is the scratch directory for the environment, specs and CPack output.
	BuildPath string
	// DistPath is where the frozen application and the published installer end up.
	DistPath string
	// InstallerIcon is an optional icon used by the native installer.
	InstallerIcon string
	// BootstrapScript is the Python script launching the application.
	// A runpy based script is generated when empty.
	BootstrapScript string
	// AppIcon is an optional icon embedded into the executable.
	AppIcon string
	// AppName is the user visible application name.
	AppName string
	// ExecutableName is the file name of the frozen executable.
	ExecutableName string
	// CollectionName is the folder PyInstaller collects the application into.
	CollectionName string
	// Requirements are pip requirement files installed next to the wheel.
	Requirements []string
	// LicenseFile overrides license discovery.
	LicenseFile string
	// ConfigFile is an optional pyproject-style TOML file.
	ConfigFile string
	// DataFiles are extra files bundled with the application.
	DataFiles []DataFile
	// Vendor is written as the installer vendor when the wheel names no author.
	Vendor string
	// InstallDirectory is the default installation folder name.
	InstallDirectory string
	// ForceRebuild recreates the packaging environment even if one exists.
	ForceRebuild bool
}

// PackageEnv is the directory the wheel and its requirements are installed into.
func (p *Parameters) PackageEnv() string {
	return filepath.Join(p.BuildPath, "env")
}

// HooksPath is the directory generated PyInstaller hooks are written to.
func (p *Parameters) HooksPath() string {
	return filepath.Join(p.BuildPath, "hooks")
}

// WorkPath is the PyInstaller scratch directory.
func (p *Parameters) WorkPath() string {
	return filepath.Join(p.BuildPath, "workpath")
}

// SpecsFile is the path of the rendered PyInstaller spec.
func (p *Parameters) SpecsFile() string {
	return filepath.Join(p.BuildPath, "specs.spec")
}

// CPackBuildPath is the directory CPack writes the installer into.
func (p *Parameters) CPackBuildPath() string {
	return filepath.Join(p.BuildPath, "cpack")
}
