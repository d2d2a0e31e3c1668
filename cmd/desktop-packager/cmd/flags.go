package cmd

import (
	"github.com/spf13/pflag"

	"github.com/oshokin/desktop-packager/internal/config"
)

// packageFlags are the flags of the root command.
type packageFlags struct {
	buildPath        string
	distPath         string
	installerIcon    string
	bootstrapScript  string
	appIcon          string
	appName          string
	executableName   string
	requirements     []string
	licenseFile      string
	configFile       string
	dataFiles        []string
	vendor           string
	installDirectory string
	collectionName   string
	logLevel         string
	forceRebuild     bool
}

// register binds the flags to fs.
func (f *packageFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.buildPath, "build-path", config.DefaultBuildPath, "path for saving build files")
	fs.StringVar(&f.distPath, "dist", config.DefaultDistPath, "output path for the frozen application and the installer")
	fs.StringVar(&f.installerIcon, "installer-icon", "", "icon of the installer (.icns on macOS, .ico on Windows)")
	fs.StringVar(&f.bootstrapScript, "app-bootstrap-script", "", "Python script used to launch the application")
	fs.StringVar(&f.appIcon, "app-icon", "", "icon of the application (.ico, or .icns on macOS)")
	fs.StringVar(&f.appName, "app-name", config.DefaultAppName, "name of the application")
	fs.StringVar(&f.executableName, "app-executable-name", "", "name of the executable, defaults to the top-level package")
	fs.StringArrayVarP(&f.requirements, "requirement", "r", nil, "requirements file installed with the wheel (repeatable)")
	fs.StringVar(&f.licenseFile, "license-file", "", "license file shown by the installer")
	fs.StringVar(&f.configFile, "config-file", "", "pyproject-style TOML file with cpack_config_variables (default pyproject.toml when present)")
	fs.StringArrayVar(&f.dataFiles, "add-data", nil, "extra file bundled with the application as SRC:DEST (repeatable)")
	fs.StringVar(&f.vendor, "vendor", "", "installer vendor used when the wheel names no author")
	fs.StringVar(&f.installDirectory, "install-directory", "", "default installation folder, defaults to the app name")
	fs.StringVar(&f.collectionName, "collection-name", "", "folder the application is collected into, defaults to the app name")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	fs.BoolVar(&f.forceRebuild, "force-rebuild", false, "rebuild the package environment even if one exists")
}

// applySettings copies settings into flags the user did not set.
func (f *packageFlags) applySettings(fs *pflag.FlagSet, settings *config.Config) {
	fromSettings := map[string]struct {
		target *string
		value  string
	}{
		"build-path":          {&f.buildPath, settings.BuildPath},
		"dist":                {&f.distPath, settings.DistPath},
		"app-name":            {&f.appName, settings.AppName},
		"app-executable-name": {&f.executableName, settings.ExecutableName},
		"vendor":              {&f.vendor, settings.Vendor},
		"install-directory":   {&f.installDirectory, settings.InstallDirectory},
		"collection-name":     {&f.collectionName, settings.CollectionName},
		"log-level":           {&f.logLevel, settings.LogLevel},
	}

	for name, setting := range fromSettings {
		if fs.Changed(name) || setting.value == "" {
			continue
		}

		*setting.target = setting.value
	}
}
