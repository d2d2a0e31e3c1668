package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/wheel"
)

// parameters validates the flags and converts them into build parameters.
// Every rejection wraps config.ErrInvalidConfiguration.
func (f *packageFlags) parameters(wheelPath string, target build.Platform) (*build.Parameters, error) {
	if err := validateWheel(wheelPath); err != nil {
		return nil, err
	}

	if f.installerIcon != "" {
		if err := validateIcon("installer icon", f.installerIcon, target.InstallerIconExtension()); err != nil {
			return nil, err
		}
	}

	if f.appIcon != "" {
		if err := validateIcon("app icon", f.appIcon, appIconExtensions(target)...); err != nil {
			return nil, err
		}
	}

	for _, file := range slices.Concat([]string{f.bootstrapScript, f.licenseFile}, f.requirements) {
		if file == "" {
			continue
		}

		if err := validateFile(file); err != nil {
			return nil, err
		}
	}

	configFile, err := projectFile(f.configFile)
	if err != nil {
		return nil, err
	}

	dataFiles := make([]build.DataFile, 0, len(f.dataFiles))

	for _, value := range f.dataFiles {
		df, err := parseDataFile(value)
		if err != nil {
			return nil, err
		}

		dataFiles = append(dataFiles, df)
	}

	settings := &config.Config{
		Vendor:           f.vendor,
		InstallDirectory: f.installDirectory,
		CollectionName:   f.collectionName,
		AppName:          f.appName,
		ExecutableName:   f.executableName,
		BuildPath:        f.buildPath,
		DistPath:         f.distPath,
		LogLevel:         f.logLevel,
	}
	if err = config.Validate(settings); err != nil {
		return nil, err
	}

	return &build.Parameters{
		PackageFile:      wheelPath,
		BuildPath:        settings.BuildPath,
		DistPath:         settings.DistPath,
		InstallerIcon:    f.installerIcon,
		BootstrapScript:  f.bootstrapScript,
		AppIcon:          f.appIcon,
		AppName:          settings.AppName,
		ExecutableName:   settings.ExecutableName,
		CollectionName:   settings.CollectionName,
		Requirements:     f.requirements,
		LicenseFile:      f.licenseFile,
		ConfigFile:       configFile,
		DataFiles:        dataFiles,
		Vendor:           settings.Vendor,
		InstallDirectory: settings.InstallDirectory,
		ForceRebuild:     f.forceRebuild,
	}, nil
}

// validateWheel checks that path is an existing .whl file.
func validateWheel(path string) error {
	if err := validateFile(path); err != nil {
		return err
	}

	if !strings.EqualFold(filepath.Ext(path), wheel.Extension) {
		return config.Invalidf("'%s' is not a wheel", path)
	}

	return nil
}

// validateFile checks that path exists and is not a directory.
func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return config.Invalidf("'%s' does not exist", path)
	}

	if info.IsDir() {
		return config.Invalidf("'%s' is not a file", path)
	}

	return nil
}

// validateIcon checks that path exists and has one of the allowed extensions.
func validateIcon(what, path string, extensions ...string) error {
	if err := validateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(extensions, ext) {
		return config.Invalidf("%s '%s' must be one of %s", what, path, strings.Join(extensions, ", "))
	}

	return nil
}

func appIconExtensions(target build.Platform) []string {
	if target == build.MacOS {
		return []string{".ico", ".icns"}
	}

	return []string{".ico"}
}

// projectFile validates an explicit project file or picks up pyproject.toml
// from the working directory.
func projectFile(path string) (string, error) {
	if path != "" {
		return path, config.ValidateTOML(path)
	}

	if _, err := os.Stat(config.DefaultProjectFilename); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err := config.ValidateTOML(config.DefaultProjectFilename); err != nil {
		return "", err
	}

	return config.DefaultProjectFilename, nil
}

// parseDataFile splits SRC:DEST at the last separator, so Windows drive
// letters stay in the source.
func parseDataFile(value string) (build.DataFile, error) {
	i := strings.LastIndexAny(value, ":;")
	if i <= 0 || i == len(value)-1 {
		return build.DataFile{}, config.Invalidf("--add-data %q must be SRC:DEST", value)
	}

	source, destination := value[:i], value[i+1:]
	if err := validateFile(source); err != nil {
		return build.DataFile{}, err
	}

	return build.NewDataFile(source, destination), nil
}
