package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/desktop-packager/internal/logger"
)

// Config holds settings shared by packaging runs.
type Config struct {
	// Vendor is the installer vendor used when the wheel names no author.
	Vendor string `yaml:"vendor"`
	// InstallDirectory is the default installation folder; the app name is used when empty.
	InstallDirectory string `yaml:"install_directory"`
	// CollectionName is the folder the frozen application is collected into;
	// the app name is used when empty.
	CollectionName string `yaml:"collection_name"`
	// AppName is the default application name.
	AppName string `yaml:"app_name"`
	// ExecutableName is the default executable name; the wheel's top-level package is used when empty.
	ExecutableName string `yaml:"executable_name"`
	// BuildPath is the default build directory.
	BuildPath string `yaml:"build_path"`
	// DistPath is the default output directory.
	DistPath string `yaml:"dist_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up in the working directory.
	DefaultConfigFilename = "desktop-packager.yaml"

	// DefaultBuildPath is where environments, specs and CPack output go.
	DefaultBuildPath = "build/packaging"

	// DefaultDistPath is where the frozen application and installers go.
	DefaultDistPath = "dist"

	// DefaultAppName is used when neither the flags nor the settings name the application.
	DefaultAppName = "Application"

	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the permission of generated files.
	DefaultFilePermissions = 0o644

	// DefaultDirPermissions is the permission of generated directories.
	DefaultDirPermissions = 0o755

	// settingsFilePermissions restricts the settings file.
	settingsFilePermissions = 0o600
)

var (
	// ErrInvalidConfiguration marks user input rejected before any work starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Invalidf returns an error wrapping ErrInvalidConfiguration.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Default returns settings with every default filled in.
func Default() *Config {
	return &Config{
		AppName:   DefaultAppName,
		BuildPath: DefaultBuildPath,
		DistPath:  DefaultDistPath,
		LogLevel:  DefaultLogLevel,
	}
}

// Load reads settings from the provided path and validates them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, Invalidf("unmarshal settings %s: %v", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOptional is like Load but returns the defaults when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, settingsFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and rejects values no run could use.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.AppName == "" {
		settings.AppName = DefaultAppName
	}

	if settings.BuildPath == "" {
		settings.BuildPath = DefaultBuildPath
	}

	if settings.DistPath == "" {
		settings.DistPath = DefaultDistPath
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return Invalidf("unknown log level %q", settings.LogLevel)
	}

	for name, value := range map[string]string{
		"collection_name":   settings.CollectionName,
		"executable_name":   settings.ExecutableName,
		"install_directory": settings.InstallDirectory,
	} {
		if strings.ContainsAny(value, `/\`) {
			return Invalidf("%s %q must not contain path separators", name, value)
		}
	}

	return nil
}
