package platform

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/service/freeze"
	"github.com/oshokin/desktop-packager/internal/service/installer"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

// ConfigGenerator builds and renders the freeze configuration of a platform.
type ConfigGenerator interface {
	// BuildSpecs builds the record describing the frozen application.
	BuildSpecs(ctx context.Context, params *build.Parameters) (*build.SpecsData, error)
	// GenerateFreezeConfig renders the freeze spec for specs.
	GenerateFreezeConfig(ctx context.Context, specs *build.SpecsData) (string, error)
	// LocateFrozenApplication finds the frozen application under searchPath.
	LocateFrozenApplication(ctx context.Context, searchPath string, params *build.Parameters) (string, error)
}

// Packager wraps a frozen application into a native installer.
type Packager interface {
	// GenerateConfigFile writes the installer config and returns its path.
	GenerateConfigFile(ctx context.Context, frozenAppPath string, params *build.Parameters) (string, error)
	// CreateSystemPackage builds the installer into outputDir and returns the artifact.
	CreateSystemPackage(ctx context.Context, configFile, outputDir string) (string, error)
}

// Entry is the pair of strategies registered for a platform.
type Entry struct {
	// Platform is the registry key.
	Platform build.Platform
	// Generator renders the freeze configuration.
	Generator ConfigGenerator
	// Packager produces the installer.
	Packager Packager
}

// UnsupportedError is returned for a platform key with no registered entry.
type UnsupportedError struct {
	// Key is the requested platform.
	Key string
	// Supported lists the registered keys.
	Supported []string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported platform %q", e.Key)
	}

	return fmt.Sprintf("unsupported platform %q (supported: %v)", e.Key, e.Supported)
}

// Registry maps platform keys to entries.
type Registry struct {
	entries map[build.Platform]Entry
}

// NewRegistry returns a registry holding entries.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[build.Platform]Entry, len(entries))}

	for _, e := range entries {
		r.entries[e.Platform] = e
	}

	return r
}

// Lookup returns the entry registered for key.
func (r *Registry) Lookup(key build.Platform) (Entry, error) {
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, &UnsupportedError{Key: key.String(), Supported: r.Keys()}
	}

	return e, nil
}

// Keys returns the registered platform keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for _, p := range slices.Sorted(maps.Keys(r.entries)) {
		keys = append(keys, p.String())
	}

	return keys
}

// Deps are the collaborators shared by the default entries.
type Deps struct {
	// Runner executes external tools.
	Runner toolrun.Runner
	// PackageEnv is the environment searched for bundled tools.
	PackageEnv string
	// GOARCH is the target architecture; empty means runtime.GOARCH.
	GOARCH string
}

// Default returns the registry with the windows and macos entries.
func Default(deps Deps) *Registry {
	goarch := deps.GOARCH
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	windows := freeze.NewWindowsGenerator()
	macos := freeze.NewMacGenerator()

	return NewRegistry(
		Entry{
			Platform:  windows.Platform(),
			Generator: windows,
			Packager: installer.NewPackager(installer.Generators[installer.WIX], deps.Runner, deps.PackageEnv).
				WithGOARCH(goarch),
		},
		Entry{
			Platform:  macos.Platform(),
			Generator: macos,
			Packager: installer.NewPackager(installer.Generators[installer.DragNDrop], deps.Runner, deps.PackageEnv).
				WithGOARCH(goarch),
		},
	)
}

// Detect maps a GOOS value onto a platform.
func Detect(goos string) (build.Platform, error) {
	switch goos {
	case "darwin":
		return build.MacOS, nil
	case "windows":
		return build.Windows, nil
	default:
		return "", &UnsupportedError{Key: goos, Supported: []string{"darwin", "windows"}}
	}
}
