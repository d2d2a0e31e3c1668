package installer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
)

// CPack generator names.
const (
	// WIX builds an MSI with the WiX toolset.
	WIX = "WIX"
	// DragNDrop builds a DMG disk image.
	DragNDrop = "DragNDrop"
)

// ErrUnsupportedArchitecture is returned for a GOARCH no installer is built for.
var ErrUnsupportedArchitecture = errors.New("unsupported architecture")

// Generator describes one CPack generator.
type Generator struct {
	// Name is the CPACK_GENERATOR value.
	Name string
	// Platform is the platform the generator runs on.
	Platform build.Platform
	// Extension is the suffix of the produced artifact.
	Extension string
	// ProjectTable is the tool table of the project file holding extra variables.
	ProjectTable string
	// VariablePatterns select which project variables are passed through.
	VariablePatterns []string
	// LicenseFileName is the license file written next to the config.
	LicenseFileName string
	// CopyLocalLicense copies ./LICENSE into LicenseFileName instead of referencing it.
	CopyLocalLicense bool
	// InstallerIconVariable receives the installer icon.
	InstallerIconVariable string

	// section renders the generator specific part of the config.
	section func(goarch string, extra [][2]string) (string, error)
}

// Generators is the registry of supported CPack generators.
//
//nolint:gochecknoglobals // Read-only registry.
var Generators = map[string]*Generator{
	WIX: {
		Name:                  WIX,
		Platform:              build.Windows,
		Extension:             ".msi",
		ProjectTable:          config.WindowsPackagerTable,
		VariablePatterns:      []string{"CPACK_WIX_*"},
		LicenseFileName:       "LICENSE.txt",
		CopyLocalLicense:      true,
		InstallerIconVariable: "CPACK_WIX_PRODUCT_ICON",
		section:               wixConfigLines,
	},
	DragNDrop: {
		Name:                  DragNDrop,
		Platform:              build.MacOS,
		Extension:             ".dmg",
		ProjectTable:          config.MacOSPackagerTable,
		VariablePatterns:      []string{"CPACK_DMG_*", "CPACK_BUNDLE_*"},
		LicenseFileName:       "LICENSE",
		InstallerIconVariable: "CPACK_PACKAGE_ICON",
		section:               dragNDropConfigLines,
	},
}

// SystemName returns the CPACK_SYSTEM_NAME tag for the platform and architecture.
func SystemName(platform build.Platform, goarch string) (string, error) {
	switch {
	case platform == build.Windows && (goarch == "amd64" || goarch == "arm64"):
		return "win64", nil
	case platform == build.Windows && (goarch == "386" || goarch == "arm"):
		return "win32", nil
	case platform == build.MacOS && goarch == "amd64":
		return "macos-x86_64", nil
	case platform == build.MacOS && goarch == "arm64":
		return "macos-arm64", nil
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedArchitecture, platform, goarch)
	}
}

// ExtraVariables returns the project variables passed through for g, plus
// the installer icon when one is given.
func (g *Generator) ExtraVariables(project *config.Project, installerIcon string) ([][2]string, error) {
	extra, err := project.CPackVariables(g.ProjectTable, g.VariablePatterns...)
	if err != nil {
		return nil, err
	}

	if installerIcon != "" {
		abs, err := filepath.Abs(installerIcon)
		if err != nil {
			return nil, fmt.Errorf("resolve installer icon: %w", err)
		}

		extra = append(extra, [2]string{g.InstallerIconVariable, filepath.ToSlash(abs)})
	}

	return extra, nil
}

// wixConfigLines renders the WIX section with the architecture of goarch.
func wixConfigLines(goarch string, extra [][2]string) (string, error) {
	section := wixSection{ExtraVariables: extra}

	switch goarch {
	case "amd64":
		section.Architecture, section.SizeofVoidP = "x64", "8"
	case "arm64":
		section.Architecture, section.SizeofVoidP = "arm64", "8"
	case "386":
		section.Architecture, section.SizeofVoidP = "x86", "4"
	}

	return wixTemplate.Execute(section, nil)
}

// dragNDropConfigLines renders the DragNDrop section.
func dragNDropConfigLines(_ string, extra [][2]string) (string, error) {
	return dragNDropTemplate.Execute(dragNDropSection{ExtraVariables: extra}, nil)
}

// Generate renders the complete CPackConfig.cmake text.
func (g *Generator) Generate(general *generalSection, goarch string, extra [][2]string) (string, error) {
	general.CPackGenerator = g.Name

	head, err := generalTemplate.Execute(general, nil)
	if err != nil {
		return "", err
	}

	tail, err := g.section(goarch, extra)
	if err != nil {
		return "", err
	}

	return head + "\n" + tail, nil
}
