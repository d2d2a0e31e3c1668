package build

// Platform identifies a supported desktop platform family.
type Platform string

const (
	// Windows produces an MSI installer through the CPack WIX generator.
	Windows Platform = "windows"
	// MacOS produces a DMG image through the CPack DragNDrop generator.
	MacOS Platform = "macos"
)

// String returns the platform key.
func (p Platform) String() string {
	return string(p)
}

// ExecutableSuffix is appended to executable names on this platform.
func (p Platform) ExecutableSuffix() string {
	if p == Windows {
		return ".exe"
	}

	return ""
}

// InstallerIconExtension is the icon format required by the native installer.
func (p Platform) InstallerIconExtension() string {
	if p == MacOS {
		return ".icns"
	}

	return ".ico"
}

// EnvironmentLayout returns the library and script directory names of a Python
// virtual environment on this platform.
func (p Platform) EnvironmentLayout() (libDir, scriptsDir string) {
	if p == Windows {
		return "Lib", "Scripts"
	}

	return "lib", "bin"
}
