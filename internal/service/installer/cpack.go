package installer

import (
	"os"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/toolrun"
)

const (
	// CPackEnvVar names a cpack executable to use instead of searching for one.
	CPackEnvVar = "CPACK"
	// CMakeBinDirEnvVar names a directory holding cmake and cpack.
	CMakeBinDirEnvVar = "CMAKE_BIN_DIR"
)

// DefaultCPackStrategies returns the cpack discovery chain: $CPACK, PATH,
// $CMAKE_BIN_DIR, the usual install folders of the platform and finally the
// cmake wheel inside the package environment.
func DefaultCPackStrategies(platform build.Platform, packageEnv string) []resolve.Strategy[string] {
	name := "cpack" + platform.ExecutableSuffix()
	_, scriptsDir := platform.EnvironmentLayout()

	return []resolve.Strategy[string]{
		resolve.Named("$"+CPackEnvVar, toolrun.FromEnv(CPackEnvVar)),
		resolve.Named("cpack on PATH", toolrun.OnPath(name)),
		resolve.Named("$"+CMakeBinDirEnvVar, toolrun.InEnvDir(CMakeBinDirEnvVar, name)),
		resolve.Named("known install folders", toolrun.InDirs(name, knownCMakeDirs(platform)...)),
		resolve.Named("package environment", toolrun.InDirs(name,
			filepath.Join(packageEnv, "cmake", "data", "bin"),
			filepath.Join(packageEnv, scriptsDir),
			filepath.Join(packageEnv, "bin"),
		)),
	}
}

func knownCMakeDirs(platform build.Platform) []string {
	if platform == build.Windows {
		dirs := make([]string, 0, 2)

		for _, variable := range []string{"ProgramFiles", "ProgramW6432"} {
			if root := os.Getenv(variable); root != "" {
				dirs = append(dirs, filepath.Join(root, "CMake", "bin"))
			}
		}

		return dirs
	}

	return []string{
		"/Applications/CMake.app/Contents/bin",
		"/opt/homebrew/bin",
		"/usr/local/bin",
	}
}
