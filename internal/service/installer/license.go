package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/resolve"
	"github.com/oshokin/desktop-packager/internal/wheel"
)

const (
	// NoLicenseGiven is written by the placeholder strategy.
	NoLicenseGiven = "No License given"
	// NoLicenseProvided is written when every license strategy failed.
	NoLicenseProvided = "No License provided"

	// localLicenseFile is looked up in the working directory.
	localLicenseFile = "LICENSE"
)

// LicenseSource is what the license strategies can draw from.
type LicenseSource struct {
	// UserFile is the --license-file override.
	UserFile string
	// PackageFile is the wheel.
	PackageFile string
	// Metadata is the wheel metadata.
	Metadata *wheel.Metadata
	// SearchPaths are folders searched for a LICENSE file.
	SearchPaths []string
	// OutputDir receives copied or generated license files.
	OutputDir string
}

// LicenseStrategies returns the license chain of g: the user override, the
// license bundled in the wheel, a local LICENSE file, and finally a placeholder.
func (g *Generator) LicenseStrategies(src *LicenseSource) []resolve.Strategy[string] {
	output := filepath.Join(src.OutputDir, g.LicenseFileName)

	local := resolve.Named("locate LICENSE", locateLicense(src.SearchPaths))
	if g.CopyLocalLicense {
		local = resolve.Named("copy LICENSE", copyLicense(filepath.Join(firstOr(src.SearchPaths, "."), localLicenseFile), output))
	}

	return []resolve.Strategy[string]{
		resolve.Named("user license file", userLicense(src.UserFile, output)),
		resolve.Named("wheel license", wheelLicense(src, output)),
		local,
		resolve.Named("placeholder license", writeLicense(output, NoLicenseGiven)),
	}
}

// ResolveLicense runs strategies and returns an absolute, slash separated
// license path. If the chain is exhausted a "No License provided" file is written.
func ResolveLicense(ctx context.Context, outputFile string, strategies ...resolve.Strategy[string]) (string, error) {
	path, err := resolve.First(ctx, "license file", strategies...)
	if errors.Is(err, resolve.ErrNotFound) {
		logger.WarnKV(ctx, "No license found, writing placeholder", "path", outputFile)

		path, err = writeLicense(outputFile, NoLicenseProvided)(ctx)
	}

	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve license path: %w", err)
	}

	return filepath.ToSlash(abs), nil
}

// userLicense copies the --license-file override.
func userLicense(userFile, output string) resolve.Strategy[string] {
	return func(ctx context.Context) (string, error) {
		if userFile == "" {
			return "", resolve.NotFoundf("no license file given")
		}

		return copyLicense(userFile, output)(ctx)
	}
}

// wheelLicense extracts a License-File bundled in the wheel, or the License header text.
func wheelLicense(src *LicenseSource, output string) resolve.Strategy[string] {
	return func(ctx context.Context) (string, error) {
		if src.Metadata == nil {
			return "", resolve.NotFoundf("no wheel metadata")
		}

		data, err := resolve.First(ctx, "wheel license text",
			resolve.Optional(func(context.Context) ([]byte, bool, error) {
				return wheel.ReadLicenseFile(src.PackageFile, src.Metadata)
			}),
			resolve.Optional(func(context.Context) ([]byte, bool, error) {
				text := src.Metadata.LicenseText()

				return []byte(text), text != "", nil
			}),
		)
		if err != nil {
			return "", err
		}

		if err = writeFile(output, data); err != nil {
			return "", err
		}

		logger.InfoKV(ctx, "Extracted license from wheel", "path", output, "wheel", src.PackageFile)

		return output, nil
	}
}

// locateLicense returns the first LICENSE file found in searchPaths.
func locateLicense(searchPaths []string) resolve.Strategy[string] {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}

	return func(context.Context) (string, error) {
		for _, dir := range searchPaths {
			candidate := filepath.Join(dir, localLicenseFile)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		return "", resolve.NotFoundf("no %s in %v", localLicenseFile, searchPaths)
	}
}

// copyLicense copies source into output when source exists.
func copyLicense(source, output string) resolve.Strategy[string] {
	return func(context.Context) (string, error) {
		data, err := os.ReadFile(source)
		if errors.Is(err, os.ErrNotExist) {
			return "", resolve.NotFoundf("%s does not exist", source)
		}

		if err != nil {
			return "", fmt.Errorf("read license %s: %w", source, err)
		}

		if err = writeFile(output, data); err != nil {
			return "", err
		}

		return output, nil
	}
}

// writeLicense writes a fixed license text into output.
func writeLicense(output, text string) resolve.Strategy[string] {
	return func(context.Context) (string, error) {
		if err := writeFile(output, []byte(text)); err != nil {
			return "", err
		}

		return output, nil
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}

	return values[0]
}
