package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

const (
	// DefaultProjectFilename is used as the project file when it exists in the working directory.
	DefaultProjectFilename = "pyproject.toml"

	// WindowsPackagerTable is the tool table read by the MSI packager.
	WindowsPackagerTable = "windows_standalone_packager"

	// MacOSPackagerTable is the tool table read by the DMG packager.
	MacOSPackagerTable = "macos_standalone_packager"
)

// Project is the part of a pyproject-style file the packager reads.
type Project struct {
	// Tool maps tool table names to their packager settings.
	Tool map[string]PackagerTable `toml:"tool"`
}

// PackagerTable is a [tool.<name>] table.
type PackagerTable struct {
	// CPackConfigVariables are raw CPack variables appended to the generated config.
	CPackConfigVariables map[string]any `toml:"cpack_config_variables"`
}

// ReadProject decodes a project file. Unknown keys are ignored.
func ReadProject(path string) (*Project, error) {
	var project Project
	if _, err := toml.DecodeFile(path, &project); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read project file: %w", err)
		}

		return nil, Invalidf("%s does not appear to be a valid TOML file: %v", path, err)
	}

	return &project, nil
}

// ValidateTOML checks that path exists and holds valid TOML.
func ValidateTOML(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return Invalidf("'%s' does not exist", path)
	}

	if info.IsDir() {
		return Invalidf("'%s' is not a file", path)
	}

	var document map[string]any
	if _, err := toml.DecodeFile(path, &document); err != nil {
		return Invalidf("%s does not appear to be a valid TOML file: %v", path, err)
	}

	return nil
}

// CPackVariables returns the variables of a tool table whose names match one
// of the glob patterns, sorted by name. A nil project has no variables.
func (p *Project) CPackVariables(table string, patterns ...string) ([][2]string, error) {
	if p == nil {
		return nil, nil
	}

	variables := p.Tool[table].CPackConfigVariables
	if len(variables) == 0 {
		return nil, nil
	}

	matchers := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile variable pattern %q: %w", pattern, err)
		}

		matchers = append(matchers, g)
	}

	var pairs [][2]string

	for _, name := range slices.Sorted(maps.Keys(variables)) {
		if !slices.ContainsFunc(matchers, func(g glob.Glob) bool { return g.Match(name) }) {
			continue
		}

		pairs = append(pairs, [2]string{name, fmt.Sprint(variables[name])})
	}

	return pairs, nil
}
