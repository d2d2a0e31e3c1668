package build

import (
	"errors"
	"fmt"
)

// DataFile is a (source, destination) pair bundled into the frozen application.
// It is an array so that it renders as a tuple in the freeze spec.
type DataFile [2]string

// NewDataFile builds a DataFile from a source path and a destination folder.
func NewDataFile(source, destination string) DataFile {
	return DataFile{source, destination}
}

// Source is the file on disk.
func (d DataFile) Source() string {
	return d[0]
}

// Destination is the folder inside the bundle.
func (d DataFile) Destination() string {
	return d[1]
}

// SpecsData describes a frozen application build.
// Field tags name the placeholders of the freeze spec template.
type SpecsData struct {
	AppExecutableName string `render:"app_executable_name"`
	CollectionName    string `render:"collection_name"`
	BundleName        string `render:"bundle_name"`

	InstallerIcon             string     `render:"installer_icon,optional"`
	BootstrapScript           string     `render:"bootstrap_script,optional"`
	AppIcon                   string     `render:"app_icon,optional"`
	SearchPaths               []string   `render:"search_paths"`
	DataFiles                 []DataFile `render:"data_files"`
	HooksPath                 []string   `render:"hookspath"`
	TopLevelPackageFolderName string     `render:"top_level_package_folder_name,optional"`
	DistributionVersion       string     `render:"version,optional"`

	// HookOutputPath is where the hook for the top-level package is written.
	HookOutputPath string `render:"-"`
	// GenerateBootstrap asks for a default bootstrap script at BootstrapScript.
	GenerateBootstrap bool `render:"-"`
}

// ErrMissingRequiredField is returned when a required SpecsData field is empty.
var ErrMissingRequiredField = errors.New("required field is empty")

// Validate checks that the required names are set.
func (s *SpecsData) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"executable name", s.AppExecutableName},
		{"collection name", s.CollectionName},
		{"bundle name", s.BundleName},
	}

	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("specs %s: %w", field.name, ErrMissingRequiredField)
		}
	}

	return nil
}
