package installer

import (
	_ "embed"

	"github.com/oshokin/desktop-packager/internal/render"
)

var (
	//go:embed templates/general.cmake.tmpl
	generalTemplateText string

	//go:embed templates/wix.cmake.tmpl
	wixTemplateText string

	//go:embed templates/dragndrop.cmake.tmpl
	dragNDropTemplateText string

	//nolint:gochecknoglobals // Parsed once from embedded text.
	generalTemplate = render.MustParse("general.cmake", generalTemplateText)
	//nolint:gochecknoglobals // Parsed once from embedded text.
	wixTemplate = render.MustParse("wix.cmake", wixTemplateText)
	//nolint:gochecknoglobals // Parsed once from embedded text.
	dragNDropTemplate = render.MustParse("dragndrop.cmake", dragNDropTemplateText)
)

// generalSection is the record of the part of CPackConfig.cmake shared by all generators.
type generalSection struct {
	Generator                  string   `render:"generator"`
	CPackGenerator             string   `render:"cpack_generator"`
	PackageName                string   `render:"cpack_package_name"`
	InstalledDirectoriesSource string   `render:"cpack_installed_directories_source"`
	InstalledDirectoriesOutput string   `render:"cpack_installed_directories_output"`
	Vendor                     string   `render:"cpack_package_vendor"`
	SystemName                 string   `render:"cpack_system_name"`
	Version                    string   `render:"cpack_package_version"`
	VersionMajor               int      `render:"cpack_package_version_major"`
	VersionMinor               int      `render:"cpack_package_version_minor"`
	VersionPatch               int      `render:"cpack_package_version_patch"`
	VersionTweak               string   `render:"cpack_package_version_tweak,optional"`
	FileName                   string   `render:"cpack_package_file_name"`
	LicenseFile                string   `render:"cpack_resource_file_license"`
	DescriptionFile            string   `render:"cpack_package_description_file"`
	InstallDirectory           string   `render:"cpack_package_install_directory"`
	Executables                []string `render:"cpack_package_executables"`
}

// wixSection is the record of the WIX specific part.
type wixSection struct {
	SizeofVoidP    string      `render:"cpack_wix_sizeof_void_p"`
	Architecture   string      `render:"cpack_wix_architecture"`
	ExtraVariables [][2]string `render:"extra_variables"`
}

// dragNDropSection is the record of the DragNDrop specific part.
type dragNDropSection struct {
	ExtraVariables [][2]string `render:"extra_variables"`
}
