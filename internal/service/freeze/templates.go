package freeze

import (
	_ "embed"

	"github.com/oshokin/desktop-packager/internal/render"
)

var (
	//go:embed templates/specs.spec.tmpl
	specsTemplateText string

	//go:embed templates/hook.py.tmpl
	hookTemplateText string

	//go:embed templates/bootstrap.py.tmpl
	bootstrapTemplateText string

	//nolint:gochecknoglobals // Parsed once from embedded text.
	specsTemplate = render.MustParse("specs.spec", specsTemplateText)
	//nolint:gochecknoglobals // Parsed once from embedded text.
	hookTemplate = render.MustParse("hook.py", hookTemplateText)
	//nolint:gochecknoglobals // Parsed once from embedded text.
	bootstrapTemplate = render.MustParse("bootstrap.py", bootstrapTemplateText)
)

// SpecsKeyMapping renames SpecsData fields to the placeholders of the spec template.
//
//nolint:gochecknoglobals // Read-only mapping.
var SpecsKeyMapping = map[string]string{
	"data_files":                    "datas",
	"top_level_package_folder_name": "hidden_imports",
}

// packageScript is the record of the hook and bootstrap templates.
type packageScript struct {
	PackageName string `render:"package_name"`
	Generator   string `render:"generator"`
}
