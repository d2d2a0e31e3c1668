// Package version exposes build metadata for desktop-packager.
//
// Version, Commit and BuildTime are injected through ldflags. Generator is
// written into the headers of generated files and into release manifests.
package version
