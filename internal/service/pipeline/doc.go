// Package pipeline runs a packaging job from wheel to published installer.
//
// Stages run strictly in order: the package environment is prepared, the
// freeze specs are built and rendered, PyInstaller freezes the application,
// the frozen folder is located, the CPack config is rendered, cpack builds
// the installer, the artifact is located and finally published into the dist
// folder. A failing stage stops the run with a *StageError naming it.
// The current stage is recorded in the run-state file of the build directory,
// which also keeps a second run from using the same directory.
package pipeline
