// Package freeze turns a prepared package environment into a frozen
// application with PyInstaller.
//
// A Generator builds the SpecsData record for one platform, renders the
// PyInstaller spec together with the hook that collects the wheel's
// top-level package, and later locates the folder PyInstaller produced.
// A Freezer finds and runs PyInstaller itself.
package freeze
