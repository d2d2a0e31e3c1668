// Package platform maps a platform key to the freeze config generator and
// the installer packager used for it. The registry is built once per run and
// never mutated afterwards.
package platform
