// Package wheel reads the packaging-relevant parts of a Python wheel:
// the core METADATA headers, the top-level package name and license files
// shipped inside the archive.
package wheel
