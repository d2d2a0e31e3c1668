// Package run persists the state of the packaging run that owns a build
// directory, so that a second invocation against the same directory can be
// refused while the first one is still alive.
package run
