// Package environment prepares the Python environment the application is
// frozen from: a bare virtual environment with the wheel and its
// requirements installed into it with pip.
package environment
