// Package render turns flat data records into configuration documents for
// external tools.
//
// A record is a tagged struct (or a list of Fields). Its fields are flattened
// into a placeholder map, optionally renamed through a key remapping, and
// substituted into a text/template. Missing placeholders fail the render.
// Values reach the template only through explicit encoders (py, cmake,
// cmakeset) so that the output stays valid in the consuming tool's own
// configuration language.
package render
