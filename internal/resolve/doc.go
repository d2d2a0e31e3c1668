// Package resolve implements ordered fallback resolution: a list of
// interchangeable strategies is tried in sequence until one yields a result.
//
// License discovery, CPack discovery, frozen-folder discovery and tool lookup
// are all expressed as strategy lists resolved through First.
package resolve
