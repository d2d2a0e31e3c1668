// Package build holds the data shared by every packaging stage: the target
// platform, the parameters collected from the command line and the SpecsData
// record describing one frozen application build.
package build
