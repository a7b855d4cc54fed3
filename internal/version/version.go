// Package version holds the application version string, overridable at build
// time via -ldflags.
package version

// Version is the current application version.
var Version = "0.3.0"
