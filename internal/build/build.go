// Package build carries values stamped in at link time.
package build

// Version is reported by the version command. Release builds overwrite
// the "dev" default via -ldflags.
var Version = "dev"
