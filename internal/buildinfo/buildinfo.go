// Package buildinfo holds version strings set at link time:
//
//	go build -ldflags "-X meaningfield/internal/buildinfo.Version=v0.3.0 -X meaningfield/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for window titles and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String is the full line printed by the version command.
func String() string {
	return fmt.Sprintf("meaningfield %s (commit %s, built %s)", Version, Commit, Date)
}
