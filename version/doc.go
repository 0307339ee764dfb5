// Package version provides build version information embedding for
// prockit-based tools.
//
// Version, git commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/terralab/prockit/version.Version=1.0.0"
package version
