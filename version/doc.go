// Package version exposes build information for the lazyseq module.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/lazyseq/version.Version=1.0.0"
//
// The HTTP page client reports the version in its User-Agent header.
package version
