// Package version reports build metadata for the watchdog binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/watchdog/version.Version=1.0.0" ./cmd/watchdog
//
// Values not set this way are filled from the module's embedded VCS
// information when available.
package version
