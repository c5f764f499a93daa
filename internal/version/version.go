// Package version reports the application build version.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/ndewijer/Investment-Ledger-Backend/internal/version.Version=1.2.3".
var Version = "dev"
