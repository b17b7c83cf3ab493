//go:build windows

// Package platform holds the process setup that differs between operating
// systems.
package platform

// PrivateUmask keeps created files and directories owner-only.
const PrivateUmask = 0o077

// RestrictUmask is a no-op on Windows, which has no umask. Artifacts are
// still created with owner-only permission bits.
func RestrictUmask() int {
	return 0
}
