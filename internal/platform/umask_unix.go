//go:build !windows

// Package platform holds the process setup that differs between operating
// systems.
package platform

import "golang.org/x/sys/unix"

// PrivateUmask keeps created files and directories owner-only.
const PrivateUmask = 0o077

// RestrictUmask sets the process umask to PrivateUmask and returns the
// previous value.
func RestrictUmask() int {
	return unix.Umask(PrivateUmask)
}
