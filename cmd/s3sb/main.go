// Package main is the entry point for s3sb.
package main

import (
	"github.com/sharkusmanch/s3sb/internal/cli"
	"github.com/sharkusmanch/s3sb/internal/platform"
)

func main() {
	// Artifacts and the work dir must never be readable by other users.
	platform.RestrictUmask()

	cli.Execute()
}
