//go:build !sqlite_cgo

package audit

// Default build: pure Go SQLite, no C toolchain required.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver for the interaction log
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
