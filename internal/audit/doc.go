// Package audit records every interaction between the assistant and the
// server: tool calls, tool responses, order state changes and errors.
//
// Events flow through a Recorder into a Sink. The SQLite sink keeps an
// append-only interactions table whose schema is versioned with semver
// migrations. The driver is chosen at build time:
//
//	go build ./...                     # modernc.org/sqlite (pure Go)
//	go build -tags sqlite_cgo ./...    # github.com/mattn/go-sqlite3
//
// Card numbers, security codes and expiry dates are redacted from recorded
// tool arguments. A failing sink is logged and otherwise ignored.
package audit
