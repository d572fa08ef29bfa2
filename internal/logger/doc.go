// Package logger wraps logrus behind a small structured Logger interface.
// Output goes to stderr or a file, never stdout.
package logger
