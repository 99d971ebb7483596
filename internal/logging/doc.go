// Package logging assembles the structured slog loggers used by the
// whisperxsubs command and its packages.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that stamp run IDs, segment numbers and languages onto log
// lines. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
