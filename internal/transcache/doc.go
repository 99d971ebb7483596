// Package transcache persists segment translations in SQLite so re-running a
// conversion does not pay for identical translation requests twice.
//
// Entries are keyed by provider, source language, target language and the
// SHA-256 of the segment text. The database carries a schema_version row;
// a mismatched version is reported as ErrSchemaMismatch and the cache must be
// cleared or deleted.
package transcache
