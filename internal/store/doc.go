// Package store keeps a SQLite ledger of the authors each preprocessing run
// found, chapter by chapter.
//
// # Tables
//
//   - runs: one row per preprocessing run, keyed by run ID
//   - mentions: one row per identity, in chapter order then directive order
//
// Usernames are stored exactly as written. Grouping uses username_key, the
// NFC-normalized, case-folded and trimmed form, because GitHub logins are
// case-insensitive.
//
// # Connection
//
// Ledgers use WAL journaling so that the contributors command can read while
// a book build records a run. Foreign keys are enforced, so mentions can only
// be recorded for a run that exists. The schema version is kept in
// PRAGMA user_version.
package store
