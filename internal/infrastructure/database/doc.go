// Package database manages the SQLite connection and schema migrations.
//
// It wraps database/sql with WAL-mode pragmas, a single-writer connection
// pool, and versioned migrations embedded into the binary. All domain
// repositories receive the underlying *sql.DB and own their queries; this
// package never touches domain tables directly.
package database
