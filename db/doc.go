// Package db provides the database layer for the taxreg application.
// It encapsulates all interactions with the underlying SQLite database, managing
// data persistence for credentials, taxpayer records, and the server log.
//
// This package is responsible for:
// - Establishing and managing database connections (`db.go`).
// - Defining database-specific data structures that map to SQL table schemas.
// - Implementing repository interfaces (e.g., `TaxpayerRepository`, `CredentialRepository`)
//   to perform the record operations the command dispatcher relies on.
// - Handling data conversion between domain-specific structs (from the `domain` package)
//   and database-friendly structs, including the use of `sql.Null*` types for nullable fields.
// - Managing database migrations (`migrations/`).
// - Providing common database utility types (`types.go`).
//
// The repositories implement no locking of their own; the server serializes all
// access behind a single lock held for the duration of each command.
package db
