// Package migrator provides functionality to manage database schema migrations.
//
// Features:
// - Supports both forward (`up`) and rollback (`down`) migrations
// - Loads CQL migration scripts from directories named `{id}_{name}`, each
//   containing an `up.cql` and a `down.cql` file
// - Tracks migration history as an append-only log of up/down events kept by a
//   Store implementation
// - Applies pending migrations oldest first, and rolls back newest first
// - Runs all eligible migrations, or a bounded number of them
package migrator
