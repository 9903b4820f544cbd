// Package store selects and opens the migration history store implementation
// configured by the user. Each implementation lives in its own subpackage, so
// that the migrator package doesn't depend on any database driver.
package store
