package store

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.hackfix.me/vemigrate/migrator"
	"go.hackfix.me/vemigrate/store/memory"
	"go.hackfix.me/vemigrate/store/mysql"
	"go.hackfix.me/vemigrate/store/scylla"
	"go.hackfix.me/vemigrate/store/sqlite"
)

// Type are the supported store implementations.
type Type string

// All supported store implementations.
const (
	TypeScylla Type = "scylla"
	TypeSQLite Type = "sqlite"
	TypeMySQL  Type = "mysql"
	TypeMemory Type = "memory"
)

// TypeFromString returns a valid Type for the given string, or an error if the
// value is invalid.
func TypeFromString(val string) (Type, error) {
	switch Type(val) {
	case TypeScylla:
		return TypeScylla, nil
	case TypeSQLite:
		return TypeSQLite, nil
	case TypeMySQL:
		return TypeMySQL, nil
	case TypeMemory:
		return TypeMemory, nil
	}
	return "", fmt.Errorf("unsupported store type '%s'", val)
}

// Store is a migrator.Store that holds resources which must be released.
type Store interface {
	migrator.Store
	io.Closer
}

// Settings are the store connection settings.
type Settings struct {
	Type Type
	// Keyspace is the Scylla keyspace or the MySQL database holding the
	// history table.
	Keyspace string
	// Table is the history table name. Scylla always uses "migrations".
	Table string

	Nodes       []string
	User        string
	Password    string
	Timeout     time.Duration
	Consistency string

	SQLitePath string
	MySQLDSN   string
}

// Open opens the store described by s.
//
//nolint:ireturn // Intentional, this is a generic function.
func Open(s Settings, logger *slog.Logger) (Store, error) {
	var (
		st  Store
		err error
	)
	switch s.Type {
	case TypeScylla:
		st, err = scylla.Open(scylla.Config{
			Hosts:       s.Nodes,
			Keyspace:    s.Keyspace,
			User:        s.User,
			Password:    s.Password,
			Timeout:     s.Timeout,
			Consistency: s.Consistency,
		}, logger)
	case TypeSQLite:
		if s.SQLitePath == "" {
			return nil, fmt.Errorf("no SQLite database path configured")
		}
		st, err = sqlite.Open(s.SQLitePath, s.Table, logger)
	case TypeMySQL:
		st, err = mysql.Open(mysql.Config{DSN: s.MySQLDSN, Database: s.Keyspace, Table: s.Table}, logger)
	case TypeMemory:
		st = memory.New(memory.WithSchema(memory.CreateHistory, memory.DropHistory))
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", s.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed opening %s store: %w", s.Type, err)
	}

	return st, nil
}

// InitialOptions are the parameters of the initial migration that only apply
// to some store types.
type InitialOptions struct {
	ReplicationStrategy string
	ReplicationFactor   int
}

// InitialMigration returns the up and down scripts of the migration that
// creates the history structure for the store described by s.
func InitialMigration(s Settings, opts InitialOptions) (up, down string, err error) {
	switch s.Type {
	case TypeScylla:
		var rs scylla.ReplicationStrategy
		rs, err = scylla.ParseReplicationStrategy(opts.ReplicationStrategy)
		if err != nil {
			return "", "", err
		}
		return scylla.InitialMigration(s.Keyspace, rs, opts.ReplicationFactor)
	case TypeSQLite:
		up, down = sqlite.InitialMigration(s.Table)
	case TypeMySQL:
		var db string
		db, err = mysql.Config{DSN: s.MySQLDSN, Database: s.Keyspace}.DatabaseName()
		if err != nil {
			return "", "", err
		}
		up, down = mysql.InitialMigration(db, s.Table)
	case TypeMemory:
		up, down = memory.InitialMigration()
	default:
		return "", "", fmt.Errorf("unsupported store type '%s'", s.Type)
	}

	return up, down, nil
}
