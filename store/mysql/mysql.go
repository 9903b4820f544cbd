// Package mysql implements a migrator.Store backed by a MySQL or MariaDB
// database.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"

	"go.hackfix.me/vemigrate/migrator"
)

// DefaultTable is the default name of the history table.
const DefaultTable = "migrations"

// Config is the Store configuration.
type Config struct {
	// DSN in the format accepted by github.com/go-sql-driver/mysql.
	DSN string
	// Database that holds the history table. If empty, the database name
	// from the DSN is used.
	Database string
	Table    string
}

// Store records the migration history in a MySQL table.
type Store struct {
	conn   *sql.DB
	table  string
	db     string
	logger *slog.Logger
}

var _ migrator.Store = (*Store)(nil)

// Open connects to the database described by cfg.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed parsing MySQL DSN: %w", err)
	}
	if cfg.Database, err = cfg.DatabaseName(); err != nil {
		return nil, err
	}

	conn, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed opening MySQL connection: %w", err)
	}

	return New(conn, cfg, logger), nil
}

// DatabaseName returns the database that holds the history table: Database if
// it's set, otherwise the database name from the DSN.
func (cfg Config) DatabaseName() (string, error) {
	if cfg.Database != "" {
		return cfg.Database, nil
	}
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("failed parsing MySQL DSN: %w", err)
	}
	if dsn.DBName == "" {
		return "", errors.New("no database name configured")
	}

	return dsn.DBName, nil
}

// New returns a Store using an already opened connection. cfg.DSN is ignored.
func New(conn *sql.DB, cfg Config, logger *slog.Logger) *Store {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		conn:  conn,
		db:    cfg.Database,
		table: cfg.Table,
		logger: logger.With("component", "store", "store_type", "mysql",
			"database", cfg.Database, "table", cfg.Table),
	}
}

// GetAll implements migrator.Store. It returns a nil slice if the history
// table doesn't exist.
func (s *Store) GetAll(ctx context.Context) ([]migrator.HistoryEvent, error) {
	s.logger.Debug("selecting migration history")

	var count int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		s.db, s.table).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed checking history table: %w", err)
	}
	if count == 0 {
		s.logger.Debug("history table doesn't exist")
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx,
		fmt.Sprintf("SELECT id, up FROM %s ORDER BY seq", tableName(s.db, s.table)))
	if err != nil {
		return nil, fmt.Errorf("failed querying history: %w", err)
	}
	defer rows.Close()

	var events []migrator.HistoryEvent
	for rows.Next() {
		var (
			id uint64
			up bool
		)
		if err = rows.Scan(&id, &up); err != nil {
			return nil, fmt.Errorf("failed scanning history row: %w", err)
		}
		events = append(events, migrator.HistoryEvent{ID: migrator.ID(id), Up: up})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading history: %w", err)
	}

	return events, nil
}

// Add implements migrator.Store.
func (s *Store) Add(ctx context.Context, id migrator.ID, up bool) error {
	s.logger.Debug("storing migration", "id", id, "up", up)

	_, err := s.conn.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, up) VALUES (?, ?)", tableName(s.db, s.table)),
		uint64(id), up)
	if err != nil {
		return fmt.Errorf("failed inserting history event: %w", err)
	}

	return nil
}

// Exec implements migrator.Store.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	s.logger.Debug("executing statement", "stmt", stmt)

	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the migrator.
	}

	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close() //nolint:wrapcheck // This is fine.
}

// InitialMigration returns the up and down scripts of the migration that
// creates the database and history table, and drops them.
func InitialMigration(database, table string) (up, down string) {
	if table == "" {
		table = DefaultTable
	}
	db := quoteIdent(database)
	tbl := tableName(database, table)

	up = fmt.Sprintf("-- This file is automatically @generated by vemigrate.\n"+
		"CREATE DATABASE IF NOT EXISTS %s;\n"+
		"CREATE TABLE IF NOT EXISTS %s (\n"+
		"    seq        bigint NOT NULL AUTO_INCREMENT,\n"+
		"    id         bigint unsigned NOT NULL,\n"+
		"    up         boolean NOT NULL,\n"+
		"    applied_at datetime NOT NULL DEFAULT CURRENT_TIMESTAMP,\n"+
		"    PRIMARY KEY (seq)\n"+
		") DEFAULT CHARSET utf8mb4;\n", db, tbl)
	down = fmt.Sprintf("-- This file is automatically @generated by vemigrate.\n"+
		"DROP TABLE IF EXISTS %s;\n"+
		"DROP DATABASE IF EXISTS %s;\n", tbl, db)

	return up, down
}

func tableName(database, table string) string {
	return quoteIdent(database) + "." + quoteIdent(table)
}

// quoteIdent returns name as a quoted MySQL identifier. Backticks are the only
// character that needs escaping inside a quoted identifier, and NUL is not
// allowed at all.
func quoteIdent(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2) //nolint:mnd // Surrounding quotes.
	sb.WriteByte('`')
	for _, r := range name {
		switch r {
		case 0:
			continue
		case '`':
			sb.WriteString("``")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('`')

	return sb.String()
}
