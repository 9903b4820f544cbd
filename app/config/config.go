package config

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"gopkg.in/yaml.v3"

	"go.hackfix.me/vemigrate/store"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	// MigrationsDir is the path to the directory containing migrations.
	MigrationsDir sql.Null[string]
	// RecordResetHistory makes a full rollback record down events in the
	// history, instead of relying on the initial migration to remove it.
	RecordResetHistory sql.Null[bool]
	Store              Store

	fs   vfs.FileSystem
	path string
}

// Store defines the history store configuration.
type Store struct {
	Type sql.Null[store.Type]
	// Keyspace is the Scylla keyspace or MySQL database of the history table.
	Keyspace sql.Null[string]
	Table    sql.Null[string]
	Scylla   Scylla
	SQLite   SQLite
	MySQL    MySQL
}

// Scylla defines ScyllaDB/Cassandra connection options.
type Scylla struct {
	Hosts       []string
	User        sql.Null[string]
	Password    sql.Null[string]
	Timeout     sql.Null[time.Duration]
	Consistency sql.Null[string]
}

// SQLite defines SQLite connection options.
type SQLite struct {
	Path sql.Null[string]
}

// MySQL defines MySQL connection options.
type MySQL struct {
	DSN sql.Null[string]
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	data, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as YAML.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

type cfgWrapper struct {
	MigrationsDir      string       `yaml:"migrations_dir,omitempty"`
	RecordResetHistory *bool        `yaml:"record_reset_history,omitempty"`
	Store              storeWrapper `yaml:"store,omitempty"`
}

type storeWrapper struct {
	Type     string        `yaml:"type,omitempty"`
	Keyspace string        `yaml:"keyspace,omitempty"`
	Table    string        `yaml:"table,omitempty"`
	Scylla   scyllaWrapper `yaml:"scylla,omitempty"`
	SQLite   sqliteWrapper `yaml:"sqlite,omitempty"`
	MySQL    mysqlWrapper  `yaml:"mysql,omitempty"`
}

type scyllaWrapper struct {
	Hosts       []string `yaml:"hosts,omitempty"`
	User        string   `yaml:"user,omitempty"`
	Password    string   `yaml:"password,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	Consistency string   `yaml:"consistency,omitempty"`
}

type sqliteWrapper struct {
	Path string `yaml:"path,omitempty"`
}

type mysqlWrapper struct {
	DSN string `yaml:"dsn,omitempty"`
}

// MarshalYAML implements custom YAML marshaling to convert sql.Null values to
// their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalYAML() (any, error) {
	w := cfgWrapper{}

	if c.MigrationsDir.Valid {
		w.MigrationsDir = c.MigrationsDir.V
	}
	if c.RecordResetHistory.Valid {
		w.RecordResetHistory = &c.RecordResetHistory.V
	}

	if c.Store.Type.Valid {
		w.Store.Type = string(c.Store.Type.V)
	}
	if c.Store.Keyspace.Valid {
		w.Store.Keyspace = c.Store.Keyspace.V
	}
	if c.Store.Table.Valid {
		w.Store.Table = c.Store.Table.V
	}

	w.Store.Scylla.Hosts = c.Store.Scylla.Hosts
	if c.Store.Scylla.User.Valid {
		w.Store.Scylla.User = c.Store.Scylla.User.V
	}
	if c.Store.Scylla.Password.Valid {
		w.Store.Scylla.Password = c.Store.Scylla.Password.V
	}
	if c.Store.Scylla.Timeout.Valid {
		w.Store.Scylla.Timeout = c.Store.Scylla.Timeout.V.String()
	}
	if c.Store.Scylla.Consistency.Valid {
		w.Store.Scylla.Consistency = c.Store.Scylla.Consistency.V
	}

	if c.Store.SQLite.Path.Valid {
		w.Store.SQLite.Path = c.Store.SQLite.Path.V
	}
	if c.Store.MySQL.DSN.Valid {
		w.Store.MySQL.DSN = c.Store.MySQL.DSN.V
	}

	return w, nil
}

// UnmarshalYAML implements custom YAML unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var w cfgWrapper
	if err := value.Decode(&w); err != nil {
		return err //nolint:wrapcheck // This is fine.
	}

	if w.MigrationsDir != "" {
		c.MigrationsDir = sql.Null[string]{V: w.MigrationsDir, Valid: true}
	}
	if w.RecordResetHistory != nil {
		c.RecordResetHistory = sql.Null[bool]{V: *w.RecordResetHistory, Valid: true}
	}

	if w.Store.Type != "" {
		st, err := store.TypeFromString(w.Store.Type)
		if err != nil {
			return err //nolint:wrapcheck // This is fine.
		}
		c.Store.Type = sql.Null[store.Type]{V: st, Valid: true}
	}
	if w.Store.Keyspace != "" {
		c.Store.Keyspace = sql.Null[string]{V: w.Store.Keyspace, Valid: true}
	}
	if w.Store.Table != "" {
		c.Store.Table = sql.Null[string]{V: w.Store.Table, Valid: true}
	}

	c.Store.Scylla.Hosts = w.Store.Scylla.Hosts
	if w.Store.Scylla.User != "" {
		c.Store.Scylla.User = sql.Null[string]{V: w.Store.Scylla.User, Valid: true}
	}
	if w.Store.Scylla.Password != "" {
		c.Store.Scylla.Password = sql.Null[string]{V: w.Store.Scylla.Password, Valid: true}
	}
	if w.Store.Scylla.Timeout != "" {
		dur, err := time.ParseDuration(w.Store.Scylla.Timeout)
		if err != nil {
			return fmt.Errorf("failed parsing Scylla timeout: %w", err)
		}
		c.Store.Scylla.Timeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Store.Scylla.Consistency != "" {
		c.Store.Scylla.Consistency = sql.Null[string]{V: w.Store.Scylla.Consistency, Valid: true}
	}

	if w.Store.SQLite.Path != "" {
		c.Store.SQLite.Path = sql.Null[string]{V: w.Store.SQLite.Path, Valid: true}
	}
	if w.Store.MySQL.DSN != "" {
		c.Store.MySQL.DSN = sql.Null[string]{V: w.Store.MySQL.DSN, Valid: true}
	}

	return nil
}
