// Package scylla implements a migrator.Store backed by a ScyllaDB or Apache
// Cassandra cluster.
package scylla

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gocql/gocql"

	"go.hackfix.me/vemigrate/migrator"
)

// DefaultKeyspace is the default keyspace that holds the history table.
const DefaultKeyspace = "vemigrate"

// Keyspace names are unquoted CQL identifiers, so they can be interpolated
// into statements as-is.
var keyspaceRx = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,47}$`)

// Config is the Store configuration.
type Config struct {
	Hosts       []string
	Keyspace    string
	User        string
	Password    string
	Timeout     time.Duration
	Consistency string
}

// Store records the migration history in the <keyspace>.migrations table.
type Store struct {
	session  *gocql.Session
	keyspace string
	logger   *slog.Logger
}

var _ migrator.Store = (*Store)(nil)

// Open connects to the cluster described by cfg. The keyspace doesn't need to
// exist yet, since it's usually created by the initial migration.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	cluster, err := newCluster(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "store_type", "scylla", "keyspace", cfg.Keyspace)

	logger.Debug("connecting to cluster", "hosts", cfg.Hosts)
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed connecting to cluster: %w", err)
	}

	return &Store{session: session, keyspace: cfg.Keyspace, logger: logger}, nil
}

func newCluster(cfg Config) (*gocql.ClusterConfig, error) {
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("no database nodes configured")
	}
	if err := ValidateKeyspace(cfg.Keyspace); err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.User != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.User,
			Password: cfg.Password,
		}
	}
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
		cluster.ConnectTimeout = cfg.Timeout
	}
	if cfg.Consistency != "" {
		c, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
		if err != nil {
			return nil, fmt.Errorf("invalid consistency level: %w", err)
		}
		cluster.Consistency = c
	}

	return cluster, nil
}

// ValidateKeyspace returns an error if name is not a valid unquoted keyspace
// name.
func ValidateKeyspace(name string) error {
	if !keyspaceRx.MatchString(name) {
		return fmt.Errorf("invalid keyspace name %q", name)
	}
	return nil
}

// GetAll implements migrator.Store. It returns a nil slice if the keyspace
// doesn't exist or the history is empty.
func (s *Store) GetAll(ctx context.Context) ([]migrator.HistoryEvent, error) {
	s.logger.Debug("selecting migration history")

	var name string
	err := s.session.Query(
		`SELECT keyspace_name FROM system_schema.keyspaces WHERE keyspace_name = ?`,
		s.keyspace).WithContext(ctx).Scan(&name)
	if errors.Is(err, gocql.ErrNotFound) {
		s.logger.Debug("keyspace doesn't exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed checking keyspace: %w", err)
	}

	iter := s.session.Query(
		fmt.Sprintf(`SELECT id, up FROM %s.migrations`, s.keyspace)).
		WithContext(ctx).Iter()

	var (
		events []migrator.HistoryEvent
		id     int64
		up     bool
	)
	for iter.Scan(&id, &up) {
		events = append(events, migrator.HistoryEvent{ID: migrator.ID(id), Up: up})
	}
	if err = iter.Close(); err != nil {
		return nil, fmt.Errorf("failed querying history: %w", err)
	}

	if len(events) == 0 {
		s.logger.Debug("no migrations found in history")
		return nil, nil
	}

	return events, nil
}

// Add implements migrator.Store.
func (s *Store) Add(ctx context.Context, id migrator.ID, up bool) error {
	s.logger.Debug("storing migration", "id", id, "up", up)

	err := s.session.Query(
		fmt.Sprintf(`INSERT INTO %s.migrations (id, seq, up) VALUES (?, now(), ?)`, s.keyspace),
		int64(id), up).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed inserting history event: %w", err)
	}

	return nil
}

// Exec implements migrator.Store.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	s.logger.Debug("executing statement", "stmt", stmt)
	return s.session.Query(stmt).WithContext(ctx).Exec() //nolint:wrapcheck // This is wrapped by the migrator.
}

// Close closes the session.
func (s *Store) Close() error {
	s.session.Close()
	return nil
}
