package scylla

import (
	"fmt"
	"strings"
)

// ReplicationStrategy is the keyspace replication class.
type ReplicationStrategy string

// Supported replication strategies.
const (
	SimpleStrategy          ReplicationStrategy = "SimpleStrategy"
	NetworkTopologyStrategy ReplicationStrategy = "NetworkTopologyStrategy"
)

// ReplicationStrategies lists all valid ReplicationStrategy values.
func ReplicationStrategies() []string {
	return []string{string(SimpleStrategy), string(NetworkTopologyStrategy)}
}

// ParseReplicationStrategy returns the strategy named s. The match is case
// insensitive.
func ParseReplicationStrategy(s string) (ReplicationStrategy, error) {
	for _, rs := range []ReplicationStrategy{SimpleStrategy, NetworkTopologyStrategy} {
		if strings.EqualFold(s, string(rs)) {
			return rs, nil
		}
	}
	return "", fmt.Errorf("invalid replication strategy %q; valid values: %s",
		s, strings.Join(ReplicationStrategies(), ", "))
}

// InitialMigration returns the up and down scripts of the migration that
// creates the keyspace and history table, and drops them.
//
// History rows are keyed by (id, seq) so that every execution of a migration
// is kept as a separate event.
func InitialMigration(keyspace string, strategy ReplicationStrategy, factor int) (up, down string, err error) {
	if err = ValidateKeyspace(keyspace); err != nil {
		return "", "", err
	}
	if factor < 1 {
		return "", "", fmt.Errorf("invalid replication factor %d; must be at least 1", factor)
	}
	if _, err = ParseReplicationStrategy(string(strategy)); err != nil {
		return "", "", err
	}

	up = fmt.Sprintf(`-- This file is automatically @generated by vemigrate.
create keyspace if not exists %[1]s with replication = { 'class' : '%[2]s', 'replication_factor': %[3]d };
create table if not exists %[1]s.migrations (
    id bigint,
    seq timeuuid,
    up boolean,
    primary key (id, seq)
);
`, keyspace, strategy, factor)
	down = fmt.Sprintf(`-- This file is automatically @generated by vemigrate.
drop table if exists %[1]s.migrations;
drop keyspace if exists %[1]s;
`, keyspace)

	return up, down, nil
}
