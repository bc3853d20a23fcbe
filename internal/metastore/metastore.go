// Package metastore defines the external service of record for database and
// table metadata. The bridge only talks to the Metastore interface; the
// badger-backed implementation in this package is the embedded default, and
// tests substitute their own doubles to simulate failures.
package metastore

import (
	"context"
	"errors"
)

// Metastore errors.
var (
	ErrDatabaseExists   = errors.New("database already exists")
	ErrDatabaseNotFound = errors.New("database not found")
	ErrTableExists      = errors.New("table already exists")
	ErrTableNotFound    = errors.New("table not found")
)

// FieldSchema describes one column as the metastore records it.
type FieldSchema struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Comment  string `json:"comment,omitempty"`
	Nullable bool   `json:"nullable"`
}

// TableMeta is the metastore's table descriptor. Regular columns and
// partition columns are tracked separately, Hive-style; partition columns
// never appear in Fields.
type TableMeta struct {
	Database      string            `json:"database"`
	Name          string            `json:"name"`
	Fields        []FieldSchema     `json:"fields"`
	PartitionKeys []FieldSchema     `json:"partition_keys,omitempty"`
	Location      string            `json:"location,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// Database is a named container of tables.
type Database struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Metastore is the metadata service contract. Every call is individually
// atomic; the metastore provides its own persistence. It knows nothing about
// data files.
type Metastore interface {
	CreateDatabase(ctx context.Context, db *Database) error
	DropDatabase(ctx context.Context, name string) error
	ListDatabases(ctx context.Context) ([]string, error)
	DatabaseExists(ctx context.Context, name string) (bool, error)

	CreateTable(ctx context.Context, meta *TableMeta) error
	DropTable(ctx context.Context, database, name string) error
	GetTable(ctx context.Context, database, name string) (*TableMeta, error)
	ListTables(ctx context.Context, database string) ([]string, error)
	TableExists(ctx context.Context, database, name string) (bool, error)

	GetProperty(ctx context.Context, database, name, key string) (string, error)
	SetProperty(ctx context.Context, database, name, key, value string) error

	Close() error
}
