package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

const (
	prefixDatabase = "db/"
	prefixTable    = "tbl/"

	dirPermissions = 0750
)

// BadgerStore implements Metastore on an embedded BadgerDB key-value store.
// Databases live under "db/<name>", tables under "tbl/<db>/<name>", both as
// JSON values.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger-backed metastore at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create metastore directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dir, "badger"))
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	log.Debug().Str("dir", dir).Msg("opened badger metastore")

	return &BadgerStore{db: db}, nil
}

// Close shuts down the underlying store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func databaseKey(name string) []byte {
	return []byte(prefixDatabase + name)
}

func tableKey(database, name string) []byte {
	return []byte(prefixTable + database + "/" + name)
}

func (s *BadgerStore) get(key []byte) ([]byte, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)

		return err
	})

	return data, err
}

func (s *BadgerStore) put(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *BadgerStore) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// listKeys returns the key suffixes under prefix, sorted.
func (s *BadgerStore) listKeys(prefix []byte) ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, string(prefix)))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	return names, nil
}

// CreateDatabase registers a database. Fails with ErrDatabaseExists if the
// name is taken.
func (s *BadgerStore) CreateDatabase(ctx context.Context, db *Database) error {
	exists, err := s.DatabaseExists(ctx, db.Name)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrDatabaseExists, db.Name)
	}

	data, err := json.Marshal(db)
	if err != nil {
		return err
	}

	return s.put(databaseKey(db.Name), data)
}

// DropDatabase removes a database registration. The caller is responsible
// for dropping contained tables first.
func (s *BadgerStore) DropDatabase(ctx context.Context, name string) error {
	exists, err := s.DatabaseExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}

	return s.delete(databaseKey(name))
}

// ListDatabases returns all database names, sorted.
func (s *BadgerStore) ListDatabases(ctx context.Context) ([]string, error) {
	return s.listKeys([]byte(prefixDatabase))
}

// DatabaseExists reports whether a database is registered.
func (s *BadgerStore) DatabaseExists(ctx context.Context, name string) (bool, error) {
	_, err := s.get(databaseKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateTable registers a table descriptor under its database.
func (s *BadgerStore) CreateTable(ctx context.Context, meta *TableMeta) error {
	dbExists, err := s.DatabaseExists(ctx, meta.Database)
	if err != nil {
		return err
	}

	if !dbExists {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, meta.Database)
	}

	exists, err := s.TableExists(ctx, meta.Database, meta.Name)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s.%s", ErrTableExists, meta.Database, meta.Name)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return s.put(tableKey(meta.Database, meta.Name), data)
}

// DropTable removes a table registration.
func (s *BadgerStore) DropTable(ctx context.Context, database, name string) error {
	exists, err := s.TableExists(ctx, database, name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s.%s", ErrTableNotFound, database, name)
	}

	return s.delete(tableKey(database, name))
}

// GetTable returns a table's descriptor.
func (s *BadgerStore) GetTable(ctx context.Context, database, name string) (*TableMeta, error) {
	data, err := s.get(tableKey(database, name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, database, name)
	}

	if err != nil {
		return nil, err
	}

	var meta TableMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// ListTables returns the table names in a database, sorted.
func (s *BadgerStore) ListTables(ctx context.Context, database string) ([]string, error) {
	exists, err := s.DatabaseExists(ctx, database)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, database)
	}

	return s.listKeys([]byte(prefixTable + database + "/"))
}

// TableExists reports whether a table is registered.
func (s *BadgerStore) TableExists(ctx context.Context, database, name string) (bool, error) {
	_, err := s.get(tableKey(database, name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// GetProperty returns one table property. A missing key yields an empty
// string, mirroring how the metastore shell treats unset TBLPROPERTIES.
func (s *BadgerStore) GetProperty(ctx context.Context, database, name, key string) (string, error) {
	meta, err := s.GetTable(ctx, database, name)
	if err != nil {
		return "", err
	}

	return meta.Properties[key], nil
}

// SetProperty stores one table property.
func (s *BadgerStore) SetProperty(ctx context.Context, database, name, key, value string) error {
	meta, err := s.GetTable(ctx, database, name)
	if err != nil {
		return err
	}

	if meta.Properties == nil {
		meta.Properties = make(map[string]string)
	}

	meta.Properties[key] = value

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return s.put(tableKey(database, name), data)
}

// Ensure BadgerStore implements Metastore.
var _ Metastore = (*BadgerStore)(nil)
