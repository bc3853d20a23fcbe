// Package catalog implements the bridge between the metastore's table
// metadata and the data files under each table's storage location.
//
// The two sources of truth are reconciled by ordering, not transactions:
// on create, the directory is prepared before the metastore registration
// (registration is the commit point, an orphaned empty directory is adopted
// by a retry); on drop, directory contents are removed before the metastore
// entry, so a partial failure leaves metadata pointing at an empty or absent
// location rather than live data with no pointer. All metadata-mutating
// operations hold the CatalogLock for their scope; data reads and writes
// take no lock.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lakecat/lakecat/internal/codec"
	"github.com/lakecat/lakecat/internal/fio"
	"github.com/lakecat/lakecat/internal/metastore"
	"github.com/lakecat/lakecat/internal/schema"
	"github.com/lakecat/lakecat/internal/table"
)

// Catalog errors. Table and database existence errors are shared with the
// metastore package so errors.Is matches regardless of which layer raised
// them.
var (
	ErrTableExists      = metastore.ErrTableExists
	ErrTableNotFound    = metastore.ErrTableNotFound
	ErrDatabaseExists   = metastore.ErrDatabaseExists
	ErrDatabaseNotFound = metastore.ErrDatabaseNotFound
	ErrDatabaseNotEmpty = errors.New("database is not empty")
	ErrLockTimeout      = errors.New("lock acquisition timed out")
	ErrLocationConflict = errors.New("location already owned by another table")
)

// Options configures a catalog instance. The location resolution mode and
// locking policy are fixed here, once, and applied uniformly afterwards.
type Options struct {
	// Warehouse is the root directory tables are derived under.
	Warehouse string

	// LocationInProperties selects explicit location resolution via the
	// "location" table property instead of warehouse-root derivation.
	LocationInProperties bool

	// LockEnabled turns the CatalogLock on. When false, mutating
	// operations run unguarded.
	LockEnabled bool

	// LockTimeout bounds lock acquisition waits.
	LockTimeout time.Duration
}

// Metrics tracks catalog activity.
type Metrics struct {
	DatabasesCreated atomic.Int64
	DatabasesDropped atomic.Int64
	TablesCreated    atomic.Int64
	TablesDropped    atomic.Int64
}

// Catalog orchestrates DDL against the metastore and the filesystem.
type Catalog struct {
	ms       metastore.Metastore
	files    fio.FileIO
	locks    LockManager
	resolver locationResolver
	metrics  Metrics
}

// New creates a catalog bridge over the given metastore and filesystem.
func New(ms metastore.Metastore, files fio.FileIO, opts Options) (*Catalog, error) {
	if opts.Warehouse == "" {
		return nil, errors.New("warehouse root is required")
	}

	var locks LockManager = noopLocks{}
	if opts.LockEnabled {
		locks = NewMemoryLocks(opts.LockTimeout)
	}

	return &Catalog{
		ms:    ms,
		files: files,
		locks: locks,
		resolver: locationResolver{
			warehouse:    opts.Warehouse,
			inProperties: opts.LocationInProperties,
		},
	}, nil
}

// Metrics returns the catalog's activity counters.
func (c *Catalog) Metrics() *Metrics {
	return &c.metrics
}

func databaseScope(name string) string {
	return "database/" + name
}

func tableScope(database, name string) string {
	return "table/" + database + "." + name
}

// CreateDatabase registers a database and prepares its directory.
func (c *Catalog) CreateDatabase(ctx context.Context, name string, ifNotExists bool) error {
	release, err := c.locks.Acquire(ctx, databaseScope(name))
	if err != nil {
		return err
	}
	defer release()

	exists, err := c.ms.DatabaseExists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		if ifNotExists {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrDatabaseExists, name)
	}

	// Directory first; registration is the commit point.
	if err := c.files.Mkdirs(ctx, c.resolver.databasePath(name)); err != nil {
		return err
	}

	if err := c.ms.CreateDatabase(ctx, &metastore.Database{Name: name}); err != nil {
		return err
	}

	c.metrics.DatabasesCreated.Add(1)
	log.Info().Str("database", name).Msg("created database")

	return nil
}

// DropDatabase removes a database. With cascade, contained tables are
// dropped concurrently first; without it a non-empty database is an error.
// The database directory is removed before the metastore entry.
func (c *Catalog) DropDatabase(ctx context.Context, name string, ifExists, cascade bool) error {
	release, err := c.locks.Acquire(ctx, databaseScope(name))
	if err != nil {
		return err
	}
	defer release()

	exists, err := c.ms.DatabaseExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		if ifExists {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}

	tables, err := c.ms.ListTables(ctx, name)
	if err != nil {
		return err
	}

	if len(tables) > 0 {
		if !cascade {
			return fmt.Errorf("%w: %s holds %d tables", ErrDatabaseNotEmpty, name, len(tables))
		}

		g, gctx := errgroup.WithContext(ctx)

		for _, tbl := range tables {
			g.Go(func() error {
				return c.DropTable(gctx, name, tbl, true)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	if err := c.files.Delete(ctx, c.resolver.databasePath(name), true); err != nil {
		return err
	}

	if err := c.ms.DropDatabase(ctx, name); err != nil {
		return err
	}

	c.metrics.DatabasesDropped.Add(1)
	log.Info().Str("database", name).Bool("cascade", cascade).Msg("dropped database")

	return nil
}

// ListDatabases returns all database names.
func (c *Catalog) ListDatabases(ctx context.Context) ([]string, error) {
	return c.ms.ListDatabases(ctx)
}

// CreateTable validates and registers a format table. Validation (schema,
// format identifier, type mapping, location) happens before any mutation.
// The target directory must not already hold files; an orphaned empty
// directory from an earlier failed attempt is adopted. Directory creation
// precedes metastore registration, making registration the commit point.
func (c *Catalog) CreateTable(ctx context.Context, desc *schema.TableDescriptor, ifNotExists bool) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	if _, err := codec.For(desc.Format); err != nil {
		return err
	}

	meta, err := schema.ToMeta(desc)
	if err != nil {
		return err
	}

	release, err := c.locks.Acquire(ctx, tableScope(desc.Database, desc.Name))
	if err != nil {
		return err
	}
	defer release()

	dbExists, err := c.ms.DatabaseExists(ctx, desc.Database)
	if err != nil {
		return err
	}

	if !dbExists {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, desc.Database)
	}

	registered, err := c.ms.TableExists(ctx, desc.Database, desc.Name)
	if err != nil {
		return err
	}

	if registered {
		if ifNotExists {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrTableExists, desc.Identifier())
	}

	location, err := c.resolver.forCreate(desc.Database, desc.Name, desc.Location)
	if err != nil {
		return err
	}

	if c.resolver.inProperties {
		if err := c.resolver.checkConflict(ctx, c.ms, desc.Database, desc.Name, location); err != nil {
			return err
		}

		meta.Properties[propLocation] = location
	}

	occupied, err := c.locationOccupied(ctx, location)
	if err != nil {
		return err
	}

	if occupied {
		if ifNotExists {
			return nil
		}

		return fmt.Errorf("%w: location %s already holds files", ErrTableExists, location)
	}

	if err := c.files.Mkdirs(ctx, location); err != nil {
		return err
	}

	if err := c.ms.CreateTable(ctx, meta); err != nil {
		return err
	}

	c.metrics.TablesCreated.Add(1)
	log.Info().
		Str("table", desc.Identifier()).
		Str("format", desc.Format).
		Str("location", location).
		Msg("created table")

	return nil
}

// locationOccupied reports whether a directory already holds visible
// entries. An absent or empty directory is free to adopt.
func (c *Catalog) locationOccupied(ctx context.Context, location string) (bool, error) {
	entries, err := c.files.ListStatus(ctx, location)
	if err != nil {
		return false, err
	}

	return len(entries) > 0, nil
}

// DropTable removes a table. Directory contents go first, the metastore
// entry last, so a partial failure never leaves live data without metadata.
func (c *Catalog) DropTable(ctx context.Context, database, name string, ifExists bool) error {
	release, err := c.locks.Acquire(ctx, tableScope(database, name))
	if err != nil {
		return err
	}
	defer release()

	meta, err := c.ms.GetTable(ctx, database, name)
	if err != nil {
		if ifExists && errors.Is(err, ErrTableNotFound) {
			return nil
		}

		return err
	}

	location := c.resolver.forTable(meta)

	if err := c.files.Delete(ctx, location, true); err != nil {
		return err
	}

	if err := c.ms.DropTable(ctx, database, name); err != nil {
		return err
	}

	c.metrics.TablesDropped.Add(1)
	log.Info().Str("table", database+"."+name).Str("location", location).Msg("dropped table")

	return nil
}

// DescribeTable returns the internal descriptor of a table, location
// resolved.
func (c *Catalog) DescribeTable(ctx context.Context, database, name string) (*schema.TableDescriptor, error) {
	meta, err := c.ms.GetTable(ctx, database, name)
	if err != nil {
		return nil, err
	}

	desc, err := schema.FromMeta(meta)
	if err != nil {
		return nil, err
	}

	desc.Location = c.resolver.forTable(meta)

	return desc, nil
}

// GetTable returns the runtime handle for scan and append.
func (c *Catalog) GetTable(ctx context.Context, database, name string) (*table.Table, error) {
	desc, err := c.DescribeTable(ctx, database, name)
	if err != nil {
		return nil, err
	}

	return table.New(desc, c.files)
}

// ListTables returns the table names in a database.
func (c *Catalog) ListTables(ctx context.Context, database string) ([]string, error) {
	return c.ms.ListTables(ctx, database)
}
