package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/lakecat/lakecat/internal/metastore"
)

// propLocation is the table property holding the storage location when the
// catalog runs in location-in-properties mode.
const propLocation = "location"

// locationResolver computes or reads table storage directories. The mode is
// fixed once per catalog instance: either every location is derived from the
// warehouse root by convention, or every location is read from (and written
// to) a metastore table property. Resolution is idempotent; an existing
// table's recorded location always wins over re-derivation.
type locationResolver struct {
	warehouse    string
	inProperties bool
}

func (r *locationResolver) databasePath(database string) string {
	return path.Join(strings.TrimSuffix(r.warehouse, "/"), database)
}

func (r *locationResolver) derivedPath(database, table string) string {
	return path.Join(r.databasePath(database), table)
}

// forCreate resolves the target directory for a table being created.
// explicit is the location requested by the DDL, empty for none; requesting
// one outside location-in-properties mode is rejected so a catalog never
// mixes resolution modes.
func (r *locationResolver) forCreate(database, table, explicit string) (string, error) {
	if explicit == "" {
		return r.derivedPath(database, table), nil
	}

	if !r.inProperties {
		return "", fmt.Errorf("explicit location %q requires location-in-properties mode", explicit)
	}

	return explicit, nil
}

// forTable resolves the location of an existing table from its metastore
// descriptor.
func (r *locationResolver) forTable(meta *metastore.TableMeta) string {
	if r.inProperties {
		if loc := meta.Properties[propLocation]; loc != "" {
			return loc
		}
	}

	return r.derivedPath(meta.Database, meta.Name)
}

// checkConflict verifies that location is not already owned by another
// table. Only meaningful in location-in-properties mode, where locations are
// caller-chosen; derived locations are collision-free by construction since
// one table maps to exactly one path.
func (r *locationResolver) checkConflict(ctx context.Context, ms metastore.Metastore, database, table, location string) error {
	databases, err := ms.ListDatabases(ctx)
	if err != nil {
		return err
	}

	for _, db := range databases {
		tables, err := ms.ListTables(ctx, db)
		if err != nil {
			return err
		}

		for _, name := range tables {
			if db == database && name == table {
				continue
			}

			meta, err := ms.GetTable(ctx, db, name)
			if err != nil {
				return err
			}

			if r.forTable(meta) == location {
				return fmt.Errorf("%w: %s is owned by %s.%s", ErrLocationConflict, location, db, name)
			}
		}
	}

	return nil
}
