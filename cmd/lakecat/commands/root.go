// Package commands implements the lakecat CLI command tree. The CLI is the
// shell entry point into the catalog; the same operations are available to
// embedders through the internal catalog API.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakecat/lakecat/internal/catalog"
	"github.com/lakecat/lakecat/internal/config"
	"github.com/lakecat/lakecat/internal/fio"
	"github.com/lakecat/lakecat/internal/metastore"
	"github.com/lakecat/lakecat/internal/schema"
)

// openCatalog wires config, metastore and filesystem into a catalog. The
// returned closer shuts the metastore down.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, *config.Config, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	warehouse, _ := cmd.Flags().GetString("warehouse")
	metastorePath, _ := cmd.Flags().GetString("metastore")

	cfg, err := config.Load(configPath, config.Options{
		Warehouse:     warehouse,
		MetastorePath: metastorePath,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := metastore.OpenBadger(cfg.MetastorePath)
	if err != nil {
		return nil, nil, nil, err
	}

	cat, err := catalog.New(store, fio.NewLocal(), catalog.Options{
		Warehouse:            cfg.Warehouse,
		LocationInProperties: cfg.LocationInProperties,
		LockEnabled:          cfg.Lock.Enabled,
		LockTimeout:          cfg.Lock.AcquireTimeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	return cat, cfg, func() { _ = store.Close() }, nil
}

// splitTableName parses "db.table".
func splitTableName(qualified string) (string, string, error) {
	db, tbl, ok := strings.Cut(qualified, ".")
	if !ok || db == "" || tbl == "" {
		return "", "", fmt.Errorf("table name must be qualified as db.table, got %q", qualified)
	}

	return db, tbl, nil
}

// parseColumns parses a column list of the form
// "name:type[:comment],name:type[:comment],...".
func parseColumns(spec string) ([]schema.ColumnDef, error) {
	if spec == "" {
		return nil, fmt.Errorf("at least one column is required")
	}

	parts := strings.Split(spec, ",")
	cols := make([]schema.ColumnDef, 0, len(parts))

	for _, part := range parts {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 3)
		if len(fields) < 2 {
			return nil, fmt.Errorf("column %q must be name:type[:comment]", part)
		}

		col := schema.ColumnDef{
			Name:     fields[0],
			Type:     schema.DataType(strings.ToLower(fields[1])),
			Nullable: true,
		}

		if len(fields) == 3 {
			col.Comment = fields[2]
		}

		cols = append(cols, col)
	}

	return cols, nil
}
