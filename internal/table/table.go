// Package table provides the runtime handle for one format table: scan
// composes the file scanner and record codec across all data files, append
// encodes rows into exactly one new uniquely named file per partition.
package table

import (
	"context"
	"fmt"
	"iter"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lakecat/lakecat/internal/codec"
	"github.com/lakecat/lakecat/internal/fio"
	"github.com/lakecat/lakecat/internal/scanner"
	"github.com/lakecat/lakecat/internal/schema"
)

// Table is the handle the query surface works with. It holds no mutable
// state; every scan re-enumerates the table directory.
type Table struct {
	desc  *schema.TableDescriptor
	files fio.FileIO
	codec codec.Codec
	opts  codec.Options
}

// New builds a handle for desc. The format identifier must name a registered
// codec; the catalog validates this at creation time, so a failure here
// indicates an out-of-band metastore edit.
func New(desc *schema.TableDescriptor, files fio.FileIO) (*Table, error) {
	c, err := codec.For(desc.Format)
	if err != nil {
		return nil, err
	}

	return &Table{
		desc:  desc,
		files: files,
		codec: c,
		opts:  codec.OptionsFrom(desc.Options),
	}, nil
}

// Descriptor returns the table's descriptor.
func (t *Table) Descriptor() *schema.TableDescriptor {
	return t.desc
}

// Scan lazily yields every row of the table. Files are visited in listing
// order with no cross-file ordering guarantee; within a file, record order is
// preserved. Partition values are reconstructed from the directory path and
// spliced into their declared column positions. A scan concurrent with an
// append may or may not observe the new file.
func (t *Table) Scan(ctx context.Context) iter.Seq2[schema.Row, error] {
	return func(yield func(schema.Row, error) bool) {
		dataFiles, err := scanner.List(ctx, t.files, t.desc.Location)
		if err != nil {
			yield(nil, err)
			return
		}

		dataCols := t.desc.DataColumns()

		for _, df := range dataFiles {
			if !t.scanFile(ctx, df, dataCols, yield) {
				return
			}
		}
	}
}

// scanFile yields the rows of one data file. Returns false when iteration
// should stop.
func (t *Table) scanFile(ctx context.Context, df scanner.DataFile, dataCols []schema.ColumnDef, yield func(schema.Row, error) bool) bool {
	partition, err := t.partitionValues(df)
	if err != nil {
		return yield(nil, err)
	}

	reader, err := scanner.Open(ctx, t.files, df)
	if err != nil {
		return yield(nil, err)
	}

	defer func() { _ = reader.Close() }()

	for dataRow, err := range t.codec.Decode(reader, dataCols, t.opts, df.Path) {
		if err != nil {
			return yield(nil, err)
		}

		if !yield(t.assemble(dataRow, partition), nil) {
			return false
		}
	}

	return true
}

// partitionValues parses the typed partition values of a data file.
func (t *Table) partitionValues(df scanner.DataFile) (map[string]any, error) {
	if len(t.desc.PartitionKeys) == 0 {
		return nil, nil
	}

	values := make(map[string]any, len(t.desc.PartitionKeys))

	for _, key := range t.desc.PartitionKeys {
		raw, ok := df.Partition[key]
		if !ok {
			return nil, fmt.Errorf("data file %s is missing partition %q", df.Path, key)
		}

		col, _ := t.desc.Column(key)

		value, err := codec.ParseValue(raw, col)
		if err != nil {
			return nil, fmt.Errorf("data file %s has invalid value for partition %q: %w", df.Path, key, err)
		}

		values[key] = value
	}

	return values, nil
}

// assemble merges decoded data values and partition values into a full row
// in declared column order.
func (t *Table) assemble(dataRow schema.Row, partition map[string]any) schema.Row {
	if len(t.desc.PartitionKeys) == 0 {
		return dataRow
	}

	row := make(schema.Row, len(t.desc.Columns))
	next := 0

	for i, col := range t.desc.Columns {
		if t.desc.IsPartitionKey(col.Name) {
			row[i] = partition[col.Name]
			continue
		}

		row[i] = dataRow[next]
		next++
	}

	return row
}

// Append encodes rows into new data files, one uniquely named file per
// touched partition, and returns once they are durably visible to listings.
// Concurrent appenders are isolated by the unique names; no lock is taken.
func (t *Table) Append(ctx context.Context, rows []schema.Row) error {
	if len(rows) == 0 {
		return nil
	}

	for _, row := range rows {
		if len(row) != len(t.desc.Columns) {
			return fmt.Errorf("row has %d values, table %s has %d columns",
				len(row), t.desc.Identifier(), len(t.desc.Columns))
		}
	}

	groups, order, err := t.groupByPartition(rows)
	if err != nil {
		return err
	}

	for _, partitionPath := range order {
		if err := t.writeFile(ctx, partitionPath, groups[partitionPath]); err != nil {
			return err
		}
	}

	return nil
}

// groupByPartition splits rows by partition directory and strips partition
// values, which live in the path rather than the file. Order of first
// appearance is preserved so single-partition appends stay one file.
func (t *Table) groupByPartition(rows []schema.Row) (map[string][]schema.Row, []string, error) {
	groups := make(map[string][]schema.Row)

	var order []string

	for _, row := range rows {
		partitionPath, err := t.partitionPath(row)
		if err != nil {
			return nil, nil, err
		}

		if _, seen := groups[partitionPath]; !seen {
			order = append(order, partitionPath)
		}

		groups[partitionPath] = append(groups[partitionPath], t.dataValues(row))
	}

	return groups, order, nil
}

// partitionPath renders the k=v directory segments for a row, empty for
// unpartitioned tables.
func (t *Table) partitionPath(row schema.Row) (string, error) {
	segments := ""

	for _, key := range t.desc.PartitionKeys {
		idx := -1

		for i, col := range t.desc.Columns {
			if col.Name == key {
				idx = i
				break
			}
		}

		if row[idx] == nil {
			return "", fmt.Errorf("partition column %q must not be null", key)
		}

		segments = path.Join(segments, key+"="+codec.FormatValue(row[idx]))
	}

	return segments, nil
}

// dataValues projects a full row onto the non-partition columns.
func (t *Table) dataValues(row schema.Row) schema.Row {
	if len(t.desc.PartitionKeys) == 0 {
		return row
	}

	values := make(schema.Row, 0, len(row)-len(t.desc.PartitionKeys))

	for i, col := range t.desc.Columns {
		if !t.desc.IsPartitionKey(col.Name) {
			values = append(values, row[i])
		}
	}

	return values
}

// writeFile encodes one group of rows into one new data file.
func (t *Table) writeFile(ctx context.Context, partitionPath string, rows []schema.Row) error {
	name := fmt.Sprintf("data-%s.%s", uuid.New().String(), t.codec.Extension())
	target := path.Join(t.desc.Location, partitionPath, name)

	sink, err := t.files.Create(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}

	if err := t.codec.Encode(sink, rows, t.desc.DataColumns(), t.opts); err != nil {
		// Discard the temp file; a failed append must not publish anything.
		_ = sink.Abort()

		return fmt.Errorf("failed to encode rows: %w", err)
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to publish data file: %w", err)
	}

	log.Debug().
		Str("table", t.desc.Identifier()).
		Str("file", target).
		Int("rows", len(rows)).
		Msg("appended data file")

	return nil
}
