// Package schema holds the bridge's internal table model: typed columns,
// partition keys and the mapping to and from the metastore's descriptor.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// Schema errors.
var (
	ErrUnsupportedType = errors.New("unsupported column type")
	ErrInvalidSchema   = errors.New("invalid table schema")
)

// DataType is the bridge's internal column type enum.
type DataType string

const (
	TypeBoolean   DataType = "boolean"
	TypeInt       DataType = "int"
	TypeBigInt    DataType = "bigint"
	TypeFloat     DataType = "float"
	TypeDouble    DataType = "double"
	TypeString    DataType = "string"
	TypeTimestamp DataType = "timestamp" // millisecond precision
)

// Row is one record of column values in declared column order. Value kinds
// per type: bool, int32, int64, float32, float64, string, time.Time.
// A nil element is SQL NULL.
type Row []any

// ColumnDef describes one column.
type ColumnDef struct {
	Name     string   `json:"name"`
	Type     DataType `json:"type"`
	Nullable bool     `json:"nullable"`
	Comment  string   `json:"comment,omitempty"`
}

// TableDescriptor is the bridge's view of one format table. Columns holds
// every column including partition columns; PartitionKeys names the subset
// whose values select the partition directory, in declaration order.
type TableDescriptor struct {
	Database      string            `json:"database"`
	Name          string            `json:"name"`
	Columns       []ColumnDef       `json:"columns"`
	PartitionKeys []string          `json:"partition_keys,omitempty"`
	Location      string            `json:"location,omitempty"`
	Format        string            `json:"format"`
	Options       map[string]string `json:"options,omitempty"`
}

// Identifier returns the qualified table name.
func (d *TableDescriptor) Identifier() string {
	return d.Database + "." + d.Name
}

// Column returns the column definition for name, or false.
func (d *TableDescriptor) Column(name string) (ColumnDef, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}

	return ColumnDef{}, false
}

// IsPartitionKey reports whether name is a partition column.
func (d *TableDescriptor) IsPartitionKey(name string) bool {
	for _, key := range d.PartitionKeys {
		if key == name {
			return true
		}
	}

	return false
}

// DataColumns returns the columns stored inside data files, i.e. every
// column that is not a partition key, in declaration order.
func (d *TableDescriptor) DataColumns() []ColumnDef {
	cols := make([]ColumnDef, 0, len(d.Columns))

	for _, col := range d.Columns {
		if !d.IsPartitionKey(col.Name) {
			cols = append(cols, col)
		}
	}

	return cols
}

// Validate checks the structural invariants: at least one column, unique
// column names, every partition key resolving to a declared column with the
// keys in declaration-relative order, and every type a known enum member.
func (d *TableDescriptor) Validate() error {
	if d.Database == "" || d.Name == "" {
		return fmt.Errorf("%w: table identifier is incomplete", ErrInvalidSchema)
	}

	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidSchema, d.Identifier())
	}

	seen := make(map[string]struct{}, len(d.Columns))

	for _, col := range d.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidSchema)
		}

		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, col.Name)
		}

		seen[col.Name] = struct{}{}

		if !knownType(col.Type) {
			return fmt.Errorf("%w: column %q has type %q", ErrUnsupportedType, col.Name, col.Type)
		}
	}

	// Partition keys must be declared columns and keep their relative
	// declaration order.
	ordinal := -1

	for _, key := range d.PartitionKeys {
		idx := columnIndex(d.Columns, key)
		if idx < 0 {
			return fmt.Errorf("%w: partition key %q is not a column", ErrInvalidSchema, key)
		}

		if idx <= ordinal {
			return fmt.Errorf("%w: partition key %q out of declaration order", ErrInvalidSchema, key)
		}

		ordinal = idx
	}

	return nil
}

func columnIndex(cols []ColumnDef, name string) int {
	for i, col := range cols {
		if col.Name == name {
			return i
		}
	}

	return -1
}

func knownType(t DataType) bool {
	switch t {
	case TypeBoolean, TypeInt, TypeBigInt, TypeFloat, TypeDouble, TypeString, TypeTimestamp:
		return true
	default:
		return false
	}
}

// TruncateTimestamp normalizes a timestamp value to the bridge's fixed
// millisecond precision, in UTC.
func TruncateTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
