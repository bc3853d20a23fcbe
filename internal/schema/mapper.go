package schema

import (
	"fmt"

	"github.com/lakecat/lakecat/internal/metastore"
)

// Fixed bidirectional type table between the metastore's primitive type
// names and the internal enum. Unmapped names fail closed at DDL time.
var (
	toMetaType = map[DataType]string{
		TypeBoolean:   "boolean",
		TypeInt:       "int",
		TypeBigInt:    "bigint",
		TypeFloat:     "float",
		TypeDouble:    "double",
		TypeString:    "string",
		TypeTimestamp: "timestamp",
	}

	fromMetaType = map[string]DataType{
		"boolean":   TypeBoolean,
		"int":       TypeInt,
		"integer":   TypeInt,
		"bigint":    TypeBigInt,
		"float":     TypeFloat,
		"double":    TypeDouble,
		"string":    TypeString,
		"varchar":   TypeString,
		"timestamp": TypeTimestamp,
	}
)

// ToMeta converts the internal descriptor into the metastore's shape.
// Partition columns move out of the field list into PartitionKeys; everything
// else maps one to one.
func ToMeta(d *TableDescriptor) (*metastore.TableMeta, error) {
	meta := &metastore.TableMeta{
		Database:   d.Database,
		Name:       d.Name,
		Location:   d.Location,
		Properties: make(map[string]string, len(d.Options)+1),
	}

	for k, v := range d.Options {
		meta.Properties[k] = v
	}

	if d.Format != "" {
		meta.Properties["file.format"] = d.Format
	}

	for _, col := range d.Columns {
		metaType, ok := toMetaType[col.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q (column %q)", ErrUnsupportedType, col.Type, col.Name)
		}

		field := metastore.FieldSchema{
			Name:     col.Name,
			Type:     metaType,
			Comment:  col.Comment,
			Nullable: col.Nullable,
		}

		if d.IsPartitionKey(col.Name) {
			meta.PartitionKeys = append(meta.PartitionKeys, field)
		} else {
			meta.Fields = append(meta.Fields, field)
		}
	}

	return meta, nil
}

// FromMeta converts a metastore descriptor into the internal shape. Partition
// columns are appended after the regular columns, which matches the ordinal
// order DESCRIBE reports and makes the round trip with ToMeta lossless.
func FromMeta(meta *metastore.TableMeta) (*TableDescriptor, error) {
	d := &TableDescriptor{
		Database: meta.Database,
		Name:     meta.Name,
		Location: meta.Location,
		Format:   meta.Properties["file.format"],
		Options:  make(map[string]string, len(meta.Properties)),
	}

	for k, v := range meta.Properties {
		if k == "file.format" {
			continue
		}

		d.Options[k] = v
	}

	appendField := func(field metastore.FieldSchema) error {
		internalType, ok := fromMetaType[field.Type]
		if !ok {
			return fmt.Errorf("%w: %q (column %q)", ErrUnsupportedType, field.Type, field.Name)
		}

		d.Columns = append(d.Columns, ColumnDef{
			Name:     field.Name,
			Type:     internalType,
			Nullable: field.Nullable,
			Comment:  field.Comment,
		})

		return nil
	}

	for _, field := range meta.Fields {
		if err := appendField(field); err != nil {
			return nil, err
		}
	}

	for _, field := range meta.PartitionKeys {
		if err := appendField(field); err != nil {
			return nil, err
		}

		d.PartitionKeys = append(d.PartitionKeys, field.Name)
	}

	return d, nil
}
