package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor() *TableDescriptor {
	return &TableDescriptor{
		Database: "test_db",
		Name:     "events",
		Columns: []ColumnDef{
			{Name: "a", Type: TypeInt, Nullable: true, Comment: "comment a"},
			{Name: "b", Type: TypeString, Nullable: true, Comment: "comment b"},
			{Name: "c", Type: TypeTimestamp, Nullable: false},
		},
		PartitionKeys: []string{"b"},
		Format:        "csv",
		Options:       map[string]string{"field-delimiter": ";"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, testDescriptor().Validate())
}

func TestValidateDuplicateColumn(t *testing.T) {
	desc := testDescriptor()
	desc.Columns = append(desc.Columns, ColumnDef{Name: "a", Type: TypeInt})

	assert.ErrorIs(t, desc.Validate(), ErrInvalidSchema)
}

func TestValidateUnknownPartitionKey(t *testing.T) {
	desc := testDescriptor()
	desc.PartitionKeys = []string{"nope"}

	assert.ErrorIs(t, desc.Validate(), ErrInvalidSchema)
}

func TestValidatePartitionKeyOrder(t *testing.T) {
	desc := testDescriptor()
	desc.PartitionKeys = []string{"c", "a"}

	assert.ErrorIs(t, desc.Validate(), ErrInvalidSchema)
}

func TestValidateUnknownType(t *testing.T) {
	desc := testDescriptor()
	desc.Columns[0].Type = DataType("decimal(10,2)")

	assert.ErrorIs(t, desc.Validate(), ErrUnsupportedType)
}

func TestDataColumnsExcludePartitionKeys(t *testing.T) {
	cols := testDescriptor().DataColumns()

	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, "c", cols[1].Name)
}

func TestMapperRoundTrip(t *testing.T) {
	desc := testDescriptor()

	meta, err := ToMeta(desc)
	require.NoError(t, err)

	back, err := FromMeta(meta)
	require.NoError(t, err)

	again, err := ToMeta(back)
	require.NoError(t, err)

	// toExternal(toInternal(toExternal(d))) == toExternal(d)
	assert.Equal(t, meta, again)
}

func TestMapperSeparatesPartitionColumns(t *testing.T) {
	meta, err := ToMeta(testDescriptor())
	require.NoError(t, err)

	require.Len(t, meta.Fields, 2)
	require.Len(t, meta.PartitionKeys, 1)
	assert.Equal(t, "b", meta.PartitionKeys[0].Name)
	assert.Equal(t, "string", meta.PartitionKeys[0].Type)
	assert.Equal(t, "comment b", meta.PartitionKeys[0].Comment)
}

func TestMapperPartitionOrdinals(t *testing.T) {
	// Partition columns come back after the regular columns, matching the
	// ordinal order DESCRIBE reports.
	meta, err := ToMeta(testDescriptor())
	require.NoError(t, err)

	back, err := FromMeta(meta)
	require.NoError(t, err)

	require.Len(t, back.Columns, 3)
	assert.Equal(t, "a", back.Columns[0].Name)
	assert.Equal(t, "c", back.Columns[1].Name)
	assert.Equal(t, "b", back.Columns[2].Name)
	assert.Equal(t, []string{"b"}, back.PartitionKeys)
	assert.True(t, back.IsPartitionKey("b"))
}

func TestMapperRoundTripPreservesDetail(t *testing.T) {
	meta, err := ToMeta(testDescriptor())
	require.NoError(t, err)

	back, err := FromMeta(meta)
	require.NoError(t, err)

	col, ok := back.Column("a")
	require.True(t, ok)
	assert.Equal(t, TypeInt, col.Type)
	assert.True(t, col.Nullable)
	assert.Equal(t, "comment a", col.Comment)

	col, ok = back.Column("c")
	require.True(t, ok)
	assert.Equal(t, TypeTimestamp, col.Type)
	assert.False(t, col.Nullable)

	assert.Equal(t, "csv", back.Format)
	assert.Equal(t, ";", back.Options["field-delimiter"])
}

func TestMapperUnmappedTypeFailsClosed(t *testing.T) {
	meta, err := ToMeta(testDescriptor())
	require.NoError(t, err)

	meta.Fields[0].Type = "binary"

	_, err = FromMeta(meta)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestTruncateTimestamp(t *testing.T) {
	in := time.Date(2025, 3, 17, 10, 15, 30, 123_456_789, time.UTC)
	out := TruncateTimestamp(in)

	assert.Equal(t, time.Date(2025, 3, 17, 10, 15, 30, 123_000_000, time.UTC), out)
}
