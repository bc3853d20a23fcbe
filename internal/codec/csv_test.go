package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecat/lakecat/internal/schema"
)

var csvCols = []schema.ColumnDef{
	{Name: "a", Type: schema.TypeInt, Nullable: true},
	{Name: "b", Type: schema.TypeString, Nullable: true},
}

func decodeAll(t *testing.T, c Codec, data string, cols []schema.ColumnDef, opts Options) []schema.Row {
	t.Helper()

	var rows []schema.Row

	for row, err := range c.Decode(strings.NewReader(data), cols, opts, "test-file") {
		require.NoError(t, err)
		rows = append(rows, row)
	}

	return rows
}

func TestCSVEncodeDecode(t *testing.T) {
	c := &CSVCodec{}

	var buf bytes.Buffer
	rows := []schema.Row{
		{int32(100), "north"},
		{int32(200), "south"},
	}

	require.NoError(t, c.Encode(&buf, rows, csvCols, Options{}))

	decoded := decodeAll(t, c, buf.String(), csvCols, Options{})
	assert.Equal(t, rows, decoded)
}

func TestCSVCustomDelimiter(t *testing.T) {
	c := &CSVCodec{}
	opts := Options{FieldDelimiter: ";"}

	var buf bytes.Buffer
	rows := []schema.Row{{int32(1), "a;b"}}

	require.NoError(t, c.Encode(&buf, rows, csvCols, opts))
	assert.Contains(t, buf.String(), ";")

	decoded := decodeAll(t, c, buf.String(), csvCols, opts)
	assert.Equal(t, rows, decoded)
}

func TestCSVEmptyFieldIsNull(t *testing.T) {
	decoded := decodeAll(t, &CSVCodec{}, "100,\n,north\n", csvCols, Options{})

	require.Len(t, decoded, 2)
	assert.Equal(t, schema.Row{int32(100), nil}, decoded[0])
	assert.Equal(t, schema.Row{nil, "north"}, decoded[1])
}

func TestCSVNullRoundTrip(t *testing.T) {
	c := &CSVCodec{}

	var buf bytes.Buffer
	rows := []schema.Row{{nil, nil}}

	require.NoError(t, c.Encode(&buf, rows, csvCols, Options{}))

	decoded := decodeAll(t, c, buf.String(), csvCols, Options{})
	assert.Equal(t, rows, decoded)
}

func TestCSVTimestamp(t *testing.T) {
	cols := []schema.ColumnDef{{Name: "ts", Type: schema.TypeTimestamp, Nullable: true}}

	decoded := decodeAll(t, &CSVCodec{}, "2025-03-17 10:15:30\n", cols, Options{})

	require.Len(t, decoded, 1)
	assert.Equal(t, time.Date(2025, 3, 17, 10, 15, 30, 0, time.UTC), decoded[0][0])
}

func TestCSVMalformedRecord(t *testing.T) {
	var decodeErr *DecodeError

	for _, err := range (&CSVCodec{}).Decode(strings.NewReader("not-a-number,x\n"), csvCols, Options{}, "bad.csv") {
		if err != nil {
			require.ErrorAs(t, err, &decodeErr)
		}
	}

	require.NotNil(t, decodeErr)
	assert.Equal(t, "bad.csv", decodeErr.File)
	assert.Equal(t, 1, decodeErr.Line)
	assert.Contains(t, decodeErr.Error(), "bad.csv:1")
}

func TestCSVInvalidDelimiter(t *testing.T) {
	var sawErr error

	for _, err := range (&CSVCodec{}).Decode(strings.NewReader("a\n"), csvCols, Options{FieldDelimiter: "ab"}, "f") {
		sawErr = err
	}

	require.Error(t, sawErr)
}

func TestUnknownFormat(t *testing.T) {
	_, err := For("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.True(t, Supported(FormatCSV))
	assert.True(t, Supported(FormatJSON))
	assert.False(t, Supported("orc"))
}
