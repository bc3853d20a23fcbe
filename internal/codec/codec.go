// Package codec encodes and decodes rows of typed values to and from the
// byte representation of one data file. Codecs are pluggable by format
// identifier; selection is a pure map lookup validated at table-creation
// time, never at scan time.
package codec

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lakecat/lakecat/internal/schema"
)

// Codec errors.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifiers of the built-in codecs.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Options carries per-table format options, e.g. the CSV field delimiter.
type Options struct {
	// FieldDelimiter separates CSV fields. Empty means comma.
	FieldDelimiter string
}

// OptionsFrom extracts codec options from table options.
func OptionsFrom(tableOptions map[string]string) Options {
	return Options{FieldDelimiter: tableOptions["field-delimiter"]}
}

// DecodeError reports one malformed record with its file and line context.
type DecodeError struct {
	File string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed record at %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Codec converts between rows and file bytes for one format.
type Codec interface {
	// Format returns the format identifier.
	Format() string

	// Extension is the file name extension for new data files, without dot.
	Extension() string

	// Encode writes rows to w. Column order follows cols.
	Encode(w io.Writer, rows []schema.Row, cols []schema.ColumnDef, opts Options) error

	// Decode lazily yields rows from r. file is used only for error
	// context. Malformed records yield a *DecodeError and stop iteration.
	Decode(r io.Reader, cols []schema.ColumnDef, opts Options, file string) iter.Seq2[schema.Row, error]
}

var codecs = map[string]Codec{
	FormatCSV:  &CSVCodec{},
	FormatJSON: &JSONCodec{},
}

// For returns the codec registered for format.
func For(format string) (Codec, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return c, nil
}

// Supported reports whether format has a registered codec.
func Supported(format string) bool {
	_, ok := codecs[format]
	return ok
}

// timestampLayout is the canonical encoded form of a timestamp value.
const timestampLayout = "2006-01-02 15:04:05.000"

// parseTimestamp accepts the common textual timestamp shapes and truncates
// to the bridge's millisecond precision.
func parseTimestamp(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, err
	}

	return schema.TruncateTimestamp(t), nil
}

// ParseValue converts one textual field to the typed value for col. Besides
// record decoding it serves partition values, which travel as k=v path
// segments rather than file contents.
func ParseValue(s string, col schema.ColumnDef) (any, error) {
	return parseString(s, col)
}

// FormatValue renders one typed value to its textual field form.
func FormatValue(v any) string {
	return formatValue(v)
}

// parseString converts one textual field to the typed value for col.
func parseString(s string, col schema.ColumnDef) (any, error) {
	switch col.Type {
	case schema.TypeBoolean:
		return strconv.ParseBool(s)
	case schema.TypeInt:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, err
		}

		return int32(v), nil
	case schema.TypeBigInt:
		return strconv.ParseInt(s, 10, 64)
	case schema.TypeFloat:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}

		return float32(v), nil
	case schema.TypeDouble:
		return strconv.ParseFloat(s, 64)
	case schema.TypeString:
		return s, nil
	case schema.TypeTimestamp:
		return parseTimestamp(s)
	default:
		return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedType, col.Type)
	}
}

// formatValue renders one typed value to its textual field form.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return schema.TruncateTimestamp(val).Format(timestampLayout)
	case bool:
		return strconv.FormatBool(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
