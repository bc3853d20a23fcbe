package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/lakecat/lakecat/internal/schema"
)

// JSONCodec encodes one JSON object per line, with fields looked up by
// column name. Missing fields and JSON nulls decode to NULL; timestamps are
// parsed to the bridge's fixed millisecond precision.
type JSONCodec struct{}

// Format returns the format identifier.
func (c *JSONCodec) Format() string {
	return FormatJSON
}

// Extension returns the data file extension.
func (c *JSONCodec) Extension() string {
	return "json"
}

// Encode writes rows as newline-delimited JSON objects.
func (c *JSONCodec) Encode(w io.Writer, rows []schema.Row, cols []schema.ColumnDef, opts Options) error {
	enc := json.NewEncoder(w)

	for _, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("row has %d values, table has %d columns", len(row), len(cols))
		}

		obj := make(map[string]any, len(cols))

		for i, col := range cols {
			switch v := row[i].(type) {
			case time.Time:
				obj[col.Name] = schema.TruncateTimestamp(v).Format(timestampLayout)
			default:
				obj[col.Name] = v
			}
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to write json record: %w", err)
		}
	}

	return nil
}

// Decode lazily yields one row per line.
func (c *JSONCodec) Decode(r io.Reader, cols []schema.ColumnDef, opts Options, file string) iter.Seq2[schema.Row, error] {
	return func(yield func(schema.Row, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		line := 0

		for scanner.Scan() {
			line++

			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 {
				continue
			}

			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()

			var obj map[string]any
			if err := dec.Decode(&obj); err != nil {
				yield(nil, &DecodeError{File: file, Line: line, Err: err})
				return
			}

			row := make(schema.Row, len(cols))

			for i, col := range cols {
				field, ok := obj[col.Name]
				if !ok || field == nil {
					row[i] = nil
					continue
				}

				value, err := jsonValue(field, col)
				if err != nil {
					yield(nil, &DecodeError{
						File: file,
						Line: line,
						Err:  fmt.Errorf("column %q: %w", col.Name, err),
					})

					return
				}

				row[i] = value
			}

			if !yield(row, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, &DecodeError{File: file, Line: line, Err: err})
		}
	}
}

// jsonValue converts a decoded JSON field to the typed value for col.
func jsonValue(field any, col schema.ColumnDef) (any, error) {
	switch v := field.(type) {
	case json.Number:
		return parseString(v.String(), col)
	case string:
		if col.Type == schema.TypeString {
			return v, nil
		}

		return parseString(v, col)
	case bool:
		if col.Type != schema.TypeBoolean {
			return nil, fmt.Errorf("boolean value for %s column", col.Type)
		}

		return v, nil
	default:
		return nil, fmt.Errorf("unsupported json value %T", field)
	}
}

// Ensure JSONCodec implements Codec.
var _ Codec = (*JSONCodec)(nil)
