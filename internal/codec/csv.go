package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/lakecat/lakecat/internal/schema"
)

// CSVCodec encodes one record per line with a configurable field delimiter.
// Empty fields decode to NULL; NULL values encode as empty fields.
type CSVCodec struct{}

// Format returns the format identifier.
func (c *CSVCodec) Format() string {
	return FormatCSV
}

// Extension returns the data file extension.
func (c *CSVCodec) Extension() string {
	return "csv"
}

func (c *CSVCodec) delimiter(opts Options) (rune, error) {
	if opts.FieldDelimiter == "" {
		return ',', nil
	}

	runes := []rune(opts.FieldDelimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("field-delimiter must be a single character, got %q", opts.FieldDelimiter)
	}

	return runes[0], nil
}

// Encode writes rows in declared column order.
func (c *CSVCodec) Encode(w io.Writer, rows []schema.Row, cols []schema.ColumnDef, opts Options) error {
	delim, err := c.delimiter(opts)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = delim

	record := make([]string, len(cols))

	for _, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("row has %d values, table has %d columns", len(row), len(cols))
		}

		for i, v := range row {
			record[i] = formatValue(v)
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// Decode lazily yields one row per line, parsing each field against the
// declared column type.
func (c *CSVCodec) Decode(r io.Reader, cols []schema.ColumnDef, opts Options, file string) iter.Seq2[schema.Row, error] {
	return func(yield func(schema.Row, error) bool) {
		delim, err := c.delimiter(opts)
		if err != nil {
			yield(nil, err)
			return
		}

		reader := csv.NewReader(r)
		reader.Comma = delim
		reader.FieldsPerRecord = len(cols)

		line := 0

		for {
			line++

			record, err := reader.Read()
			if err == io.EOF {
				return
			}

			if err != nil {
				yield(nil, &DecodeError{File: file, Line: line, Err: err})
				return
			}

			row := make(schema.Row, len(cols))

			for i, field := range record {
				if field == "" {
					// Untyped empty field is NULL.
					row[i] = nil
					continue
				}

				value, err := parseString(field, cols[i])
				if err != nil {
					yield(nil, &DecodeError{
						File: file,
						Line: line,
						Err:  fmt.Errorf("column %q: %w", cols[i].Name, err),
					})

					return
				}

				row[i] = value
			}

			if !yield(row, nil) {
				return
			}
		}
	}
}

// Ensure CSVCodec implements Codec.
var _ Codec = (*CSVCodec)(nil)
