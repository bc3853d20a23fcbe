package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakecat/lakecat/internal/codec"
	"github.com/lakecat/lakecat/internal/schema"
)

// NewInsertCmd creates the insert command.
func NewInsertCmd() *cobra.Command {
	var rows []string

	cmd := &cobra.Command{
		Use:   "insert <db.table>",
		Short: "Append rows to a table",
		Long: `Append rows to a format table. Rows are given as CSV with --row, or read
from stdin when no --row flag is present. Each insert writes one new data
file per touched partition.`,
		Example: `  lakecat insert demo.events --row "100,north" --row "200,south"
  cat rows.csv | lakecat insert demo.events`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, tbl, err := splitTableName(args[0])
			if err != nil {
				return err
			}

			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			ctx := context.Background()

			handle, err := cat.GetTable(ctx, db, tbl)
			if err != nil {
				return err
			}

			input := strings.Join(rows, "\n")
			if len(rows) == 0 {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}

				input = string(data)
			}

			parsed, err := parseRows(input, handle.Descriptor().Columns)
			if err != nil {
				return err
			}

			if err := handle.Append(ctx, parsed); err != nil {
				return err
			}

			fmt.Printf("Inserted %d rows into %s\n", len(parsed), args[0])

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rows, "row", nil, "One CSV row of values (repeatable)")

	return cmd
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <db.table>",
		Short: "Print every row of a table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, tbl, err := splitTableName(args[0])
			if err != nil {
				return err
			}

			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			ctx := context.Background()

			handle, err := cat.GetTable(ctx, db, tbl)
			if err != nil {
				return err
			}

			writer := csv.NewWriter(os.Stdout)

			for row, err := range handle.Scan(ctx) {
				if err != nil {
					return err
				}

				record := make([]string, len(row))
				for i, v := range row {
					record[i] = codec.FormatValue(v)
				}

				if err := writer.Write(record); err != nil {
					return err
				}
			}

			writer.Flush()

			return writer.Error()
		},
	}
}

// parseRows converts CSV input to typed rows against the table's columns.
func parseRows(input string, cols []schema.ColumnDef) ([]schema.Row, error) {
	reader := csv.NewReader(strings.NewReader(input))
	reader.FieldsPerRecord = len(cols)

	var parsed []schema.Row

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		row := make(schema.Row, len(cols))

		for i, field := range record {
			if field == "" {
				row[i] = nil
				continue
			}

			value, err := codec.ParseValue(field, cols[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cols[i].Name, err)
			}

			row[i] = value
		}

		parsed = append(parsed, row)
	}

	return parsed, nil
}
